package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/talksy/internal/events"
	"github.com/HammerMeetNail/talksy/internal/logging"
	"github.com/HammerMeetNail/talksy/internal/models"
)

// SocialGraphService coordinates the friend request ledger and the user
// directory. Accepting a request and materializing the friendship happen in a
// single transaction.
type SocialGraphService struct {
	db        DB
	users     *UserService
	requests  *FriendRequestService
	publisher events.Publisher
	logger    *logging.Logger
}

func NewSocialGraphService(db DB, users *UserService, requests *FriendRequestService, publisher events.Publisher, logger *logging.Logger) *SocialGraphService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = logging.Default
	}
	return &SocialGraphService{
		db:        db,
		users:     users,
		requests:  requests,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *SocialGraphService) SendFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error) {
	request, err := s.requests.CreateRequest(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeFriendRequestCreated, request)
	return request, nil
}

func (s *SocialGraphService) AcceptFriendRequest(ctx context.Context, requestID, actingUserID uuid.UUID) (*models.FriendRequest, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin accept transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	request, err := s.requests.WithTx(tx).Accept(ctx, requestID, actingUserID)
	if err != nil {
		return nil, err
	}

	if err := s.users.WithTx(tx).AddMutualFriend(ctx, request.SenderID, request.RecipientID); err != nil {
		return nil, fmt.Errorf("materializing friendship: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit accept: %w", err)
	}
	committed = true

	s.publish(ctx, events.TypeFriendRequestAccepted, request)
	return request, nil
}

func (s *SocialGraphService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.PublicUser, error) {
	return s.users.ListFriends(ctx, userID)
}

func (s *SocialGraphService) ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]models.OutgoingFriendRequest, error) {
	return s.requests.ListOutgoing(ctx, userID)
}

func (s *SocialGraphService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.IncomingFriendRequest, error) {
	return s.requests.ListIncomingPending(ctx, userID)
}

// publish is best effort: the state change is already committed.
func (s *SocialGraphService) publish(ctx context.Context, eventType string, request *models.FriendRequest) {
	event := events.FriendRequestEvent{
		Type:        eventType,
		RequestID:   request.ID,
		SenderID:    request.SenderID,
		RecipientID: request.RecipientID,
		OccurredAt:  time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish friend request event", map[string]interface{}{
			"type":       eventType,
			"request_id": request.ID.String(),
			"error":      err.Error(),
		})
	}
}
