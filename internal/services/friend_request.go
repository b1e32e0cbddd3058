package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/HammerMeetNail/talksy/internal/models"
)

const friendRequestColumns = `id, sender_id, recipient_id, status, created_at, updated_at`

// FriendRequestService is the ledger of directional friend requests. At most
// one active request exists per unordered pair of users; the store enforces
// this with a unique index over (LEAST(sender, recipient), GREATEST(...)).
type FriendRequestService struct {
	db DBConn
}

func NewFriendRequestService(db DBConn) *FriendRequestService {
	return &FriendRequestService{db: db}
}

// WithTx returns a copy of the ledger that runs every statement on tx.
func (s *FriendRequestService) WithTx(tx DBConn) *FriendRequestService {
	return &FriendRequestService{db: tx}
}

func (s *FriendRequestService) CreateRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error) {
	if senderID == recipientID {
		return nil, ErrCannotFriendSelf
	}

	var recipientExists bool
	err := s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)",
		recipientID,
	).Scan(&recipientExists)
	if err != nil {
		return nil, fmt.Errorf("checking recipient: %w", err)
	}
	if !recipientExists {
		return nil, ErrUserNotFound
	}

	var alreadyFriends bool
	err = s.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM user_friends WHERE user_id = $1 AND friend_id = $2)",
		senderID, recipientID,
	).Scan(&alreadyFriends)
	if err != nil {
		return nil, fmt.Errorf("checking friendship: %w", err)
	}
	if alreadyFriends {
		return nil, ErrAlreadyFriends
	}

	// The pair index rejects a duplicate in either direction, including one
	// inserted concurrently after the checks above.
	request := &models.FriendRequest{}
	err = scanFriendRequest(s.db.QueryRow(ctx,
		`INSERT INTO friend_requests (sender_id, recipient_id, status)
		 VALUES ($1, $2, 'pending')
		 ON CONFLICT DO NOTHING
		 RETURNING `+friendRequestColumns,
		senderID, recipientID,
	), request)
	if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
		return nil, ErrFriendRequestExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	return request, nil
}

func (s *FriendRequestService) GetByID(ctx context.Context, requestID uuid.UUID) (*models.FriendRequest, error) {
	return s.get(ctx, `SELECT `+friendRequestColumns+` FROM friend_requests WHERE id = $1`, requestID)
}

// Accept flips a pending request to accepted. Only the recipient may accept.
// The row is locked for the rest of the surrounding transaction.
func (s *FriendRequestService) Accept(ctx context.Context, requestID, actingUserID uuid.UUID) (*models.FriendRequest, error) {
	request, err := s.get(ctx,
		`SELECT `+friendRequestColumns+` FROM friend_requests WHERE id = $1 FOR UPDATE`,
		requestID,
	)
	if err != nil {
		return nil, err
	}

	if request.RecipientID != actingUserID {
		return nil, ErrNotRequestRecipient
	}
	if request.Status != models.FriendRequestStatusPending {
		return nil, ErrFriendRequestNotPending
	}

	err = s.db.QueryRow(ctx,
		`UPDATE friend_requests SET status = 'accepted', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'
		 RETURNING updated_at`,
		requestID,
	).Scan(&request.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendRequestNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("accepting friend request: %w", err)
	}

	request.Status = models.FriendRequestStatusAccepted
	return request, nil
}

// ListOutgoing returns every request the user has sent, whatever its status.
func (s *FriendRequestService) ListOutgoing(ctx context.Context, userID uuid.UUID) ([]models.OutgoingFriendRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.sender_id, r.recipient_id, r.status, r.created_at, r.updated_at, `+publicUserColumns+`
		 FROM friend_requests r
		 JOIN users u ON u.id = r.recipient_id
		 WHERE r.sender_id = $1
		 ORDER BY r.created_at DESC, r.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing outgoing requests: %w", err)
	}
	defer rows.Close()

	requests := []models.OutgoingFriendRequest{}
	for rows.Next() {
		var r models.OutgoingFriendRequest
		if err := rows.Scan(&r.ID, &r.SenderID, &r.RecipientID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
			&r.Recipient.ID, &r.Recipient.FullName, &r.Recipient.ProfilePic, &r.Recipient.Bio,
			&r.Recipient.NativeLanguage, &r.Recipient.LearningLanguage, &r.Recipient.Location,
			&r.Recipient.IsOnboarded); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating requests: %w", err)
	}
	return requests, nil
}

// ListIncomingPending returns the requests still awaiting the user's answer.
func (s *FriendRequestService) ListIncomingPending(ctx context.Context, userID uuid.UUID) ([]models.IncomingFriendRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.sender_id, r.recipient_id, r.status, r.created_at, r.updated_at, `+publicUserColumns+`
		 FROM friend_requests r
		 JOIN users u ON u.id = r.sender_id
		 WHERE r.recipient_id = $1 AND r.status = 'pending'
		 ORDER BY r.created_at DESC, r.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing incoming requests: %w", err)
	}
	defer rows.Close()

	requests := []models.IncomingFriendRequest{}
	for rows.Next() {
		var r models.IncomingFriendRequest
		if err := rows.Scan(&r.ID, &r.SenderID, &r.RecipientID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
			&r.Sender.ID, &r.Sender.FullName, &r.Sender.ProfilePic, &r.Sender.Bio,
			&r.Sender.NativeLanguage, &r.Sender.LearningLanguage, &r.Sender.Location,
			&r.Sender.IsOnboarded); err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating requests: %w", err)
	}
	return requests, nil
}

func (s *FriendRequestService) get(ctx context.Context, sql string, requestID uuid.UUID) (*models.FriendRequest, error) {
	request := &models.FriendRequest{}
	err := scanFriendRequest(s.db.QueryRow(ctx, sql, requestID), request)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFriendRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting friend request: %w", err)
	}
	return request, nil
}

func scanFriendRequest(row Row, r *models.FriendRequest) error {
	return row.Scan(&r.ID, &r.SenderID, &r.RecipientID, &r.Status, &r.CreatedAt, &r.UpdatedAt)
}
