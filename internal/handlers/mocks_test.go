package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/talksy/internal/models"
	"github.com/HammerMeetNail/talksy/internal/streamchat"
)

type mockUserService struct {
	CreateFunc        func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc       func(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, params)
	}
	return nil, nil
}

type mockAuthService struct {
	HashPasswordFunc    func(password string) (string, error)
	AuthenticateFunc    func(ctx context.Context, email, password string) (*models.User, error)
	CreateSessionFunc   func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateSessionFunc func(ctx context.Context, token string) (*models.User, error)
	DeleteSessionFunc   func(ctx context.Context, token string) error
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc != nil {
		return m.HashPasswordFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *mockAuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID)
	}
	return "session-token", nil
}

func (m *mockAuthService) ValidateSession(ctx context.Context, token string) (*models.User, error) {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockAuthService) DeleteSession(ctx context.Context, token string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, token)
	}
	return nil
}

type mockRecommendationService struct {
	RecommendFunc func(ctx context.Context, forUserID uuid.UUID) ([]models.PublicUser, error)
}

func (m *mockRecommendationService) Recommend(ctx context.Context, forUserID uuid.UUID) ([]models.PublicUser, error) {
	if m.RecommendFunc != nil {
		return m.RecommendFunc(ctx, forUserID)
	}
	return []models.PublicUser{}, nil
}

type mockSocialGraphService struct {
	SendFriendRequestFunc    func(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error)
	AcceptFriendRequestFunc  func(ctx context.Context, requestID, actingUserID uuid.UUID) (*models.FriendRequest, error)
	ListFriendsFunc          func(ctx context.Context, userID uuid.UUID) ([]models.PublicUser, error)
	ListOutgoingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.OutgoingFriendRequest, error)
	ListIncomingRequestsFunc func(ctx context.Context, userID uuid.UUID) ([]models.IncomingFriendRequest, error)
}

func (m *mockSocialGraphService) SendFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error) {
	if m.SendFriendRequestFunc != nil {
		return m.SendFriendRequestFunc(ctx, senderID, recipientID)
	}
	return nil, nil
}

func (m *mockSocialGraphService) AcceptFriendRequest(ctx context.Context, requestID, actingUserID uuid.UUID) (*models.FriendRequest, error) {
	if m.AcceptFriendRequestFunc != nil {
		return m.AcceptFriendRequestFunc(ctx, requestID, actingUserID)
	}
	return nil, nil
}

func (m *mockSocialGraphService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.PublicUser, error) {
	if m.ListFriendsFunc != nil {
		return m.ListFriendsFunc(ctx, userID)
	}
	return []models.PublicUser{}, nil
}

func (m *mockSocialGraphService) ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]models.OutgoingFriendRequest, error) {
	if m.ListOutgoingRequestsFunc != nil {
		return m.ListOutgoingRequestsFunc(ctx, userID)
	}
	return []models.OutgoingFriendRequest{}, nil
}

func (m *mockSocialGraphService) ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.IncomingFriendRequest, error) {
	if m.ListIncomingRequestsFunc != nil {
		return m.ListIncomingRequestsFunc(ctx, userID)
	}
	return []models.IncomingFriendRequest{}, nil
}

type mockChat struct {
	CreateTokenFunc func(userID string) (string, error)
	UpsertUserFunc  func(ctx context.Context, user streamchat.StreamUser) error
	upserted        []streamchat.StreamUser
}

func (m *mockChat) CreateToken(userID string) (string, error) {
	if m.CreateTokenFunc != nil {
		return m.CreateTokenFunc(userID)
	}
	return "chat-token-" + userID, nil
}

func (m *mockChat) UpsertUser(ctx context.Context, user streamchat.StreamUser) error {
	m.upserted = append(m.upserted, user)
	if m.UpsertUserFunc != nil {
		return m.UpsertUserFunc(ctx, user)
	}
	return nil
}
