package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/talksy/internal/models"
)

// UserServiceInterface defines the contract for user directory operations used by handlers.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error)
}

// AuthServiceInterface defines the contract for authentication operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	CreateSession(ctx context.Context, userID uuid.UUID) (token string, err error)
	ValidateSession(ctx context.Context, token string) (*models.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// RecommendationServiceInterface defines the contract for the recommendation filter.
type RecommendationServiceInterface interface {
	Recommend(ctx context.Context, forUserID uuid.UUID) ([]models.PublicUser, error)
}

// SocialGraphServiceInterface defines the contract for friend request and friendship operations.
type SocialGraphServiceInterface interface {
	SendFriendRequest(ctx context.Context, senderID, recipientID uuid.UUID) (*models.FriendRequest, error)
	AcceptFriendRequest(ctx context.Context, requestID, actingUserID uuid.UUID) (*models.FriendRequest, error)
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.PublicUser, error)
	ListOutgoingRequests(ctx context.Context, userID uuid.UUID) ([]models.OutgoingFriendRequest, error)
	ListIncomingRequests(ctx context.Context, userID uuid.UUID) ([]models.IncomingFriendRequest, error)
}

var (
	_ UserServiceInterface           = (*UserService)(nil)
	_ AuthServiceInterface           = (*AuthService)(nil)
	_ RecommendationServiceInterface = (*RecommendationService)(nil)
	_ SocialGraphServiceInterface    = (*SocialGraphService)(nil)
)
