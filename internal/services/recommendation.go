package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/talksy/internal/models"
)

type RecommendationService struct {
	db DBConn
}

func NewRecommendationService(db DBConn) *RecommendationService {
	return &RecommendationService{db: db}
}

// Recommend lists onboarded users who are neither the caller nor already the
// caller's friends. The candidate set is recomputed on every call.
func (s *RecommendationService) Recommend(ctx context.Context, forUserID uuid.UUID) ([]models.PublicUser, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+publicUserColumns+`
		 FROM users u
		 WHERE u.id != $1
		   AND u.is_onboarded = true
		   AND NOT EXISTS (
		     SELECT 1 FROM user_friends f
		     WHERE f.user_id = $1 AND f.friend_id = u.id
		   )
		 ORDER BY u.created_at, u.id`,
		forUserID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing recommended users: %w", err)
	}
	return collectPublicUsers(rows)
}
