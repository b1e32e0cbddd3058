package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/HammerMeetNail/talksy/internal/models"
)

const userColumns = `id, email, password_hash, full_name, bio, profile_pic, native_language,
	learning_language, location, is_onboarded, created_at, updated_at`

const publicUserColumns = `u.id, u.full_name, u.profile_pic, u.bio, u.native_language,
	u.learning_language, u.location, u.is_onboarded`

// UserService owns profile records and the symmetric friends relation.
type UserService struct {
	db     DBConn
	avatar func() string
}

func NewUserService(db DBConn) *UserService {
	return &UserService{db: db, avatar: randomAvatar}
}

// WithTx returns a copy of the service that runs every statement on tx.
func (s *UserService) WithTx(tx DBConn) *UserService {
	return &UserService{db: tx, avatar: s.avatar}
}

func randomAvatar() string {
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", rand.IntN(100)+1)
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking email existence: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	profilePic := params.ProfilePic
	if profilePic == "" {
		profilePic = s.avatar()
	}

	user := &models.User{}
	err = scanUser(s.db.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, full_name, profile_pic)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		email, params.PasswordHash, strings.TrimSpace(params.FullName), profilePic,
	), user)
	if isUniqueViolation(err) {
		return nil, ErrEmailAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	), user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by id: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	), user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update. is_onboarded flips to true
// once the stored row has a name and both languages, whichever call filled
// them in, and is never reset.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params models.UpdateProfileParams) (*models.User, error) {
	params = trimProfile(params)
	for _, required := range []*string{params.FullName, params.NativeLanguage, params.LearningLanguage} {
		if required != nil && *required == "" {
			return nil, ErrInvalidProfile
		}
	}

	user := &models.User{}
	err := scanUser(s.db.QueryRow(ctx,
		`UPDATE users SET
		   full_name = COALESCE($2, full_name),
		   bio = COALESCE($3, bio),
		   profile_pic = COALESCE($4, profile_pic),
		   native_language = COALESCE($5, native_language),
		   learning_language = COALESCE($6, learning_language),
		   location = COALESCE($7, location),
		   is_onboarded = is_onboarded OR (
		     COALESCE($2, full_name) <> '' AND
		     COALESCE($5, native_language) <> '' AND
		     COALESCE($6, learning_language) <> ''),
		   updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+userColumns,
		userID, params.FullName, params.Bio, params.ProfilePic,
		params.NativeLanguage, params.LearningLanguage, params.Location,
	), user)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}

// AddMutualFriend inserts both directions of the friendship in one statement,
// so either both rows exist afterwards or neither does. Re-adding is a no-op.
func (s *UserService) AddMutualFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == friendID {
		return ErrCannotFriendSelf
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO user_friends (user_id, friend_id)
		 VALUES ($1, $2), ($2, $1)
		 ON CONFLICT DO NOTHING`,
		userID, friendID,
	)
	if isForeignKeyViolation(err) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("adding mutual friend: %w", err)
	}
	return nil
}

func (s *UserService) AreFriends(ctx context.Context, userID, otherUserID uuid.UUID) (bool, error) {
	var friends bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM user_friends WHERE user_id = $1 AND friend_id = $2
		)`,
		userID, otherUserID,
	).Scan(&friends)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return friends, nil
}

func (s *UserService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.PublicUser, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+publicUserColumns+`
		 FROM user_friends f
		 JOIN users u ON u.id = f.friend_id
		 WHERE f.user_id = $1
		 ORDER BY u.full_name, u.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	return collectPublicUsers(rows)
}

func scanUser(row Row, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Bio, &u.ProfilePic,
		&u.NativeLanguage, &u.LearningLanguage, &u.Location, &u.IsOnboarded, &u.CreatedAt, &u.UpdatedAt)
}

func scanPublicUser(row Row, u *models.PublicUser) error {
	return row.Scan(&u.ID, &u.FullName, &u.ProfilePic, &u.Bio, &u.NativeLanguage,
		&u.LearningLanguage, &u.Location, &u.IsOnboarded)
}

func collectPublicUsers(rows Rows) ([]models.PublicUser, error) {
	defer rows.Close()

	users := []models.PublicUser{}
	for rows.Next() {
		var u models.PublicUser
		if err := scanPublicUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func trimProfile(p models.UpdateProfileParams) models.UpdateProfileParams {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	return models.UpdateProfileParams{
		FullName:         trim(p.FullName),
		Bio:              trim(p.Bio),
		ProfilePic:       trim(p.ProfilePic),
		NativeLanguage:   trim(p.NativeLanguage),
		LearningLanguage: trim(p.LearningLanguage),
		Location:         trim(p.Location),
	}
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
