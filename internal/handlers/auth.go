package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/HammerMeetNail/talksy/internal/logging"
	"github.com/HammerMeetNail/talksy/internal/models"
	"github.com/HammerMeetNail/talksy/internal/services"
	"github.com/HammerMeetNail/talksy/internal/streamchat"
)

const (
	sessionCookieName = "session_token"
	cookieMaxAge      = 30 * 24 * 60 * 60 // 30 days in seconds
)

// ChatUserSyncer mirrors profiles to the chat provider.
type ChatUserSyncer interface {
	UpsertUser(ctx context.Context, user streamchat.StreamUser) error
}

type AuthHandler struct {
	userService services.UserServiceInterface
	authService services.AuthServiceInterface
	chat        ChatUserSyncer
	secure      bool // Use secure cookies (HTTPS only)
}

func NewAuthHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface, chat ChatUserSyncer, secure bool) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
		chat:        chat,
		secure:      secure,
	}
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OnboardRequest is a partial profile update; omitted fields are unchanged.
type OnboardRequest struct {
	FullName         *string `json:"fullName"`
	Bio              *string `json:"bio"`
	ProfilePic       *string `json:"profilePic"`
	NativeLanguage   *string `json:"nativeLanguage"`
	LearningLanguage *string `json:"learningLanguage"`
	Location         *string `json:"location"`
}

type AuthResponse struct {
	User    *models.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}
	if err := validatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	passwordHash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, err, "hash password")
		return
	}

	user, err := h.userService.Create(r.Context(), models.CreateUserParams{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
	})
	if err != nil {
		writeServiceError(w, err, "create user")
		return
	}

	h.syncChatUser(r.Context(), user)

	token, err := h.authService.CreateSession(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, "create session")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, AuthResponse{User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		writeServiceError(w, err, "authenticate")
		return
	}

	token, err := h.authService.CreateSession(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, "create session")
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		_ = h.authService.DeleteSession(r.Context(), cookie.Value)
	}

	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, AuthResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: user})
}

func (h *AuthHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req OnboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, models.UpdateProfileParams{
		FullName:         req.FullName,
		Bio:              req.Bio,
		ProfilePic:       req.ProfilePic,
		NativeLanguage:   req.NativeLanguage,
		LearningLanguage: req.LearningLanguage,
		Location:         req.Location,
	})
	if err != nil {
		writeServiceError(w, err, "update profile")
		return
	}

	h.syncChatUser(r.Context(), updated)
	writeJSON(w, http.StatusOK, AuthResponse{User: updated})
}

// syncChatUser is best effort; the provider copy is refreshed on the next
// profile change if this call fails.
func (h *AuthHandler) syncChatUser(ctx context.Context, user *models.User) {
	if h.chat == nil {
		return
	}
	err := h.chat.UpsertUser(ctx, streamchat.StreamUser{
		ID:    user.ID.String(),
		Name:  user.FullName,
		Image: user.ProfilePic,
	})
	if err != nil && !errors.Is(err, streamchat.ErrNotConfigured) {
		logging.Warn("Failed to sync chat user", map[string]interface{}{
			"user_id": user.ID.String(),
			"error":   err.Error(),
		})
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Unix(0, 0),
	})
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	// bcrypt ignores everything past 72 bytes
	if len([]byte(password)) > 72 {
		return errors.New("password must be at most 72 bytes")
	}
	return nil
}
