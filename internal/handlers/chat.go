package handlers

import (
	"errors"
	"net/http"

	"github.com/HammerMeetNail/talksy/internal/streamchat"
)

// ChatTokenIssuer signs provider tokens for authenticated users.
type ChatTokenIssuer interface {
	CreateToken(userID string) (string, error)
}

type ChatHandler struct {
	tokens ChatTokenIssuer
}

func NewChatHandler(tokens ChatTokenIssuer) *ChatHandler {
	return &ChatHandler{tokens: tokens}
}

type ChatTokenResponse struct {
	Token string `json:"token"`
}

func (h *ChatHandler) Token(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	token, err := h.tokens.CreateToken(user.ID.String())
	if errors.Is(err, streamchat.ErrNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, "Chat is not configured")
		return
	}
	if err != nil {
		writeServiceError(w, err, "create chat token")
		return
	}
	writeJSON(w, http.StatusOK, ChatTokenResponse{Token: token})
}
