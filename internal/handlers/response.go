package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/HammerMeetNail/talksy/internal/logging"
	"github.com/HammerMeetNail/talksy/internal/services"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeServiceError maps an error kind to a status code. Errors without a
// kind are logged and reported as 500 without leaking details.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, services.ErrFriendRequestNotPending):
		writeError(w, http.StatusConflict, "Friend request is not pending")
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidOperation):
		writeError(w, http.StatusBadRequest, kindMessage(err))
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, kindMessage(err))
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, kindMessage(err))
	case errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, kindMessage(err))
	default:
		logging.Error("Request failed", map[string]interface{}{
			"op":    op,
			"error": err.Error(),
		})
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

var domainMessages = []struct {
	err error
	msg string
}{
	{services.ErrEmailAlreadyExists, "Email already exists, please use a different one"},
	{services.ErrInvalidProfile, "Full name, native language and learning language cannot be blank"},
	{services.ErrUserNotFound, "User not found"},
	{services.ErrCannotFriendSelf, "You can't send a friend request to yourself"},
	{services.ErrAlreadyFriends, "You are already friends with this user"},
	{services.ErrFriendRequestExists, "A friend request already exists between you and this user"},
	{services.ErrFriendRequestNotFound, "Friend request not found"},
	{services.ErrNotRequestRecipient, "You are not authorized to accept this request"},
}

func kindMessage(err error) string {
	for _, m := range domainMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "Not found"
	case errors.Is(err, services.ErrForbidden):
		return "Forbidden"
	case errors.Is(err, services.ErrConflict):
		return "Conflict"
	}
	return "Invalid request"
}
