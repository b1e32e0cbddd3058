package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/talksy/internal/services"
)

type UserHandler struct {
	recommendations services.RecommendationServiceInterface
	graph           services.SocialGraphServiceInterface
}

func NewUserHandler(recommendations services.RecommendationServiceInterface, graph services.SocialGraphServiceInterface) *UserHandler {
	return &UserHandler{
		recommendations: recommendations,
		graph:           graph,
	}
}

type SendFriendRequestRequest struct {
	RecipientID string `json:"recipientId"`
}

func (h *UserHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	users, err := h.recommendations.Recommend(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, "recommend users")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Friends(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	friends, err := h.graph.ListFriends(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, "list friends")
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

func (h *UserHandler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	recipientID, err := uuid.Parse(req.RecipientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recipient ID")
		return
	}

	request, err := h.graph.SendFriendRequest(r.Context(), user.ID, recipientID)
	if err != nil {
		writeServiceError(w, err, "send friend request")
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (h *UserHandler) IncomingFriendRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requests, err := h.graph.ListIncomingRequests(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, "list incoming requests")
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *UserHandler) OutgoingFriendRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requests, err := h.graph.ListOutgoingRequests(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err, "list outgoing requests")
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *UserHandler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	request, err := h.graph.AcceptFriendRequest(r.Context(), requestID, user.ID)
	if err != nil {
		writeServiceError(w, err, "accept friend request")
		return
	}
	writeJSON(w, http.StatusOK, request)
}
