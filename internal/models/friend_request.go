package models

import (
	"time"

	"github.com/google/uuid"
)

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
)

type FriendRequest struct {
	ID          uuid.UUID           `json:"id"`
	SenderID    uuid.UUID           `json:"sender"`
	RecipientID uuid.UUID           `json:"recipient"`
	Status      FriendRequestStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// IncomingFriendRequest carries the sender's public profile for the recipient's inbox.
type IncomingFriendRequest struct {
	FriendRequest
	Sender PublicUser `json:"senderUser"`
}

// OutgoingFriendRequest carries the recipient's public profile for the sender's outbox.
type OutgoingFriendRequest struct {
	FriendRequest
	Recipient PublicUser `json:"recipientUser"`
}
