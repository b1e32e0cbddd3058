package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every domain error below wraps exactly one of them so callers
// can branch on the kind with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOperation = errors.New("invalid operation")
)

func kindError(kind error, msg string) error {
	return fmt.Errorf("%w: %s", kind, msg)
}

var (
	ErrUserNotFound       = kindError(ErrNotFound, "user not found")
	ErrEmailAlreadyExists = kindError(ErrValidation, "email already exists")
	ErrInvalidProfile     = kindError(ErrValidation, "required profile field is blank")

	ErrFriendRequestNotFound   = kindError(ErrNotFound, "friend request not found")
	ErrFriendRequestExists     = kindError(ErrConflict, "friend request already exists")
	ErrAlreadyFriends          = kindError(ErrConflict, "users are already friends")
	ErrCannotFriendSelf        = kindError(ErrInvalidOperation, "cannot send friend request to yourself")
	ErrFriendRequestNotPending = kindError(ErrInvalidOperation, "friend request is not pending")
	ErrNotRequestRecipient     = kindError(ErrForbidden, "only the recipient can accept this request")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)
