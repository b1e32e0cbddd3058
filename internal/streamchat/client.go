// Package streamchat issues user tokens for the hosted chat/video provider
// and mirrors user profiles to it.
package streamchat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	stream "github.com/GetStream/stream-chat-go/v5"
)

var ErrNotConfigured = errors.New("stream chat is not configured")

type StreamUser struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// Client wraps the provider SDK. A zero or nil Client is disabled and every
// call returns ErrNotConfigured.
type Client struct {
	apiKey string
	sdk    *stream.Client
}

// NewClient builds a provider client. Missing credentials leave it disabled;
// an empty baseURL keeps the SDK default.
func NewClient(apiKey, apiSecret, baseURL string) *Client {
	c := &Client{apiKey: apiKey}
	if apiKey == "" || apiSecret == "" {
		return c
	}

	sdk, err := stream.NewClient(apiKey, apiSecret)
	if err != nil {
		return c
	}
	if baseURL != "" {
		sdk.BaseURL = strings.TrimRight(baseURL, "/")
	}
	c.sdk = sdk
	return c
}

func (c *Client) Enabled() bool {
	return c != nil && c.sdk != nil
}

func (c *Client) APIKey() string {
	if c == nil {
		return ""
	}
	return c.apiKey
}

// CreateToken signs a non-expiring client token that lets userID connect.
func (c *Client) CreateToken(userID string) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}
	if userID == "" {
		return "", errors.New("user id is required")
	}
	token, err := c.sdk.CreateToken(userID, time.Time{})
	if err != nil {
		return "", fmt.Errorf("signing stream token: %w", err)
	}
	return token, nil
}

// UpsertUser creates or replaces the provider's copy of a user profile.
func (c *Client) UpsertUser(ctx context.Context, user StreamUser) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}
	_, err := c.sdk.UpsertUser(ctx, &stream.User{
		ID:    user.ID,
		Name:  user.Name,
		Image: user.Image,
	})
	if err != nil {
		return fmt.Errorf("upserting stream user: %w", err)
	}
	return nil
}
