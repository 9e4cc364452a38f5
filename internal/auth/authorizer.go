package auth

import (
	"context"
)

// UserInfo identifies an authenticated account owner.
type UserInfo struct {
	UserID  string `json:"user_id"`
	KeyName string `json:"key_name"`
}

// Authorizer resolves a bearer token to the user it belongs to.
type Authorizer interface {
	// Authorize validates the token and returns the owning user,
	// or an error if the token is unknown.
	Authorize(ctx context.Context, token string) (*UserInfo, error)
}
