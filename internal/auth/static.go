package auth

import (
	"context"
	"strings"
)

const (
	// LocalDevToken is the hardcoded bearer token for local development only.
	LocalDevToken = "mo_local_dev_token"

	// LocalDevUserID is the account the dev token resolves to.
	LocalDevUserID = "local-dev-user"
)

// StaticAuthorizer resolves bearer tokens from a fixed token-to-user map.
// The map is built once at startup from configuration and never mutated,
// so lookups need no locking.
type StaticAuthorizer struct {
	users map[string]string
}

// NewStaticAuthorizer builds an authorizer from "token=userID" pairs,
// comma separated. Malformed pairs are skipped.
func NewStaticAuthorizer(spec string) *StaticAuthorizer {
	users := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		tok, uid, ok := strings.Cut(pair, "=")
		if !ok || tok == "" || uid == "" {
			continue
		}
		users[tok] = uid
	}
	return &StaticAuthorizer{users: users}
}

func (a *StaticAuthorizer) Authorize(ctx context.Context, token string) (*UserInfo, error) {
	uid, ok := a.users[token]
	if !ok {
		return nil, ErrInvalidToken
	}
	return &UserInfo{UserID: uid, KeyName: "static"}, nil
}

// DevAuthorizer accepts only LocalDevToken. It backs local development
// where no token map has been configured.
type DevAuthorizer struct{}

func NewDevAuthorizer() *DevAuthorizer { return &DevAuthorizer{} }

func (a *DevAuthorizer) Authorize(ctx context.Context, token string) (*UserInfo, error) {
	if token != LocalDevToken {
		return nil, ErrInvalidToken
	}
	return &UserInfo{UserID: LocalDevUserID, KeyName: "Local Development Token"}, nil
}
