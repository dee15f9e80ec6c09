package store

import (
	"context"
	"strings"
)

const (
	keyToken    = "session.token"
	keyUsername = "session.username"
	keyAPIURL   = "session.api_url"
)

// Session is the persisted login. It satisfies api.CredentialProvider, and is
// read on every request so a login in another process is picked up.
type Session struct {
	Store Store
	// APIURL scopes the token: a token saved against another server is ignored.
	APIURL string
}

func (s Session) Token() (string, error) {
	ctx := context.Background()
	tok, ok, err := s.Store.getMeta(ctx, keyToken)
	if err != nil || !ok {
		return "", err
	}
	if s.APIURL != "" {
		saved, _, err := s.Store.getMeta(ctx, keyAPIURL)
		if err != nil {
			return "", err
		}
		if saved != "" && saved != s.APIURL {
			return "", nil
		}
	}
	return tok, nil
}

// LoggedIn reports whether a usable token is stored.
func (s Session) LoggedIn() bool {
	tok, err := s.Token()
	return err == nil && strings.TrimSpace(tok) != ""
}

// Save stores a fresh token along with who obtained it.
func (s Session) Save(ctx context.Context, username, token string) error {
	return s.Store.setMeta(ctx, map[string]string{
		keyToken:    token,
		keyUsername: username,
		keyAPIURL:   s.APIURL,
	})
}

// Clear drops the token. The username is kept to prefill the next login.
func (s Session) Clear(ctx context.Context) error {
	return s.Store.deleteMeta(ctx, keyToken, keyAPIURL)
}

// Username is the last user that logged in, or "".
func (s Session) Username(ctx context.Context) string {
	u, _, err := s.Store.getMeta(ctx, keyUsername)
	if err != nil {
		return ""
	}
	return u
}
