package console

import (
	"context"
	"errors"
	"strings"

	"stock-cli/internal/api"
	"stock-cli/internal/logger"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// TokenSaver persists a token once login succeeds.
type TokenSaver interface {
	Save(ctx context.Context, username, token string) error
}

// LoginResult carries a finished login attempt back to the form.
type LoginResult struct {
	Gen      uint64
	Username string
	Err      error
}

// Login is the sign-in form.
type Login struct {
	auth  Authenticator
	saver TokenSaver
	log   logger.Logger

	username   string
	password   string
	gen        uint64
	submitting bool
	invalid    bool
	notice     string
}

func NewLogin(auth Authenticator, saver TokenSaver, log logger.Logger) *Login {
	if log == nil {
		log = logger.Discard()
	}
	return &Login{auth: auth, saver: saver, log: log}
}

func (l *Login) Username() string { return l.username }
func (l *Login) Password() string { return l.password }
func (l *Login) Invalid() bool    { return l.invalid }
func (l *Login) Submitting() bool { return l.submitting }
func (l *Login) Notice() string   { return l.notice }

// SetUsername edits the username. Editing clears a rejected-credentials state.
func (l *Login) SetUsername(s string) {
	if s != l.username {
		l.invalid = false
		l.notice = ""
	}
	l.username = s
}

func (l *Login) SetPassword(s string) {
	if s != l.password {
		l.invalid = false
		l.notice = ""
	}
	l.password = s
}

// CanSubmit reports whether both fields are filled and the same credentials
// were not just rejected.
func (l *Login) CanSubmit() bool {
	return !l.submitting && !l.invalid &&
		strings.TrimSpace(l.username) != "" && l.password != ""
}

// Submit returns the login call when the form can be submitted.
func (l *Login) Submit(ctx context.Context) (func() LoginResult, bool) {
	if !l.CanSubmit() {
		return nil, false
	}
	l.gen++
	l.submitting = true
	l.notice = ""
	auth, saver := l.auth, l.saver
	username, password := strings.TrimSpace(l.username), l.password
	gen := l.gen
	return func() LoginResult {
		res := LoginResult{Gen: gen, Username: username}
		tok, err := auth.Login(ctx, username, password)
		if err != nil {
			res.Err = err
			return res
		}
		if saver != nil {
			res.Err = saver.Save(ctx, username, tok)
		}
		return res
	}, true
}

// Apply folds a login result in and reports success. Any rejected status puts
// the form in the invalid-credentials state.
func (l *Login) Apply(r LoginResult) bool {
	if r.Gen != l.gen || !l.submitting {
		return false
	}
	l.submitting = false
	if r.Err == nil {
		l.log.Info("logged in", "username", r.Username)
		l.password = ""
		return true
	}
	var se *api.StatusError
	if errors.As(r.Err, &se) {
		l.invalid = true
		l.notice = "Invalid username or password."
		l.log.Warn("login rejected", "username", r.Username, "status", se.Code)
		return false
	}
	l.notice = api.Describe(r.Err)
	l.log.Error("login failed", "username", r.Username, "error", r.Err.Error())
	return false
}
