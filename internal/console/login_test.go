package console

import (
	"context"
	"testing"

	"stock-cli/internal/api"
	"stock-cli/internal/api/apitest"
)

type memTokens struct {
	username, token string
}

func (m *memTokens) Save(_ context.Context, username, token string) error {
	m.username, m.token = username, token
	return nil
}

func TestLogin_EnablementAndRejection(t *testing.T) {
	srv := apitest.New(t)
	c, err := api.New(api.Options{BaseURL: srv.BaseURL()})
	if err != nil {
		t.Fatal(err)
	}
	tokens := &memTokens{}
	l := NewLogin(c, tokens, nil)

	if l.CanSubmit() {
		t.Fatalf("empty form must not submit")
	}
	l.SetUsername(apitest.Username)
	if l.CanSubmit() {
		t.Fatalf("missing password must not submit")
	}
	l.SetPassword("wrong")
	submit, ok := l.Submit(context.Background())
	if !ok {
		t.Fatalf("expected submit")
	}
	if l.Apply(submit()) {
		t.Fatalf("wrong password must fail")
	}
	if !l.Invalid() || l.CanSubmit() {
		t.Fatalf("expected invalid-credentials state blocking resubmit")
	}

	l.SetPassword(apitest.Password)
	if l.Invalid() || !l.CanSubmit() {
		t.Fatalf("editing a field should clear the invalid state")
	}
	submit, _ = l.Submit(context.Background())
	if !l.Apply(submit()) {
		t.Fatalf("expected login to succeed: %s", l.Notice())
	}
	if tokens.token != apitest.Token || tokens.username != apitest.Username {
		t.Fatalf("token not saved: %+v", tokens)
	}
	if l.Password() != "" {
		t.Fatalf("password should be cleared after login")
	}
}
