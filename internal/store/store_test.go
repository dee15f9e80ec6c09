package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSession_SaveTokenClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := Session{Store: Store{Dir: t.TempDir()}, APIURL: "http://a/api"}

	if tok, err := sess.Token(); err != nil || tok != "" {
		t.Fatalf("expected no token before login, got %q (%v)", tok, err)
	}
	if sess.LoggedIn() {
		t.Fatalf("expected logged out")
	}

	if err := sess.Save(ctx, "admin", "tok-1"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if tok, err := sess.Token(); err != nil || tok != "tok-1" {
		t.Fatalf("expected tok-1, got %q (%v)", tok, err)
	}

	// A second process sees the same session.
	other := Session{Store: Store{Dir: sess.Store.Dir}, APIURL: "http://a/api"}
	if !other.LoggedIn() {
		t.Fatalf("expected token shared through the database")
	}

	if err := sess.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if sess.LoggedIn() {
		t.Fatalf("expected logged out after clear")
	}
	if got := sess.Username(ctx); got != "admin" {
		t.Fatalf("expected username kept after clear, got %q", got)
	}
}

func TestSession_TokenScopedToAPIURL(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := Session{Store: Store{Dir: dir}, APIURL: "http://a/api"}
	if err := a.Save(context.Background(), "admin", "tok-a"); err != nil {
		t.Fatalf("save: %v", err)
	}
	b := Session{Store: Store{Dir: dir}, APIURL: "http://b/api"}
	if b.LoggedIn() {
		t.Fatalf("token for another server must not be used")
	}
}

func TestTUIState_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := Store{Dir: dir}

	// Missing file => default state.
	st0, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st0 == nil || st0.Version != 1 {
		t.Fatalf("expected default Version=1; got %#v", st0)
	}

	want := &TUIState{Version: 1, Search: "cola", DrawerItemID: 3, DrawerItemName: "Coca-Cola"}
	if err := s.SaveTUIState(want); err != nil {
		t.Fatalf("SaveTUIState: %v", err)
	}
	got, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState (after save): %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("roundtrip mismatch:\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestTUIState_CorruptFileIsIgnored(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, tuiStateFileName), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := Store{Dir: dir}.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.Version != 1 || st.Search != "" {
		t.Fatalf("expected default state, got %#v", st)
	}
}

func TestTUIState_ForeignVersionAndNoTempLeftovers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := Store{Dir: dir}
	if err := os.WriteFile(filepath.Join(dir, tuiStateFileName), []byte(`{"version":7,"search":"x"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.Search != "" {
		t.Fatalf("foreign version should be ignored, got %#v", st)
	}

	if err := s.SaveTUIState(&TUIState{Search: "pep", DrawerItemID: -1, DrawerItemName: "ghost"}); err != nil {
		t.Fatalf("SaveTUIState: %v", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, tuiStateFileName+".*"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
	st, err = s.LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.Version != 1 || st.Search != "pep" || st.DrawerItemID != 0 || st.DrawerItemName != "" {
		t.Fatalf("unexpected state %#v", st)
	}
}
