package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	tuiStateFileName = "tui_state.json"
	tuiStateVersion  = 1
)

// TUIState is the console screen to come back to after a restart.
type TUIState struct {
	Version int    `json:"version"`
	Search  string `json:"search,omitempty"`

	// DrawerItemID is 0 when no lots drawer was open.
	DrawerItemID   int64  `json:"drawerItemId,omitempty"`
	DrawerItemName string `json:"drawerItemName,omitempty"`
}

func freshTUIState() *TUIState { return &TUIState{Version: tuiStateVersion} }

// LoadTUIState returns the saved screen. A missing, unreadable-as-JSON or
// foreign-version file yields the empty screen; only I/O failures are errors.
func (s Store) LoadTUIState() (*TUIState, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return freshTUIState(), nil
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, tuiStateFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return freshTUIState(), nil
	case err != nil:
		return nil, err
	}

	st := freshTUIState()
	if json.Unmarshal(b, st) != nil || st.Version != tuiStateVersion {
		return freshTUIState(), nil
	}
	if st.DrawerItemID <= 0 {
		st.DrawerItemID, st.DrawerItemName = 0, ""
	}
	return st, nil
}

// SaveTUIState replaces the saved screen atomically.
func (s Store) SaveTUIState(st *TUIState) error {
	if st == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	out := *st
	out.Version = tuiStateVersion
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(s.Dir, tuiStateFileName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), filepath.Join(s.Dir, tuiStateFileName))
}
