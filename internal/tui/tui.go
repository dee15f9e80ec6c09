// Package tui is the interactive inventory console.
package tui

import (
	"context"
	"errors"

	"stock-cli/internal/api"
	"stock-cli/internal/logger"
	"stock-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type Options struct {
	Client  *api.Client
	Session store.Session
	Store   store.Store
	Log     logger.Logger
}

func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()
	applyGlyphPreference()

	m := newAppModel(ctx, opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if fm, ok := final.(appModel); ok {
		fm.saveState()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
