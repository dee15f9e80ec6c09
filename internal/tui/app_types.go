package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type view int

const (
	viewLogin view = iota
	viewItems
)

type pane int

const (
	paneItems pane = iota
	paneLots
)

type modalKind int

const (
	modalNone modalKind = iota
	modalForm
	modalConfirmDelete
	modalAlert
	modalHelp
)

// async wraps a controller closure so bubbletea runs it off the update loop and
// delivers its result as a message.
func async[R any](f func() R) tea.Cmd {
	if f == nil {
		return nil
	}
	return func() tea.Msg { return f() }
}
