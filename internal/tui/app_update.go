package tui

import (
	"errors"
	"fmt"

	"stock-cli/internal/console"
	"stock-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case console.LoginResult:
		if !m.login.Apply(msg) {
			return m, nil
		}
		m.view = viewItems
		m.pane = paneItems
		m.loginPass.SetValue("")
		m.showMinibuffer("Logged in as " + msg.Username + ".")
		return m, m.startItems()

	case console.LoadResult[model.Item]:
		if m.items.List.Apply(msg) {
			m.syncItemTable()
			m.relabelDrawer()
			if msg.Err != nil {
				m.showMinibuffer(m.items.List.Notice())
			}
		}
		return m, nil

	case console.LoadResult[model.Lot]:
		if m.lots.List.Apply(msg) {
			// A drawer restored at startup opens before any resize.
			m.resize()
			m.syncLotTable()
			if msg.Err != nil {
				m.showMinibuffer(m.lots.List.Notice())
			}
		}
		return m, nil

	case console.SubmitResult:
		return m.applySubmit(msg)

	case console.DeleteResult:
		return m.applyDelete(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.clearStaleMinibuffer()
		if m.view == viewLogin {
			return m.updateLogin(msg)
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		m.applyLoginFocus()
		return m, nil
	case "enter":
		if m.loginFocus == 0 && m.loginPass.Value() == "" {
			m.loginFocus = 1
			m.applyLoginFocus()
			return m, nil
		}
		submit, ok := m.login.Submit(m.ctx)
		if !ok {
			return m, nil
		}
		return m, async(submit)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.loginUser, cmd = m.loginUser.Update(msg)
	} else {
		m.loginPass, cmd = m.loginPass.Update(msg)
	}
	m.login.SetUsername(m.loginUser.Value())
	m.login.SetPassword(m.loginPass.Value())
	return m, cmd
}

func (m appModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "tab":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	load := m.items.List.Load(m.ctx, console.Scope{Filter: m.search.Value()})
	return m, tea.Batch(cmd, async(load))
}

// updateBrowse handles keys on the items page with no modal up. Row keys act
// on whichever pane has focus.
func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lotsFocused := m.pane == paneLots && m.lots.IsOpen()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.modal = modalHelp
		return m, nil
	case "L":
		return m.logout()
	case "/":
		m.searching = true
		m.pane = paneItems
		return m, m.search.Focus()
	case "tab":
		if m.lots.IsOpen() {
			m.setPane(1 - m.pane)
		}
		return m, nil
	case "esc":
		if m.lots.IsOpen() {
			m.closeDrawer()
		}
		return m, nil
	case "up", "k":
		if lotsFocused {
			m.lotTable.MoveUp(1)
		} else {
			m.itemTable.MoveUp(1)
		}
		return m, nil
	case "down", "j":
		if lotsFocused {
			m.lotTable.MoveDown(1)
		} else {
			m.itemTable.MoveDown(1)
		}
		return m, nil
	case "[", "left", "h":
		if lotsFocused {
			if m.lots.List.PreviousPage() {
				m.lotTable.SetCursor(0)
				m.syncLotTable()
			}
		} else if m.items.List.PreviousPage() {
			m.itemTable.SetCursor(0)
			m.syncItemTable()
		}
		return m, nil
	case "]", "right", "l":
		if lotsFocused {
			if m.lots.List.NextPage() {
				m.lotTable.SetCursor(0)
				m.syncLotTable()
			}
		} else if m.items.List.NextPage() {
			m.itemTable.SetCursor(0)
			m.syncItemTable()
		}
		return m, nil
	case "r":
		if lotsFocused {
			return m, async(m.lots.List.Reload(m.ctx))
		}
		return m, async(m.items.List.Reload(m.ctx))
	case "enter":
		if lotsFocused {
			return m.openLotEdit()
		}
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		load := m.lots.Open(m.ctx, it.ID, it.Name)
		m.lotTable.SetCursor(0)
		m.syncLotTable()
		m.setPane(paneLots)
		m.resize()
		return m, async(load)
	case "n":
		if lotsFocused {
			if err := m.lots.Form.OpenAdd(m.lots.Scope()); err != nil {
				return m, nil
			}
			m.openForm(newLotForm(console.ModeAdd, m.lots.ParentLabel(), m.lots.Form.Draft()))
			return m, nil
		}
		if err := m.items.Form.OpenAdd(console.Scope{}); err != nil {
			return m, nil
		}
		m.openForm(newItemForm(console.ModeAdd, m.items.Form.Draft()))
		return m, nil
	case "e":
		if lotsFocused {
			return m.openLotEdit()
		}
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		if err := m.items.Form.OpenEdit(console.Scope{}, it); err != nil {
			return m, nil
		}
		m.openForm(newItemForm(console.ModeEdit, m.items.Form.Draft()))
		return m, nil
	case "d":
		if lotsFocused {
			if l, ok := m.selectedLot(); ok && m.lots.Delete.Request(m.lots.Scope(), l) {
				m.openConfirm(model.KindLot)
			}
			return m, nil
		}
		if it, ok := m.selectedItem(); ok && m.items.Delete.Request(console.Scope{}, it) {
			m.openConfirm(model.KindItem)
		}
		return m, nil
	}
	return m, nil
}

func (m appModel) openLotEdit() (tea.Model, tea.Cmd) {
	l, ok := m.selectedLot()
	if !ok {
		return m, nil
	}
	if err := m.lots.Form.OpenEdit(m.lots.Scope(), l); err != nil {
		return m, nil
	}
	m.openForm(newLotForm(console.ModeEdit, m.lots.ParentLabel(), m.lots.Form.Draft()))
	return m, nil
}

func (m *appModel) setPane(p pane) {
	m.pane = p
	if p == paneLots {
		m.itemTable.Blur()
		m.lotTable.Focus()
		return
	}
	m.lotTable.Blur()
	m.itemTable.Focus()
}

func (m *appModel) closeDrawer() {
	m.lots.Close()
	m.lotTable.SetRows(nil)
	m.setPane(paneItems)
	m.resize()
}

// relabelDrawer keeps the drawer title in step with an edited parent name.
func (m *appModel) relabelDrawer() {
	if !m.lots.IsOpen() {
		return
	}
	for _, it := range m.items.List.Rows() {
		if it.ID == m.lots.ParentID() {
			m.lots.Relabel(it.ID, it.Name)
			return
		}
	}
}

func (m *appModel) openForm(f formState) {
	m.form = f
	m.modal = modalForm
}

func (m *appModel) openConfirm(kind model.Kind) {
	m.deleteKind = kind
	m.confirmFocus = confirmFocusCancel
	m.modal = modalConfirmDelete
}

func (m appModel) logout() (tea.Model, tea.Cmd) {
	if err := m.session.Clear(m.ctx); err != nil {
		m.showMinibuffer("Could not log out: " + err.Error())
		return m, nil
	}
	m.saveState()
	m.closeDrawer()
	m.items.List.Reset()
	m.syncItemTable()
	m.search.SetValue("")
	m.restore = nil
	m.view = viewLogin
	m.resetLogin()
	m.showMinibuffer("Logged out.")
	return m, nil
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalHelp:
		switch msg.String() {
		case "esc", "?", "q", "enter":
			m.modal = modalNone
		}
		return m, nil
	case modalAlert:
		switch msg.String() {
		case "esc", "enter":
			m.items.Delete.DismissAlert()
			m.lots.Delete.DismissAlert()
			m.modal = modalNone
		}
		return m, nil
	case modalConfirmDelete:
		return m.updateConfirm(msg)
	case modalForm:
		return m.updateForm(msg)
	}
	return m, nil
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	decline := func() (tea.Model, tea.Cmd) {
		if m.deleteKind == model.KindLot {
			m.lots.Delete.Decline()
		} else {
			m.items.Delete.Decline()
		}
		m.modal = modalNone
		return m, nil
	}
	confirm := func() (tea.Model, tea.Cmd) {
		m.modal = modalNone
		if m.deleteKind == model.KindLot {
			del, ok := m.lots.Delete.Confirm(m.ctx)
			if !ok {
				return m, nil
			}
			m.showMinibuffer("Deleting lot…")
			return m, async(del)
		}
		del, ok := m.items.Delete.Confirm(m.ctx)
		if !ok {
			return m, nil
		}
		m.showMinibuffer("Deleting item…")
		return m, async(del)
	}

	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirmFocus = 1 - m.confirmFocus
		return m, nil
	case "y":
		return confirm()
	case "n", "esc", "ctrl+g":
		return decline()
	case "enter":
		if m.confirmFocus == confirmFocusConfirm {
			return confirm()
		}
		return decline()
	}
	return m, nil
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		var ch console.Changed
		var ok bool
		if m.form.kind == model.KindLot {
			ch, ok = m.lots.Form.Cancel()
		} else {
			ch, ok = m.items.Form.Cancel()
		}
		m.modal = modalNone
		if !ok {
			return m, nil
		}
		return m, m.refresh(ch)
	case "tab", "down":
		if !(msg.String() == "down" && m.form.onDate()) {
			m.form.move(1)
			return m, nil
		}
	case "shift+tab", "up":
		if !(msg.String() == "up" && m.form.onDate()) {
			m.form.move(-1)
			return m, nil
		}
	case "enter":
		if !m.form.onLast() {
			m.form.move(1)
			return m, nil
		}
		return m.submitForm()
	case "ctrl+s":
		return m.submitForm()
	}

	if m.formSubmitting() {
		return m, nil
	}
	if m.form.onDate() {
		if unit, delta, ok := dateBump(msg.String()); ok {
			m.form.bumpDate(unit, delta)
			m.syncDraft()
			return m, nil
		}
	}
	cmd := m.form.update(msg)
	m.syncDraft()
	return m, cmd
}

func dateBump(key string) (dateUnit, int, bool) {
	switch key {
	case "up":
		return dateUnitDay, 1, true
	case "down":
		return dateUnitDay, -1, true
	case "pgup":
		return dateUnitMonth, 1, true
	case "pgdown":
		return dateUnitMonth, -1, true
	case "ctrl+pgup":
		return dateUnitYear, 1, true
	case "ctrl+pgdown":
		return dateUnitYear, -1, true
	}
	return 0, 0, false
}

func (m appModel) formOpen() bool {
	if m.form.kind == model.KindLot {
		return m.lots.Form.IsOpen()
	}
	return m.items.Form.IsOpen()
}

func (m appModel) formSubmitting() bool {
	if m.form.kind == model.KindLot {
		return m.lots.Form.Submitting()
	}
	return m.items.Form.Submitting()
}

func (m *appModel) syncDraft() {
	if m.form.kind == model.KindLot {
		m.lots.Form.SetDraft(m.form.lotDraft())
		return
	}
	m.items.Form.SetDraft(m.form.itemDraft())
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	m.syncDraft()
	var cmd tea.Cmd
	var err error
	if m.form.kind == model.KindLot {
		var submit func() console.SubmitResult
		submit, err = m.lots.Form.Submit(m.ctx)
		cmd = async(submit)
	} else {
		var submit func() console.SubmitResult
		submit, err = m.items.Form.Submit(m.ctx)
		cmd = async(submit)
	}
	switch {
	case errors.Is(err, console.ErrSubmitting):
		m.showMinibuffer("Still saving…")
		return m, nil
	case err != nil:
		return m, nil
	}
	return m, cmd
}

func (m appModel) applySubmit(r console.SubmitResult) (tea.Model, tea.Cmd) {
	var ch console.Changed
	var ok bool
	switch r.Kind {
	case model.KindLot:
		ch, ok = m.lots.Form.Apply(r)
	default:
		ch, ok = m.items.Form.Apply(r)
	}
	if !ok {
		return m, nil
	}
	if m.modal == modalForm && m.form.kind == r.Kind && !m.formOpen() {
		m.modal = modalNone
	}
	m.showMinibuffer(changedText(ch))
	return m, m.refresh(ch)
}

func (m appModel) applyDelete(r console.DeleteResult) (tea.Model, tea.Cmd) {
	var ch console.Changed
	var ok bool
	switch r.Kind {
	case model.KindLot:
		ch, ok = m.lots.Delete.Apply(r)
	default:
		ch, ok = m.items.Delete.Apply(r)
		if ok && m.lots.IsOpen() && m.lots.ParentID() == r.ID {
			m.closeDrawer()
		}
	}
	if !ok {
		if m.items.Delete.Alert() != "" || m.lots.Delete.Alert() != "" {
			m.minibufferText = ""
			m.modal = modalAlert
		}
		return m, nil
	}
	m.showMinibuffer(changedText(ch))
	return m, m.refresh(ch)
}

// refresh reloads whichever lists ch concerns.
func (m appModel) refresh(ch console.Changed) tea.Cmd {
	var cmds []tea.Cmd
	if load, ok := m.items.Refresh(m.ctx, ch); ok {
		cmds = append(cmds, async(load))
	}
	if load, ok := m.lots.Refresh(m.ctx, ch); ok {
		cmds = append(cmds, async(load))
	}
	return tea.Batch(cmds...)
}

func changedText(ch console.Changed) string {
	noun := "Item"
	if ch.Kind == model.KindLot {
		noun = "Lot"
	}
	switch ch.Op {
	case console.OpCreate:
		return fmt.Sprintf("%s added.", noun)
	case console.OpUpdate:
		return fmt.Sprintf("%s saved.", noun)
	case console.OpDelete:
		return fmt.Sprintf("%s deleted.", noun)
	default:
		return ""
	}
}
