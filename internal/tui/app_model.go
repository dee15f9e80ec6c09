package tui

import (
	"context"
	"time"

	"stock-cli/internal/api"
	"stock-cli/internal/console"
	"stock-cli/internal/logger"
	"stock-cli/internal/model"
	"stock-cli/internal/store"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const minibufferAutoClearAfter = 4 * time.Second

type appModel struct {
	ctx     context.Context
	client  *api.Client
	session store.Session
	store   store.Store
	log     logger.Logger

	width  int
	height int

	view view
	pane pane

	login      *console.Login
	loginUser  textinput.Model
	loginPass  textinput.Model
	loginFocus int

	items *console.Items
	lots  *console.Lots

	search    textinput.Model
	searching bool
	itemTable table.Model
	lotTable  table.Model

	modal        modalKind
	confirmFocus confirmModalFocus
	deleteKind   model.Kind
	form         formState

	// restore is the saved screen, applied on the first load after startup.
	restore *store.TUIState

	minibufferText  string
	minibufferSetAt time.Time
}

func newAppModel(ctx context.Context, opts Options) appModel {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	m := appModel{
		ctx:     ctx,
		client:  opts.Client,
		session: opts.Session,
		store:   opts.Store,
		log:     log,
		width:   100,
		height:  30,
		items:   console.NewItems(opts.Client, log),
		lots:    console.NewLots(opts.Client, log),
	}

	m.loginUser = newTextInput("username")
	m.loginPass = newTextInput("password")
	m.loginPass.EchoMode = textinput.EchoPassword
	m.loginPass.EchoCharacter = '•'
	m.search = newTextInput("search by name")
	m.search.Prompt = "/ "

	m.itemTable = newTable([]table.Column{{Title: "Name", Width: 30}, {Title: "Price", Width: 12}})
	m.lotTable = newTable([]table.Column{{Title: "Number", Width: 12}, {Title: "Qty", Width: 5}, {Title: "Expiry", Width: 10}})
	m.resize()

	m.resetLogin()
	if m.session.LoggedIn() {
		m.view = viewItems
		if st, err := m.store.LoadTUIState(); err == nil {
			m.restore = st
			m.search.SetValue(st.Search)
		}
	}
	return m
}

func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 120
	// A blinking cursor schedules timers; a steady one keeps the webtui bridge quiet.
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newTable(cols []table.Column) table.Model {
	t := table.New(
		table.WithColumns(cols),
		table.WithHeight(console.PageSize+2),
	)
	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorBorder).
		BorderBottom(true).
		Bold(true)
	st.Selected = styleSelected()
	t.SetStyles(st)
	return t
}

func (m *appModel) resetLogin() {
	m.login = console.NewLogin(m.client, m.session, m.log)
	m.loginUser.SetValue(m.session.Username(m.ctx))
	m.loginPass.SetValue("")
	m.login.SetUsername(m.loginUser.Value())
	m.loginFocus = 0
	if m.loginUser.Value() != "" {
		m.loginFocus = 1
	}
	m.applyLoginFocus()
}

func (m *appModel) applyLoginFocus() {
	m.loginUser.Blur()
	m.loginPass.Blur()
	if m.loginFocus == 0 {
		m.loginUser.Focus()
	} else {
		m.loginPass.Focus()
	}
}

func (m appModel) Init() tea.Cmd {
	if m.view != viewItems {
		return nil
	}
	return m.startItems()
}

// startItems loads the item list with the current filter, and reopens the lots
// drawer when the saved screen had one.
func (m appModel) startItems() tea.Cmd {
	cmds := []tea.Cmd{async(m.items.List.Load(m.ctx, console.Scope{Filter: m.search.Value()}))}
	if st := m.restore; st != nil && st.DrawerItemID != 0 {
		cmds = append(cmds, async(m.lots.Open(m.ctx, st.DrawerItemID, st.DrawerItemName)))
	}
	return tea.Batch(cmds...)
}

func (m *appModel) resize() {
	left, right := m.width, 0
	if m.lots.IsOpen() {
		left, right = splitWidths(m.width)
	}
	nameW := max(left-12-6, 10)
	m.itemTable.SetColumns([]table.Column{{Title: "Name", Width: nameW}, {Title: "Price", Width: 12}})
	m.itemTable.SetWidth(left)
	if right > 0 {
		numW := max(right-5-10-8, 8)
		m.lotTable.SetColumns([]table.Column{{Title: "Number", Width: numW}, {Title: "Qty", Width: 5}, {Title: "Expiry", Width: 10}})
		m.lotTable.SetWidth(right)
	}
	m.search.Width = max(left-4, 10)
}

func (m *appModel) syncItemTable() {
	rows := make([]table.Row, 0, console.PageSize)
	for _, it := range m.items.List.PageRows() {
		rows = append(rows, table.Row{it.Name, model.FormatPrice(it.Price)})
	}
	setTableRows(&m.itemTable, rows)
}

func (m *appModel) syncLotTable() {
	rows := make([]table.Row, 0, console.PageSize)
	for _, l := range m.lots.List.PageRows() {
		rows = append(rows, table.Row{l.Number, model.FormatQuantity(l.Quantity), l.ExpiryDate.Display()})
	}
	setTableRows(&m.lotTable, rows)
}

func setTableRows(t *table.Model, rows []table.Row) {
	cur := t.Cursor()
	t.SetRows(rows)
	if len(rows) == 0 {
		return
	}
	t.SetCursor(min(max(cur, 0), len(rows)-1))
}

func (m appModel) selectedItem() (model.Item, bool) {
	return m.items.List.PageRow(m.itemTable.Cursor())
}

func (m appModel) selectedLot() (model.Lot, bool) {
	return m.lots.List.PageRow(m.lotTable.Cursor())
}

func (m *appModel) showMinibuffer(text string) {
	m.minibufferText = text
	m.minibufferSetAt = time.Now()
}

func (m *appModel) clearStaleMinibuffer() {
	if m.minibufferText != "" && time.Since(m.minibufferSetAt) > minibufferAutoClearAfter {
		m.minibufferText = ""
	}
}

func (m appModel) saveState() {
	if m.view != viewItems {
		return
	}
	st := &store.TUIState{Version: 1, Search: m.search.Value()}
	if m.lots.IsOpen() {
		st.DrawerItemID = m.lots.ParentID()
		st.DrawerItemName = m.lots.ParentLabel()
	}
	if err := m.store.SaveTUIState(st); err != nil {
		m.log.Warn("save tui state", "error", err.Error())
	}
}
