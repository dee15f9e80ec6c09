package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"stock-cli/internal/api"
	"stock-cli/internal/api/apitest"
	"stock-cli/internal/calendar"
	"stock-cli/internal/console"
	"stock-cli/internal/model"
	"stock-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

type harness struct {
	t    *testing.T
	srv  *apitest.Server
	st   store.Store
	sess store.Session
	m    appModel
}

func newHarness(t *testing.T, loggedIn bool, seed func(*apitest.Server)) *harness {
	t.Helper()
	srv := apitest.New(t)
	if seed != nil {
		seed(srv)
	}
	st := store.Store{Dir: t.TempDir()}
	sess := store.Session{Store: st, APIURL: srv.BaseURL()}
	if loggedIn {
		if err := sess.Save(context.Background(), apitest.Username, apitest.Token); err != nil {
			t.Fatalf("save session: %v", err)
		}
	}
	h := &harness{t: t, srv: srv, st: st, sess: sess}
	h.start()
	return h
}

// start builds a fresh model over the same server and state dir, as a restart
// of the program would.
func (h *harness) start() {
	h.t.Helper()
	c, err := api.New(api.Options{BaseURL: h.srv.BaseURL(), Credentials: h.sess})
	if err != nil {
		h.t.Fatalf("api client: %v", err)
	}
	h.m = newAppModel(context.Background(), Options{Client: c, Session: h.sess, Store: h.st})
	h.drain(h.m.Init())
}

// drain runs cmds and feeds controller results back into Update until nothing
// is left. Other messages are dropped.
func (h *harness) drain(cmd tea.Cmd) {
	h.t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case console.LoadResult[model.Item], console.LoadResult[model.Lot],
			console.SubmitResult, console.DeleteResult, console.LoginResult:
			next, more := h.m.Update(msg)
			h.m = next.(appModel)
			queue = append(queue, more)
		}
	}
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(appModel)
	h.drain(cmd)
}

func (h *harness) key(k tea.KeyType) { h.send(tea.KeyMsg{Type: k}) }

func (h *harness) typ(s string) {
	for _, r := range s {
		h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (h *harness) calls() string { return strings.Join(h.srv.CallStrings(), ",") }

func TestLogin_SubmitLoadsItems(t *testing.T) {
	h := newHarness(t, false, func(s *apitest.Server) { s.AddItem("Coca-Cola", "5.99") })
	if h.m.view != viewLogin {
		t.Fatalf("expected login view without a session")
	}

	h.typ("admin")
	h.key(tea.KeyTab)
	h.typ("12345")
	h.key(tea.KeyEnter)

	if h.m.view != viewItems {
		t.Fatalf("expected items view after login, notice %q", h.m.login.Notice())
	}
	if !h.sess.LoggedIn() {
		t.Fatalf("expected the token to be persisted")
	}
	if got := h.calls(); got != "POST /login,GET /items" {
		t.Fatalf("calls: %s", got)
	}
	if h.m.items.List.Len() != 1 {
		t.Fatalf("expected 1 item, got %d", h.m.items.List.Len())
	}
	if !strings.Contains(h.m.View(), "Coca-Cola") {
		t.Fatalf("expected the item row in the view")
	}
}

func TestLogin_WrongPasswordStaysOnLogin(t *testing.T) {
	h := newHarness(t, false, nil)
	h.typ("admin")
	h.key(tea.KeyTab)
	h.typ("nope")
	h.key(tea.KeyEnter)

	if h.m.view != viewLogin {
		t.Fatalf("expected to stay on login")
	}
	if !h.m.login.Invalid() {
		t.Fatalf("expected invalid credentials state")
	}
	if !strings.Contains(h.m.View(), "Invalid username or password.") {
		t.Fatalf("expected the notice in the view")
	}
	if h.sess.LoggedIn() {
		t.Fatalf("no token should be saved")
	}
}

func TestItems_PagingAndDrawer(t *testing.T) {
	h := newHarness(t, true, func(s *apitest.Server) {
		for _, n := range []string{"A", "B", "C", "D", "E"} {
			s.AddItem(n, "1.00")
		}
	})
	if got := h.m.items.List.PageCount(); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}
	if !strings.Contains(h.m.View(), "page 1 of 2") {
		t.Fatalf("expected pager in view:\n%s", h.m.View())
	}

	h.typ("]")
	if h.m.items.List.PageIndex() != 1 {
		t.Fatalf("expected page 2")
	}
	h.typ("]")
	if h.m.items.List.PageIndex() != 1 {
		t.Fatalf("next past the last page must be a no-op")
	}

	h.srv.ResetCalls()
	h.key(tea.KeyEnter)
	if !h.m.lots.IsOpen() || h.m.lots.ParentLabel() != "E" {
		t.Fatalf("expected the drawer open for E, got open=%v label=%q", h.m.lots.IsOpen(), h.m.lots.ParentLabel())
	}
	if h.m.pane != paneLots {
		t.Fatalf("expected focus on the drawer")
	}
	if got := h.calls(); got != "GET /lots/item/5" {
		t.Fatalf("calls: %s", got)
	}
	if !strings.Contains(h.m.View(), "No lots found for this item.") {
		t.Fatalf("expected drawer empty state")
	}

	h.key(tea.KeyEsc)
	if h.m.lots.IsOpen() || h.m.pane != paneItems {
		t.Fatalf("esc should close the drawer")
	}
}

func TestItems_EditThroughForm(t *testing.T) {
	h := newHarness(t, true, func(s *apitest.Server) { s.AddItem("Coca-Cola", "5.99") })
	h.srv.ResetCalls()

	h.typ("e")
	if h.m.modal != modalForm || h.m.form.title != "Edit item" {
		t.Fatalf("expected edit form, got modal %v title %q", h.m.modal, h.m.form.title)
	}
	h.typ(" Lata")
	h.key(tea.KeyEnter)
	h.key(tea.KeyEnter)

	if h.m.modal != modalNone {
		t.Fatalf("expected form closed, notice %q", h.m.items.Form.Notice())
	}
	if got := h.calls(); got != "PUT /items/1,GET /items" {
		t.Fatalf("calls: %s", got)
	}
	if got := h.srv.Items()[0].Name; got != "Coca-Cola Lata" {
		t.Fatalf("server name = %q", got)
	}
	if h.m.minibufferText != "Item saved." {
		t.Fatalf("minibuffer = %q", h.m.minibufferText)
	}
	row, _ := h.m.items.List.PageRow(0)
	if row.Name != "Coca-Cola Lata" || model.FormatPrice(row.Price) != "R$ 5.99" {
		t.Fatalf("row = %+v", row)
	}
}

func TestItems_InvalidFormStaysOpen(t *testing.T) {
	h := newHarness(t, true, nil)
	h.srv.ResetCalls()

	h.typ("n")
	h.typ("Água")
	h.key(tea.KeyTab)
	h.typ("abc")
	h.send(tea.KeyMsg{Type: tea.KeyCtrlS})

	if h.m.modal != modalForm {
		t.Fatalf("invalid draft must keep the form open")
	}
	if got := h.calls(); got != "" {
		t.Fatalf("no request expected, got %s", got)
	}
	if h.m.items.Form.FieldError("price") == "" {
		t.Fatalf("expected a price error")
	}
	if !strings.Contains(h.m.View(), "Fill in every field correctly") {
		t.Fatalf("expected notice in the form")
	}
}

func TestItems_CancelFormReloads(t *testing.T) {
	h := newHarness(t, true, nil)
	h.srv.ResetCalls()

	h.typ("n")
	h.key(tea.KeyEsc)
	if h.m.modal != modalNone || h.m.items.Form.IsOpen() {
		t.Fatalf("esc should close the form")
	}
	if got := h.calls(); got != "GET /items" {
		t.Fatalf("calls: %s", got)
	}
}

func TestItems_DeleteAsksFirst(t *testing.T) {
	h := newHarness(t, true, func(s *apitest.Server) {
		s.AddItem("Coca-Cola", "5.99")
		s.AddItem("Pepsi", "4.50")
	})
	h.srv.ResetCalls()

	h.typ("d")
	if h.m.modal != modalConfirmDelete {
		t.Fatalf("expected confirm modal")
	}
	if !strings.Contains(h.m.View(), "Coca-Cola") {
		t.Fatalf("confirm should name the item")
	}
	h.typ("n")
	if h.m.modal != modalNone || h.calls() != "" {
		t.Fatalf("declining must not call the server, calls %s", h.calls())
	}

	h.typ("d")
	h.key(tea.KeyEnter)
	if h.calls() != "" {
		t.Fatalf("enter on the default cancel button must not delete")
	}

	h.typ("d")
	h.typ("y")
	if got := h.calls(); got != "DELETE /items/1,GET /items" {
		t.Fatalf("calls: %s", got)
	}
	if h.m.items.List.Len() != 1 {
		t.Fatalf("expected one item left")
	}
}

func TestItems_DeleteOpenDrawerParentClosesDrawer(t *testing.T) {
	h := newHarness(t, true, func(s *apitest.Server) { s.AddItem("Coca-Cola", "5.99") })
	h.key(tea.KeyEnter)
	h.key(tea.KeyTab)
	if h.m.pane != paneItems {
		t.Fatalf("tab should move focus back to items")
	}
	h.typ("d")
	h.typ("y")
	if h.m.lots.IsOpen() {
		t.Fatalf("drawer of a deleted item should close")
	}
}

func TestItems_DeleteFailureShowsAlert(t *testing.T) {
	h := newHarness(t, true, func(s *apitest.Server) { s.AddItem("Coca-Cola", "5.99") })
	h.srv.FailNext("DELETE", "/api/items/1", 500)

	h.typ("d")
	h.typ("y")
	if h.m.modal != modalAlert {
		t.Fatalf("expected an alert")
	}
	if v := h.m.View(); !strings.Contains(v, "Could not delete.") || !strings.Contains(v, "Server error") {
		t.Fatalf("alert text missing:\n%s", v)
	}
	h.key(tea.KeyEsc)
	if h.m.modal != modalNone || h.m.items.Delete.Alert() != "" {
		t.Fatalf("esc should dismiss the alert")
	}
	if h.m.items.List.Len() != 1 {
		t.Fatalf("failed delete keeps the row")
	}
}

func TestLots_AddWithDateKeys(t *testing.T) {
	h := newHarness(t, true, func(s *apitest.Server) { s.AddItem("Coca-Cola", "5.99") })
	h.key(tea.KeyEnter)
	h.srv.ResetCalls()

	h.typ("n")
	if h.m.form.title != "Add lot to Coca-Cola" {
		t.Fatalf("title = %q", h.m.form.title)
	}
	h.typ("L-1")
	h.key(tea.KeyTab)
	h.typ("10")
	h.key(tea.KeyTab)
	h.typ("31/12/2025")
	h.key(tea.KeyUp)
	if got := h.m.lots.Form.Draft().Expiry; got != "01/01/2026" {
		t.Fatalf("up should move a day forward, got %q", got)
	}
	h.key(tea.KeyPgDown)
	if got := h.m.lots.Form.Draft().Expiry; got != "01/12/2025" {
		t.Fatalf("pgdown should move a month back, got %q", got)
	}
	h.key(tea.KeyEnter)

	if h.m.modal != modalNone {
		t.Fatalf("expected the form closed, notice %q", h.m.lots.Form.Notice())
	}
	if got := h.calls(); got != "POST /lots,GET /lots/item/1" {
		t.Fatalf("only the drawer should reload, calls: %s", got)
	}
	lots := h.srv.Lots()
	if len(lots) != 1 || lots[0].ExpiryDate != calendar.MustNew(2025, time.December, 1) || lots[0].ItemID != 1 {
		t.Fatalf("lots = %+v", lots)
	}
	if !strings.Contains(h.m.View(), "01/12/2025") {
		t.Fatalf("expected the new lot in the drawer")
	}
}

func TestSearch_FiltersAsYouType(t *testing.T) {
	h := newHarness(t, true, func(s *apitest.Server) {
		s.AddItem("Coca-Cola", "5.99")
		s.AddItem("Pepsi", "4.50")
	})
	h.srv.ResetCalls()

	h.typ("/")
	h.typ("co")
	h.key(tea.KeyEnter)

	if got := h.calls(); got != "GET /items?name=c,GET /items?name=co" {
		t.Fatalf("calls: %s", got)
	}
	if h.m.items.List.Len() != 1 {
		t.Fatalf("expected 1 match, got %d", h.m.items.List.Len())
	}
	if h.m.searching {
		t.Fatalf("enter should leave the search box")
	}

	h.srv.ResetCalls()
	h.typ("r")
	if got := h.calls(); got != "GET /items?name=co" {
		t.Fatalf("reload should keep the filter, calls: %s", got)
	}
}

func TestLogout_ReturnsToLogin(t *testing.T) {
	h := newHarness(t, true, nil)
	h.typ("L")
	if h.m.view != viewLogin {
		t.Fatalf("expected login view")
	}
	if h.sess.LoggedIn() {
		t.Fatalf("token should be cleared")
	}
	if h.m.loginUser.Value() != apitest.Username || h.m.loginFocus != 1 {
		t.Fatalf("expected remembered username with focus on password")
	}
}

func TestState_RestoresSearchAndDrawer(t *testing.T) {
	h := newHarness(t, true, func(s *apitest.Server) {
		s.AddItem("Coca-Cola", "5.99")
		s.AddItem("Pepsi", "4.50")
	})
	h.typ("/")
	h.typ("pep")
	h.key(tea.KeyEsc)
	h.key(tea.KeyEnter)
	h.m.saveState()

	h.srv.ResetCalls()
	h.start()
	if h.m.search.Value() != "pep" {
		t.Fatalf("search = %q", h.m.search.Value())
	}
	if !h.m.lots.IsOpen() || h.m.lots.ParentID() != 2 {
		t.Fatalf("expected drawer restored for Pepsi")
	}
	if got := h.calls(); got != "GET /items?name=pep,GET /lots/item/2" {
		t.Fatalf("calls: %s", got)
	}
}

func TestView_HelpModal(t *testing.T) {
	h := newHarness(t, true, nil)
	h.typ("?")
	if h.m.modal != modalHelp || !strings.Contains(h.m.View(), "Keys") {
		t.Fatalf("expected help modal")
	}
	h.key(tea.KeyEsc)
	if h.m.modal != modalNone {
		t.Fatalf("esc should close help")
	}
}

func TestForm_SaveLandingAfterCancelReloadsList(t *testing.T) {
	h := newHarness(t, true, nil)
	h.typ("n")
	h.typ("Pepsi")
	h.key(tea.KeyTab)
	h.typ("4,50")

	next, submit := h.m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	h.m = next.(appModel)
	h.key(tea.KeyEsc)
	if h.m.modal != modalNone || h.m.items.List.Len() != 0 {
		t.Fatalf("esc should close the form and reload an empty list")
	}

	h.typ("n")
	h.drain(submit)

	if h.m.items.List.Len() != 1 || len(h.srv.Items()) != 1 {
		t.Fatalf("list stale after create: list=%d server=%d", h.m.items.List.Len(), len(h.srv.Items()))
	}
	if h.m.modal != modalForm || h.m.form.title != "Add item" {
		t.Fatalf("the new add form should stay open")
	}
	if h.m.minibufferText != "Item added." {
		t.Fatalf("minibuffer: %q", h.m.minibufferText)
	}
}

func TestItems_RenameFollowsIntoDrawerTitle(t *testing.T) {
	h := newHarness(t, true, func(s *apitest.Server) { s.AddItem("Coca-Cola", "5.99") })
	h.key(tea.KeyEnter)
	h.key(tea.KeyTab)
	h.typ("e")
	h.typ(" Lata")
	h.key(tea.KeyEnter)
	h.key(tea.KeyEnter)

	if got := h.m.lots.ParentLabel(); got != "Coca-Cola Lata" {
		t.Fatalf("drawer label = %q", got)
	}
	if !strings.Contains(h.m.View(), "Lots of Coca-Cola Lata") {
		t.Fatalf("expected the renamed drawer title in the view")
	}
}
