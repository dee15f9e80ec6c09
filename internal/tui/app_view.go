package tui

import (
	"fmt"
	"strings"

	"stock-cli/internal/docs"
	"stock-cli/internal/model"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	var body string
	if m.view == viewLogin {
		body = m.viewLogin()
	} else {
		body = m.viewItems()
	}
	if modal := m.viewModal(); modal != "" {
		return overlay(modal, m.width, m.height)
	}
	return body
}

func (m appModel) viewLogin() string {
	w := modalWidth(m.width)
	bodyW := modalBodyWidth(m.width)
	label := lipgloss.NewStyle().Bold(true)

	lines := []string{
		label.Render("Username"),
		renderInputLine(bodyW, m.loginUser.View()),
		"",
		label.Render("Password"),
		renderInputLine(bodyW, m.loginPass.View()),
		"",
	}
	switch {
	case m.login.Submitting():
		lines = append(lines, styleMuted().Render("Signing in…"))
	case m.login.Notice() != "":
		lines = append(lines, styleError().Width(bodyW).Render(m.login.Notice()))
	default:
		lines = append(lines, "")
	}
	lines = append(lines, "", styleMuted().Render("tab: switch field   enter: log in   esc: quit"))

	box := renderModalBox(m.width, "Stock · Log in", strings.Join(lines, "\n"))
	box = lipgloss.NewStyle().Width(w + 2).Render(box)
	screen := lipgloss.JoinVertical(lipgloss.Center, box, m.viewMinibuffer())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, screen)
}

func (m appModel) viewItems() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorAccentFg).
		Background(colorAccent).
		Padding(0, 1).
		Width(m.width).
		Render("Stock · " + m.session.Username(m.ctx))

	bodyH := max(m.height-chromeLinesH, 6)
	var body string
	if m.lots.IsOpen() {
		left, right := splitWidths(m.width)
		leftPane := normalizePane(m.viewItemsPane(left), left, bodyH)
		rightPane := normalizePane(m.viewLotsPane(right), right, bodyH)
		gap := normalizePane(strings.Repeat(glyphVRule()+"\n", bodyH), splitGapW, bodyH)
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftPane, gap, rightPane)
	} else {
		body = normalizePane(m.viewItemsPane(m.width), m.width, bodyH)
	}

	return strings.Join([]string{header, body, m.viewFooter(), m.viewMinibuffer()}, "\n")
}

func (m appModel) viewItemsPane(width int) string {
	focused := m.pane == paneItems || !m.lots.IsOpen()
	title := paneTitle("Items", focused)

	search := m.search.View()
	if !m.searching && m.search.Value() == "" {
		search = styleMuted().Render("/ search by name")
	}

	l := m.items.List
	return strings.Join([]string{
		title,
		renderInputLine(width, search),
		m.viewList(l.Loading(), l.Empty(), "No items found.", m.itemTable),
		m.viewListStatus(l.Notice(), l.PageIndex(), l.PageCount(), l.CanPrevious(), l.CanNext()),
	}, "\n")
}

func (m appModel) viewLotsPane(width int) string {
	title := paneTitle("Lots of "+m.lots.ParentLabel(), m.pane == paneLots)
	l := m.lots.List
	return strings.Join([]string{
		lipgloss.NewStyle().MaxWidth(width).Render(title),
		"",
		m.viewList(l.Loading(), l.Empty(), "No lots found for this item.", m.lotTable),
		m.viewListStatus(l.Notice(), l.PageIndex(), l.PageCount(), l.CanPrevious(), l.CanNext()),
	}, "\n")
}

func paneTitle(s string, focused bool) string {
	st := lipgloss.NewStyle().Bold(true)
	if focused {
		st = st.Foreground(colorBorderFocus)
	} else {
		st = faintIfDark(st.Foreground(colorMuted))
	}
	return st.Render(s)
}

func (m appModel) viewList(loading, empty bool, emptyText string, t table.Model) string {
	switch {
	case empty && !loading:
		return styleMuted().Render(emptyText)
	case loading && len(t.Rows()) == 0:
		return styleMuted().Render("Loading…")
	}
	return t.View()
}

func (m appModel) viewListStatus(notice string, page, pages int, canPrev, canNext bool) string {
	if notice != "" {
		return styleError().Render(notice)
	}
	if pages <= 1 {
		return ""
	}
	prev := glyphPrev()
	if !canPrev {
		prev = styleMuted().Render(prev)
	}
	next := glyphNext()
	if !canNext {
		next = styleMuted().Render(next)
	}
	return fmt.Sprintf("%s page %d of %d %s", prev, page+1, pages, next)
}

func (m appModel) viewFooter() string {
	keys := "n: new  e: edit  d: delete  enter: lots  /: search  [ ]: page  r: reload  ?: help  q: quit"
	if m.pane == paneLots && m.lots.IsOpen() {
		keys = "n: new lot  e: edit  d: delete  tab: items  esc: close  [ ]: page  ?: help"
	}
	return styleMuted().Width(m.width).MaxHeight(1).Render(keys)
}

func (m appModel) viewMinibuffer() string {
	if m.minibufferText == "" {
		return ""
	}
	return lipgloss.NewStyle().Foreground(colorChromeFg).Render(m.minibufferText)
}

func (m appModel) viewModal() string {
	switch m.modal {
	case modalForm:
		if m.form.kind == model.KindLot {
			f := m.lots.Form
			return renderFormModal(m.width, m.form, formStatus{notice: f.Notice(), submitting: f.Submitting(), fieldError: f.FieldError})
		}
		f := m.items.Form
		return renderFormModal(m.width, m.form, formStatus{notice: f.Notice(), submitting: f.Submitting(), fieldError: f.FieldError})

	case modalConfirmDelete:
		title, body := "Delete item", ""
		if m.deleteKind == model.KindLot {
			title = "Delete lot"
			if l, ok := m.lots.Delete.Pending(); ok {
				body = fmt.Sprintf("Delete lot %q? This cannot be undone.", l.Number)
			}
		} else if it, ok := m.items.Delete.Pending(); ok {
			body = fmt.Sprintf("Delete %q and all of its lots? This cannot be undone.", it.Name)
		}
		return renderConfirmModal(m.width, title, body, "Delete", "Cancel", m.confirmFocus)

	case modalAlert:
		msg := m.items.Delete.Alert()
		if msg == "" {
			msg = m.lots.Delete.Alert()
		}
		return renderAlertModal(m.width, "Error", msg)

	case modalHelp:
		md, _ := docs.Get("keys")
		help := renderMarkdown(md, modalBodyWidth(m.width))
		help = lipgloss.NewStyle().MaxHeight(max(m.height-6, 8)).Render(strings.TrimSpace(help))
		return renderModalBox(m.width, "Keys", help+"\n\n"+styleMuted().Render("esc: close"))
	}
	return ""
}
