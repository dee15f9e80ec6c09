package tui

import (
	"strings"

	"stock-cli/internal/console"
	"stock-cli/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type formField struct {
	key   string
	label string
	date  bool
	input textinput.Model
}

// formState is the overlay form's widgets. The draft it edits lives in the
// console controller; every keystroke is copied back with syncDraft.
type formState struct {
	kind   model.Kind
	title  string
	fields []formField
	focus  int
}

func newFormField(key, label, value string) formField {
	in := newTextInput(label)
	in.SetValue(value)
	return formField{key: key, label: label, input: in}
}

func newItemForm(mode console.Mode, d model.ItemDraft) formState {
	title := "Add item"
	if mode == console.ModeEdit {
		title = "Edit item"
	}
	f := formState{
		kind:  model.KindItem,
		title: title,
		fields: []formField{
			newFormField("name", "Name", d.Name),
			newFormField("price", "Price", d.Price),
		},
	}
	f.fields[1].input.Placeholder = "0.00"
	f.focusField(0)
	return f
}

func newLotForm(mode console.Mode, itemName string, d model.LotDraft) formState {
	title := "Add lot to " + itemName
	if mode == console.ModeEdit {
		title = "Edit lot"
	}
	f := formState{
		kind:  model.KindLot,
		title: title,
		fields: []formField{
			newFormField("number", "Number", d.Number),
			newFormField("quantity", "Quantity", d.Quantity),
			newFormField("expiry_date", "Expiry", d.Expiry),
		},
	}
	f.fields[2].date = true
	f.fields[2].input.Placeholder = "DD/MM/YYYY"
	f.fields[2].input.CharLimit = 10
	f.focusField(0)
	return f
}

func (f *formState) focusField(i int) {
	if len(f.fields) == 0 {
		return
	}
	f.focus = (i + len(f.fields)) % len(f.fields)
	for j := range f.fields {
		if j == f.focus {
			f.fields[j].input.Focus()
		} else {
			f.fields[j].input.Blur()
		}
	}
}

func (f *formState) move(delta int) { f.focusField(f.focus + delta) }

func (f formState) onLast() bool { return f.focus == len(f.fields)-1 }

func (f formState) onDate() bool {
	return f.focus < len(f.fields) && f.fields[f.focus].date
}

func (f *formState) bumpDate(unit dateUnit, delta int) {
	if !f.onDate() {
		return
	}
	in := &f.fields[f.focus].input
	in.SetValue(bumpDisplayDate(in.Value(), unit, delta))
	in.CursorEnd()
}

func (f *formState) update(msg tea.Msg) tea.Cmd {
	if f.focus >= len(f.fields) {
		return nil
	}
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f formState) value(key string) string {
	for _, fld := range f.fields {
		if fld.key == key {
			return fld.input.Value()
		}
	}
	return ""
}

func (f formState) itemDraft() model.ItemDraft {
	return model.ItemDraft{Name: f.value("name"), Price: f.value("price")}
}

func (f formState) lotDraft() model.LotDraft {
	return model.LotDraft{
		Number:   f.value("number"),
		Quantity: f.value("quantity"),
		Expiry:   f.value("expiry_date"),
	}
}

type formStatus struct {
	notice     string
	submitting bool
	fieldError func(string) string
}

func renderFormModal(width int, f formState, st formStatus) string {
	bodyW := modalBodyWidth(width)
	labelStyle := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	for i, fld := range f.fields {
		if i > 0 {
			b.WriteString("\n")
		}
		label := fld.label
		if fld.date {
			label += styleMuted().Render("  ↑/↓ day  pgup/pgdn month")
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(renderInputLine(bodyW, fld.input.View()))
		b.WriteString("\n")
		if msg := st.fieldError(fld.key); msg != "" {
			b.WriteString(styleError().Render(msg))
		}
	}

	b.WriteString("\n")
	switch {
	case st.submitting:
		b.WriteString(styleMuted().Render("Saving…"))
	case st.notice != "":
		b.WriteString(styleError().Width(bodyW).Render(st.notice))
	}
	b.WriteString("\n\n")
	b.WriteString(styleMuted().Width(bodyW).Render("tab: next   enter/ctrl+s: save   esc: cancel"))
	return renderModalBox(width, f.title, b.String())
}
