package console

import (
	"context"
	"errors"

	"stock-cli/internal/api"
	"stock-cli/internal/logger"
	"stock-cli/internal/model"
)

// Mode is the overlay target of a form.
type Mode int

const (
	ModeClosed Mode = iota
	ModeAdd
	ModeEdit
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeEdit:
		return "edit"
	default:
		return "closed"
	}
}

var (
	ErrFormClosed = errors.New("form is not open")
	ErrFormOpen   = errors.New("another form is already open")
	ErrSubmitting = errors.New("already submitting")
)

// SubmitResult carries a finished create/update back to its form.
type SubmitResult struct {
	Kind  model.Kind
	Gen   uint64
	Op    Op
	Scope Scope
	Err   error
}

// Form is the add/edit overlay of one resource. It owns only the draft.
type Form[T Entity, D any] struct {
	kind model.Kind
	ep   Endpoints[T, D]
	log  logger.Logger

	mode       Mode
	gen        uint64
	scope      Scope
	target     T
	draft      D
	submitting bool
	notice     string
	fieldErrs  map[string]string
}

func NewForm[T Entity, D any](kind model.Kind, ep Endpoints[T, D], log logger.Logger) *Form[T, D] {
	if log == nil {
		log = logger.Discard()
	}
	return &Form[T, D]{kind: kind, ep: ep, log: log}
}

func (f *Form[T, D]) open(mode Mode, scope Scope, target T, draft D) error {
	if f.mode != ModeClosed {
		return ErrFormOpen
	}
	f.gen++
	f.mode = mode
	f.scope = scope
	f.target = target
	f.draft = draft
	f.submitting = false
	f.notice = ""
	f.fieldErrs = nil
	return nil
}

// OpenAdd opens the overlay with an empty draft.
func (f *Form[T, D]) OpenAdd(scope Scope) error {
	var zero T
	return f.open(ModeAdd, scope, zero, f.ep.Empty(scope))
}

// OpenEdit opens the overlay with a draft seeded from target.
func (f *Form[T, D]) OpenEdit(scope Scope, target T) error {
	return f.open(ModeEdit, scope, target, f.ep.Seed(target))
}

func (f *Form[T, D]) Mode() Mode        { return f.mode }
func (f *Form[T, D]) IsOpen() bool      { return f.mode != ModeClosed }
func (f *Form[T, D]) Submitting() bool  { return f.submitting }
func (f *Form[T, D]) Draft() D          { return f.draft }
func (f *Form[T, D]) Scope() Scope      { return f.scope }
func (f *Form[T, D]) Notice() string    { return f.notice }
func (f *Form[T, D]) FieldError(name string) string {
	return f.fieldErrs[name]
}

// SetDraft replaces the draft while the form is open and idle.
func (f *Form[T, D]) SetDraft(d D) bool {
	if f.mode == ModeClosed || f.submitting {
		return false
	}
	f.draft = d
	return true
}

// Submit validates the draft and, when it passes, returns the call to run.
// A validation failure keeps the draft and sets the notice; nothing is sent.
func (f *Form[T, D]) Submit(ctx context.Context) (func() SubmitResult, error) {
	if f.mode == ModeClosed {
		return nil, ErrFormClosed
	}
	if f.submitting {
		return nil, ErrSubmitting
	}
	if f.ep.Validate != nil {
		if err := f.ep.Validate(f.scope, f.draft); err != nil {
			f.fieldErrs = nil
			var ve *model.ValidationError
			if errors.As(err, &ve) {
				f.fieldErrs = ve.Fields
			}
			f.notice = "Fill in every field correctly before saving."
			return nil, err
		}
	}
	f.fieldErrs = nil
	f.notice = ""
	f.submitting = true

	res := SubmitResult{Kind: f.kind, Gen: f.gen, Scope: f.scope}
	draft, target, scope, ep := f.draft, f.target, f.scope, f.ep
	if f.mode == ModeEdit {
		res.Op = OpUpdate
		return func() SubmitResult {
			res.Err = ep.Update(ctx, target, draft)
			return res
		}, nil
	}
	res.Op = OpCreate
	return func() SubmitResult {
		res.Err = ep.Create(ctx, scope, draft)
		return res
	}, nil
}

// Apply folds a submit result in. On success the overlay closes and the
// returned Changed must be used to reload the owning list. A result for an
// overlay that was already closed leaves the form alone, but a successful one
// still reports its change: the server has it and the list must catch up.
func (f *Form[T, D]) Apply(r SubmitResult) (Changed, bool) {
	if f.mode == ModeClosed || r.Gen != f.gen {
		if r.Err != nil {
			f.log.Debug("dropped failed submit for closed form", "kind", string(r.Kind), "op", string(r.Op))
			return Changed{}, false
		}
		f.log.Info("saved after form closed", "kind", string(r.Kind), "op", string(r.Op))
		return Changed{Kind: r.Kind, Op: r.Op, Scope: r.Scope}, true
	}
	f.submitting = false
	if r.Err != nil {
		f.notice = "Could not save. " + api.Describe(r.Err)
		f.log.Error("form submit failed", "kind", string(f.kind), "op", string(r.Op), "error", r.Err.Error())
		return Changed{}, false
	}
	f.log.Info("form saved", "kind", string(f.kind), "op", string(r.Op))
	f.discard()
	return Changed{Kind: f.kind, Op: r.Op, Scope: r.Scope}, true
}

// Cancel discards the draft. The returned Changed still asks the owner to
// reload, so closing any overlay refreshes its list.
func (f *Form[T, D]) Cancel() (Changed, bool) {
	if f.mode == ModeClosed {
		return Changed{}, false
	}
	scope := f.scope
	f.discard()
	return Changed{Kind: f.kind, Op: OpCancel, Scope: scope}, true
}

func (f *Form[T, D]) discard() {
	var zeroT T
	var zeroD D
	f.gen++
	f.mode = ModeClosed
	f.target = zeroT
	f.draft = zeroD
	f.submitting = false
	f.notice = ""
	f.fieldErrs = nil
}
