package console

import (
	"context"

	"stock-cli/internal/api"
	"stock-cli/internal/logger"
	"stock-cli/internal/model"
)

// DeleteResult carries a finished delete back to its Deleter.
type DeleteResult struct {
	Kind  model.Kind
	Gen   uint64
	ID    int64
	Scope Scope
	Err   error
}

// Deleter asks for confirmation before a row is deleted. Nothing is sent until
// Confirm.
type Deleter[T Entity] struct {
	kind model.Kind
	del  func(ctx context.Context, target T) error
	log  logger.Logger

	gen     uint64
	pending bool
	busy    bool
	scope   Scope
	target  T
	alert   string
}

func NewDeleter[T Entity](kind model.Kind, del func(ctx context.Context, target T) error, log logger.Logger) *Deleter[T] {
	if log == nil {
		log = logger.Discard()
	}
	return &Deleter[T]{kind: kind, del: del, log: log}
}

// Request asks to delete target. It returns false while another delete is
// pending or running.
func (d *Deleter[T]) Request(scope Scope, target T) bool {
	if d.pending || d.busy {
		return false
	}
	d.gen++
	d.pending = true
	d.scope = scope
	d.target = target
	return true
}

// Pending returns the row awaiting confirmation.
func (d *Deleter[T]) Pending() (T, bool) {
	return d.target, d.pending
}

// Decline drops the pending request. No call is made.
func (d *Deleter[T]) Decline() {
	if !d.pending {
		return
	}
	var zero T
	d.gen++
	d.pending = false
	d.target = zero
}

// Confirm returns the delete call for the pending row.
func (d *Deleter[T]) Confirm(ctx context.Context) (func() DeleteResult, bool) {
	if !d.pending || d.busy {
		return nil, false
	}
	d.pending = false
	d.busy = true
	target, del := d.target, d.del
	res := DeleteResult{Kind: d.kind, Gen: d.gen, ID: target.EntityID(), Scope: d.scope}
	return func() DeleteResult {
		res.Err = del(ctx, target)
		return res
	}, true
}

// Apply folds a delete result in. Success yields the Changed that reloads the
// owning list; failure sets an alert that must be dismissed.
func (d *Deleter[T]) Apply(r DeleteResult) (Changed, bool) {
	if !d.busy || r.Gen != d.gen {
		return Changed{}, false
	}
	var zero T
	d.busy = false
	d.target = zero
	if r.Err != nil {
		d.alert = "Could not delete. " + api.Describe(r.Err)
		d.log.Error("delete failed", "kind", string(r.Kind), "id", r.ID, "error", r.Err.Error())
		return Changed{}, false
	}
	d.log.Info("deleted", "kind", string(r.Kind), "id", r.ID)
	return Changed{Kind: d.kind, Op: OpDelete, Scope: r.Scope}, true
}

// Alert is the blocking failure message of the last delete, or "".
func (d *Deleter[T]) Alert() string { return d.alert }
func (d *Deleter[T]) DismissAlert() { d.alert = "" }

// Abandon forgets any pending or running delete; a late result is ignored.
func (d *Deleter[T]) Abandon() {
	var zero T
	d.gen++
	d.pending = false
	d.busy = false
	d.target = zero
	d.alert = ""
}
