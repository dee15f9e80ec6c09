package console

import (
	"context"

	"stock-cli/internal/logger"
	"stock-cli/internal/model"
)

// Resource is the list, form and delete confirmation of one entity type.
type Resource[T Entity, D any] struct {
	Kind   model.Kind
	List   *List[T]
	Form   *Form[T, D]
	Delete *Deleter[T]
}

func NewResource[T Entity, D any](kind model.Kind, ep Endpoints[T, D], log logger.Logger) *Resource[T, D] {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("kind", string(kind))
	return &Resource[T, D]{
		Kind:   kind,
		List:   NewList(kind, ep.Fetch, log),
		Form:   NewForm(kind, ep, log),
		Delete: NewDeleter(kind, ep.Delete, log),
	}
}

// Refresh reloads the list when ch concerns it. Changes to another kind, or to
// another parent than the one on screen, are ignored.
func (r *Resource[T, D]) Refresh(ctx context.Context, ch Changed) (func() LoadResult[T], bool) {
	if ch.Kind != r.Kind {
		return nil, false
	}
	if ch.Scope.ParentID != r.List.Scope().ParentID {
		return nil, false
	}
	return r.List.Reload(ctx), true
}

// Overlay reports whether a form or a delete confirmation is up.
func (r *Resource[T, D]) Overlay() bool {
	_, pending := r.Delete.Pending()
	return r.Form.IsOpen() || pending || r.Delete.Alert() != ""
}

// Drawer hosts a Resource scoped to one parent row.
type Drawer[T Entity, D any] struct {
	*Resource[T, D]

	open        bool
	parentID    int64
	parentLabel string
}

func NewDrawer[T Entity, D any](kind model.Kind, ep Endpoints[T, D], log logger.Logger) *Drawer[T, D] {
	d := &Drawer[T, D]{Resource: NewResource(kind, ep, log)}
	d.List.Detach()
	return d
}

// Open shows the rows of parentID, starting from page 0, and returns their load.
// Opening for a new parent while open switches the drawer over; anything still
// in flight for the previous parent is ignored.
func (d *Drawer[T, D]) Open(ctx context.Context, parentID int64, parentLabel string) func() LoadResult[T] {
	d.reset()
	d.open = true
	d.parentID = parentID
	d.parentLabel = parentLabel
	return d.List.Load(ctx, Scope{ParentID: parentID})
}

// Close hides the drawer. The parent list is not touched.
func (d *Drawer[T, D]) Close() {
	if !d.open {
		return
	}
	d.reset()
	d.List.Detach()
	d.open = false
	d.parentID = 0
	d.parentLabel = ""
}

func (d *Drawer[T, D]) reset() {
	d.List.Reset()
	d.Form.discard()
	d.Delete.Abandon()
}

func (d *Drawer[T, D]) IsOpen() bool        { return d.open }
func (d *Drawer[T, D]) ParentID() int64     { return d.parentID }
func (d *Drawer[T, D]) ParentLabel() string { return d.parentLabel }

// Relabel follows a rename of the parent row. Rows of other parents are ignored.
func (d *Drawer[T, D]) Relabel(parentID int64, label string) bool {
	if !d.open || parentID != d.parentID || label == d.parentLabel {
		return false
	}
	d.parentLabel = label
	return true
}

// Scope is the scope new rows are created in.
func (d *Drawer[T, D]) Scope() Scope { return Scope{ParentID: d.parentID} }

// Refresh is Resource.Refresh for an open drawer.
func (d *Drawer[T, D]) Refresh(ctx context.Context, ch Changed) (func() LoadResult[T], bool) {
	if !d.open {
		return nil, false
	}
	return d.Resource.Refresh(ctx, ch)
}
