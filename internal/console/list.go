package console

import (
	"context"

	"stock-cli/internal/api"
	"stock-cli/internal/logger"
	"stock-cli/internal/model"
)

// LoadResult carries a finished fetch back to the list that issued it.
type LoadResult[T Entity] struct {
	Kind     model.Kind
	Instance uint64
	Seq      uint64
	Scope    Scope
	Rows     []T
	Err      error
}

// List owns the rows of one resource and the page window over them.
type List[T Entity] struct {
	kind  model.Kind
	fetch func(ctx context.Context, scope Scope) ([]T, error)
	log   logger.Logger

	instance uint64
	attached bool
	issued   uint64
	applied  uint64

	scope   Scope
	rows    []T
	page    int
	loaded  bool
	loading bool
	err     error
}

func NewList[T Entity](kind model.Kind, fetch func(ctx context.Context, scope Scope) ([]T, error), log logger.Logger) *List[T] {
	if log == nil {
		log = logger.Discard()
	}
	return &List[T]{kind: kind, fetch: fetch, log: log, instance: nextInstance(), attached: true}
}

// Load starts a fetch for scope. Each call supersedes the previous ones: when
// results arrive out of order only the most recently issued one is kept.
func (l *List[T]) Load(ctx context.Context, scope Scope) func() LoadResult[T] {
	l.issued++
	l.scope = scope
	l.loading = true

	fetch := l.fetch
	res := LoadResult[T]{Kind: l.kind, Instance: l.instance, Seq: l.issued, Scope: scope}
	return func() LoadResult[T] {
		rows, err := fetch(ctx, scope)
		res.Rows, res.Err = rows, err
		return res
	}
}

// Reload fetches again with the current scope.
func (l *List[T]) Reload(ctx context.Context) func() LoadResult[T] {
	return l.Load(ctx, l.scope)
}

// Apply folds a fetch result in and reports whether it was used. Results from a
// detached or reset list, and results older than one already applied, are dropped.
// A failed fetch keeps the rows on screen.
func (l *List[T]) Apply(r LoadResult[T]) bool {
	if !l.attached || r.Instance != l.instance {
		l.log.Debug("dropped load for inactive list", "kind", string(r.Kind), "seq", r.Seq)
		return false
	}
	if r.Seq <= l.applied {
		l.log.Debug("dropped stale load", "kind", string(r.Kind), "seq", r.Seq, "applied", l.applied)
		return false
	}
	l.applied = r.Seq
	if r.Seq == l.issued {
		l.loading = false
	}
	if r.Err != nil {
		l.err = r.Err
		l.log.Error("list load failed",
			"kind", string(l.kind),
			"filter", r.Scope.Filter,
			"parent_id", r.Scope.ParentID,
			"error", r.Err.Error(),
		)
		return true
	}
	l.err = nil
	l.rows = r.Rows
	l.loaded = true
	l.page = 0
	return true
}

// Reset empties the list and gives it a new identity, so results issued before
// the reset are ignored.
func (l *List[T]) Reset() {
	l.instance = nextInstance()
	l.attached = true
	l.issued, l.applied = 0, 0
	l.scope = Scope{}
	l.rows = nil
	l.page = 0
	l.loaded, l.loading = false, false
	l.err = nil
}

// Detach stops the list from accepting results until the next Reset.
func (l *List[T]) Detach() {
	l.attached = false
	l.loading = false
}

func (l *List[T]) Kind() model.Kind { return l.kind }
func (l *List[T]) Scope() Scope     { return l.scope }
func (l *List[T]) Rows() []T        { return l.rows }
func (l *List[T]) Len() int         { return len(l.rows) }
func (l *List[T]) Loading() bool    { return l.loading }
func (l *List[T]) Err() error       { return l.err }

// Empty reports whether a successful load returned no rows.
func (l *List[T]) Empty() bool { return l.loaded && len(l.rows) == 0 }

// Notice is the user-facing text for the last failed load, or "".
func (l *List[T]) Notice() string {
	if l.err == nil {
		return ""
	}
	return "Could not load the list. " + api.Describe(l.err)
}

func (l *List[T]) PageIndex() int { return l.page }

func (l *List[T]) PageCount() int {
	return (len(l.rows) + PageSize - 1) / PageSize
}

func (l *List[T]) lastPage() int {
	return max(l.PageCount()-1, 0)
}

func (l *List[T]) CanPrevious() bool { return l.page > 0 }
func (l *List[T]) CanNext() bool     { return l.page < l.lastPage() }

func (l *List[T]) NextPage() bool {
	if !l.CanNext() {
		return false
	}
	l.page++
	return true
}

func (l *List[T]) PreviousPage() bool {
	if !l.CanPrevious() {
		return false
	}
	l.page--
	return true
}

// PageRows is the slice of rows in the current window.
func (l *List[T]) PageRows() []T {
	start := l.page * PageSize
	if start >= len(l.rows) {
		return nil
	}
	end := min(start+PageSize, len(l.rows))
	return l.rows[start:end]
}

// PageRow returns row i of the current window.
func (l *List[T]) PageRow(i int) (T, bool) {
	rows := l.PageRows()
	if i < 0 || i >= len(rows) {
		var zero T
		return zero, false
	}
	return rows[i], true
}
