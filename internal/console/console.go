// Package console holds the view-state controllers behind the inventory UI:
// a paginated list, an add/edit overlay form, a delete confirmation and a
// row-detail drawer, all generic over the entity type. They know nothing about
// rendering. Network work is handed back to the caller as closures so the UI
// can run them off its event loop and feed the results back in.
package console

import (
	"context"
	"sync/atomic"

	"stock-cli/internal/model"
)

// PageSize is the page window size of every list.
const PageSize = 4

// Entity is a row the controllers can manage.
type Entity interface {
	EntityID() int64
	Label() string
}

// Scope narrows a list: a name filter for items, a parent id for lots.
type Scope struct {
	Filter   string
	ParentID int64
}

// Op is what a completed overlay or delete did.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpCancel Op = "cancel"
)

// Changed is emitted when a form closes or a delete succeeds. The owner of the
// list for Kind reloads it in response.
type Changed struct {
	Kind  model.Kind
	Op    Op
	Scope Scope
}

// Endpoints binds a resource's controllers to its remote operations.
type Endpoints[T Entity, D any] struct {
	Fetch  func(ctx context.Context, scope Scope) ([]T, error)
	Create func(ctx context.Context, scope Scope, draft D) error
	Update func(ctx context.Context, target T, draft D) error
	Delete func(ctx context.Context, target T) error

	// Empty is the draft of a new entity; Seed copies an entity into a draft.
	Empty func(scope Scope) D
	Seed  func(target T) D
	// Validate runs before any network call. Create and Update may assume it passed.
	Validate func(scope Scope, draft D) error
}

var instances atomic.Uint64

func nextInstance() uint64 { return instances.Add(1) }
