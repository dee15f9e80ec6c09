package console

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"stock-cli/internal/model"

	"github.com/shopspring/decimal"
)

func itemsN(n int) []model.Item {
	out := make([]model.Item, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Item{ID: int64(i), Name: fmt.Sprintf("item %d", i), Price: decimal.NewFromInt(int64(i))})
	}
	return out
}

func staticFetch(rows []model.Item, err error) func(context.Context, Scope) ([]model.Item, error) {
	return func(context.Context, Scope) ([]model.Item, error) { return rows, err }
}

func TestList_PaginatesNineRowsIntoFourFourOne(t *testing.T) {
	l := NewList(model.KindItem, staticFetch(itemsN(9), nil), nil)
	if !l.Apply(l.Load(context.Background(), Scope{})()) {
		t.Fatalf("expected load to apply")
	}

	if got := l.PageCount(); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	var sizes []int
	for {
		sizes = append(sizes, len(l.PageRows()))
		if !l.NextPage() {
			break
		}
	}
	if fmt.Sprint(sizes) != "[4 4 1]" {
		t.Fatalf("unexpected page sizes %v", sizes)
	}

	// At the last page next is a no-op and disabled.
	if l.CanNext() || l.NextPage() || l.PageIndex() != 2 {
		t.Fatalf("expected next to be a no-op at the last page (index=%d)", l.PageIndex())
	}
	for l.PreviousPage() {
	}
	if l.PageIndex() != 0 || l.CanPrevious() {
		t.Fatalf("expected previous to stop at page 0, got %d", l.PageIndex())
	}
	if l.PreviousPage() {
		t.Fatalf("expected previous at page 0 to be a no-op")
	}
}

func TestList_EmptyHasNoNavigation(t *testing.T) {
	l := NewList(model.KindItem, staticFetch(nil, nil), nil)
	if l.Empty() {
		t.Fatalf("list that never loaded should not report empty")
	}
	l.Apply(l.Load(context.Background(), Scope{})())
	if !l.Empty() || l.PageCount() != 0 || l.CanNext() || l.CanPrevious() {
		t.Fatalf("unexpected empty list state: pages=%d", l.PageCount())
	}
	if l.PageRows() != nil {
		t.Fatalf("expected no page rows")
	}
}

func TestList_LoadResetsPageWindow(t *testing.T) {
	l := NewList(model.KindItem, staticFetch(itemsN(9), nil), nil)
	l.Apply(l.Load(context.Background(), Scope{})())
	l.NextPage()
	l.NextPage()

	l.Apply(l.Reload(context.Background())())
	if l.PageIndex() != 0 {
		t.Fatalf("expected reload to reset to page 0, got %d", l.PageIndex())
	}
}

func TestList_LastIssuedLoadWins(t *testing.T) {
	rows := map[string][]model.Item{
		"a": itemsN(1),
		"b": itemsN(2),
	}
	l := NewList(model.KindItem, func(_ context.Context, s Scope) ([]model.Item, error) {
		return rows[s.Filter], nil
	}, nil)

	first := l.Load(context.Background(), Scope{Filter: "a"})
	second := l.Load(context.Background(), Scope{Filter: "b"})

	// The later call answers first, then the earlier one straggles in.
	if !l.Apply(second()) {
		t.Fatalf("expected latest load to apply")
	}
	if l.Apply(first()) {
		t.Fatalf("stale load must not apply")
	}
	if l.Len() != 2 {
		t.Fatalf("expected rows of the later call, got %d", l.Len())
	}
	if l.Loading() {
		t.Fatalf("expected loading to end with the latest result")
	}
}

func TestList_FailedLoadKeepsRows(t *testing.T) {
	fail := false
	l := NewList(model.KindItem, func(context.Context, Scope) ([]model.Item, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return itemsN(5), nil
	}, nil)
	l.Apply(l.Load(context.Background(), Scope{})())
	l.NextPage()

	fail = true
	if !l.Apply(l.Reload(context.Background())()) {
		t.Fatalf("failed load should still be applied as the latest result")
	}
	if l.Len() != 5 || l.PageIndex() != 1 {
		t.Fatalf("expected previous rows and page kept, got len=%d page=%d", l.Len(), l.PageIndex())
	}
	if l.Err() == nil || l.Notice() == "" {
		t.Fatalf("expected error notice")
	}

	fail = false
	l.Apply(l.Reload(context.Background())())
	if l.Err() != nil || l.Notice() != "" {
		t.Fatalf("expected notice cleared after a good load")
	}
}

func TestList_DetachedOrResetDropsInFlight(t *testing.T) {
	l := NewList(model.KindItem, staticFetch(itemsN(3), nil), nil)
	pending := l.Load(context.Background(), Scope{})
	l.Detach()
	if l.Apply(pending()) {
		t.Fatalf("detached list must ignore results")
	}

	l.Reset()
	pending = l.Load(context.Background(), Scope{})
	l.Reset()
	if l.Apply(pending()) {
		t.Fatalf("result from before a reset must be ignored")
	}
	if l.Len() != 0 {
		t.Fatalf("expected no rows, got %d", l.Len())
	}
}
