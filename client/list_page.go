package client

import (
	"context"
	"errors"
	"sync"

	"talentdesk/grid"
)

// Status is the list page's fetch state.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusFetching Status = "fetching"
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
)

// QuickFilter is a preset that replaces the active filters.
type QuickFilter struct {
	Label   string
	Filters map[string]any
}

// TaskQuickFilters are the presets above the task list.
var TaskQuickFilters = []QuickFilter{
	{Label: "Overdue", Filters: map[string]any{"overdue_only": true}},
	{Label: "Today", Filters: map[string]any{"due_today": true}},
	{Label: "High priority", Filters: map[string]any{"priority": "high"}},
	{Label: "Completed", Filters: map[string]any{"status": "completed"}},
}

// FindQuickFilter looks a preset up by label.
func FindQuickFilter(presets []QuickFilter, label string) (QuickFilter, bool) {
	for _, q := range presets {
		if q.Label == label {
			return q, true
		}
	}
	return QuickFilter{}, false
}

// PageState is the controls of an entity list page.
type PageState struct {
	Page          int // zero based
	PageSize      int
	Search        string
	SortBy        string
	SortOrder     grid.SortOrder
	ActiveFilters map[string]any
	Status        Status
	Err           error
}

// ListPage drives one entity list: every control change re-fetches the
// store. Search is not debounced; the store's generation check keeps the
// latest response.
type ListPage[T any] struct {
	store *Store[T]

	mu    sync.Mutex
	gen   uint64
	state PageState
}

func NewListPage[T any](store *Store[T], pageSize int) *ListPage[T] {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &ListPage[T]{
		store: store,
		state: PageState{PageSize: pageSize, SortOrder: grid.Asc, ActiveFilters: map[string]any{}, Status: StatusIdle},
	}
}

func (lp *ListPage[T]) Store() *Store[T] { return lp.store }

// State returns a copy of the page controls.
func (lp *ListPage[T]) State() PageState {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	st := lp.state
	st.ActiveFilters = copyFilters(lp.state.ActiveFilters)
	return st
}

func (lp *ListPage[T]) Refresh(ctx context.Context) error {
	return lp.change(ctx, func(*PageState) {})
}

func (lp *ListPage[T]) SetPage(ctx context.Context, page int) error {
	return lp.change(ctx, func(st *PageState) {
		if page < 0 {
			page = 0
		}
		st.Page = page
	})
}

// SetPageSize goes back to the first page.
func (lp *ListPage[T]) SetPageSize(ctx context.Context, size int) error {
	return lp.change(ctx, func(st *PageState) {
		if size > 0 {
			st.PageSize = size
		}
		st.Page = 0
	})
}

// SetSearch goes back to the first page.
func (lp *ListPage[T]) SetSearch(ctx context.Context, search string) error {
	return lp.change(ctx, func(st *PageState) {
		st.Search = search
		st.Page = 0
	})
}

// Sort applies a header click: the active column flips direction, any
// other column starts ascending.
func (lp *ListPage[T]) Sort(ctx context.Context, column string) error {
	return lp.change(ctx, func(st *PageState) {
		next := grid.NextSort(grid.State{SortBy: st.SortBy, SortOrder: st.SortOrder}, column)
		st.SortBy, st.SortOrder = next.SortBy, next.SortOrder
	})
}

// SetFilter sets or, with a nil value, clears one filter.
func (lp *ListPage[T]) SetFilter(ctx context.Context, key string, value any) error {
	return lp.change(ctx, func(st *PageState) {
		if value == nil {
			delete(st.ActiveFilters, key)
		} else {
			st.ActiveFilters[key] = value
		}
		st.Page = 0
	})
}

// ApplyQuickFilter replaces the active filters and goes back to the
// first page.
func (lp *ListPage[T]) ApplyQuickFilter(ctx context.Context, filters map[string]any) error {
	return lp.change(ctx, func(st *PageState) {
		st.ActiveFilters = copyFilters(filters)
		st.Page = 0
	})
}

func (lp *ListPage[T]) change(ctx context.Context, apply func(*PageState)) error {
	lp.mu.Lock()
	apply(&lp.state)
	lp.gen++
	gen := lp.gen
	lp.state.Status = StatusFetching
	p := Params{
		Skip:      grid.Offset(lp.state.Page, lp.state.PageSize),
		Limit:     lp.state.PageSize,
		Search:    lp.state.Search,
		SortBy:    lp.state.SortBy,
		SortOrder: string(lp.state.SortOrder),
		Filters:   copyFilters(lp.state.ActiveFilters),
	}
	lp.mu.Unlock()

	err := lp.store.Fetch(ctx, p)
	if errors.Is(err, ErrStale) {
		return err
	}

	lp.mu.Lock()
	defer lp.mu.Unlock()
	if gen != lp.gen {
		return ErrStale
	}
	if err != nil {
		lp.state.Status = StatusError
		lp.state.Err = err
		return err
	}
	lp.state.Status = StatusSuccess
	lp.state.Err = nil
	return nil
}

func copyFilters(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
