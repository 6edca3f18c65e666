// Package grid is a fully controlled data-table view model. It renders
// one page of rows handed to it and never fetches or stores state.
package grid

import (
	"fmt"
	"time"
)

// SkeletonRows is the number of placeholder rows shown while loading.
const SkeletonRows = 5

// DefaultEmptyMessage is shown when a loaded page has no rows.
const DefaultEmptyMessage = "No records found"

// SortOrder is asc or desc.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder accepts asc/desc and falls back to asc.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == Desc {
		return Desc
	}
	return Asc
}

// Column describes one table column. Value extracts the raw cell value;
// Format, when set, turns it into the displayed text.
type Column[T any] struct {
	ID       string
	Label    string
	Sortable bool
	Value    func(row T) any
	Format   func(value any, row T) string
}

// State is the caller-owned table state.
type State struct {
	Page        int // zero based
	RowsPerPage int
	SortBy      string
	SortOrder   SortOrder
	Loading     bool
}

// NextSort returns the state after clicking column id: the active column
// flips direction, any other column starts ascending.
func NextSort(st State, id string) State {
	if st.SortBy == id {
		if st.SortOrder == Asc {
			st.SortOrder = Desc
		} else {
			st.SortOrder = Asc
		}
		return st
	}
	st.SortBy = id
	st.SortOrder = Asc
	return st
}

// BodyState says which of the three body renderings a view holds.
type BodyState string

const (
	BodyLoading   BodyState = "loading"
	BodyEmpty     BodyState = "empty"
	BodyPopulated BodyState = "populated"
)

// HeaderCell is one column header.
type HeaderCell struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Sortable  bool      `json:"sortable"`
	Active    bool      `json:"active"`
	Direction SortOrder `json:"direction,omitempty"`
}

// Cell is one body cell.
type Cell struct {
	Text     string `json:"text"`
	ColSpan  int    `json:"col_span,omitempty"`
	Skeleton bool   `json:"skeleton,omitempty"`
}

// Row is one body row. Key is empty for skeleton and empty-state rows.
type Row struct {
	Key   string `json:"key,omitempty"`
	Cells []Cell `json:"cells"`
}

// Pagination mirrors the page/rowsPerPage contract.
type Pagination struct {
	Page        int   `json:"page"`
	RowsPerPage int   `json:"rows_per_page"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
}

// View is a rendered table.
type View struct {
	StickyHeader bool         `json:"sticky_header"`
	Header       []HeaderCell `json:"header"`
	State        BodyState    `json:"state"`
	Rows         []Row        `json:"rows"`
	Pagination   Pagination   `json:"pagination"`
}

// Table renders rows of T. The callbacks are optional.
type Table[T any] struct {
	Columns      []Column[T]
	EmptyMessage string
	RowKey       func(row T) string

	OnSort     func(columnID string)
	OnRowClick func(row T)
}

// Render builds the view for one page. Loading wins over rows, and an
// empty loaded page renders a single row spanning every column.
func (t *Table[T]) Render(rows []T, total int64, st State) View {
	v := View{
		StickyHeader: true,
		Header:       t.header(st),
		Pagination: Pagination{
			Page:        st.Page,
			RowsPerPage: st.RowsPerPage,
			Total:       total,
			TotalPages:  TotalPages(total, st.RowsPerPage),
		},
	}

	switch {
	case st.Loading:
		v.State = BodyLoading
		v.Rows = make([]Row, 0, SkeletonRows)
		for i := 0; i < SkeletonRows; i++ {
			cells := make([]Cell, len(t.Columns))
			for j := range cells {
				cells[j] = Cell{Skeleton: true}
			}
			v.Rows = append(v.Rows, Row{Cells: cells})
		}
	case len(rows) == 0:
		v.State = BodyEmpty
		msg := t.EmptyMessage
		if msg == "" {
			msg = DefaultEmptyMessage
		}
		v.Rows = []Row{{Cells: []Cell{{Text: msg, ColSpan: len(t.Columns)}}}}
	default:
		v.State = BodyPopulated
		v.Rows = make([]Row, 0, len(rows))
		for _, row := range rows {
			r := Row{Cells: make([]Cell, 0, len(t.Columns))}
			if t.RowKey != nil {
				r.Key = t.RowKey(row)
			}
			for _, col := range t.Columns {
				r.Cells = append(r.Cells, Cell{Text: cellText(col, row)})
			}
			v.Rows = append(v.Rows, r)
		}
	}
	return v
}

func (t *Table[T]) header(st State) []HeaderCell {
	out := make([]HeaderCell, 0, len(t.Columns))
	for _, col := range t.Columns {
		h := HeaderCell{ID: col.ID, Label: col.Label, Sortable: col.Sortable}
		if col.Sortable && st.SortBy == col.ID {
			h.Active = true
			h.Direction = st.SortOrder
			if h.Direction == "" {
				h.Direction = Asc
			}
		}
		out = append(out, h)
	}
	return out
}

// ClickHeader reports a click on a sortable column to OnSort. Clicks on
// other columns are ignored. It returns whether the click was reported.
func (t *Table[T]) ClickHeader(columnID string) bool {
	for _, col := range t.Columns {
		if col.ID != columnID {
			continue
		}
		if !col.Sortable || t.OnSort == nil {
			return false
		}
		t.OnSort(columnID)
		return true
	}
	return false
}

// ClickRow reports a click on rows[i] to OnRowClick, if any.
func (t *Table[T]) ClickRow(rows []T, i int) bool {
	if t.OnRowClick == nil || i < 0 || i >= len(rows) {
		return false
	}
	t.OnRowClick(rows[i])
	return true
}

// Sortable returns the ids of the sortable columns.
func (t *Table[T]) Sortable() map[string]bool {
	out := make(map[string]bool)
	for _, col := range t.Columns {
		if col.Sortable {
			out[col.ID] = true
		}
	}
	return out
}

func cellText[T any](col Column[T], row T) string {
	var value any
	if col.Value != nil {
		value = col.Value(row)
	}
	if col.Format != nil {
		return col.Format(value, row)
	}
	return rawText(value)
}

func rawText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(time.RFC3339)
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
