// Package repository holds the GORM data access for every entity. Callers
// depend on the small interfaces; tests swap in fakes.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("conflict")
)

// Op is a comparison used by a Filter.
type Op string

const (
	Eq      Op = "="
	Ne      Op = "<>"
	Lt      Op = "<"
	Lte     Op = "<="
	Gt      Op = ">"
	Gte     Op = ">="
	In      Op = "IN"
	NotIn   Op = "NOT IN"
	IsNull  Op = "IS NULL"
	NotNull Op = "IS NOT NULL"
)

// Filter is one column condition. Column names come from code, never
// from request input.
type Filter struct {
	Column string
	Op     Op
	Value  any
}

// ListQuery is the skip/limit/search/sort/filter contract shared by every
// list endpoint.
type ListQuery struct {
	Skip      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
	Filters   []Filter
}

// Where appends a filter.
func (q *ListQuery) Where(column string, op Op, value any) {
	q.Filters = append(q.Filters, Filter{Column: column, Op: op, Value: value})
}

// Filter returns the first filter on column, if any.
func (q ListQuery) Filter(column string) (Filter, bool) {
	for _, f := range q.Filters {
		if f.Column == column {
			return f, true
		}
	}
	return Filter{}, false
}

// Store is the CRUD surface of one entity keyed by public id.
type Store[T any] interface {
	List(ctx context.Context, q ListQuery) ([]T, int64, error)
	Get(ctx context.Context, publicID string) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, publicID string) error
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to fetch %s: %w", what, err)
}

func applyFilters(tx *gorm.DB, filters []Filter) *gorm.DB {
	for _, f := range filters {
		switch f.Op {
		case IsNull, NotNull:
			tx = tx.Where(fmt.Sprintf("%s %s", f.Column, f.Op))
		case In, NotIn:
			tx = tx.Where(fmt.Sprintf("%s %s ?", f.Column, f.Op), f.Value)
		case "":
			tx = tx.Where(fmt.Sprintf("%s = ?", f.Column), f.Value)
		default:
			tx = tx.Where(fmt.Sprintf("%s %s ?", f.Column, f.Op), f.Value)
		}
	}
	return tx
}
