package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreConfig describes how one entity is searched and sorted.
type StoreConfig struct {
	// Name is used in error messages ("company", "contact").
	Name string
	// SearchColumns are matched case-insensitively against ListQuery.Search.
	SearchColumns []string
	// Sortable maps an API sort key to a column.
	Sortable map[string]string
	// DefaultSort is used when the requested sort key is unknown.
	DefaultSort string
	Preloads    []string
}

// GormStore is the GORM implementation of Store.
type GormStore[T any] struct {
	db  *gorm.DB
	cfg StoreConfig
}

func NewGormStore[T any](db *gorm.DB, cfg StoreConfig) *GormStore[T] {
	if cfg.DefaultSort == "" {
		cfg.DefaultSort = "created_at"
	}
	return &GormStore[T]{db: db, cfg: cfg}
}

func (s *GormStore[T]) List(ctx context.Context, q ListQuery) ([]T, int64, error) {
	query := s.db.WithContext(ctx).Model(new(T))
	query = applyFilters(query, q.Filters)
	query = applySearch(query, q.Search, s.cfg.SearchColumns)
	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s records: %w", s.cfg.Name, err)
	}

	find := base.Order(s.order(q))
	if q.Skip > 0 {
		find = find.Offset(q.Skip)
	}
	if q.Limit > 0 {
		find = find.Limit(q.Limit)
	}
	for _, p := range s.cfg.Preloads {
		find = find.Preload(p)
	}

	items := make([]T, 0)
	if err := find.Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list %s records: %w", s.cfg.Name, err)
	}
	return items, total, nil
}

func (s *GormStore[T]) order(q ListQuery) clause.OrderByColumn {
	col, ok := s.cfg.Sortable[q.SortBy]
	if !ok {
		return clause.OrderByColumn{Column: clause.Column{Name: s.cfg.DefaultSort}, Desc: true}
	}
	return clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: strings.EqualFold(q.SortOrder, "desc")}
}

func (s *GormStore[T]) Get(ctx context.Context, publicID string) (*T, error) {
	query := s.db.WithContext(ctx)
	for _, p := range s.cfg.Preloads {
		query = query.Preload(p)
	}
	item := new(T)
	if err := query.Where("public_id = ?", publicID).First(item).Error; err != nil {
		return nil, notFound(s.cfg.Name, err)
	}
	return item, nil
}

func (s *GormStore[T]) Create(ctx context.Context, item *T) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", s.cfg.Name, err)
	}
	return nil
}

// Update writes every column of item, zero values included.
func (s *GormStore[T]) Update(ctx context.Context, item *T) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", s.cfg.Name, err)
	}
	return nil
}

func (s *GormStore[T]) Delete(ctx context.Context, publicID string) error {
	result := s.db.WithContext(ctx).Where("public_id = ?", publicID).Delete(new(T))
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", s.cfg.Name, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", s.cfg.Name, ErrNotFound)
	}
	return nil
}

func applySearch(tx *gorm.DB, search string, columns []string) *gorm.DB {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return tx
	}
	like := "%" + search + "%"
	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col+" ILIKE ?")
		args = append(args, like)
	}
	// gorm wraps OR expressions in parentheses when combined with others
	return tx.Where(strings.Join(parts, " OR "), args...)
}
