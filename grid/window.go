package grid

// Window is one page of a list plus the numbers needed to page through it.
type Window[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// NewWindow derives a window; items is never nil so it encodes as [].
func NewWindow[T any](items []T, total int64, page, pageSize int) Window[T] {
	if items == nil {
		items = []T{}
	}
	return Window[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(total, pageSize),
	}
}

// TotalPages is ceil(total/pageSize), zero when pageSize is not positive.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Offset converts a zero-based page into a row offset.
func Offset(page, pageSize int) int {
	if page < 0 || pageSize <= 0 {
		return 0
	}
	return page * pageSize
}

// PageOf converts a row offset back into a zero-based page.
func PageOf(skip, pageSize int) int {
	if skip <= 0 || pageSize <= 0 {
		return 0
	}
	return skip / pageSize
}
