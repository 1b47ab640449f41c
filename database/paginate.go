package database

import (
	"context"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	// MaxPageSize caps page sizes taken from requests.
	MaxPageSize = 100
)

// Page is one slice of an ordered result sequence.
type Page[T any] struct {
	Items      []T   `json:"items"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
	TotalCount int64 `json:"totalCount"`
}

// HasPrevious and HasNext drive pager links.
func (p Page[T]) HasPrevious() bool { return p.PageNumber > 1 }
func (p Page[T]) HasNext() bool     { return p.PageNumber < p.TotalPages }

// bounds clamps pageNumber into [1, totalPages]. An empty sequence has zero pages and reports page 1.
func bounds(pageNumber, pageSize int, total int64) (page, size, totalPages int) {
	size = pageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	totalPages = int(total / int64(size))
	if total%int64(size) != 0 {
		totalPages++
	}

	page = pageNumber
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page, size, totalPages
}

// Paginate slices an in-memory sequence.
func Paginate[T any](items []T, pageNumber, pageSize int) Page[T] {
	total := int64(len(items))
	page, size, totalPages := bounds(pageNumber, pageSize, total)

	start := (page - 1) * size
	end := start + size
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	return Page[T]{
		Items:      append([]T{}, items[start:end]...),
		PageNumber: page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalCount: total,
	}
}

// PaginateQuery counts q, then fetches only the requested page in the given order.
// order is applied after counting because postgres rejects ORDER BY on an aggregate query.
func PaginateQuery[T any](ctx context.Context, q *gorm.DB, order string, pageNumber, pageSize int, preloads ...string) (Page[T], error) {
	var total int64
	if err := q.Session(&gorm.Session{}).WithContext(ctx).Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	page, size, totalPages := bounds(pageNumber, pageSize, total)
	items := []T{}
	if total > 0 {
		find := q.Session(&gorm.Session{}).WithContext(ctx)
		for _, p := range preloads {
			find = find.Preload(p)
		}
		if order != "" {
			find = find.Order(order)
		}
		if err := find.Offset((page - 1) * size).Limit(size).Find(&items).Error; err != nil {
			return Page[T]{}, err
		}
	}

	return Page[T]{
		Items:      items,
		PageNumber: page,
		PageSize:   size,
		TotalPages: totalPages,
		TotalCount: total,
	}, nil
}
