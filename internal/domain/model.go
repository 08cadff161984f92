package domain

import "time"

// BaseModel is the common base struct for locally persisted models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PageRequest holds pagination, sorting, and filtering parameters.
type PageRequest struct {
	Page     int
	PageSize int
	Sort     string
	Filter   map[string]string
}

// PagedResult is one page of records, normalized from whatever shape the
// upstream backend returned.
//
// Invariants: len(Items) <= PageSize and PageNumber <= max(TotalPages, 1).
type PagedResult[T any] struct {
	Items      []T   `json:"items"`
	PageNumber int   `json:"pageNumber"`
	PageSize   int   `json:"pageSize"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

// NewPagedResult builds a PagedResult and enforces its invariants.
// A non-positive pageSize falls back to len(items) (or 1 for an empty page).
func NewPagedResult[T any](items []T, pageNumber, pageSize int, totalCount int64) *PagedResult[T] {
	if items == nil {
		items = []T{}
	}
	if pageSize <= 0 {
		pageSize = max(len(items), 1)
	}
	if len(items) > pageSize {
		items = items[:pageSize]
	}
	if totalCount < int64(len(items)) {
		totalCount = int64(len(items))
	}

	totalPages := TotalPages(totalCount, pageSize)
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageNumber > max(totalPages, 1) {
		pageNumber = max(totalPages, 1)
	}

	return &PagedResult[T]{
		Items:      items,
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// TotalPages returns ceil(total / pageSize), or 0 when pageSize is not positive.
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
