package domain

import (
	"fmt"
	"strings"

	"tasklist/internal/errors"
)

// SortField names a task attribute that listings can be ordered by.
type SortField string

const (
	SortByName        SortField = "name"
	SortByDescription SortField = "description"
	SortByStatus      SortField = "status"
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
)

// IsValid reports whether the field can be sorted on.
func (f SortField) IsValid() bool {
	switch f {
	case SortByName, SortByDescription, SortByStatus, SortByCreatedAt, SortByUpdatedAt:
		return true
	}
	return false
}

// SortDirection is either ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// Order is one sort criterion.
type Order struct {
	Field     SortField
	Direction SortDirection
}

// String renders the order as "field,direction".
func (o Order) String() string {
	return fmt.Sprintf("%s,%s", o.Field, o.Direction)
}

// DefaultOrder is applied when a page request carries no sort criteria.
var DefaultOrder = Order{Field: SortByCreatedAt, Direction: Ascending}

// ParseOrder parses "field" or "field,asc|desc". The direction is
// case-insensitive and defaults to ascending.
func ParseOrder(s string) (Order, error) {
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return Order{}, errors.NewInvalidInputError("sort", s, "expected field[,asc|desc]")
	}

	field := SortField(strings.TrimSpace(parts[0]))
	if !field.IsValid() {
		return Order{}, errors.NewInvalidInputError("sort", s, fmt.Sprintf("unknown sort field %q", field))
	}

	order := Order{Field: field, Direction: Ascending}
	if len(parts) == 2 {
		switch SortDirection(strings.ToLower(strings.TrimSpace(parts[1]))) {
		case Ascending:
		case Descending:
			order.Direction = Descending
		default:
			return Order{}, errors.NewInvalidInputError("sort", s, fmt.Sprintf("unknown sort direction %q", parts[1]))
		}
	}
	return order, nil
}

// PageRequest describes one page of a listing. Page is zero-based.
type PageRequest struct {
	Page int
	Size int
	Sort []Order
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Orders returns the requested sort criteria or the default order.
func (p PageRequest) Orders() []Order {
	if len(p.Sort) == 0 {
		return []Order{DefaultOrder}
	}
	return p.Sort
}

// TaskPage is one page of tasks plus the totals needed to navigate.
type TaskPage struct {
	Tasks         []*Task
	Page          int
	Size          int
	TotalElements int64
	Sort          []Order
}

// TotalPages returns the number of pages of the current size.
func (p TaskPage) TotalPages() int {
	if p.Size <= 0 {
		return 1
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

// IsFirst reports whether this is the first page.
func (p TaskPage) IsFirst() bool {
	return p.Page == 0
}

// IsLast reports whether no page follows this one.
func (p TaskPage) IsLast() bool {
	return p.Page+1 >= p.TotalPages()
}
