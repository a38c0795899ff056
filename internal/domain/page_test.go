package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/errors"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Order
		expectError bool
	}{
		{"field only", "name", Order{SortByName, Ascending}, false},
		{"asc", "createdAt,asc", Order{SortByCreatedAt, Ascending}, false},
		{"desc", "updatedAt,desc", Order{SortByUpdatedAt, Descending}, false},
		{"upper direction", "status,DESC", Order{SortByStatus, Descending}, false},
		{"spaces", " description , desc ", Order{SortByDescription, Descending}, false},
		{"unknown field", "priority", Order{}, true},
		{"column name is not a field", "created_at", Order{}, true},
		{"unknown direction", "name,sideways", Order{}, true},
		{"too many parts", "name,asc,desc", Order{}, true},
		{"empty", "", Order{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := ParseOrder(tt.input)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, order)
		})
	}
}

func TestOrder_String(t *testing.T) {
	assert.Equal(t, "name,desc", Order{SortByName, Descending}.String())
	assert.Equal(t, "createdAt,asc", DefaultOrder.String())
}

func TestPageRequest(t *testing.T) {
	req := PageRequest{Page: 3, Size: 20}
	assert.Equal(t, 60, req.Offset())
	assert.Equal(t, []Order{DefaultOrder}, req.Orders())

	req.Sort = []Order{{SortByName, Descending}}
	assert.Equal(t, []Order{{SortByName, Descending}}, req.Orders())
}

func TestTaskPage_Navigation(t *testing.T) {
	tests := []struct {
		name       string
		page       TaskPage
		totalPages int
		first      bool
		last       bool
	}{
		{"empty", TaskPage{Page: 0, Size: 20, TotalElements: 0}, 0, true, true},
		{"single partial page", TaskPage{Page: 0, Size: 20, TotalElements: 5}, 1, true, true},
		{"exact multiple", TaskPage{Page: 1, Size: 10, TotalElements: 20}, 2, false, true},
		{"middle page", TaskPage{Page: 1, Size: 10, TotalElements: 35}, 4, false, false},
		{"beyond the end", TaskPage{Page: 9, Size: 10, TotalElements: 35}, 4, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.totalPages, tt.page.TotalPages())
			assert.Equal(t, tt.first, tt.page.IsFirst())
			assert.Equal(t, tt.last, tt.page.IsLast())
		})
	}
}
