package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/domain"
)

func TestMapperRoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	task := &domain.Task{
		ID:          "c2b0f8a4-6f5e-4b8e-9a55-0d1f3e2a7b90",
		Name:        "Straße fegen",
		Description: "Vor dem Haus",
		Status:      domain.StatusCompleted,
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
	}

	row := fromDomain(task)
	assert.Equal(t, "straße fegen", row.NameKey)
	assert.Equal(t, "COMPLETED", row.Status)

	back, err := toDomain(&row)
	require.NoError(t, err)
	assert.Equal(t, task.ID, back.ID)
	assert.Equal(t, task.Name, back.Name)
	assert.True(t, task.CreatedAt.Equal(back.CreatedAt))
	assert.True(t, task.UpdatedAt.Equal(back.UpdatedAt))
}

func TestToDomain_BadTimestamp(t *testing.T) {
	_, err := toDomain(&taskRow{ID: "x", CreatedAt: "nope", UpdatedAt: "nope"})
	assert.ErrorContains(t, err, "created_at")

	_, err = toDomainList([]*taskRow{{ID: "y", CreatedAt: "2024-01-15T10:00:00Z", UpdatedAt: "bad"}})
	assert.ErrorContains(t, err, "updated_at")
}

func TestToDomain_UnknownStatus(t *testing.T) {
	_, err := toDomain(&taskRow{
		ID:        "x",
		Status:    "ARCHIVED",
		CreatedAt: "2024-01-15T10:00:00Z",
		UpdatedAt: "2024-01-15T10:00:00Z",
	})
	assert.ErrorContains(t, err, `unknown status "ARCHIVED"`)
}
