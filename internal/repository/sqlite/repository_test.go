package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/domain"
	"tasklist/internal/errors"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := New(Options{Path: filepath.Join(t.TempDir(), "tasks.db")})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTask(name string, at time.Time) *domain.Task {
	task := domain.NewTask(name, "description of "+name, domain.StatusPending)
	task.CreatedAt = at
	task.UpdatedAt = at
	return &task
}

func createTask(t *testing.T, repo *SQLiteRepository, name string, at time.Time) *domain.Task {
	t.Helper()
	task := newTask(name, at)
	require.NoError(t, repo.Create(context.Background(), task))
	return task
}

func TestCreateTask(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	task := newTask("Groceries", baseTime)
	require.NoError(t, repo.Create(ctx, task))
	assert.NotEmpty(t, task.ID)

	retrieved, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, retrieved.ID)
	assert.Equal(t, "Groceries", retrieved.Name)
	assert.Equal(t, domain.StatusPending, retrieved.Status)
	assert.True(t, baseTime.Equal(retrieved.CreatedAt))
	assert.True(t, baseTime.Equal(retrieved.UpdatedAt))
	assert.False(t, retrieved.Deleted)
}

func TestCreateTask_KeepsProvidedID(t *testing.T) {
	repo := setupTestDB(t)

	task := newTask("Groceries", baseTime)
	task.ID = "0b0e7b9a-3d55-4b67-8d7e-3a8f1d6e2c11"
	require.NoError(t, repo.Create(context.Background(), task))
	assert.Equal(t, "0b0e7b9a-3d55-4b67-8d7e-3a8f1d6e2c11", task.ID)
}

func TestCreateTask_DuplicateNameIsConflict(t *testing.T) {
	repo := setupTestDB(t)
	createTask(t, repo, "Groceries", baseTime)

	err := repo.Create(context.Background(), newTask("GROCERIES", baseTime))
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict))
	assert.Equal(t, domain.CodeNameAlreadyExists, errors.GetErrorCode(err))
}

func TestCreateTask_NameReusableAfterSoftDelete(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	first := createTask(t, repo, "Groceries", baseTime)

	require.NoError(t, repo.SoftDelete(ctx, first.ID, baseTime.Add(time.Minute)))

	second := createTask(t, repo, "Groceries", baseTime.Add(2*time.Minute))
	assert.NotEqual(t, first.ID, second.ID)
}

func TestFindByID_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.FindByID(context.Background(), "5f9b2a7c-0000-4000-8000-000000000000")
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	assert.Equal(t, domain.CodeTaskNotFound, errors.GetErrorCode(err))
}

func TestFindByName_CaseInsensitive(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	task := createTask(t, repo, "Écrire Rapport", baseTime)

	found, err := repo.FindByName(ctx, "écrire rapport")
	require.NoError(t, err)
	assert.Equal(t, task.ID, found.ID)

	_, err = repo.FindByName(ctx, "missing")
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestUpdateTask(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	task := createTask(t, repo, "Groceries", baseTime)

	later := baseTime.Add(time.Hour)
	task.Name = "Groceries for the week"
	task.Status = domain.StatusInProgress
	task.UpdatedAt = later
	task.CreatedAt = later // must be ignored
	require.NoError(t, repo.Update(ctx, task))

	retrieved, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries for the week", retrieved.Name)
	assert.Equal(t, domain.StatusInProgress, retrieved.Status)
	assert.True(t, baseTime.Equal(retrieved.CreatedAt))
	assert.True(t, later.Equal(retrieved.UpdatedAt))
}

func TestUpdateTask_Errors(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	createTask(t, repo, "Groceries", baseTime)
	other := createTask(t, repo, "Laundry", baseTime)

	other.Name = "groceries"
	err := repo.Update(ctx, other)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeConflict))

	missing := newTask("Nothing", baseTime)
	missing.ID = "7d4e1c2a-1111-4222-8333-444455556666"
	err = repo.Update(ctx, missing)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestSoftDelete(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	task := createTask(t, repo, "Groceries", baseTime)

	require.NoError(t, repo.SoftDelete(ctx, task.ID, baseTime.Add(time.Minute)))

	_, err := repo.FindByID(ctx, task.ID)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	// Row is retained with the deletion stamp
	var deleted bool
	var updatedAt string
	err = repo.db.QueryRow(`SELECT deleted, updated_at FROM tasks WHERE id = ?`, task.ID).Scan(&deleted, &updatedAt)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, FormatTimeForDB(baseTime.Add(time.Minute)), updatedAt)

	err = repo.SoftDelete(ctx, task.ID, baseTime.Add(2*time.Minute))
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
}

func TestFindAll_Pagination(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for i, name := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		createTask(t, repo, name, baseTime.Add(time.Duration(i)*time.Minute))
	}
	deleted := createTask(t, repo, "foxtrot", baseTime.Add(10*time.Minute))
	require.NoError(t, repo.SoftDelete(ctx, deleted.ID, baseTime.Add(11*time.Minute)))

	page, err := repo.FindAll(ctx, domain.PageRequest{Page: 0, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages())
	require.Len(t, page.Tasks, 2)
	assert.Equal(t, "alpha", page.Tasks[0].Name)
	assert.Equal(t, "bravo", page.Tasks[1].Name)
	assert.Equal(t, []domain.Order{domain.DefaultOrder}, page.Sort)

	page, err = repo.FindAll(ctx, domain.PageRequest{Page: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "echo", page.Tasks[0].Name)
	assert.True(t, page.IsLast())

	page, err = repo.FindAll(ctx, domain.PageRequest{Page: 5, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Tasks)
	assert.Equal(t, int64(5), page.TotalElements)
}

func TestFindAll_Sorting(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	a := createTask(t, repo, "b-task", baseTime)
	b := createTask(t, repo, "a-task", baseTime.Add(time.Minute))
	c := createTask(t, repo, "c-task", baseTime.Add(2*time.Minute))
	b.Status = domain.StatusCompleted
	b.UpdatedAt = baseTime.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, b))

	names := func(page *domain.TaskPage) []string {
		var out []string
		for _, task := range page.Tasks {
			out = append(out, task.Name)
		}
		return out
	}

	tests := []struct {
		name     string
		sort     []domain.Order
		expected []string
	}{
		{"name asc", []domain.Order{{Field: domain.SortByName, Direction: domain.Ascending}}, []string{"a-task", "b-task", "c-task"}},
		{"createdAt desc", []domain.Order{{Field: domain.SortByCreatedAt, Direction: domain.Descending}}, []string{c.Name, b.Name, a.Name}},
		{"updatedAt desc", []domain.Order{{Field: domain.SortByUpdatedAt, Direction: domain.Descending}}, []string{"a-task", "c-task", "b-task"}},
		{"status then name", []domain.Order{
			{Field: domain.SortByStatus, Direction: domain.Descending},
			{Field: domain.SortByName, Direction: domain.Descending},
		}, []string{"c-task", "b-task", "a-task"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.FindAll(ctx, domain.PageRequest{Size: 10, Sort: tt.sort})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(page))
		})
	}
}

func TestFindAll_UnknownSortField(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.FindAll(context.Background(), domain.PageRequest{
		Size: 10,
		Sort: []domain.Order{{Field: "deleted", Direction: domain.Ascending}},
	})
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeInvalidInput))
}

func TestCancelledContextIsTimeout(t *testing.T) {
	repo := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindAll(ctx, domain.PageRequest{Size: 10})
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeTimeout))
}

func TestPingAndMigrate(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	assert.NoError(t, repo.Ping(ctx))

	applied, err := repo.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied, "New already migrated")

	version, err := repo.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestInMemoryDatabase(t *testing.T) {
	repo, err := New(Options{Path: ":memory:", QueryTimeout: time.Second, WriteTimeout: time.Second})
	require.NoError(t, err)
	defer repo.Close()

	task := createTask(t, repo, "Groceries", baseTime)
	_, err = repo.FindByID(context.Background(), task.ID)
	assert.NoError(t, err)
}
