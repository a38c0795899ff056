package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tasklist/internal/domain"
	"tasklist/internal/errors"
	"tasklist/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Options configures a SQLite repository.
type Options struct {
	// Path is the database file, or ":memory:".
	Path string
	// QueryTimeout bounds reads. Zero means no extra deadline.
	QueryTimeout time.Duration
	// WriteTimeout bounds inserts and updates. Zero means no extra deadline.
	WriteTimeout time.Duration
	// SkipMigrations leaves the schema untouched on open.
	SkipMigrations bool
}

// sortColumns maps sortable task fields to their columns.
var sortColumns = map[domain.SortField]string{
	domain.SortByName:        "name",
	domain.SortByDescription: "description",
	domain.SortByStatus:      "status",
	domain.SortByCreatedAt:   "created_at",
	domain.SortByUpdatedAt:   "updated_at",
}

// SQLiteRepository stores tasks in a SQLite database
type SQLiteRepository struct {
	db           *sql.DB
	queryTimeout time.Duration
	writeTimeout time.Duration
}

// New opens the database at opts.Path and applies pending migrations
// unless opts.SkipMigrations is set.
func New(opts Options) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// One connection serialises writers and keeps ":memory:" databases alive.
	db.SetMaxOpenConns(1)

	if !opts.SkipMigrations {
		if _, err := migrations.RunMigrations(context.Background(), db); err != nil {
			db.Close()
			return nil, errors.NewDatabaseError("run migrations", err)
		}
	}

	return &SQLiteRepository{
		db:           db,
		queryTimeout: opts.QueryTimeout,
		writeTimeout: opts.WriteTimeout,
	}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	if err := r.db.PingContext(ctx); err != nil {
		return HandleDatabaseError(ctx, "ping", err)
	}
	return nil
}

// Migrate applies pending migrations and returns the versions applied.
func (r *SQLiteRepository) Migrate(ctx context.Context) ([]int, error) {
	return migrations.RunMigrations(ctx, r.db)
}

// Rollback reverts the most recently applied migration and returns its version.
func (r *SQLiteRepository) Rollback(ctx context.Context) (int, error) {
	return migrations.RollbackLast(ctx, r.db)
}

// Create inserts a task, assigning a new id when it has none.
func (r *SQLiteRepository) Create(ctx context.Context, task *domain.Task) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	if task.IsNew() {
		task.ID = uuid.NewString()
	}
	row := fromDomain(task)

	query := `
	INSERT INTO tasks (id, name, name_key, description, status, created_at, updated_at, deleted)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.Name, row.NameKey, row.Description, row.Status, row.CreatedAt, row.UpdatedAt, row.Deleted)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.TaskNameTaken(task.Name)
		}
		return HandleDatabaseError(ctx, "create task", err)
	}
	return nil
}

// Update overwrites the mutable fields of a live task. created_at is left untouched.
func (r *SQLiteRepository) Update(ctx context.Context, task *domain.Task) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	row := fromDomain(task)
	query := `
	UPDATE tasks
	SET name = ?, name_key = ?, description = ?, status = ?, updated_at = ?
	WHERE id = ? AND deleted = 0`

	result, err := r.db.ExecContext(ctx, query,
		row.Name, row.NameKey, row.Description, row.Status, row.UpdatedAt, row.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.TaskNameTaken(task.Name)
		}
		return HandleDatabaseError(ctx, "update task", err)
	}
	return ValidateRowsAffected(ctx, result, domain.TaskNotFound(task.ID))
}

// FindByID returns the live task with the given id.
func (r *SQLiteRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND deleted = 0`
	row, err := QuerySingle(ctx, r.db, query, scanTask, domain.TaskNotFound(id), id)
	if err != nil {
		return nil, err
	}
	return r.mapRow(row)
}

// FindByName returns the live task whose name matches case-insensitively.
func (r *SQLiteRepository) FindByName(ctx context.Context, name string) (*domain.Task, error) {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE name_key = ? AND deleted = 0`
	row, err := QuerySingle(ctx, r.db, query, scanTask, errors.NewNotFoundError("task", name), domain.NameKey(name))
	if err != nil {
		return nil, err
	}
	return r.mapRow(row)
}

// FindAll returns one page of live tasks.
func (r *SQLiteRepository) FindAll(ctx context.Context, req domain.PageRequest) (*domain.TaskPage, error) {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	orderBy, err := orderClause(req.Orders())
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE deleted = 0`).Scan(&total); err != nil {
		return nil, HandleDatabaseError(ctx, "count tasks", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE deleted = 0 ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`
	rows, err := QueryMultiple(ctx, r.db, query, scanTasks, req.Size, req.Offset())
	if err != nil {
		return nil, err
	}

	tasks, err := toDomainList(rows)
	if err != nil {
		return nil, errors.NewDatabaseError("read tasks", err)
	}

	return &domain.TaskPage{
		Tasks:         tasks,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		Sort:          req.Orders(),
	}, nil
}

// SoftDelete marks a live task as deleted and stamps updated_at.
func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	query := `UPDATE tasks SET deleted = 1, updated_at = ? WHERE id = ? AND deleted = 0`
	return ExecuteWithRowsAffected(ctx, r.db, query, domain.TaskNotFound(id), FormatTimeForDB(at), id)
}

func (r *SQLiteRepository) mapRow(row *taskRow) (*domain.Task, error) {
	task, err := toDomain(row)
	if err != nil {
		return nil, errors.NewDatabaseError("read task", err)
	}
	return task, nil
}

// orderClause renders sort criteria as SQL. id is always the final
// tie-breaker so that pages are stable.
func orderClause(orders []domain.Order) (string, error) {
	parts := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		column, ok := sortColumns[o.Field]
		if !ok {
			return "", errors.NewInvalidInputError("sort", o.String(), fmt.Sprintf("unknown sort field %q", o.Field))
		}
		direction := "ASC"
		if o.Direction == domain.Descending {
			direction = "DESC"
		}
		parts = append(parts, column+" "+direction)
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", "), nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
