// Package postgres stores tasks in PostgreSQL through a pgx connection pool.
package postgres

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tasklist/internal/domain"
	"tasklist/internal/errors"
)

const pgUniqueViolation = "23505"

const taskColumns = "id::text, name, description, status, created_at, updated_at, deleted"

var sortColumns = map[domain.SortField]string{
	domain.SortByName:        "name",
	domain.SortByDescription: "description",
	domain.SortByStatus:      "status",
	domain.SortByCreatedAt:   "created_at",
	domain.SortByUpdatedAt:   "updated_at",
}

// Options configures a Postgres repository.
type Options struct {
	DSN          string
	MaxConns     int32
	QueryTimeout time.Duration
	WriteTimeout time.Duration
	// SkipMigrations leaves the schema untouched on open.
	SkipMigrations bool
}

// Repository stores tasks in PostgreSQL.
type Repository struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
	writeTimeout time.Duration
}

// New connects to opts.DSN, verifies the connection and applies pending migrations.
func New(ctx context.Context, opts Options) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, errors.NewDatabaseError("parse dsn", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	cfg.MaxConnIdleTime = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.NewDatabaseError("connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.NewDatabaseError("ping", err)
	}
	if !opts.SkipMigrations {
		if _, err := runMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.NewDatabaseError("run migrations", err)
		}
	}

	return &Repository{
		pool:         pool,
		queryTimeout: opts.QueryTimeout,
		writeTimeout: opts.WriteTimeout,
	}, nil
}

// Close releases every pooled connection.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()
	if err := r.pool.Ping(ctx); err != nil {
		return handleError(ctx, "ping", err)
	}
	return nil
}

// Migrate applies pending migrations.
func (r *Repository) Migrate(ctx context.Context) ([]int, error) {
	return runMigrations(ctx, r.pool)
}

// Rollback reverts the latest migration.
func (r *Repository) Rollback(ctx context.Context) (int, error) {
	return rollbackLast(ctx, r.pool)
}

func (r *Repository) Create(ctx context.Context, task *domain.Task) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	if task.IsNew() {
		task.ID = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (id, name, name_key, description, status, created_at, updated_at, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.Name, task.NameKey(), task.Description, string(task.Status),
		task.CreatedAt.UTC(), task.UpdatedAt.UTC(), task.Deleted)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.TaskNameTaken(task.Name)
		}
		return handleError(ctx, "create task", err)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, task *domain.Task) error {
	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET name = $1, name_key = $2, description = $3, status = $4, updated_at = $5
		WHERE id = $6 AND NOT deleted`,
		task.Name, task.NameKey(), task.Description, string(task.Status), task.UpdatedAt.UTC(), task.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.TaskNameTaken(task.Name)
		}
		return handleError(ctx, "update task", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.TaskNotFound(task.ID)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.TaskNotFound(id)
	}
	return r.findOne(ctx, `WHERE id = $1 AND NOT deleted`, domain.TaskNotFound(id), id)
}

func (r *Repository) FindByName(ctx context.Context, name string) (*domain.Task, error) {
	return r.findOne(ctx, `WHERE name_key = $1 AND NOT deleted`, errors.NewNotFoundError("task", name), domain.NameKey(name))
}

func (r *Repository) FindAll(ctx context.Context, req domain.PageRequest) (*domain.TaskPage, error) {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	orderBy, err := orderClause(req.Orders())
	if err != nil {
		return nil, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE NOT deleted`).Scan(&total); err != nil {
		return nil, handleError(ctx, "count tasks", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE NOT deleted ORDER BY `+orderBy+` LIMIT $1 OFFSET $2`,
		req.Size, req.Offset())
	if err != nil {
		return nil, handleError(ctx, "query tasks", err)
	}
	tasks, err := pgx.CollectRows(rows, scanTask)
	if err != nil {
		return nil, handleError(ctx, "scan tasks", err)
	}

	return &domain.TaskPage{
		Tasks:         tasks,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		Sort:          req.Orders(),
	}, nil
}

func (r *Repository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.TaskNotFound(id)
	}

	ctx, cancel := withTimeout(ctx, r.writeTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `UPDATE tasks SET deleted = TRUE, updated_at = $1 WHERE id = $2 AND NOT deleted`, at.UTC(), id)
	if err != nil {
		return handleError(ctx, "delete task", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.TaskNotFound(id)
	}
	return nil
}

func (r *Repository) findOne(ctx context.Context, where string, notFound error, arg any) (*domain.Task, error) {
	ctx, cancel := withTimeout(ctx, r.queryTimeout)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks `+where, arg)
	if err != nil {
		return nil, handleError(ctx, "query task", err)
	}
	task, err := pgx.CollectExactlyOneRow(rows, scanTask)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, handleError(ctx, "scan task", err)
	}
	return task, nil
}

func scanTask(row pgx.CollectableRow) (*domain.Task, error) {
	var (
		task   domain.Task
		status string
	)
	err := row.Scan(&task.ID, &task.Name, &task.Description, &status, &task.CreatedAt, &task.UpdatedAt, &task.Deleted)
	if err != nil {
		return nil, err
	}
	parsed, ok := domain.ParseTaskStatus(status)
	if !ok {
		return nil, fmt.Errorf("task %s: unknown status %q", task.ID, status)
	}
	task.Status = parsed
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}

func orderClause(orders []domain.Order) (string, error) {
	parts := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		column, ok := sortColumns[o.Field]
		if !ok {
			return "", errors.NewInvalidInputError("sort", o.String(), fmt.Sprintf("unknown sort field %q", o.Field))
		}
		if o.Direction == domain.Descending {
			column += " DESC"
		} else {
			column += " ASC"
		}
		parts = append(parts, column)
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", "), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

func handleError(ctx context.Context, operation string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.FromContextError(operation, ctxErr)
	}
	return errors.FromContextError(operation, err)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
