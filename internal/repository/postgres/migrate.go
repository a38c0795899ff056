package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tasklist/internal/repository/postgres/migrations"
)

type migration struct {
	version int
	up      string
	down    string
}

// runMigrations applies pending migrations, each in its own transaction,
// and returns the versions applied.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) ([]int, error) {
	if err := createMigrationsTable(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	all, err := loadMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	appliedVersions, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	applied := make(map[int]bool, len(appliedVersions))
	for _, v := range appliedVersions {
		applied[v] = true
	}

	var versions []int
	for _, m := range all {
		if applied[m.version] {
			continue
		}
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.up); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version)
			return err
		})
		if err != nil {
			return versions, fmt.Errorf("failed to apply migration %d: %w", m.version, err)
		}
		versions = append(versions, m.version)
	}
	return versions, nil
}

// rollbackLast reverts the highest applied migration, returning 0 when
// none is applied.
func rollbackLast(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	if err := createMigrationsTable(ctx, pool); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	var version int
	if err := pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read current version: %w", err)
	}
	if version == 0 {
		return 0, nil
	}

	all, err := loadMigrations()
	if err != nil {
		return 0, fmt.Errorf("failed to load migrations: %w", err)
	}
	for _, m := range all {
		if m.version != version {
			continue
		}
		err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, m.down); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, m.version)
			return err
		})
		if err != nil {
			return 0, fmt.Errorf("failed to revert migration %d: %w", version, err)
		}
		return version, nil
	}
	return 0, fmt.Errorf("migration %d is applied but has no source", version)
}

func createMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, err
	}

	var all []migration
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version == 0 {
			continue
		}

		up, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return nil, err
		}
		down, err := fs.ReadFile(migrations.FS, strings.Replace(name, ".up.sql", ".down.sql", 1))
		if err != nil {
			return nil, err
		}
		all = append(all, migration{version: version, up: string(up), down: string(down)})
	}

	sort.Slice(all, func(i, j int) bool { return all[i].version < all[j].version })
	return all, nil
}
