package cli

import (
	"context"
	"fmt"

	"tasklist/internal/config"
)

// MigrateCommand applies or reverts schema migrations
type MigrateCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

// NewMigrateCommand creates a new migrate command handler
func NewMigrateCommand(app *App) *MigrateCommand {
	return &MigrateCommand{app: app, errorHandler: NewErrorHandler()}
}

// Execute applies pending migrations, or reverts the latest one when down is set.
func (c *MigrateCommand) Execute(ctx context.Context, down bool) error {
	ctx, cancel := c.app.withTimeout(ctx)
	defer cancel()

	cfg := *c.app.config
	cfg.Database.AutoMigrate = false

	store, err := config.OpenStore(ctx, &cfg)
	if err != nil {
		return c.errorHandler.Handle("open database", err)
	}
	defer store.Close()

	if down {
		version, err := store.Rollback(ctx)
		if err != nil {
			return c.errorHandler.Handle("roll back migration", err)
		}
		if version == 0 {
			fmt.Fprintln(c.app.out, "No migrations to roll back")
			return nil
		}
		c.app.logger.WithField("version", version).Info("migration reverted")
		fmt.Fprintf(c.app.out, "Rolled back migration %d\n", version)
		return nil
	}

	versions, err := store.Migrate(ctx)
	if err != nil {
		return c.errorHandler.Handle("apply migrations", err)
	}
	if len(versions) == 0 {
		fmt.Fprintln(c.app.out, "Schema is up to date")
		return nil
	}
	for _, v := range versions {
		fmt.Fprintf(c.app.out, "Applied migration %d\n", v)
	}
	return nil
}
