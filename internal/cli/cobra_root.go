package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tasklist/internal/config"
	"tasklist/internal/domain"
	"tasklist/internal/logging"
	"tasklist/internal/services"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd    *cobra.Command
	app    *App
	loader *config.Loader
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(loader *config.Loader) *RootCommand {
	root := &RootCommand{
		app:    &App{},
		loader: loader,
	}

	root.cmd = &cobra.Command{
		Use:   "tasklist",
		Short: "A task list service with a REST API",
		Long: `tasklist stores named tasks and serves them over a REST API.

EXAMPLES:
  tasklist serve                                     # Start the HTTP API on :8080
  tasklist migrate                                   # Apply pending schema migrations
  tasklist migrate --down                            # Revert the latest migration
  tasklist task create --name Groceries --description "Milk and eggs" --status PENDING
  tasklist task list --size 10 --sort name,desc
  tasklist task update <id> --status COMPLETED
  tasklist task delete <id>

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > .env file > defaults

  Server Configuration:
    TASKLIST_HTTP_ADDR                     Listen address (default: :8080)
    TASKLIST_HTTP_READ_TIMEOUT             Read timeout (default: 15s)
    TASKLIST_HTTP_WRITE_TIMEOUT            Write timeout (default: 15s)
    TASKLIST_HTTP_SHUTDOWN_TIMEOUT         Graceful shutdown timeout (default: 10s)
    TASKLIST_HTTP_CORS_ORIGINS             Comma-separated allowed origins

  Database Configuration:
    TASKLIST_DB_DRIVER                     sqlite or postgres (default: sqlite)
    TASKLIST_DB_DIR                        SQLite directory (default: ~/.tasklist)
    TASKLIST_DB_FILENAME                   SQLite filename (default: tasklist.db)
    TASKLIST_DB_DSN                        PostgreSQL connection string
    TASKLIST_DB_AUTO_MIGRATE               Migrate on startup (default: true)

  Cache Configuration:
    TASKLIST_REDIS_URL                     Redis URL; empty disables the cache
    TASKLIST_CACHE_TTL                     Entry lifetime (default: 5m)

  Pagination Configuration:
    TASKLIST_PAGE_DEFAULT_SIZE             Default page size (default: 20)
    TASKLIST_PAGE_MAX_SIZE                 Largest page size served (default: 100)

  Logging Configuration:
    TASKLIST_LOG_LEVEL                     debug, info, warn or error (default: info)
    TASKLIST_LOG_FORMAT                    text or json (default: text)
    TASKLIST_DEBUG                         Force debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.configure(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Command returns the underlying cobra command
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

// Execute runs the root command
func (r *RootCommand) Execute(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("addr", "", "HTTP listen address (overrides TASKLIST_HTTP_ADDR)")

	flags.String("db-driver", "", "Database driver, sqlite or postgres (overrides TASKLIST_DB_DRIVER)")
	flags.String("db-dir", "", "Database directory (overrides TASKLIST_DB_DIR)")
	flags.String("db-filename", "", "Database filename (overrides TASKLIST_DB_FILENAME)")
	flags.String("db-dsn", "", "PostgreSQL connection string (overrides TASKLIST_DB_DSN)")
	flags.Duration("db-query-timeout", 0, "Database query timeout (overrides TASKLIST_DB_QUERY_TIMEOUT)")
	flags.Duration("db-write-timeout", 0, "Database write timeout (overrides TASKLIST_DB_WRITE_TIMEOUT)")

	flags.String("redis-url", "", "Redis URL for the read cache (overrides TASKLIST_REDIS_URL)")

	flags.String("log-level", "", "Log level (overrides TASKLIST_LOG_LEVEL)")
	flags.String("log-format", "", "Log format, text or json (overrides TASKLIST_LOG_FORMAT)")

	flags.Duration("timeout", 0, "Timeout for one-shot commands (overrides TASKLIST_APP_TIMEOUT)")
	flags.Bool("debug", false, "Enable debug logging (overrides TASKLIST_DEBUG)")

	flags.StringP("output", "o", "", "Output format: table, json or csv (overrides TASKLIST_OUTPUT_DEFAULT_FORMAT)")
}

// configure resolves the configuration and logger before any command runs
func (r *RootCommand) configure(cmd *cobra.Command) error {
	if r.loader == nil {
		return fmt.Errorf("configuration loader not initialized")
	}

	cfg, err := r.loader.LoadWithOverrides(overridesFromFlags(cmd.Flags()))
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Debug:  cfg.Application.Debug,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	r.app.config = cfg
	r.app.logger = logger
	r.app.out = cmd.OutOrStdout()
	return nil
}

// overridesFromFlags turns every flag the user set into a config override
func overridesFromFlags(flags *pflag.FlagSet) *config.ConfigOverrides {
	str := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	dur := func(name string) *time.Duration {
		if !flags.Changed(name) {
			return nil
		}
		v, _ := flags.GetDuration(name)
		return &v
	}

	overrides := &config.ConfigOverrides{
		Addr:                str("addr"),
		DBDriver:            str("db-driver"),
		DBDir:               str("db-dir"),
		DBFilename:          str("db-filename"),
		DBDSN:               str("db-dsn"),
		DBQueryTimeout:      dur("db-query-timeout"),
		DBWriteTimeout:      dur("db-write-timeout"),
		RedisURL:            str("redis-url"),
		LogLevel:            str("log-level"),
		LogFormat:           str("log-format"),
		Timeout:             dur("timeout"),
		OutputDefaultFormat: str("output"),
	}
	if flags.Changed("debug") {
		v, _ := flags.GetBool("debug")
		overrides.Debug = &v
	}
	return overrides
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serve the task API until interrupted. SIGINT and SIGTERM trigger a graceful shutdown.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return NewServeCommand(r.app).Execute(ctx)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply all pending schema migrations, or revert the most recent one with --down.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			down, _ := cmd.Flags().GetBool("down")
			return NewMigrateCommand(r.app).Execute(cmd.Context(), down)
		},
	}
	migrateCmd.Flags().Bool("down", false, "Revert the most recent migration")

	r.cmd.AddCommand(serveCmd, migrateCmd, r.newTaskCommand())
}

func (r *RootCommand) newTaskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks directly in the database",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			description, _ := cmd.Flags().GetString("description")
			status, _ := cmd.Flags().GetString("status")

			return NewTaskCommand(r.app).Create(cmd.Context(), services.TaskInput{
				Name:        name,
				Description: description,
				Status:      domain.TaskStatus(status),
			})
		},
	}
	addTaskFieldFlags(createCmd)

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewTaskCommand(r.app).Get(cmd.Context(), args[0])
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks one page at a time",
		Long: `List tasks that have not been deleted.

Pages are zero-based. --sort takes field[,asc|desc] and may be repeated;
fields are name, description, status, createdAt and updatedAt.

Examples:
  tasklist task list                         # First page, oldest first
  tasklist task list --page 1 --size 5
  tasklist task list --sort status --sort name,desc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")
			sort, _ := cmd.Flags().GetStringArray("sort")
			return NewTaskCommand(r.app).List(cmd.Context(), page, size, sort)
		},
	}
	listCmd.Flags().Int("page", 0, "Zero-based page number")
	listCmd.Flags().Int("size", 0, "Page size (default from TASKLIST_PAGE_DEFAULT_SIZE)")
	listCmd.Flags().StringArray("sort", nil, "Sort criterion field[,asc|desc]; repeatable")

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task",
		Long:  "Update a task. Fields that are not given keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			changes := taskChanges{}
			if flags.Changed("name") {
				v, _ := flags.GetString("name")
				changes.Name = &v
			}
			if flags.Changed("description") {
				v, _ := flags.GetString("description")
				changes.Description = &v
			}
			if flags.Changed("status") {
				v, _ := flags.GetString("status")
				changes.Status = &v
			}
			return NewTaskCommand(r.app).Update(cmd.Context(), args[0], changes)
		},
	}
	addTaskFieldFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewTaskCommand(r.app).Delete(cmd.Context(), args[0])
		},
	}

	taskCmd.AddCommand(createCmd, getCmd, listCmd, updateCmd, deleteCmd)
	return taskCmd
}

func addTaskFieldFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Task name, unique ignoring case")
	cmd.Flags().String("description", "", "Task description")
	cmd.Flags().String("status", "", "PENDING, IN_PROGRESS or COMPLETED")
}
