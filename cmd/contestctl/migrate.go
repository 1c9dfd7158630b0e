package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/fantasy-contest/internal/config"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
)

func migrateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database schema migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Migrations directory (defaults to MIGRATIONS_DIR or ./db/migrations)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(dir, func(m *migrate.Migrate, logger *logging.Logger) error {
				if err := ignoreNoChange(m.Up(), logger); err != nil {
					return err
				}
				logger.Info("migrations applied")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one step by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			return withMigrator(dir, func(m *migrate.Migrate, logger *logging.Logger) error {
				if err := ignoreNoChange(m.Steps(-steps), logger); err != nil {
					return err
				}
				logger.Info("migrations rolled back", "steps", steps)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(dir, func(m *migrate.Migrate, _ *logging.Logger) error {
				version, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					return printJSON(cmd, map[string]any{"version": nil, "dirty": false})
				}
				if err != nil {
					return fmt.Errorf("read version: %w", err)
				}
				return printJSON(cmd, map[string]any{"version": version, "dirty": dirty})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force <version>",
		Short: "Set the schema version without running migrations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(dir, func(m *migrate.Migrate, logger *logging.Logger) error {
				if err := m.Force(version); err != nil {
					return fmt.Errorf("force version %d: %w", version, err)
				}
				logger.Info("schema version forced", "version", version)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "goto <version>",
		Aliases: []string{"to"},
		Short:   "Migrate up or down to a specific version",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := parseTarget(args[0])
			if err != nil {
				return err
			}
			return withMigrator(dir, func(m *migrate.Migrate, logger *logging.Logger) error {
				if err := ignoreNoChange(m.Migrate(target), logger); err != nil {
					return err
				}
				logger.Info("migrated", "version", target)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(dir string, fn func(m *migrate.Migrate, logger *logging.Logger) error) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.StorageDriver != config.StorageDriverPostgres {
		return fmt.Errorf("migrations need STORAGE_DRIVER=postgres, got %q", cfg.StorageDriver)
	}

	migrationsDir, err := resolveMigrationsDir(dir)
	if err != nil {
		return err
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, cfg.DBURL)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			logger.Warn("close migration source", "error", srcErr)
		}
		if dbErr != nil {
			logger.Warn("close migration db", "error", dbErr)
		}
	}()

	return fn(m, logger.With("source", sourceURL))
}

func ignoreNoChange(err error, logger *logging.Logger) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes")
		return nil
	}
	return err
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}

	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func resolveMigrationsDir(flagValue string) (string, error) {
	candidates := []string{
		strings.TrimSpace(flagValue),
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		"./db/migrations",
		"/app/db/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked --dir, MIGRATIONS_DIR, ./db/migrations, /app/db/migrations)")
}
