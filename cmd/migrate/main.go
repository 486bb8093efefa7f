package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/angelmondragon/dentalclinic-backend/pkg/config"
	"github.com/angelmondragon/dentalclinic-backend/pkg/db"
	"github.com/angelmondragon/dentalclinic-backend/pkg/logger"
	"github.com/angelmondragon/dentalclinic-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	var dir string
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the clinic database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory (default: embedded set, or "+migrate.DefaultDir+" for create/validate)")

	rootCmd.AddCommand(
		upCmd(&dir),
		downCmd(&dir),
		statusCmd(&dir),
		versionCmd(&dir),
		createCmd(&dir),
		validateCmd(&dir),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func upCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), "up", *dir, func(ctx context.Context, r *migrate.Runner) error {
				applied, err := r.Up(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s) %v\n", len(applied), applied)
				return nil
			})
		},
	}
}

func downCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), "down", *dir, func(ctx context.Context, r *migrate.Runner) error {
				version, err := r.Down(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "rolled back:", version)
				return nil
			})
		},
	}
}

func statusCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), "status", *dir, func(ctx context.Context, r *migrate.Runner) error {
				rows, err := r.Status(ctx)
				if err != nil {
					return err
				}
				for _, row := range rows {
					state := "pending"
					if row.Applied {
						state = "applied"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %d %s\n", state, row.Version, row.Path)
				}
				return nil
			})
		},
	}
}

func versionCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "version <YYYYMMDDHHMMSS>",
		Short: "Migrate up or down to the given version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), "version", *dir, func(ctx context.Context, r *migrate.Runner) error {
				moved, err := r.To(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "at %s after %d step(s)\n", args[0], len(moved))
				return nil
			})
		},
	}
}

func createCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new SQL migration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := migrate.CreateSQLMigration(diskDir(*dir), args[0], time.Now())
			if err != nil {
				return fmt.Errorf("failed to create migration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created migration:", path)
			return nil
		},
	}
}

func validateCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check migration file names and goose annotations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := migrate.Validate(migrate.Source(diskDir(*dir))); err != nil {
				return fmt.Errorf("migration validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration validation passed")
			return nil
		},
	}
}

func diskDir(dir string) string {
	if dir == "" {
		return migrate.DefaultDir
	}
	return dir
}

// withRunner loads config, opens the database and hands a goose runner over
// the selected source to fn.
func withRunner(ctx context.Context, command, dir string, fn func(context.Context, *migrate.Runner) error) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{
		"env": cfg.App.Env,
		"cmd": command,
		"dir": dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "resource not working: database", err)
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	runner, err := migrate.NewRunner(sqlDB, migrate.Source(dir))
	if err != nil {
		return err
	}

	logg.Info(ctx, "migrate ready")
	if err := fn(ctx, runner); err != nil {
		logg.Error(ctx, "migration command failed", err)
		return err
	}
	return nil
}
