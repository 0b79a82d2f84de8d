package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yigit/dancestudio/internal/app/migrations"
	"github.com/yigit/dancestudio/internal/app/repositories"
	"github.com/yigit/dancestudio/internal/bootstrap"
	"github.com/yigit/dancestudio/internal/config"
	"github.com/yigit/dancestudio/internal/db"
	"github.com/yigit/dancestudio/internal/pkg/logger"
	"github.com/yigit/dancestudio/internal/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "dancestudio",
	Short:         "Dance studio booking backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.NewServer(configPath)
		if err != nil {
			return err
		}
		return srv.Run()
	},
}

var dryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending identity table migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, database *db.PostgresDB, m *migrations.Migrator) error {
			if dryRun {
				pending, err := m.Pending(ctx)
				if err != nil {
					return err
				}
				for _, version := range pending {
					fmt.Fprintln(cmd.OutOrStdout(), version)
				}
				return nil
			}

			applied, err := m.Up(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
			return nil
		})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup-tokens",
	Short: "Delete expired and long-revoked refresh tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(cmd.Context(), func(ctx context.Context, database *db.PostgresDB, _ *migrations.Migrator) error {
			removed, err := repositories.NewTokenRepository(database.Pool).CleanupExpiredTokens(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d token(s)\n", removed)
			return nil
		})
	},
}

func withDatabase(ctx context.Context, run func(context.Context, *db.PostgresDB, *migrations.Migrator) error) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	return run(ctx, database, migrations.NewMigrator(database.Pool, lgr))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.GetEnv("CONFIG_PATH", "configs/config.yaml"), "path to the YAML config file")
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending migrations without applying them")

	rootCmd.AddCommand(serveCmd, migrateCmd, cleanupCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
