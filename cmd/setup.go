package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/moodmusic/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the built-in config template to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	r.writePlain("%s\n", r.palette.Check("config written", true, path))
	r.writePlain("%s\n", r.palette.Help("Set providers.spotify.client_id/client_secret and server.jwt_secret before serving."))
	return nil
}

// SetupDatabase initializes the database and runs migrations.
//
// A missing config file is created from the template first.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config, err := r.setupConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("%s\n", r.palette.Check("database ready", true, fmt.Sprintf("%d applied, schema version %d", applied, version)))
	return nil
}

// Rollback reverts the most recent migration.
func (r *Runner) Rollback(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := shared.RollbackMigration(db)
	if err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}
	r.logger.Info("rolled back migration", "version", version)
	r.writePlain("%s\n", r.palette.Check("rolled back", true, fmt.Sprintf("migration %d", version)))
	return nil
}

func (r *Runner) openDatabase(config *shared.Config) (*sql.DB, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	return db, nil
}

// setupConfig loads path, creating it from the template when missing. Unreadable files fall back to defaults.
func (r *Runner) setupConfig(path string) (*shared.Config, error) {
	if path == r.configPath && r.configPath != "" {
		if _, err := os.Stat(path); err == nil {
			return r.config, nil
		}
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		r.logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			return r.withEnv(shared.DefaultConfig())
		}
		r.logger.Info("config file created", "path", path)
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}
	return r.withEnv(config)
}

func (r *Runner) withEnv(config *shared.Config) (*shared.Config, error) {
	if err := shared.ApplyEnv(config, ".env"); err != nil {
		return nil, err
	}
	return config, nil
}
