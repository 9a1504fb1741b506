package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/pantry/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)
	return r.writePlain("Config written to %s\n", r.configPath)
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Database.Path
	r.logger.Info("initializing database", "path", path)

	db, err := shared.NewDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := shared.AppliedVersion(db)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v", path)
	return r.writePlain("Database ready at %s (schema version %d)\n", path, version)
}
