package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/likesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the embedded example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		return fmt.Errorf("%w: --config path is required", shared.ErrMissingArgument)
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set client_id and client_secret (or %s/%s in .env)\n", shared.EnvClientID, shared.EnvClientSecret)
	r.writePlain("2. Run 'likesync auth login --slot from' and 'likesync auth login --slot to'\n")
	return nil
}

// SetupDatabase initializes the transfer journal and runs migrations, or reverts the latest one with --rollback.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.config
	if config == nil {
		config = shared.DefaultConfig()
	}

	path := config.DatabasePath()
	r.logger.Info("initializing database", "path", path)

	db, err := shared.OpenJournalDatabase(path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		r.logger.Info("rolled back latest migration", "path", path)
		return r.writePlain("✓ Rolled back the latest journal migration at %s\n", path)
	}

	r.logger.Infof("setup complete for database: %v", path)
	return r.writePlain("✓ Journal database ready at %s\n", path)
}
