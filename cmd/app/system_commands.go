package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault-emulator/cmd/app/commands"
	"github.com/allisson/keyvault-emulator/internal/app"
	"github.com/allisson/keyvault-emulator/internal/config"
	"github.com/allisson/keyvault-emulator/internal/database"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the vault HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations for the configured SQL storage driver",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if !database.IsSQLDriver(cfg.StorageDriver) {
					return fmt.Errorf("storage driver %q does not need migrations", cfg.StorageDriver)
				}

				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.StorageDriver, cfg.DBConnectionString)
			},
		},
	}
}
