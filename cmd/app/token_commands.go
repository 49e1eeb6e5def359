package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault-emulator/cmd/app/commands"
	"github.com/allisson/keyvault-emulator/internal/app"
	"github.com/allisson/keyvault-emulator/internal/config"
)

func getTokenCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-token",
			Usage: "Issue a bearer token signed with AUTH_SIGNING_KEY",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "subject",
					Aliases: []string{"s"},
					Value:   "",
					Usage:   "Token subject (defaults to the emulator client)",
				},
				&cli.StringFlag{
					Name:    "resource",
					Aliases: []string{"r"},
					Value:   "",
					Usage:   "Resource the token is issued for (e.g., https://vault.azure.net)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if cfg.AuthSigningKey == "" {
					return fmt.Errorf("AUTH_SIGNING_KEY must be set so the server accepts the token")
				}

				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateToken(
					ctx,
					tokenUseCase,
					container.Logger(),
					cmd.String("subject"),
					cmd.String("resource"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
