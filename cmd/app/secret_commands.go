package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secrethold/cmd/app/commands"
	"github.com/allisson/secrethold/internal/app"
)

func pinFlag(name, usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    name,
		Sources: cli.EnvVars("SECRETHOLD_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))),
		Usage:   usage + " (prompted without echo when omitted)",
	}
}

func idFlag(required bool) cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Aliases:  []string{"i"},
		Required: required,
		Usage:    "Secret ID (UUID, integer or any string)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

// withSecretUseCase hands the container's secret use case to fn.
func withSecretUseCase(ctx context.Context, fn func(deps commands.SecretDeps) error) error {
	return withContainer(ctx, func(container *app.Container) error {
		useCase, err := container.SecretUseCase()
		if err != nil {
			return err
		}
		return fn(commands.SecretDeps{
			UseCase: useCase,
			Logger:  container.Logger(),
			IO:      commands.DefaultIO(),
		})
	})
}

func getSecretCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "set-secret",
			Usage: "Encrypt and store a secret under a PIN",
			Flags: []cli.Flag{
				idFlag(false),
				&cli.StringFlag{
					Name:    "secret",
					Aliases: []string{"s"},
					Usage:   "Secret value (prompted without echo when omitted)",
				},
				pinFlag("pin", "PIN protecting the secret"),
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withSecretUseCase(ctx, func(deps commands.SecretDeps) error {
					return commands.RunSetSecret(
						ctx,
						deps,
						cmd.String("id"),
						cmd.String("secret"),
						cmd.String("pin"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "get-secret",
			Usage: "Decrypt and print a secret",
			Flags: []cli.Flag{
				idFlag(true),
				pinFlag("pin", "PIN protecting the secret"),
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withSecretUseCase(ctx, func(deps commands.SecretDeps) error {
					return commands.RunGetSecret(
						ctx,
						deps,
						cmd.String("id"),
						cmd.String("pin"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "change-pin",
			Usage: "Re-encrypt a secret under a new PIN",
			Flags: []cli.Flag{
				idFlag(true),
				pinFlag("old-pin", "Current PIN"),
				pinFlag("new-pin", "New PIN"),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withSecretUseCase(ctx, func(deps commands.SecretDeps) error {
					return commands.RunChangePin(
						ctx,
						deps,
						cmd.String("id"),
						cmd.String("old-pin"),
						cmd.String("new-pin"),
					)
				})
			},
		},
		{
			Name:  "delete-secret",
			Usage: "Delete a secret from storage and cache",
			Flags: []cli.Flag{
				idFlag(true),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withSecretUseCase(ctx, func(deps commands.SecretDeps) error {
					return commands.RunDeleteSecret(ctx, deps, cmd.String("id"))
				})
			},
		},
	}
}
