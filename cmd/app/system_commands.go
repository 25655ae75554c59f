package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secrethold/cmd/app/commands"
	"github.com/allisson/secrethold/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the API server and, when enabled, the metrics server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply the secret_envelopes schema for the postgres and mysql storage drivers",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "path",
					Value: "migrations",
					Usage: "Directory holding the postgresql and mysql migration folders",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					cfg := container.Config()
					return commands.RunMigrations(
						container.Logger(),
						cmd.String("path"),
						cfg.StorageDriver,
						cfg.DBConnectionString,
					)
				})
			},
		},
	}
}
