// Package main provides the entry point for the secrethold server and CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "secrethold",
		Usage:   "PIN protected secret storage",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load settings from this file before the nearest .env; set variables win",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if path := cmd.String("env-file"); path != "" {
				if err := godotenv.Load(path); err != nil {
					return ctx, fmt.Errorf("failed to load env file: %w", err)
				}
			}
			return ctx, nil
		},
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
