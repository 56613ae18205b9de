// Package main provides the Hireflow API server implementation.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/talentops/hireflow/pkg/cmd"
	"github.com/talentops/hireflow/pkg/log"
	"github.com/talentops/hireflow/pkg/notifications"
)

func main() {
	command := &cli.Command{
		Name:                  "hireflow-api",
		EnableShellCompletion: true,
		Usage:                 "Start the recruitment workflow API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   9091,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file://, redis://, memory://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log output format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			logger := log.WithModule("hireflow-api")
			logger.InfoContext(ctx, "Initializing Hireflow API server")

			persistence, err := cmd.NewPersistence(command.String("database-url"))
			if err != nil {
				return err
			}
			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			dispatcher := notifications.NewGoChannelDispatcher(logger)
			defer func() {
				if err := dispatcher.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close dispatcher", "error", err)
				}
			}()

			api := NewAPI(logger, persistence, dispatcher)

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("hireflow-api").Error("Failed to run API server", "error", err)
		os.Exit(1)
	}
}
