// Package main provides the Hireflow deadline sweeper daemon.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/talentops/hireflow/pkg/cmd"
	"github.com/talentops/hireflow/pkg/log"
	"github.com/talentops/hireflow/pkg/notifications"
	"github.com/talentops/hireflow/pkg/sweeper"
)

func main() {
	command := &cli.Command{
		Name:                  "hireflow-sweeper",
		EnableShellCompletion: true,
		Usage:                 "Run the time-triggered transition scanner",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence (file://, redis://, memory://)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "sweep-schedule",
				Usage:   "Cron expression or descriptor for sweep cadence",
				Value:   sweeper.DefaultSchedule,
				Sources: cli.EnvVars("SWEEP_SCHEDULE"),
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

			logger := log.WithModule("hireflow-sweeper")
			logger.InfoContext(ctx, "Initializing Hireflow sweeper")

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

			manager := NewSweeperManager(persistence, dispatcher, logger, command.String("sweep-schedule"))

			return manager.Run(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("hireflow-sweeper").Error("Failed to run sweeper", "error", err)
		os.Exit(1)
	}
}
