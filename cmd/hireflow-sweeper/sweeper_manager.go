package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/talentops/hireflow/pkg/notifications"
	"github.com/talentops/hireflow/pkg/persistence"
	"github.com/talentops/hireflow/pkg/services"
	"github.com/talentops/hireflow/pkg/sweeper"
)

type SweeperManager struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	dispatcher  notifications.Dispatcher
	schedule    string
}

func NewSweeperManager(
	persistence persistence.Persistence,
	dispatcher notifications.Dispatcher,
	logger *slog.Logger,
	schedule string,
) *SweeperManager {
	return &SweeperManager{
		logger:      logger,
		persistence: persistence,
		dispatcher:  dispatcher,
		schedule:    schedule,
	}
}

// Run starts the sweep loop and blocks until SIGINT or SIGTERM.
func (m *SweeperManager) Run(ctx context.Context) error {
	offers := services.NewOffers(m.persistence, m.dispatcher, m.logger, nil)
	onboarding := services.NewOnboarding(m.persistence, m.dispatcher, m.logger, nil)
	tasks := services.NewTasks(m.persistence, m.logger, nil)

	sw, err := sweeper.New(m.persistence, offers, onboarding, tasks, m.logger, nil, m.schedule)
	if err != nil {
		return err
	}

	if err := sw.Start(ctx); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	m.logger.InfoContext(ctx, "Shutting down sweeper...")

	return sw.Stop(ctx)
}
