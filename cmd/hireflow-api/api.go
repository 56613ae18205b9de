package main

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/talentops/hireflow/pkg/notifications"
	"github.com/talentops/hireflow/pkg/persistence"
	"github.com/talentops/hireflow/pkg/services"
	"github.com/talentops/hireflow/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	dispatcher  notifications.Dispatcher
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	dispatcher notifications.Dispatcher,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		dispatcher:  dispatcher,
	}
}

func (a *API) App() *fiber.App {
	interviews := services.NewInterviews(a.persistence, a.dispatcher, a.logger, nil)
	offers := services.NewOffers(a.persistence, a.dispatcher, a.logger, nil)
	onboarding := services.NewOnboarding(a.persistence, a.dispatcher, a.logger, nil)
	tasks := services.NewTasks(a.persistence, a.logger, nil)

	handlers := web.NewAPIHandlers(interviews, offers, onboarding, tasks)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Hireflow API")
	})

	handlers.Register(app)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
