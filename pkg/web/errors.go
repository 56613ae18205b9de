package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/talentops/hireflow/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsConflict(err):
		var conflictErr *services.ConflictError

		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("scheduling_conflict").
			WithDetail(err.Error())

		if errors.As(err, &conflictErr) {
			// The extended member carries each clashing interviewer and
			// interval for UI messaging.
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"type":      problem.Type,
				"title":     problem.Title,
				"status":    problem.Status,
				"detail":    problem.Detail,
				"instance":  problem.Instance,
				"conflicts": conflictErr.Conflicts,
			})
		}

		return c.Status(fiber.StatusConflict).JSON(problem)

	case services.IsInvalidTransition(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("invalid_transition").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case services.IsNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsTimeout(err):
		problem := problems.NewStatusProblem(504).
			WithInstance(c.Path()).
			WithType("store_timeout").
			WithDetail("store operation exceeded its deadline")

		return c.Status(fiber.StatusGatewayTimeout).JSON(problem)

	default:
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
