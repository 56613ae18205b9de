// Package web provides HTTP handlers and REST API endpoints for the
// recruitment workflow engine. The six manager operations are the only
// mutation surface; everything else is read access for display.
package web

import (
	"github.com/gofiber/fiber/v3"

	"github.com/talentops/hireflow/pkg/services"
)

type APIHandlers struct {
	interviews *services.Interviews
	offers     *services.Offers
	onboarding *services.Onboarding
	tasks      *services.Tasks
}

func NewAPIHandlers(
	interviews *services.Interviews,
	offers *services.Offers,
	onboarding *services.Onboarding,
	tasks *services.Tasks,
) *APIHandlers {
	return &APIHandlers{
		interviews: interviews,
		offers:     offers,
		onboarding: onboarding,
		tasks:      tasks,
	}
}

// Register wires every route onto the app.
func (h *APIHandlers) Register(app *fiber.App) {
	interviews := app.Group("/interviews")
	interviews.Get("/", h.ListInterviews)
	interviews.Post("/", h.ScheduleInterview)
	interviews.Get("/:id", h.GetInterview)
	interviews.Post("/:id/reschedule", h.RescheduleInterview)
	interviews.Post("/:id/cancel", h.CancelInterview)
	interviews.Post("/:id/complete", h.CompleteInterview)
	interviews.Post("/:id/no-show", h.MarkInterviewNoShow)

	offers := app.Group("/offers")
	offers.Get("/", h.ListOffers)
	offers.Post("/", h.CreateOffer)
	offers.Get("/:id", h.GetOffer)
	offers.Patch("/:id", h.UpdateOffer)
	offers.Post("/:id/send", h.SendOffer)
	offers.Post("/:id/accept", h.AcceptOffer)
	offers.Post("/:id/decline", h.DeclineOffer)
	offers.Post("/:id/withdraw", h.WithdrawOffer)

	onboarding := app.Group("/onboarding")
	onboarding.Get("/", h.ListOnboarding)
	onboarding.Post("/", h.CreateOnboarding)
	onboarding.Get("/:id", h.GetOnboarding)
	onboarding.Post("/:id/start", h.StartOnboarding)
	onboarding.Post("/:id/tasks/:taskId/toggle", h.ToggleOnboardingTask)
	onboarding.Post("/:id/complete", h.CompleteOnboarding)
	onboarding.Post("/:id/resume", h.ResumeOnboarding)
	onboarding.Post("/:id/archive", h.ArchiveOnboarding)

	tasks := app.Group("/tasks")
	tasks.Get("/", h.ListTasks)
	tasks.Post("/", h.CreateTask)
	tasks.Get("/:id", h.GetTask)
	tasks.Post("/:id/start", h.StartTask)
	tasks.Post("/:id/block", h.BlockTask)
	tasks.Post("/:id/done", h.CompleteTask)
	tasks.Post("/:id/cancel", h.CancelTask)
}

// reasonBody is the optional payload of outcome-recording endpoints.
type reasonBody struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

func parseReason(c fiber.Ctx) reasonBody {
	var body reasonBody
	// An empty or absent body is fine; the services fill in defaults.
	_ = c.Bind().Body(&body)

	return body
}

func (h *APIHandlers) ListInterviews(c fiber.Ctx) error {
	interviews, err := h.interviews.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"interviews": interviews})
}

func (h *APIHandlers) GetInterview(c fiber.Ctx) error {
	interview, err := h.interviews.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(interview)
}

func (h *APIHandlers) ScheduleInterview(c fiber.Ctx) error {
	var req services.ScheduleInterviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	interview, err := h.interviews.Schedule(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(interview)
}

func (h *APIHandlers) RescheduleInterview(c fiber.Ctx) error {
	var req services.RescheduleInterviewRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	interview, err := h.interviews.Reschedule(c.Context(), c.Params("id"), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(interview)
}

func (h *APIHandlers) CancelInterview(c fiber.Ctx) error {
	body := parseReason(c)

	interview, err := h.interviews.Cancel(c.Context(), c.Params("id"), body.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(interview)
}

func (h *APIHandlers) CompleteInterview(c fiber.Ctx) error {
	body := parseReason(c)

	interview, err := h.interviews.MarkCompleted(c.Context(), c.Params("id"), body.Notes)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(interview)
}

func (h *APIHandlers) MarkInterviewNoShow(c fiber.Ctx) error {
	body := parseReason(c)

	interview, err := h.interviews.MarkNoShow(c.Context(), c.Params("id"), body.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(interview)
}

func (h *APIHandlers) ListOffers(c fiber.Ctx) error {
	offers, err := h.offers.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"offers": offers})
}

func (h *APIHandlers) GetOffer(c fiber.Ctx) error {
	offer, err := h.offers.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(offer)
}

func (h *APIHandlers) CreateOffer(c fiber.Ctx) error {
	var req services.CreateOfferRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	offer, err := h.offers.Create(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(offer)
}

func (h *APIHandlers) UpdateOffer(c fiber.Ctx) error {
	var req services.UpdateOfferRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	offer, err := h.offers.Update(c.Context(), c.Params("id"), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(offer)
}

func (h *APIHandlers) SendOffer(c fiber.Ctx) error {
	offer, err := h.offers.Send(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(offer)
}

func (h *APIHandlers) AcceptOffer(c fiber.Ctx) error {
	offer, err := h.offers.MarkAccepted(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(offer)
}

func (h *APIHandlers) DeclineOffer(c fiber.Ctx) error {
	body := parseReason(c)

	offer, err := h.offers.MarkDeclined(c.Context(), c.Params("id"), body.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(offer)
}

func (h *APIHandlers) WithdrawOffer(c fiber.Ctx) error {
	body := parseReason(c)

	offer, err := h.offers.Withdraw(c.Context(), c.Params("id"), body.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(offer)
}

func (h *APIHandlers) ListOnboarding(c fiber.Ctx) error {
	records, err := h.onboarding.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"onboarding": records})
}

func (h *APIHandlers) GetOnboarding(c fiber.Ctx) error {
	record, err := h.onboarding.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) CreateOnboarding(c fiber.Ctx) error {
	var req services.CreateOnboardingRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	record, err := h.onboarding.Create(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

func (h *APIHandlers) StartOnboarding(c fiber.Ctx) error {
	record, err := h.onboarding.Start(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) ToggleOnboardingTask(c fiber.Ctx) error {
	record, err := h.onboarding.ToggleTask(c.Context(), c.Params("id"), c.Params("taskId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) CompleteOnboarding(c fiber.Ctx) error {
	record, err := h.onboarding.MarkCompleted(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) ResumeOnboarding(c fiber.Ctx) error {
	record, err := h.onboarding.Resume(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) ArchiveOnboarding(c fiber.Ctx) error {
	record, err := h.onboarding.Archive(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(record)
}

func (h *APIHandlers) ListTasks(c fiber.Ctx) error {
	tasks, err := h.tasks.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"tasks": tasks})
}

func (h *APIHandlers) GetTask(c fiber.Ctx) error {
	task, err := h.tasks.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}

func (h *APIHandlers) CreateTask(c fiber.Ctx) error {
	var req services.CreateTaskRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	task, err := h.tasks.Create(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(task)
}

func (h *APIHandlers) StartTask(c fiber.Ctx) error {
	task, err := h.tasks.Start(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}

func (h *APIHandlers) BlockTask(c fiber.Ctx) error {
	body := parseReason(c)

	task, err := h.tasks.MarkBlocked(c.Context(), c.Params("id"), body.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}

func (h *APIHandlers) CompleteTask(c fiber.Ctx) error {
	task, err := h.tasks.MarkDone(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}

func (h *APIHandlers) CancelTask(c fiber.Ctx) error {
	body := parseReason(c)

	task, err := h.tasks.Cancel(c.Context(), c.Params("id"), body.Reason)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(task)
}
