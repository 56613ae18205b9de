package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/talentops/hireflow/pkg/log"
	"github.com/talentops/hireflow/pkg/models"
	"github.com/talentops/hireflow/pkg/notifications"
	"github.com/talentops/hireflow/pkg/persistence"
	"github.com/talentops/hireflow/pkg/schedule"
	"github.com/talentops/hireflow/pkg/workflow"
)

// Interviews orchestrates creation, reschedule, and outcome recording for
// interviews. Slot allocation (schedule and reschedule) runs its conflict
// check inside the store's write boundary, so concurrent writers on the
// same store cannot both pass the check and double-book an interviewer.
type Interviews struct {
	persistence persistence.Persistence
	dispatcher  notifications.Dispatcher
	logger      *slog.Logger
	validate    *validator.Validate
	clock       Clock
	machine     *workflow.Machine[models.InterviewStatus]
}

// NewInterviews creates the interview scheduler service.
func NewInterviews(
	persistence persistence.Persistence,
	dispatcher notifications.Dispatcher,
	logger *slog.Logger,
	clock Clock,
) *Interviews {
	return &Interviews{
		persistence: persistence,
		dispatcher:  dispatcher,
		logger:      log.Named(logger, "interviews"),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		clock:       orSystemClock(clock),
		machine:     workflow.New(models.InterviewTransitions),
	}
}

// ScheduleInterviewRequest describes a new interview slot.
type ScheduleInterviewRequest struct {
	ApplicantID     string   `json:"applicant_id"     validate:"required"`
	InterviewerIDs  []string `json:"interviewer_ids"  validate:"required,min=1,dive,required"`
	Date            string   `json:"date"             validate:"required,datetime=2006-01-02"`
	StartTime       string   `json:"start_time"       validate:"required,datetime=15:04"`
	DurationMinutes int      `json:"duration_minutes" validate:"required,min=1"`
	Notes           string   `json:"notes"`
}

// Schedule books a new interview. Every interviewer's calendar is checked
// inside the store's write boundary; any overlap fails the whole operation
// with a ConflictError naming each clashing interviewer, and no entity is
// created.
func (s *Interviews) Schedule(ctx context.Context, req ScheduleInterviewRequest) (*models.Interview, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	proposed := schedule.Slot{
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
	}

	now := s.clock()
	interview := &models.Interview{
		ID:              uuid.New().String(),
		ApplicantID:     req.ApplicantID,
		InterviewerIDs:  req.InterviewerIDs,
		Status:          models.InterviewStatusScheduled,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := interview.Timeline.Append("created", "interview scheduled", now); err != nil {
		return nil, err
	}

	err := s.persistence.Interviews().CreateValidated(ctx, interview, func(existing []*models.Interview) error {
		return s.checkConflicts(req.InterviewerIDs, proposed, existing, "")
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notifications.InterviewScheduled, interview)

	return interview, nil
}

// RescheduleInterviewRequest moves an existing interview to a new slot.
type RescheduleInterviewRequest struct {
	Date      string `json:"date"       validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required,datetime=15:04"`
	Reason    string `json:"reason"`
}

// Reschedule re-checks every interviewer's calendar, ignoring the
// interview's own prior slot, then applies the rescheduled transition and
// the new slot fields. Check and write share one store boundary, so a
// conflicting slot cannot land in between.
func (s *Interviews) Reschedule(ctx context.Context, id string, req RescheduleInterviewRequest) (*models.Interview, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	reason := req.Reason
	if reason == "" {
		reason = fmt.Sprintf("rescheduled to %s %s", req.Date, req.StartTime)
	}

	updated, err := s.persistence.Interviews().UpdateValidated(ctx, id,
		func(interview *models.Interview) error {
			if err := s.machine.Transition(interview, models.InterviewStatusRescheduled, reason, s.clock()); err != nil {
				return err
			}

			interview.Date = req.Date
			interview.StartTime = req.StartTime

			return nil
		},
		func(existing []*models.Interview) error {
			// The check runs before mutate, so the stored slot's
			// interviewers and duration come out of the snapshot itself.
			var interviewerIDs []string

			var duration int

			for _, interview := range existing {
				if interview.ID == id {
					interviewerIDs = interview.InterviewerIDs
					duration = interview.DurationMinutes

					break
				}
			}

			proposed := schedule.Slot{
				Date:            req.Date,
				StartTime:       req.StartTime,
				DurationMinutes: duration,
			}

			return s.checkConflicts(interviewerIDs, proposed, existing, id)
		})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notifications.InterviewRescheduled, updated)

	return updated, nil
}

// Cancel moves the interview to canceled. Canceled interviews stop counting
// in conflict checks immediately.
func (s *Interviews) Cancel(ctx context.Context, id, reason string) (*models.Interview, error) {
	if reason == "" {
		reason = "interview canceled"
	}

	updated, err := s.persistence.Interviews().Update(ctx, id, func(interview *models.Interview) error {
		return s.machine.Transition(interview, models.InterviewStatusCanceled, reason, s.clock())
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notifications.InterviewCanceled, updated)

	return updated, nil
}

// MarkCompleted records the interview outcome.
func (s *Interviews) MarkCompleted(ctx context.Context, id, notes string) (*models.Interview, error) {
	return s.persistence.Interviews().Update(ctx, id, func(interview *models.Interview) error {
		if err := s.machine.Transition(interview, models.InterviewStatusCompleted, "interview completed", s.clock()); err != nil {
			return err
		}

		if notes != "" {
			interview.Notes = notes
		}

		return nil
	})
}

// MarkNoShow records that the applicant did not attend.
func (s *Interviews) MarkNoShow(ctx context.Context, id, reason string) (*models.Interview, error) {
	if reason == "" {
		reason = "applicant did not attend"
	}

	return s.persistence.Interviews().Update(ctx, id, func(interview *models.Interview) error {
		return s.machine.Transition(interview, models.InterviewStatusNoShow, reason, s.clock())
	})
}

// Get returns one interview for display.
func (s *Interviews) Get(ctx context.Context, id string) (*models.Interview, error) {
	return s.persistence.Interviews().GetByID(ctx, id)
}

// List returns every interview.
func (s *Interviews) List(ctx context.Context) ([]*models.Interview, error) {
	return s.persistence.Interviews().List(ctx)
}

// checkConflicts validates the proposed slot against each interviewer's
// non-terminal interviews in the snapshot and aggregates every clash
// across interviewers. Pure over its inputs, so the stores can rerun it
// whenever a concurrent write invalidates the snapshot.
func (s *Interviews) checkConflicts(interviewerIDs []string, proposed schedule.Slot, existing []*models.Interview, excludeID string) error {
	var all []schedule.Conflict

	for _, interviewerID := range interviewerIDs {
		slots := make([]schedule.Slot, 0, len(existing))

		for _, interview := range existing {
			if s.machine.IsTerminal(interview.Status) {
				continue
			}

			if !slices.Contains(interview.InterviewerIDs, interviewerID) {
				continue
			}

			slots = append(slots, schedule.Slot{
				InterviewID:     interview.ID,
				Date:            interview.Date,
				StartTime:       interview.StartTime,
				DurationMinutes: interview.DurationMinutes,
			})
		}

		conflicts, err := schedule.Detect(interviewerID, proposed, slots, excludeID)
		if err != nil {
			return err
		}

		all = append(all, conflicts...)
	}

	if len(all) > 0 {
		return &ConflictError{Conflicts: all}
	}

	return nil
}

// notify hands a notice to the dispatcher. Delivery failures are logged and
// never affect the completed state change.
func (s *Interviews) notify(ctx context.Context, kind notifications.Kind, interview *models.Interview) {
	if s.dispatcher == nil {
		return
	}

	err := s.dispatcher.Dispatch(ctx, notifications.Notification{
		Kind:       kind,
		EntityID:   interview.ID,
		Recipient:  interview.ApplicantID,
		Detail:     fmt.Sprintf("%s %s", interview.Date, interview.StartTime),
		OccurredAt: s.clock(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to dispatch notification",
			"kind", kind, "interview_id", interview.ID, "error", err)
	}
}
