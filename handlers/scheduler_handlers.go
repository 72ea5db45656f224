package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"paintdash/scheduler-api/internal/availability"
	"paintdash/scheduler-api/internal/board"
	"paintdash/scheduler-api/internal/timezone"
	"paintdash/scheduler-api/models"
	"paintdash/scheduler-api/utils"
)

// SubcontractorView is a roster entry on the board, flagged with
// availability for the selected day and carrying that day's assigned jobs.
type SubcontractorView struct {
	models.Profile
	Available    bool         `json:"available"`
	AssignedJobs []models.Job `json:"assigned_jobs"`
}

// BoardView is the scheduler screen's payload for one day.
type BoardView struct {
	Date           string              `json:"date"`
	Jobs           []models.Job        `json:"jobs"`
	UnassignedJobs []models.Job        `json:"unassigned_jobs"`
	Subcontractors []SubcontractorView `json:"subcontractors"`
}

func buildBoardView(b *board.Board) BoardView {
	selected := b.SelectedDate()
	view := BoardView{
		Date:           selected.Format("2006-01-02"),
		Jobs:           b.FilteredJobs(),
		UnassignedJobs: b.UnassignedJobs(),
	}
	for _, sub := range b.Subcontractors() {
		view.Subcontractors = append(view.Subcontractors, SubcontractorView{
			Profile:      sub,
			Available:    availability.IsAvailableOnDate(sub.WorkingDays, selected),
			AssignedJobs: b.AssignedJobs(sub.ID),
		})
	}
	return view
}

func parseDateParam(q string) (time.Time, error) {
	if q == "" {
		return timezone.Today(), nil
	}
	return timezone.ParseDate(q)
}

// GetBoard returns the scheduling board for a date: the day's jobs, which of
// them are unassigned, and the roster split by availability.
// GET /api/v1/scheduler/board?date=2006-01-02
func (h *ApplicationHandler) GetBoard(c *fiber.Ctx) error {
	selected, err := parseDateParam(c.Query("date"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	b := h.newBoard()
	if err := b.Load(); err != nil {
		h.Log.WithError(err).Error("board load failed")
		return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Could not load scheduler data: %v", err))
	}
	b.SetDate(selected)

	return utils.RespondWithJSON(c, fiber.StatusOK, buildBoardView(b))
}

// SaveAssignmentsRequest carries one confirmation's worth of board edits:
// the assignment map keyed by job id, plus explicit removals. Force lets an
// administrator override the availability check.
type SaveAssignmentsRequest struct {
	Date        string            `json:"date" validate:"required"`
	Assignments map[string]string `json:"assignments"`
	Unassign    []string          `json:"unassign"`
	Force       bool              `json:"force"`
}

// SaveAssignments applies a batch of drag/drop edits and persists them in
// one confirmation. A mid-run batch failure is reported as-is: earlier
// batches stay committed and the client retries the whole save, which the
// idempotent upsert tolerates.
// POST /api/v1/scheduler/assignments
func (h *ApplicationHandler) SaveAssignments(c *fiber.Ctx) error {
	req := new(SaveAssignmentsRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse request JSON: %v", err))
	}
	if err := validate.Struct(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), "; "))
	}
	selected, err := timezone.ParseDate(req.Date)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	b := h.newBoard()
	if err := b.Load(); err != nil {
		h.Log.WithError(err).Error("board load failed")
		return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Could not load scheduler data: %v", err))
	}
	b.SetDate(selected)

	for jobIDStr, subIDStr := range req.Assignments {
		jobID, err := uuid.Parse(jobIDStr)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid job ID %q", jobIDStr))
		}
		subID, err := uuid.Parse(subIDStr)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid subcontractor ID %q", subIDStr))
		}
		if err := b.Assign(jobID, subID, req.Force); err != nil {
			switch {
			case errors.Is(err, board.ErrSubcontractorUnavailable):
				return utils.RespondWithError(c, fiber.StatusUnprocessableEntity, err.Error())
			case errors.Is(err, board.ErrUnknownJob), errors.Is(err, board.ErrUnknownSubcontractor):
				return utils.RespondWithError(c, fiber.StatusNotFound, err.Error())
			default:
				return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
			}
		}
	}

	for _, jobIDStr := range req.Unassign {
		jobID, err := uuid.Parse(jobIDStr)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Invalid job ID %q", jobIDStr))
		}
		if err := b.Unassign(jobID); err != nil {
			return utils.RespondWithError(c, fiber.StatusNotFound, err.Error())
		}
	}

	if b.HasChanges() {
		if err := b.Save(); err != nil {
			h.Log.WithError(err).Error("assignment save failed")
			return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Could not save assignments: %v", err))
		}
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, buildBoardView(b))
}
