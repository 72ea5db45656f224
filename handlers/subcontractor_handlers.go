package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"paintdash/scheduler-api/internal/availability"
	"paintdash/scheduler-api/internal/store"
	"paintdash/scheduler-api/models"
	"paintdash/scheduler-api/utils"
)

// ListSubcontractors returns every subcontractor profile, each flagged with
// availability for the requested date (today when omitted).
// GET /api/v1/subcontractors?date=2006-01-02
func (h *ApplicationHandler) ListSubcontractors(c *fiber.Ctx) error {
	date, err := parseDateParam(c.Query("date"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	subs, err := h.Store.Subcontractors()
	if err != nil {
		h.Log.WithError(err).Error("subcontractor list failed")
		return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Could not retrieve subcontractors: %v", err))
	}

	views := make([]SubcontractorView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, SubcontractorView{
			Profile:   sub,
			Available: availability.IsAvailableOnDate(sub.WorkingDays, date),
		})
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, views)
}

// NextAvailable reports the first working date on or after "from" for one
// subcontractor. A configuration with no working days reports available
// false.
// GET /api/v1/subcontractors/:id/next-available?from=2006-01-02
func (h *ApplicationHandler) NextAvailable(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid subcontractor ID format")
	}
	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}

	profile, err := h.Store.ProfileByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Subcontractor not found")
		}
		h.Log.WithError(err).Error("profile lookup failed")
		return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Could not retrieve subcontractor: %v", err))
	}

	next, ok := availability.NextAvailableDate(profile.WorkingDays, from)
	if !ok {
		return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"available": false})
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"available": true,
		"date":      next.Format("2006-01-02"),
	})
}

// SubcontractorJobs lists a subcontractor's jobs, optionally filtered by
// assignment status for the pending/accepted/declined dashboard tabs.
// GET /api/v1/subcontractors/:id/jobs?status=pending
func (h *ApplicationHandler) SubcontractorJobs(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid subcontractor ID format")
	}

	status := models.AssignmentStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Unknown assignment status %q", status))
	}

	jobs, err := h.Store.JobsForSubcontractor(id, status)
	if err != nil {
		h.Log.WithError(err).Error("subcontractor jobs fetch failed")
		return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Could not retrieve jobs: %v", err))
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, jobs)
}
