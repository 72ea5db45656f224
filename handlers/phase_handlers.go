package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"paintdash/scheduler-api/internal/phase"
	"paintdash/scheduler-api/utils"
)

// GetPhaseCounts aggregates a property's jobs into lifecycle buckets.
// Jobs whose phase label matches no bucket are left out of the buckets but
// still count toward the non-archived total.
// GET /api/v1/properties/:propertyId/phase-counts
func (h *ApplicationHandler) GetPhaseCounts(c *fiber.Ctx) error {
	propertyID, err := uuid.Parse(c.Params("propertyId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid property ID format")
	}

	jobs, err := h.Store.JobsForProperty(propertyID)
	if err != nil {
		h.Log.WithError(err).Error("property jobs fetch failed")
		return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Could not retrieve property jobs: %v", err))
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, phase.Counts(jobs))
}
