package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"paintdash/scheduler-api/internal/decision"
	"paintdash/scheduler-api/internal/store"
	"paintdash/scheduler-api/models"
	"paintdash/scheduler-api/utils"
)

// DecisionRequest is the accept/decline submission body.
type DecisionRequest struct {
	SubcontractorID string  `json:"subcontractor_id" validate:"required,uuid"`
	Decision        string  `json:"decision" validate:"required,oneof=accepted declined"`
	ReasonCode      *string `json:"reason_code,omitempty" validate:"omitempty,oneof=schedule_conflict too_far scope_mismatch rate_issue other"`
	ReasonText      *string `json:"reason_text,omitempty"`
}

// SubmitDecision lets the assigned subcontractor accept or decline a pending
// job. Validation runs fully before any data access; the status transition
// itself happens in a single guarded database call, so a decision that lost
// a race in another session comes back as a 409 rather than a silent
// overwrite.
// POST /api/v1/jobs/:jobId/decision
func (h *ApplicationHandler) SubmitDecision(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid job ID format")
	}

	req := new(DecisionRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse decision JSON: %v", err))
	}
	if err := validate.Struct(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), "; "))
	}
	subID, err := uuid.Parse(req.SubcontractorID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid subcontractor ID format")
	}

	var reason *models.DeclineReason
	if req.Decision == string(models.AssignmentDeclined) {
		if req.ReasonCode == nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "Declining requires a reason code")
		}
		r := models.DeclineReason{Code: models.DeclineReasonCode(*req.ReasonCode)}
		if req.ReasonText != nil {
			r.Text = *req.ReasonText
		}
		if err := r.Validate(); err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		}
		reason = &r
	}

	job, err := h.Store.JobByID(jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		h.Log.WithError(err).Error("job lookup failed")
		return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Could not retrieve job: %v", err))
	}
	sub, err := h.Store.ProfileByID(subID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Subcontractor not found")
		}
		h.Log.WithError(err).Error("profile lookup failed")
		return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Could not retrieve subcontractor: %v", err))
	}

	result, err := h.Submitter.Submit(c.Context(), decision.Request{
		JobID:             jobID,
		SubcontractorID:   subID,
		SubcontractorName: sub.FullName,
		PropertyName:      job.PropertyName(),
		WorkOrderLabel:    job.WorkOrderLabel(),
		ScheduledDate:     job.ScheduledDate,
		Decision:          models.AssignmentStatus(req.Decision),
		Reason:            reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, decision.ErrDecisionInFlight):
			return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, decision.ErrInvalidDecision), errors.Is(err, decision.ErrReasonRequired):
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		default:
			h.Log.WithError(err).Error("decision submission failed")
			return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Could not submit decision: %v", err))
		}
	}
	if !result.Success {
		return utils.RespondWithError(c, fiber.StatusConflict, result.Error)
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, result)
}
