package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"paintdash/scheduler-api/internal/board"
	"paintdash/scheduler-api/internal/decision"
	"paintdash/scheduler-api/internal/store"
	"paintdash/scheduler-api/models"
)

var validate = validator.New()

// DecisionSubmitter is the slice of the decision package the handlers need;
// an interface so tests can stub the submission.
type DecisionSubmitter interface {
	Submit(ctx context.Context, req decision.Request) (models.DecisionResult, error)
}

// ApplicationHandler holds shared dependencies for the HTTP handlers.
type ApplicationHandler struct {
	Store     *store.Store
	Submitter DecisionSubmitter
	Log       *logrus.Logger
}

// NewApplicationHandler creates an ApplicationHandler with the given
// dependencies.
func NewApplicationHandler(st *store.Store, submitter DecisionSubmitter, log *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		Store:     st,
		Submitter: submitter,
		Log:       log,
	}
}

// newBoard builds a fresh request-scoped board. Boards are never shared
// between requests; each save reloads from the server anyway.
func (h *ApplicationHandler) newBoard() *board.Board {
	return board.New(h.Store, h.Log)
}
