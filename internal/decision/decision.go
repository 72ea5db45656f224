// Package decision implements the subcontractor accept/decline flow: local
// validation, a single atomic remote transition, then best-effort admin
// notification. The remote call is the sole authority on whether the
// transition happened; nothing here re-checks assignment or status locally.
package decision

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"paintdash/scheduler-api/internal/notify"
	"paintdash/scheduler-api/models"
)

// DefaultMinDisplay is the floor on how long a submission stays in flight.
// Responses faster than this are held back so the caller's progress
// indicator never flashes. Applies to success and failure alike.
const DefaultMinDisplay = 500 * time.Millisecond

var (
	ErrDecisionInFlight = errors.New("a decision for this job is already being submitted")
	ErrInvalidDecision  = errors.New("decision must be accepted or declined")
	ErrReasonRequired   = errors.New("declining requires a valid reason")
)

// Store is the single remote operation the submitter depends on.
type Store interface {
	DecideAssignment(jobID, subID uuid.UUID, decision models.AssignmentStatus, reason *models.DeclineReason) (models.DecisionResult, error)
}

// Notifier receives committed decisions for fan-out. Implementations must
// swallow their own errors.
type Notifier interface {
	AssignmentDecided(ctx context.Context, ev notify.Event)
}

// Request carries one decision plus the display fields the admin fan-out
// needs.
type Request struct {
	JobID             uuid.UUID
	SubcontractorID   uuid.UUID
	SubcontractorName string
	PropertyName      string
	WorkOrderLabel    string
	ScheduledDate     *time.Time
	Decision          models.AssignmentStatus
	Reason            *models.DeclineReason
}

// Submitter runs accept/decline submissions with a per-job in-flight guard.
type Submitter struct {
	store      Store
	notifier   Notifier
	log        *logrus.Logger
	minDisplay time.Duration

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewSubmitter(store Store, notifier Notifier, log *logrus.Logger) *Submitter {
	return &Submitter{
		store:      store,
		notifier:   notifier,
		log:        log,
		minDisplay: DefaultMinDisplay,
		inFlight:   make(map[uuid.UUID]struct{}),
	}
}

// WithMinDisplay overrides the minimum in-flight duration.
func (s *Submitter) WithMinDisplay(d time.Duration) *Submitter {
	s.minDisplay = d
	return s
}

func validate(req Request) error {
	switch req.Decision {
	case models.AssignmentAccepted:
		return nil
	case models.AssignmentDeclined:
		if req.Reason == nil {
			return ErrReasonRequired
		}
		if err := req.Reason.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrReasonRequired, err)
		}
		return nil
	default:
		return ErrInvalidDecision
	}
}

// Submit runs one accept/decline decision. Validation failures return
// immediately, before any network call and without consuming the minimum
// display window. A success=false result is a rejection by the transition
// guard (the job already left pending, or the caller is no longer
// assigned); it is surfaced to the user and never retried here. The
// in-flight guard is cleared on every exit path so the user can retry.
func (s *Submitter) Submit(ctx context.Context, req Request) (models.DecisionResult, error) {
	if err := validate(req); err != nil {
		return models.DecisionResult{}, err
	}

	s.mu.Lock()
	if _, busy := s.inFlight[req.JobID]; busy {
		s.mu.Unlock()
		return models.DecisionResult{}, ErrDecisionInFlight
	}
	s.inFlight[req.JobID] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, req.JobID)
		s.mu.Unlock()
	}()

	started := time.Now()

	var reason *models.DeclineReason
	if req.Decision == models.AssignmentDeclined {
		reason = req.Reason
	}

	result, err := s.store.DecideAssignment(req.JobID, req.SubcontractorID, req.Decision, reason)
	if err != nil {
		s.holdMinDisplay(ctx, started)
		return models.DecisionResult{}, fmt.Errorf("submitting decision for job %s: %w", req.JobID, err)
	}
	if !result.Success {
		s.log.WithFields(logrus.Fields{
			"job_id":   req.JobID,
			"decision": req.Decision,
			"error":    result.Error,
		}).Warn("decision rejected by transition guard")
		s.holdMinDisplay(ctx, started)
		return result, nil
	}

	// Fan-out is awaited but cannot fail the committed decision; the
	// notifier swallows its own errors.
	if s.notifier != nil {
		s.notifier.AssignmentDecided(ctx, notify.Event{
			JobID:             req.JobID,
			WorkOrderLabel:    req.WorkOrderLabel,
			PropertyName:      req.PropertyName,
			SubcontractorName: req.SubcontractorName,
			Decision:          req.Decision,
			ScheduledDate:     req.ScheduledDate,
			Reason:            reason,
		})
	}

	s.holdMinDisplay(ctx, started)
	s.log.WithFields(logrus.Fields{
		"job_id":   req.JobID,
		"decision": req.Decision,
	}).Info("assignment decision committed")
	return result, nil
}

// holdMinDisplay blocks until minDisplay has elapsed since started, unless
// the caller's context ends first.
func (s *Submitter) holdMinDisplay(ctx context.Context, started time.Time) {
	remaining := s.minDisplay - time.Since(started)
	if remaining <= 0 {
		return
	}
	select {
	case <-time.After(remaining):
	case <-ctx.Done():
	}
}
