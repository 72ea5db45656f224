// Package board implements the assignment model behind the scheduling
// screen: an in-memory job-to-subcontractor map seeded from the persisted
// rows, edited locally, and flushed in one confirmation step.
package board

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"paintdash/scheduler-api/internal/availability"
	"paintdash/scheduler-api/internal/timezone"
	"paintdash/scheduler-api/models"
)

// SaveBatchSize is how many upsert rows go into a single store call.
// Batches are written sequentially, so a failure leaves a clean prefix of
// committed batches.
const SaveBatchSize = 10

var (
	ErrUnknownJob               = errors.New("job is not on the board")
	ErrUnknownSubcontractor     = errors.New("subcontractor is not on the board")
	ErrSubcontractorUnavailable = errors.New("subcontractor does not work on the job's scheduled date")
)

// Store is the slice of the data layer the board needs.
type Store interface {
	ActivePhaseJobs() ([]models.Job, error)
	Subcontractors() ([]models.Profile, error)
	BatchUpsertJobs(rows []models.JobAssignmentRow) error
}

// Board holds one scheduling session: all active-phase jobs, the
// subcontractor roster, and the locally edited assignment state.
type Board struct {
	store Store
	log   *logrus.Logger

	selectedDate   time.Time
	jobs           []models.Job
	subcontractors []models.Profile

	// assignments holds the local job-to-subcontractor map. One key per
	// job keeps the at-most-one-assignee invariant unrepresentable to break.
	assignments map[uuid.UUID]uuid.UUID
	// unassign tracks explicit removals of persisted assignments, distinct
	// from jobs that were never assigned.
	unassign map[uuid.UUID]struct{}
	dirty    bool
}

func New(store Store, log *logrus.Logger) *Board {
	return &Board{
		store:        store,
		log:          log,
		selectedDate: timezone.Today(),
		assignments:  make(map[uuid.UUID]uuid.UUID),
		unassign:     make(map[uuid.UUID]struct{}),
	}
}

// Load fetches the active-phase jobs and the subcontractor roster, in
// parallel, and reseeds the assignment map from the persisted rows. Unsaved
// local edits are discarded: a reload is a hard reset, never a merge.
func (b *Board) Load() error {
	type jobsResult struct {
		jobs []models.Job
		err  error
	}
	type subsResult struct {
		subs []models.Profile
		err  error
	}

	jobsCh := make(chan jobsResult, 1)
	subsCh := make(chan subsResult, 1)
	go func() {
		jobs, err := b.store.ActivePhaseJobs()
		jobsCh <- jobsResult{jobs, err}
	}()
	go func() {
		subs, err := b.store.Subcontractors()
		subsCh <- subsResult{subs, err}
	}()

	jr := <-jobsCh
	sr := <-subsCh
	if jr.err != nil {
		return fmt.Errorf("loading jobs: %w", jr.err)
	}
	if sr.err != nil {
		return fmt.Errorf("loading subcontractors: %w", sr.err)
	}

	b.jobs = jr.jobs
	b.subcontractors = sr.subs
	b.assignments = make(map[uuid.UUID]uuid.UUID, len(b.jobs))
	b.unassign = make(map[uuid.UUID]struct{})
	b.dirty = false
	for i := range b.jobs {
		if b.jobs[i].AssignedTo != nil {
			b.assignments[b.jobs[i].ID] = *b.jobs[i].AssignedTo
		}
	}
	return nil
}

// SelectedDate returns the board's current day.
func (b *Board) SelectedDate() time.Time { return b.selectedDate }

// SetDate moves the board to another day. This only re-filters the already
// loaded job set; it never refetches.
func (b *Board) SetDate(t time.Time) { b.selectedDate = timezone.DayStart(t) }

func (b *Board) NextDay()   { b.selectedDate = b.selectedDate.AddDate(0, 0, 1) }
func (b *Board) PrevDay()   { b.selectedDate = b.selectedDate.AddDate(0, 0, -1) }
func (b *Board) GoToToday() { b.selectedDate = timezone.Today() }

// Jobs returns the full loaded active-phase set.
func (b *Board) Jobs() []models.Job { return b.jobs }

// Subcontractors returns the loaded roster.
func (b *Board) Subcontractors() []models.Profile { return b.subcontractors }

// HasChanges reports whether unsaved edits exist.
func (b *Board) HasChanges() bool { return b.dirty }

// FilteredJobs returns the jobs scheduled on the selected organizational
// calendar day. Jobs without a scheduled date never appear.
func (b *Board) FilteredJobs() []models.Job {
	var out []models.Job
	for i := range b.jobs {
		if b.jobs[i].ScheduledDate != nil && timezone.DayEquals(*b.jobs[i].ScheduledDate, b.selectedDate) {
			out = append(out, b.jobs[i])
		}
	}
	return out
}

func (b *Board) jobByID(id uuid.UUID) *models.Job {
	for i := range b.jobs {
		if b.jobs[i].ID == id {
			return &b.jobs[i]
		}
	}
	return nil
}

func (b *Board) subByID(id uuid.UUID) *models.Profile {
	for i := range b.subcontractors {
		if b.subcontractors[i].ID == id {
			return &b.subcontractors[i]
		}
	}
	return nil
}

// Assign records a drop of a job onto a subcontractor. Assigning over an
// existing assignment replaces it. When the subcontractor does not work on
// the job's scheduled date the drop is rejected with
// ErrSubcontractorUnavailable unless force is set; the original screen
// prevented such drops only by rendering placement, which a server API
// cannot rely on.
func (b *Board) Assign(jobID, subID uuid.UUID, force bool) error {
	job := b.jobByID(jobID)
	if job == nil {
		return fmt.Errorf("assigning job %s: %w", jobID, ErrUnknownJob)
	}
	sub := b.subByID(subID)
	if sub == nil {
		return fmt.Errorf("assigning to %s: %w", subID, ErrUnknownSubcontractor)
	}
	if !force && job.ScheduledDate != nil && !availability.IsAvailableOnDate(sub.WorkingDays, *job.ScheduledDate) {
		return fmt.Errorf("assigning %s to %s: %w", job.WorkOrderLabel(), sub.FullName, ErrSubcontractorUnavailable)
	}

	b.assignments[jobID] = subID
	delete(b.unassign, jobID)
	b.dirty = true
	return nil
}

// Unassign removes a job's local assignment. When the job has a persisted
// assignment the removal is remembered so Save clears the column.
func (b *Board) Unassign(jobID uuid.UUID) error {
	job := b.jobByID(jobID)
	if job == nil {
		return fmt.Errorf("unassigning job %s: %w", jobID, ErrUnknownJob)
	}

	delete(b.assignments, jobID)
	if job.AssignedTo != nil {
		b.unassign[jobID] = struct{}{}
	}
	b.dirty = true
	return nil
}

// UnassignedJobs lists the selected day's jobs with no current local
// assignment, including those explicitly marked for removal.
func (b *Board) UnassignedJobs() []models.Job {
	var out []models.Job
	for _, j := range b.FilteredJobs() {
		if _, ok := b.assignments[j.ID]; !ok {
			out = append(out, j)
		}
	}
	return out
}

// AssignedJobs lists the selected day's jobs locally assigned to one
// subcontractor.
func (b *Board) AssignedJobs(subID uuid.UUID) []models.Job {
	var out []models.Job
	for _, j := range b.FilteredJobs() {
		if assigned, ok := b.assignments[j.ID]; ok && assigned == subID {
			out = append(out, j)
		}
	}
	return out
}

// dirtyRows builds one upsert row per job whose assignment changed: either a
// new subcontractor or an explicit null for a removal. Iterating jobs once
// guarantees at most one row per job id in a save.
func (b *Board) dirtyRows() []models.JobAssignmentRow {
	var rows []models.JobAssignmentRow
	for i := range b.jobs {
		j := &b.jobs[i]
		if _, marked := b.unassign[j.ID]; marked {
			if j.AssignedTo != nil {
				rows = append(rows, j.AssignmentRow(nil))
			}
			continue
		}
		if subID, ok := b.assignments[j.ID]; ok {
			if j.AssignedTo == nil || *j.AssignedTo != subID {
				assigned := subID
				rows = append(rows, j.AssignmentRow(&assigned))
			}
		}
	}
	return rows
}

// Save flushes every dirty row in fixed-size batches, sequentially. A batch
// failure aborts the run and keeps the board dirty so the whole save can be
// retried; earlier batches stay committed and the idempotent upsert makes
// re-sending them harmless. On full success the board reloads from the
// server instead of trusting local state.
func (b *Board) Save() error {
	if !b.dirty {
		return nil
	}

	rows := b.dirtyRows()
	for start := 0; start < len(rows); start += SaveBatchSize {
		end := start + SaveBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := b.store.BatchUpsertJobs(rows[start:end]); err != nil {
			b.log.WithError(err).WithFields(logrus.Fields{
				"rows_total":  len(rows),
				"batch_start": start,
			}).Error("assignment save failed mid-run")
			return fmt.Errorf("saving assignments (rows %d-%d of %d): %w", start+1, end, len(rows), err)
		}
	}

	b.log.WithField("rows", len(rows)).Info("assignments saved")
	return b.Load()
}
