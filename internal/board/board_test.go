package board_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paintdash/scheduler-api/internal/board"
	"paintdash/scheduler-api/internal/timezone"
	"paintdash/scheduler-api/models"
)

// fakeStore emulates the persistence layer: upserted rows are applied to its
// job set so a reload observes them, the way PostgREST would.
type fakeStore struct {
	jobs []models.Job
	subs []models.Profile

	batches   [][]models.JobAssignmentRow
	failBatch int // index of the batch call that fails; -1 never fails
	loadCalls int
}

func newFakeStore(jobs []models.Job, subs []models.Profile) *fakeStore {
	return &fakeStore{jobs: jobs, subs: subs, failBatch: -1}
}

func (f *fakeStore) ActivePhaseJobs() ([]models.Job, error) {
	f.loadCalls++
	out := make([]models.Job, len(f.jobs))
	copy(out, f.jobs)
	return out, nil
}

func (f *fakeStore) Subcontractors() ([]models.Profile, error) {
	out := make([]models.Profile, len(f.subs))
	copy(out, f.subs)
	return out, nil
}

func (f *fakeStore) BatchUpsertJobs(rows []models.JobAssignmentRow) error {
	if f.failBatch >= 0 && len(f.batches) == f.failBatch {
		return errors.New("batch rejected")
	}
	batch := make([]models.JobAssignmentRow, len(rows))
	copy(batch, rows)
	f.batches = append(f.batches, batch)
	for _, row := range batch {
		for i := range f.jobs {
			if f.jobs[i].ID == row.ID {
				f.jobs[i].AssignedTo = row.AssignedTo
			}
		}
	}
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func dateOn(day string) time.Time {
	d, err := timezone.ParseDate(day)
	if err != nil {
		panic(err)
	}
	return d
}

func makeJob(workOrder int, scheduled time.Time) models.Job {
	return models.Job{
		ID:              uuid.New(),
		WorkOrderNumber: workOrder,
		PropertyID:      uuid.New(),
		PhaseID:         uuid.New(),
		ScheduledDate:   &scheduled,
		CreatedBy:       uuid.New(),
	}
}

func makeSub(name string, wd *models.WorkingDays) models.Profile {
	return models.Profile{
		ID:          uuid.New(),
		FullName:    name,
		Email:       name + "@example.com",
		Role:        models.RoleSubcontractor,
		WorkingDays: wd,
	}
}

func loadedBoard(t *testing.T, f *fakeStore, day string) *board.Board {
	t.Helper()
	b := board.New(f, testLogger())
	require.NoError(t, b.Load())
	b.SetDate(dateOn(day))
	return b
}

func TestLoadSeedsAssignmentsFromPersistedRows(t *testing.T) {
	sub := makeSub("Ray Alvarez", nil)
	assigned := makeJob(1, dateOn("2024-06-15"))
	assigned.AssignedTo = &sub.ID
	free := makeJob(2, dateOn("2024-06-15"))

	f := newFakeStore([]models.Job{assigned, free}, []models.Profile{sub})
	b := loadedBoard(t, f, "2024-06-15")

	assert.False(t, b.HasChanges())
	require.Len(t, b.AssignedJobs(sub.ID), 1)
	assert.Equal(t, assigned.ID, b.AssignedJobs(sub.ID)[0].ID)
	require.Len(t, b.UnassignedJobs(), 1)
	assert.Equal(t, free.ID, b.UnassignedJobs()[0].ID)
}

func TestFilteredJobsComparesEasternDays(t *testing.T) {
	// 23:30 Eastern on the 15th; in UTC this is already the 16th.
	late := time.Date(2024, 6, 15, 23, 30, 0, 0, time.FixedZone("EDT", -4*3600)).UTC()
	job := makeJob(1, late)
	other := makeJob(2, dateOn("2024-06-16"))

	f := newFakeStore([]models.Job{job, other}, nil)
	b := loadedBoard(t, f, "2024-06-15")

	filtered := b.FilteredJobs()
	require.Len(t, filtered, 1)
	assert.Equal(t, job.ID, filtered[0].ID)
}

func TestDateNavigationOnlyRefilters(t *testing.T) {
	job := makeJob(1, dateOn("2024-06-15"))
	f := newFakeStore([]models.Job{job}, nil)
	b := loadedBoard(t, f, "2024-06-15")
	require.Equal(t, 1, f.loadCalls)

	b.NextDay()
	assert.Empty(t, b.FilteredJobs())
	b.PrevDay()
	assert.Len(t, b.FilteredJobs(), 1)
	assert.Equal(t, 1, f.loadCalls, "date navigation must not refetch")
}

func TestAssignValidatesBoardMembership(t *testing.T) {
	job := makeJob(1, dateOn("2024-06-15"))
	sub := makeSub("Ray Alvarez", nil)
	f := newFakeStore([]models.Job{job}, []models.Profile{sub})
	b := loadedBoard(t, f, "2024-06-15")

	err := b.Assign(uuid.New(), sub.ID, false)
	assert.ErrorIs(t, err, board.ErrUnknownJob)
	err = b.Assign(job.ID, uuid.New(), false)
	assert.ErrorIs(t, err, board.ErrUnknownSubcontractor)
	assert.False(t, b.HasChanges())
}

func TestAssignRejectsUnavailableUnlessForced(t *testing.T) {
	// 2024-06-15 is a Saturday; the sub works Mondays only.
	job := makeJob(1, dateOn("2024-06-15"))
	sub := makeSub("Ray Alvarez", &models.WorkingDays{Monday: true})
	f := newFakeStore([]models.Job{job}, []models.Profile{sub})
	b := loadedBoard(t, f, "2024-06-15")

	err := b.Assign(job.ID, sub.ID, false)
	assert.ErrorIs(t, err, board.ErrSubcontractorUnavailable)
	assert.False(t, b.HasChanges())

	require.NoError(t, b.Assign(job.ID, sub.ID, true))
	assert.True(t, b.HasChanges())
}

func TestUnassignTracksPersistedRemovals(t *testing.T) {
	sub := makeSub("Ray Alvarez", nil)
	job := makeJob(1, dateOn("2024-06-15"))
	job.AssignedTo = &sub.ID

	f := newFakeStore([]models.Job{job}, []models.Profile{sub})
	b := loadedBoard(t, f, "2024-06-15")

	require.NoError(t, b.Unassign(job.ID))
	assert.True(t, b.HasChanges())
	assert.Empty(t, b.AssignedJobs(sub.ID))
	require.Len(t, b.UnassignedJobs(), 1)

	require.NoError(t, b.Save())
	require.Len(t, f.batches, 1)
	require.Len(t, f.batches[0], 1)
	assert.Nil(t, f.batches[0][0].AssignedTo, "removal must persist an explicit null")
	assert.False(t, b.HasChanges())
}

func TestReassignReplacesNeverDuplicates(t *testing.T) {
	first := makeSub("Ray Alvarez", nil)
	second := makeSub("Dana Whitfield", nil)
	job := makeJob(1, dateOn("2024-06-15"))

	f := newFakeStore([]models.Job{job}, []models.Profile{first, second})
	b := loadedBoard(t, f, "2024-06-15")

	require.NoError(t, b.Assign(job.ID, first.ID, false))
	require.NoError(t, b.Unassign(job.ID))
	require.NoError(t, b.Assign(job.ID, second.ID, false))
	require.NoError(t, b.Assign(job.ID, first.ID, false))

	require.NoError(t, b.Save())

	// One save, one row for the job, one final assignee.
	rowsSeen := 0
	for _, batch := range f.batches {
		for _, row := range batch {
			if row.ID == job.ID {
				rowsSeen++
				require.NotNil(t, row.AssignedTo)
				assert.Equal(t, first.ID, *row.AssignedTo)
			}
		}
	}
	assert.Equal(t, 1, rowsSeen, "a job may appear in at most one saved row")
}

func TestSaveChunksSequentially(t *testing.T) {
	sub := makeSub("Ray Alvarez", nil)
	var jobs []models.Job
	for i := 0; i < 23; i++ {
		jobs = append(jobs, makeJob(i+1, dateOn("2024-06-15")))
	}
	f := newFakeStore(jobs, []models.Profile{sub})
	b := loadedBoard(t, f, "2024-06-15")

	for _, j := range jobs {
		require.NoError(t, b.Assign(j.ID, sub.ID, false))
	}
	require.NoError(t, b.Save())

	require.Len(t, f.batches, 3)
	assert.Len(t, f.batches[0], 10)
	assert.Len(t, f.batches[1], 10)
	assert.Len(t, f.batches[2], 3)
}

func TestSavePartialFailureKeepsDirtyState(t *testing.T) {
	sub := makeSub("Ray Alvarez", nil)
	var jobs []models.Job
	for i := 0; i < 15; i++ {
		jobs = append(jobs, makeJob(i+1, dateOn("2024-06-15")))
	}
	f := newFakeStore(jobs, []models.Profile{sub})
	b := loadedBoard(t, f, "2024-06-15")
	loadsBefore := f.loadCalls

	for _, j := range jobs {
		require.NoError(t, b.Assign(j.ID, sub.ID, false))
	}
	f.failBatch = 1

	err := b.Save()
	require.Error(t, err)
	assert.Len(t, f.batches, 1, "first batch stays committed")
	assert.True(t, b.HasChanges(), "failed save must leave the board dirty for retry")
	assert.Equal(t, loadsBefore, f.loadCalls, "failed save must not reload")

	// Retry after the fault clears: idempotent re-upsert of everything.
	f.failBatch = -1
	require.NoError(t, b.Save())
	assert.False(t, b.HasChanges())
}

func TestSaveWithoutChangesIsNoOp(t *testing.T) {
	f := newFakeStore([]models.Job{makeJob(1, dateOn("2024-06-15"))}, nil)
	b := loadedBoard(t, f, "2024-06-15")

	require.NoError(t, b.Save())
	assert.Empty(t, f.batches)
}

func TestScenarioTwoJobsOneAssigned(t *testing.T) {
	sub := makeSub("Ray Alvarez", &models.WorkingDays{Saturday: true})
	job1 := makeJob(1, dateOn("2024-06-15"))
	job2 := makeJob(2, dateOn("2024-06-15"))

	f := newFakeStore([]models.Job{job1, job2}, []models.Profile{sub})
	b := loadedBoard(t, f, "2024-06-15")

	require.NoError(t, b.Assign(job1.ID, sub.ID, false))
	require.NoError(t, b.Save())

	// Save reloads from the store; the persisted state must show exactly
	// one assignment.
	assigned := b.AssignedJobs(sub.ID)
	require.Len(t, assigned, 1)
	assert.Equal(t, job1.ID, assigned[0].ID)
	require.NotNil(t, assigned[0].AssignedTo)
	assert.Equal(t, sub.ID, *assigned[0].AssignedTo)

	unassigned := b.UnassignedJobs()
	require.Len(t, unassigned, 1)
	assert.Equal(t, job2.ID, unassigned[0].ID)
}

func TestLoadFailureSurfacesError(t *testing.T) {
	f := newFakeStore(nil, nil)
	b := board.New(failingJobStore{f}, testLogger())

	err := b.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading jobs")
}

type failingJobStore struct{ *fakeStore }

func (failingJobStore) ActivePhaseJobs() ([]models.Job, error) {
	return nil, fmt.Errorf("postgrest unreachable")
}
