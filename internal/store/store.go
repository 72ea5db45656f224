// Package store is the PostgREST data-access layer for the scheduler. It
// owns every table read the board and decision flows depend on, the batched
// assignment upsert, and the decide_assignment RPC.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	postgrest "github.com/supabase-community/postgrest-go"

	"paintdash/scheduler-api/internal/phase"
	"paintdash/scheduler-api/models"
)

const (
	jobsTable     = "jobs"
	profilesTable = "profiles"
	phasesTable   = "job_phases"

	// jobSelect embeds the foreign rows the scheduler renders alongside a job.
	jobSelect = "*, property:properties(id,name), phase:job_phases(id,name,color), job_type:job_types(id,name)"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("not found")

// Store wraps the PostgREST client with typed scheduler queries.
type Store struct {
	client *postgrest.Client
	log    *logrus.Logger
}

func New(client *postgrest.Client, log *logrus.Logger) *Store {
	return &Store{client: client, log: log}
}

// activePhaseIDs resolves the phase rows whose labels classify into the
// three board-visible buckets. A database with none of them degrades to an
// empty set, not an error; the board then simply shows no jobs.
func (s *Store) activePhaseIDs() ([]string, error) {
	var phases []models.JobPhase
	_, err := s.client.From(phasesTable).Select("id,name", "", false).ExecuteTo(&phases)
	if err != nil {
		return nil, fmt.Errorf("fetching job phases: %w", err)
	}

	var ids []string
	for _, p := range phases {
		for _, b := range phase.ActiveBuckets {
			if phase.Matches(b, p.Name) {
				ids = append(ids, p.ID.String())
				break
			}
		}
	}
	return ids, nil
}

// ActivePhaseJobs returns every job sitting in a board-visible phase,
// regardless of scheduled date. Date filtering is the board's concern.
func (s *Store) ActivePhaseJobs() ([]models.Job, error) {
	ids, err := s.activePhaseIDs()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		s.log.Warn("no active job phases configured; scheduler sees no jobs")
		return []models.Job{}, nil
	}

	var jobs []models.Job
	_, err = s.client.From(jobsTable).
		Select(jobSelect, "", false).
		In("phase_id", ids).
		ExecuteTo(&jobs)
	if err != nil {
		return nil, fmt.Errorf("fetching active-phase jobs: %w", err)
	}
	return jobs, nil
}

// JobByID fetches a single job with its embedded foreign rows.
func (s *Store) JobByID(id uuid.UUID) (models.Job, error) {
	var jobs []models.Job
	_, err := s.client.From(jobsTable).
		Select(jobSelect, "", false).
		Eq("id", id.String()).
		Limit(1, "").
		ExecuteTo(&jobs)
	if err != nil {
		return models.Job{}, fmt.Errorf("fetching job %s: %w", id, err)
	}
	if len(jobs) == 0 {
		return models.Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return jobs[0], nil
}

// Subcontractors returns every profile with the subcontractor role,
// including working-days configuration and avatar reference.
func (s *Store) Subcontractors() ([]models.Profile, error) {
	var profiles []models.Profile
	_, err := s.client.From(profilesTable).
		Select("*", "", false).
		Eq("role", models.RoleSubcontractor).
		ExecuteTo(&profiles)
	if err != nil {
		return nil, fmt.Errorf("fetching subcontractors: %w", err)
	}
	return profiles, nil
}

// AdminRecipients returns the administrative profiles that receive decision
// notifications.
func (s *Store) AdminRecipients() ([]models.Profile, error) {
	var profiles []models.Profile
	_, err := s.client.From(profilesTable).
		Select("*", "", false).
		Eq("role", models.RoleAdmin).
		ExecuteTo(&profiles)
	if err != nil {
		return nil, fmt.Errorf("fetching admin recipients: %w", err)
	}
	return profiles, nil
}

// ProfileByID fetches a single profile.
func (s *Store) ProfileByID(id uuid.UUID) (models.Profile, error) {
	var profiles []models.Profile
	_, err := s.client.From(profilesTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Limit(1, "").
		ExecuteTo(&profiles)
	if err != nil {
		return models.Profile{}, fmt.Errorf("fetching profile %s: %w", id, err)
	}
	if len(profiles) == 0 {
		return models.Profile{}, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return profiles[0], nil
}

// JobsForSubcontractor lists jobs assigned to one subcontractor, optionally
// filtered by assignment status for the dashboard tabs.
func (s *Store) JobsForSubcontractor(subID uuid.UUID, status models.AssignmentStatus) ([]models.Job, error) {
	q := s.client.From(jobsTable).
		Select(jobSelect, "", false).
		Eq("assigned_to", subID.String())
	if status != "" {
		q = q.Eq("assignment_status", string(status))
	}

	var jobs []models.Job
	_, err := q.ExecuteTo(&jobs)
	if err != nil {
		return nil, fmt.Errorf("fetching jobs for subcontractor %s: %w", subID, err)
	}
	return jobs, nil
}

// JobsForProperty lists one property's jobs with their phases, for the
// phase-count aggregate.
func (s *Store) JobsForProperty(propertyID uuid.UUID) ([]models.Job, error) {
	var jobs []models.Job
	_, err := s.client.From(jobsTable).
		Select(jobSelect, "", false).
		Eq("property_id", propertyID.String()).
		ExecuteTo(&jobs)
	if err != nil {
		return nil, fmt.Errorf("fetching jobs for property %s: %w", propertyID, err)
	}
	return jobs, nil
}

// BatchUpsertJobs writes one batch of assignment rows. The upsert is keyed
// on id, so re-sending an already-committed row is harmless; callers may
// retry a whole save after a partial failure.
func (s *Store) BatchUpsertJobs(rows []models.JobAssignmentRow) error {
	if len(rows) == 0 {
		return nil
	}
	_, _, err := s.client.From(jobsTable).
		Insert(rows, true, "id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("upserting %d job rows: %w", len(rows), err)
	}
	return nil
}

// DecideAssignment invokes the decide_assignment database function: a single
// conditional update that only fires while the job is still pending and
// assigned to the given subcontractor. The function's success/error payload
// is returned verbatim; a transport failure is an error instead.
func (s *Store) DecideAssignment(jobID, subID uuid.UUID, decision models.AssignmentStatus, reason *models.DeclineReason) (models.DecisionResult, error) {
	params := map[string]interface{}{
		"p_job_id":           jobID.String(),
		"p_subcontractor_id": subID.String(),
		"p_decision":         string(decision),
		"p_reason_code":      nil,
		"p_reason_text":      nil,
	}
	if reason != nil {
		params["p_reason_code"] = string(reason.Code)
		if reason.Text != "" {
			params["p_reason_text"] = reason.Text
		}
	}

	body := s.client.Rpc("decide_assignment", "", params)
	if s.client.ClientError != nil {
		return models.DecisionResult{}, fmt.Errorf("decide_assignment rpc: %w", s.client.ClientError)
	}

	var result models.DecisionResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return models.DecisionResult{}, fmt.Errorf("decoding decide_assignment response %q: %w", body, err)
	}
	return result, nil
}
