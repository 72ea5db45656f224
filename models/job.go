package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus tracks where a job's assignment sits in its sub-lifecycle.
// The scheduler core only ever moves pending to accepted or declined; the
// later stages belong to the work-order flow.
type AssignmentStatus string

const (
	AssignmentPending    AssignmentStatus = "pending"
	AssignmentAccepted   AssignmentStatus = "accepted"
	AssignmentDeclined   AssignmentStatus = "declined"
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentCompleted  AssignmentStatus = "completed"
)

// Valid reports whether s is one of the known assignment statuses.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentPending, AssignmentAccepted, AssignmentDeclined, AssignmentInProgress, AssignmentCompleted:
		return true
	}
	return false
}

// Property is the embedded property row a job select pulls in.
type Property struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// JobPhase is a lifecycle stage row. Name is free text; the phase package
// normalizes it into buckets.
type JobPhase struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color *string   `json:"color,omitempty"`
}

// JobType is the embedded job-type row.
type JobType struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Job represents a row in the jobs table, with the foreign rows the scheduler
// needs embedded by the PostgREST select. Pointer fields map to nullable
// columns.
type Job struct {
	ID                  uuid.UUID          `json:"id"`
	WorkOrderNumber     int                `json:"work_order_number"`
	PropertyID          uuid.UUID          `json:"property_id"`
	Property            *Property          `json:"property,omitempty"`
	UnitNumber          *string            `json:"unit_number,omitempty"`
	UnitSize            *string            `json:"unit_size,omitempty"`
	ScheduledDate       *time.Time         `json:"scheduled_date,omitempty"`
	Description         *string            `json:"description,omitempty"`
	PhaseID             uuid.UUID          `json:"phase_id"`
	Phase               *JobPhase          `json:"phase,omitempty"`
	JobTypeID           *uuid.UUID         `json:"job_type_id,omitempty"`
	JobType             *JobType           `json:"job_type,omitempty"`
	AssignedTo          *uuid.UUID         `json:"assigned_to,omitempty"`
	AssignmentStatus    *AssignmentStatus  `json:"assignment_status,omitempty"`
	AssignmentDecidedAt *time.Time         `json:"assignment_decided_at,omitempty"`
	DeclineReasonCode   *DeclineReasonCode `json:"decline_reason_code,omitempty"`
	DeclineReasonText   *string            `json:"decline_reason_text,omitempty"`
	CreatedBy           uuid.UUID          `json:"created_by"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// WorkOrderLabel is the zero-padded display form of the sequential
// work-order number.
func (j *Job) WorkOrderLabel() string {
	return fmt.Sprintf("WO-%05d", j.WorkOrderNumber)
}

// PropertyName returns the embedded property's name, or empty when the
// embed was not selected.
func (j *Job) PropertyName() string {
	if j.Property == nil {
		return ""
	}
	return j.Property.Name
}

// AssignmentRow builds the upsert row that persists this job's assignment.
// The write path is an upsert keyed on id, so the row must carry every
// required column of the jobs table; omitting one would null it out.
func (j *Job) AssignmentRow(assignedTo *uuid.UUID) JobAssignmentRow {
	return JobAssignmentRow{
		ID:              j.ID,
		WorkOrderNumber: j.WorkOrderNumber,
		PropertyID:      j.PropertyID,
		UnitNumber:      j.UnitNumber,
		UnitSize:        j.UnitSize,
		JobTypeID:       j.JobTypeID,
		PhaseID:         j.PhaseID,
		ScheduledDate:   j.ScheduledDate,
		CreatedBy:       j.CreatedBy,
		AssignedTo:      assignedTo,
	}
}

// JobAssignmentRow is the batched-save upsert row. AssignedTo deliberately
// has no omitempty: an unassign must serialize an explicit null to clear the
// column.
type JobAssignmentRow struct {
	ID              uuid.UUID  `json:"id"`
	WorkOrderNumber int        `json:"work_order_number"`
	PropertyID      uuid.UUID  `json:"property_id"`
	UnitNumber      *string    `json:"unit_number"`
	UnitSize        *string    `json:"unit_size"`
	JobTypeID       *uuid.UUID `json:"job_type_id"`
	PhaseID         uuid.UUID  `json:"phase_id"`
	ScheduledDate   *time.Time `json:"scheduled_date"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	AssignedTo      *uuid.UUID `json:"assigned_to"`
}
