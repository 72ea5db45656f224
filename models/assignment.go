package models

import (
	"fmt"
	"strings"
)

// DeclineReasonCode is the closed set of reasons a subcontractor may give
// when declining an assignment.
type DeclineReasonCode string

const (
	DeclineScheduleConflict DeclineReasonCode = "schedule_conflict"
	DeclineTooFar           DeclineReasonCode = "too_far"
	DeclineScopeMismatch    DeclineReasonCode = "scope_mismatch"
	DeclineRateIssue        DeclineReasonCode = "rate_issue"
	DeclineOther            DeclineReasonCode = "other"
)

// Valid reports whether c is one of the five known reason codes.
func (c DeclineReasonCode) Valid() bool {
	switch c {
	case DeclineScheduleConflict, DeclineTooFar, DeclineScopeMismatch, DeclineRateIssue, DeclineOther:
		return true
	}
	return false
}

// DeclineReason pairs a reason code with free text. Text is mandatory when
// the code is "other" and optional otherwise.
type DeclineReason struct {
	Code DeclineReasonCode `json:"code"`
	Text string            `json:"text,omitempty"`
}

// Validate enforces the reason-code rules before anything leaves the process.
func (r DeclineReason) Validate() error {
	if !r.Code.Valid() {
		return fmt.Errorf("unknown decline reason code %q", r.Code)
	}
	if r.Code == DeclineOther && strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("decline reason %q requires an explanation", DeclineOther)
	}
	return nil
}

// DecisionResult mirrors the payload returned by the decide_assignment
// database function. Success false means the guarded transition did not
// fire, e.g. the job already left pending in another session.
type DecisionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
