// Package phase buckets free-text job-phase labels into fixed lifecycle
// stages. Phase names are operator-entered, so matching is pattern-based
// rather than an exact lookup.
package phase

import (
	"regexp"
	"strings"

	"paintdash/scheduler-api/models"
)

// Bucket is a normalized lifecycle stage.
type Bucket string

const (
	JobRequest       Bucket = "job_request"
	WorkOrder        Bucket = "work_order"
	PendingWorkOrder Bucket = "pending_work_order"
	Completed        Bucket = "completed"
	Cancelled        Bucket = "cancelled"
	Invoicing        Bucket = "invoicing"
)

// ActiveBuckets are the stages visible on the scheduling board.
var ActiveBuckets = []Bucket{JobRequest, WorkOrder, PendingWorkOrder}

var allBuckets = []Bucket{JobRequest, WorkOrder, PendingWorkOrder, Completed, Cancelled, Invoicing}

var (
	reJobRequest = regexp.MustCompile(`\bjob\s+requests?\b`)
	reWorkOrder  = regexp.MustCompile(`\bwork\s+orders?\b`)
	rePending    = regexp.MustCompile(`\bpending\b`)
	reCompleted  = regexp.MustCompile(`\bcompleted?\b`)
	reCancelled  = regexp.MustCompile(`\bcancell?ed\b`)
	reInvoicing  = regexp.MustCompile(`\binvoic(?:ing|es?)\b`)
	reArchived   = regexp.MustCompile(`\barchived?\b`)
	reSpace      = regexp.MustCompile(`\s+`)
)

func normalize(label string) string {
	return reSpace.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), " ")
}

// Matches reports whether a raw phase label belongs to the bucket. A label
// mentioning "pending" never matches the plain WorkOrder bucket, so
// "Pending Work Order" counts exactly once.
func Matches(b Bucket, label string) bool {
	l := normalize(label)
	switch b {
	case JobRequest:
		return reJobRequest.MatchString(l)
	case WorkOrder:
		return reWorkOrder.MatchString(l) && !rePending.MatchString(l)
	case PendingWorkOrder:
		return reWorkOrder.MatchString(l) && rePending.MatchString(l)
	case Completed:
		return reCompleted.MatchString(l)
	case Cancelled:
		return reCancelled.MatchString(l)
	case Invoicing:
		return reInvoicing.MatchString(l)
	}
	return false
}

// Classify finds the bucket for a label. Labels matching no bucket report
// false and stay out of every count.
func Classify(label string) (Bucket, bool) {
	for _, b := range allBuckets {
		if Matches(b, label) {
			return b, true
		}
	}
	return "", false
}

// IsArchived identifies the archive bucket, which is excluded from totals
// but never counted as a stage of its own.
func IsArchived(label string) bool {
	return reArchived.MatchString(normalize(label))
}

// PhaseCounts aggregates one property's jobs per lifecycle bucket. Total
// counts every non-archived job, bucketed or not.
type PhaseCounts struct {
	JobRequest       int `json:"job_request"`
	WorkOrder        int `json:"work_order"`
	PendingWorkOrder int `json:"pending_work_order"`
	Completed        int `json:"completed"`
	Cancelled        int `json:"cancelled"`
	Invoicing        int `json:"invoicing"`
	Total            int `json:"total"`
}

// Counts classifies the given jobs by their embedded phase labels. Jobs with
// no embedded phase are skipped.
func Counts(jobs []models.Job) PhaseCounts {
	var pc PhaseCounts
	for i := range jobs {
		if jobs[i].Phase == nil {
			continue
		}
		label := jobs[i].Phase.Name
		if !IsArchived(label) {
			pc.Total++
		}
		b, ok := Classify(label)
		if !ok {
			continue
		}
		switch b {
		case JobRequest:
			pc.JobRequest++
		case WorkOrder:
			pc.WorkOrder++
		case PendingWorkOrder:
			pc.PendingWorkOrder++
		case Completed:
			pc.Completed++
		case Cancelled:
			pc.Cancelled++
		case Invoicing:
			pc.Invoicing++
		}
	}
	return pc
}
