// Package notify fans committed assignment decisions out to the
// administrative staff: one in-app notification row and one email per
// recipient. Delivery is best effort; a decision is already durable by the
// time this package sees it, so nothing here may fail or delay it.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"paintdash/scheduler-api/internal/timezone"
	"paintdash/scheduler-api/models"
)

// Event describes one committed accept/decline decision.
type Event struct {
	JobID             uuid.UUID
	WorkOrderLabel    string
	PropertyName      string
	SubcontractorName string
	Decision          models.AssignmentStatus
	ScheduledDate     *time.Time
	Reason            *models.DeclineReason
}

// RecipientSource resolves who gets notified.
type RecipientSource interface {
	AdminRecipients() ([]models.Profile, error)
}

// Inbox persists in-app notification rows.
type Inbox interface {
	InsertNotifications(rows []models.Notification) error
}

// EmailSender delivers one message to one address.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AdminNotifier is the production fan-out.
type AdminNotifier struct {
	recipients RecipientSource
	inbox      Inbox
	email      EmailSender
	log        *logrus.Logger
}

func NewAdminNotifier(recipients RecipientSource, inbox Inbox, email EmailSender, log *logrus.Logger) *AdminNotifier {
	return &AdminNotifier{recipients: recipients, inbox: inbox, email: email, log: log}
}

// AssignmentDecided notifies every admin recipient about a committed
// decision. All errors are logged and dropped. Emails go out concurrently
// but the call returns only after every attempt has finished, so the caller
// controls sequencing without ever observing a failure.
func (n *AdminNotifier) AssignmentDecided(ctx context.Context, ev Event) {
	recipients, err := n.recipients.AdminRecipients()
	if err != nil {
		n.log.WithError(err).Warn("could not resolve admin recipients; skipping decision fan-out")
		return
	}
	if len(recipients) == 0 {
		n.log.WithField("job_id", ev.JobID).Warn("no admin recipients configured for decision fan-out")
		return
	}

	subject, body := ev.render()

	rows := make([]models.Notification, 0, len(recipients))
	for _, r := range recipients {
		rows = append(rows, models.Notification{
			RecipientID: r.ID,
			JobID:       ev.JobID,
			Title:       subject,
			Body:        body,
		})
	}
	if err := n.inbox.InsertNotifications(rows); err != nil {
		n.log.WithError(err).WithField("job_id", ev.JobID).Warn("in-app notification insert failed")
	}

	var wg sync.WaitGroup
	for _, r := range recipients {
		if r.Email == "" {
			continue
		}
		wg.Add(1)
		go func(to string) {
			defer wg.Done()
			if err := n.email.Send(ctx, to, subject, body); err != nil {
				n.log.WithError(err).WithFields(logrus.Fields{
					"job_id":    ev.JobID,
					"recipient": to,
				}).Warn("decision email failed")
			}
		}(r.Email)
	}
	wg.Wait()
}

func (ev Event) render() (subject, body string) {
	verb := "accepted"
	if ev.Decision == models.AssignmentDeclined {
		verb = "declined"
	}
	subject = fmt.Sprintf("%s %s %s", ev.SubcontractorName, verb, ev.WorkOrderLabel)

	var b strings.Builder
	fmt.Fprintf(&b, "%s has %s work order %s at %s.", ev.SubcontractorName, verb, ev.WorkOrderLabel, ev.PropertyName)
	if ev.ScheduledDate != nil {
		fmt.Fprintf(&b, " Scheduled for %s.", ev.ScheduledDate.In(timezone.Location()).Format("Mon Jan 2, 2006"))
	}
	if ev.Decision == models.AssignmentDeclined && ev.Reason != nil {
		fmt.Fprintf(&b, " Reason: %s.", ev.Reason.Code)
		if ev.Reason.Text != "" {
			fmt.Fprintf(&b, " %q", ev.Reason.Text)
		}
	}
	return subject, b.String()
}
