package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paintdash/scheduler-api/internal/notify"
	"paintdash/scheduler-api/internal/timezone"
	"paintdash/scheduler-api/models"
)

type fakeRecipients struct {
	profiles []models.Profile
	err      error
}

func (f fakeRecipients) AdminRecipients() ([]models.Profile, error) {
	return f.profiles, f.err
}

type fakeInbox struct {
	rows []models.Notification
	err  error
}

func (f *fakeInbox) InsertNotifications(rows []models.Notification) error {
	f.rows = append(f.rows, rows...)
	return f.err
}

type fakeEmail struct {
	mu    sync.Mutex
	sent  []string
	fails map[string]error
}

func (f *fakeEmail) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	if err, ok := f.fails[to]; ok {
		return err
	}
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func admin(name, email string) models.Profile {
	return models.Profile{
		ID:       uuid.New(),
		FullName: name,
		Email:    email,
		Role:     models.RoleAdmin,
	}
}

func declinedEvent() notify.Event {
	scheduled := time.Date(2024, 6, 15, 0, 0, 0, 0, timezone.Location())
	return notify.Event{
		JobID:             uuid.New(),
		WorkOrderLabel:    "WO-00042",
		PropertyName:      "Maple Crossing",
		SubcontractorName: "Ray Alvarez",
		Decision:          models.AssignmentDeclined,
		ScheduledDate:     &scheduled,
		Reason:            &models.DeclineReason{Code: models.DeclineTooFar},
	}
}

func TestOneAttemptPerRecipient(t *testing.T) {
	admins := []models.Profile{
		admin("Pat Simmons", "pat@paintdash.test"),
		admin("Jo Keller", "jo@paintdash.test"),
	}
	inbox := &fakeInbox{}
	email := &fakeEmail{}
	n := notify.NewAdminNotifier(fakeRecipients{profiles: admins}, inbox, email, testLogger())

	ev := declinedEvent()
	n.AssignmentDecided(context.Background(), ev)

	require.Len(t, inbox.rows, 2)
	for _, row := range inbox.rows {
		assert.Equal(t, ev.JobID, row.JobID)
		assert.Contains(t, row.Title, "declined")
		assert.Contains(t, row.Body, "WO-00042")
		assert.Contains(t, row.Body, "too_far")
	}
	assert.ElementsMatch(t, []string{"pat@paintdash.test", "jo@paintdash.test"}, email.sent)
}

func TestEmailFailuresAreSwallowed(t *testing.T) {
	admins := []models.Profile{
		admin("Pat Simmons", "pat@paintdash.test"),
		admin("Jo Keller", "jo@paintdash.test"),
	}
	email := &fakeEmail{fails: map[string]error{"pat@paintdash.test": errors.New("smtp down")}}
	n := notify.NewAdminNotifier(fakeRecipients{profiles: admins}, &fakeInbox{}, email, testLogger())

	// Must return normally despite the failure; both attempts still happen.
	n.AssignmentDecided(context.Background(), declinedEvent())
	assert.Len(t, email.sent, 2)
}

func TestInboxFailureDoesNotStopEmails(t *testing.T) {
	admins := []models.Profile{admin("Pat Simmons", "pat@paintdash.test")}
	inbox := &fakeInbox{err: errors.New("insert rejected")}
	email := &fakeEmail{}
	n := notify.NewAdminNotifier(fakeRecipients{profiles: admins}, inbox, email, testLogger())

	n.AssignmentDecided(context.Background(), declinedEvent())
	assert.Len(t, email.sent, 1)
}

func TestRecipientLookupFailureSkipsFanOut(t *testing.T) {
	inbox := &fakeInbox{}
	email := &fakeEmail{}
	n := notify.NewAdminNotifier(fakeRecipients{err: errors.New("unreachable")}, inbox, email, testLogger())

	n.AssignmentDecided(context.Background(), declinedEvent())
	assert.Empty(t, inbox.rows)
	assert.Empty(t, email.sent)
}

func TestRecipientsWithoutEmailGetInboxOnly(t *testing.T) {
	admins := []models.Profile{admin("Pat Simmons", "")}
	inbox := &fakeInbox{}
	email := &fakeEmail{}
	n := notify.NewAdminNotifier(fakeRecipients{profiles: admins}, inbox, email, testLogger())

	n.AssignmentDecided(context.Background(), declinedEvent())
	assert.Len(t, inbox.rows, 1)
	assert.Empty(t, email.sent)
}
