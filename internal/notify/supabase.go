package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	supa "github.com/supabase-community/supabase-go"

	"paintdash/scheduler-api/models"
)

const notificationsTable = "notifications"

// SupabaseInbox writes in-app notification rows through the shared Supabase
// client.
type SupabaseInbox struct {
	DB *supa.Client
}

func (i SupabaseInbox) InsertNotifications(rows []models.Notification) error {
	if len(rows) == 0 {
		return nil
	}
	_, _, err := i.DB.From(notificationsTable).
		Insert(rows, false, "", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("inserting %d notification rows: %w", len(rows), err)
	}
	return nil
}

// EdgeFunctionSender posts messages to the send-notification-email Supabase
// edge function. Actual delivery mechanics live behind that function.
type EdgeFunctionSender struct {
	url    string
	apiKey string
	client *http.Client
}

func NewEdgeFunctionSender(supabaseURL, serviceKey string) *EdgeFunctionSender {
	return &EdgeFunctionSender{
		url:    strings.TrimRight(supabaseURL, "/") + "/functions/v1/send-notification-email",
		apiKey: serviceKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *EdgeFunctionSender) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(map[string]string{
		"to":      to,
		"subject": subject,
		"body":    body,
	})
	if err != nil {
		return fmt.Errorf("encoding email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("invoking email function: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email function returned status %d", resp.StatusCode)
	}
	return nil
}
