package config

import (
	"fmt"

	postgrest "github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

var SupabaseClient *supa.Client

// InitSupabase initializes the shared Supabase client used by the
// notification inbox and any table access outside the scheduler store.
func InitSupabase(cfg Config) error {
	client, err := supa.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return fmt.Errorf("initializing supabase client: %w", err)
	}
	SupabaseClient = client
	return nil
}

// NewPostgrestClient builds the direct PostgREST client the scheduler store
// runs on; it needs the lower-level query and rpc surface.
func NewPostgrestClient(cfg Config) (*postgrest.Client, error) {
	client := postgrest.NewClient(cfg.SupabaseURL+"/rest/v1", "", map[string]string{
		"apikey":        cfg.SupabaseKey,
		"Authorization": fmt.Sprintf("Bearer %s", cfg.SupabaseKey),
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("initializing postgrest client: %w", client.ClientError)
	}
	return client, nil
}
