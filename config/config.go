package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds runtime settings for the scheduler API.
type Config struct {
	Port        string
	LogLevel    string
	SupabaseURL string
	SupabaseKey string
}

// Load populates Config from environment variables. Missing required
// variables are reported together in a single error.
func Load() (Config, error) {
	cfg := Config{
		Port:     "8080",
		LogLevel: "info",
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
	cfg.SupabaseKey = os.Getenv("SUPABASE_SERVICE_KEY")

	var missing []string
	if cfg.SupabaseURL == "" {
		missing = append(missing, "SUPABASE_URL")
	}
	if cfg.SupabaseKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_KEY")
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}
