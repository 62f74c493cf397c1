package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/paywatch_test")
	t.Setenv("WATCH_ADDRESS", "TWatchedAddr")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Feed.PageSize != 10 {
		t.Errorf("expected default page size 10, got %d", cfg.Feed.PageSize)
	}
	if cfg.Feed.PageDelay != 500*time.Millisecond {
		t.Errorf("expected default page delay 500ms, got %v", cfg.Feed.PageDelay)
	}
	if cfg.Reconcile.MatchTolerance.String() != "2" {
		t.Errorf("expected default tolerance 2, got %s", cfg.Reconcile.MatchTolerance)
	}
}

func TestLoad_CORSOriginsTrimmed(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://paywatch.app ,https://staging.paywatch.app")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"http://localhost:3000", "https://paywatch.app", "https://staging.paywatch.app"}
	if len(cfg.CORSOrigins) != len(expected) {
		t.Fatalf("expected %d origins, got %d", len(expected), len(cfg.CORSOrigins))
	}
	for i, origin := range cfg.CORSOrigins {
		if origin != expected[i] {
			t.Errorf("expected origin %q, got %q", expected[i], origin)
		}
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("WATCH_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/paywatch_test")
	if _, err := Load(); err == nil {
		t.Error("expected error when WATCH_ADDRESS is missing")
	}
}

func TestLoad_InvalidTolerance(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MATCH_TOLERANCE", "not-a-number")

	if _, err := Load(); err == nil {
		t.Error("expected error for unparsable MATCH_TOLERANCE")
	}
}
