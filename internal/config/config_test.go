package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("RACE_FETCH_STATES", " ca, ny ,,tx")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "8080" || cfg.RefreshLimitPerHour != 3 || cfg.ScoringWorkers != 4 || cfg.DBMaxConns != 10 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.RaceCacheTTL() != 24*time.Hour || cfg.RaceFetchBatchDelay() != 500*time.Millisecond || cfg.RaceAPITimeout() != 15*time.Second {
		t.Fatalf("unexpected durations %+v", cfg)
	}
	want := []string{"CA", "NY", "TX"}
	if len(cfg.RaceFetchStates) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.RaceFetchStates)
	}
	for i := range want {
		if cfg.RaceFetchStates[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cfg.RaceFetchStates)
		}
	}
}

func TestLoadConfig_InvalidNumber(t *testing.T) {
	t.Setenv("SCORING_WORKERS", "many")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}
