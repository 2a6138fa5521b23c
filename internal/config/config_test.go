package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected HTTPAddr: %q", cfg.HTTPAddr)
	}
	if cfg.SyncWeeks != 18 {
		t.Fatalf("unexpected SyncWeeks: %d", cfg.SyncWeeks)
	}
	if len(cfg.SleeperStatsMirrors) != 2 {
		t.Fatalf("expected two default stats mirrors, got %d", len(cfg.SleeperStatsMirrors))
	}
	if !cfg.DBDisablePreparedBinary {
		t.Fatalf("expected DBDisablePreparedBinary=true by default")
	}
	if cfg.JobTimeout != 20*time.Minute {
		t.Fatalf("unexpected JobTimeout: %s", cfg.JobTimeout)
	}
	if cfg.LogLevel.String() != "info" {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel.String())
	}
}

func TestLoad_SleeperOverrides(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SLEEPER_PLAYERS_CACHE_TTL", "1h")
	t.Setenv("SLEEPER_WEEK_TIMEOUT", "45s")
	t.Setenv("SLEEPER_MAX_RETRIES", "5")
	t.Setenv("SLEEPER_STATS_MIRRORS", "https://mirror-a.example/stats, https://mirror-b.example/stats")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SleeperPlayersCacheTTL != time.Hour {
		t.Fatalf("unexpected SleeperPlayersCacheTTL: %s", cfg.SleeperPlayersCacheTTL)
	}
	if cfg.SleeperWeekTimeout != 45*time.Second {
		t.Fatalf("unexpected SleeperWeekTimeout: %s", cfg.SleeperWeekTimeout)
	}
	if cfg.SleeperMaxRetries != 5 {
		t.Fatalf("unexpected SleeperMaxRetries: %d", cfg.SleeperMaxRetries)
	}
	if len(cfg.SleeperStatsMirrors) != 2 || cfg.SleeperStatsMirrors[1] != "https://mirror-b.example/stats" {
		t.Fatalf("unexpected SleeperStatsMirrors: %v", cfg.SleeperStatsMirrors)
	}
}

func TestLoad_SyncWeeksBounds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("SYNC_WEEKS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for SYNC_WEEKS=0")
	}

	t.Setenv("SYNC_WEEKS", "23")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for SYNC_WEEKS=23")
	}

	t.Setenv("SYNC_WEEKS", "22")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SyncWeeks != 22 {
		t.Fatalf("unexpected SyncWeeks: %d", cfg.SyncWeeks)
	}
}

func TestLoad_InvalidDurationsRejected(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("NFLVERSE_STREAM_TIMEOUT", "banana")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid NFLVERSE_STREAM_TIMEOUT")
	}
}

func TestLoad_LogLevelParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("APP_LOG_LEVEL", "warning")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel.String() != "warn" {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel.String())
	}
}
