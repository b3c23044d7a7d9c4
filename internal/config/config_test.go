package config_test

import (
	"testing"
	"time"

	"github.com/flipflow/flipflow-backend/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/flipflow_test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PAYMENT_KEY_ID", "key_test")
	t.Setenv("PAYMENT_KEY_SECRET", "shhh")
}

func TestLoadCacheDefaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{
		"CACHE_STALE_TIME",
		"CACHE_RETRY_BASE_DELAY",
		"CACHE_RETRY_MULTIPLIER",
		"CACHE_RETRY_MAX_DELAY",
		"CACHE_RETRY_MAX_ATTEMPTS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cache.StaleTime != 30*time.Second {
		t.Fatalf("StaleTime = %v, want 30s", cfg.Cache.StaleTime)
	}
	if cfg.Cache.BaseDelay != 200*time.Millisecond {
		t.Fatalf("BaseDelay = %v, want 200ms", cfg.Cache.BaseDelay)
	}
	if cfg.Cache.Multiplier != 2.0 {
		t.Fatalf("Multiplier = %v, want 2.0", cfg.Cache.Multiplier)
	}
	if cfg.Cache.MaxDelay != 5*time.Second {
		t.Fatalf("MaxDelay = %v, want 5s", cfg.Cache.MaxDelay)
	}
	if cfg.Cache.MaxAttempts != 3 {
		t.Fatalf("MaxAttempts = %d, want 3", cfg.Cache.MaxAttempts)
	}
}

func TestLoadCacheKnobsFromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("CACHE_STALE_TIME", "45s")
	t.Setenv("CACHE_RETRY_BASE_DELAY", "100ms")
	t.Setenv("CACHE_RETRY_MULTIPLIER", "1.5")
	t.Setenv("CACHE_RETRY_MAX_DELAY", "2s")
	t.Setenv("CACHE_RETRY_MAX_ATTEMPTS", "5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cache.StaleTime != 45*time.Second {
		t.Fatalf("StaleTime = %v, want 45s", cfg.Cache.StaleTime)
	}
	if cfg.Cache.BaseDelay != 100*time.Millisecond {
		t.Fatalf("BaseDelay = %v, want 100ms", cfg.Cache.BaseDelay)
	}
	if cfg.Cache.Multiplier != 1.5 {
		t.Fatalf("Multiplier = %v, want 1.5", cfg.Cache.Multiplier)
	}
	if cfg.Cache.MaxDelay != 2*time.Second {
		t.Fatalf("MaxDelay = %v, want 2s", cfg.Cache.MaxDelay)
	}
	if cfg.Cache.MaxAttempts != 5 {
		t.Fatalf("MaxAttempts = %d, want 5", cfg.Cache.MaxAttempts)
	}
}

func TestLoadIgnoresUnparseableKnobs(t *testing.T) {
	setRequired(t)
	t.Setenv("CACHE_RETRY_MULTIPLIER", "fast")
	t.Setenv("CACHE_RETRY_MAX_ATTEMPTS", "-1")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cache.Multiplier != 2.0 {
		t.Fatalf("Multiplier = %v, want fallback 2.0", cfg.Cache.Multiplier)
	}
	if cfg.Cache.MaxAttempts != 3 {
		t.Fatalf("MaxAttempts = %d, want fallback 3", cfg.Cache.MaxAttempts)
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	cases := []struct {
		name  string
		unset string
	}{
		{"database url", "DATABASE_URL"},
		{"jwt secret", "JWT_SECRET"},
		{"payment secret", "PAYMENT_KEY_SECRET"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.unset, "")
			if _, err := config.Load(); err == nil {
				t.Fatalf("Load succeeded without %s", tc.unset)
			}
		})
	}
}
