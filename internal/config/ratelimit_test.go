package config

import (
	"testing"
	"time"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	for _, k := range []string{"RATE_LIMIT_ENABLED", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "RATE_LIMIT_PREFIX"} {
		t.Setenv(k, "")
	}
	cfg := LoadRateLimitConfig()
	if !cfg.Enabled || cfg.Limit != 60 || cfg.Window != time.Minute || cfg.Prefix != "rl" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadRateLimitConfigClampsWindow(t *testing.T) {
	cases := []struct {
		window string
		want   time.Duration
	}{
		{"500ms", time.Second},
		{"-5s", time.Second},
		{"0s", time.Second},
		{"2s", 2 * time.Second},
		{"garbage", time.Minute},
	}
	for _, tc := range cases {
		t.Setenv("RATE_LIMIT_WINDOW", tc.window)
		if got := LoadRateLimitConfig().Window; got != tc.want {
			t.Fatalf("window %q: got %v, want %v", tc.window, got, tc.want)
		}
	}
}

func TestLoadRateLimitConfigClampsLimit(t *testing.T) {
	t.Setenv("RATE_LIMIT_REQUESTS", "0")
	if got := LoadRateLimitConfig().Limit; got != 1 {
		t.Fatalf("limit 0 must clamp to 1, got %d", got)
	}
	t.Setenv("RATE_LIMIT_REQUESTS", "-7")
	if got := LoadRateLimitConfig().Limit; got != 1 {
		t.Fatalf("negative limit must clamp to 1, got %d", got)
	}
}
