package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" || cfg.WeekStart != "monday" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("config perms = %o, want 600", perm)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := DefaultConfig()
	in.DatasetBaseURL = "https://tt.example.edu/data"
	in.Year = "2026"
	in.Session = "S2"
	in.SessionStart = "2026-02-16"
	if err := Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.DatasetBaseURL != in.DatasetBaseURL || out.Year != "2026" || out.Session != "S2" {
		t.Fatalf("round trip lost fields: %+v", out)
	}
}

func TestNormalizeFixesBadWeekStart(t *testing.T) {
	c := &Config{WeekStart: "caturday"}
	c.Normalize()
	if c.WeekStart != "monday" {
		t.Fatalf("WeekStart = %q", c.WeekStart)
	}
}
