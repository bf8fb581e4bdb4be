package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journey.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeFile(t, `
store:
  path: /tmp/j.db
session:
  scoring:
    assumed_content_total: 20
persist:
  queue_size: 8
  write_timeout: 250ms
registry:
  max_open: 4
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Path != "/tmp/j.db" {
		t.Errorf("expected store path override, got %q", cfg.Store.Path)
	}
	if cfg.Session.Scoring.AssumedContentTotal != 20 {
		t.Errorf("expected content total 20, got %d", cfg.Session.Scoring.AssumedContentTotal)
	}
	if cfg.Session.Scoring.EngagementSaturationSeconds != 60 {
		t.Errorf("expected untouched saturation default, got %v", cfg.Session.Scoring.EngagementSaturationSeconds)
	}
	if cfg.Persist.QueueSize != 8 || cfg.Persist.WriteTimeout != 250*time.Millisecond {
		t.Errorf("unexpected persist config: %+v", cfg.Persist)
	}
	if cfg.Registry.MaxOpen != 4 {
		t.Errorf("expected max_open 4, got %d", cfg.Registry.MaxOpen)
	}
	if cfg.Session.Gate.MaxWeight != 1 {
		t.Errorf("expected default gate kept, got %+v", cfg.Session.Gate)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvDBPath, "/var/lib/journey.db")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Path != "/var/lib/journey.db" {
		t.Errorf("expected env db path, got %q", cfg.Store.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "store: [",
		"zero queue":     "persist:\n  queue_size: 0\n",
		"zero registry":  "registry:\n  max_open: 0\n",
		"zero content":   "session:\n  scoring:\n    assumed_content_total: 0\n",
		"weight above 1": "session:\n  gate:\n    max_weight: 2\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Registry.MaxOpen = 7
	path := filepath.Join(t.TempDir(), "nested", "journey.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
