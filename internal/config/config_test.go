package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Glance.TopN != 3 || cfg.Glance.Privacy != "visible" || cfg.TimeZone != "UTC" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	body := `
time_zone: Europe/Berlin
glance:
  top_n: 5
  privacy: masked
  pinned_project: proj_home
storage:
  driver: memory
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TimeZone != "Europe/Berlin" {
		t.Fatalf("time zone = %q", cfg.TimeZone)
	}
	if cfg.Glance.TopN != 5 || cfg.Glance.Privacy != "masked" || cfg.Glance.PinnedProject != "proj_home" {
		t.Fatalf("glance config = %+v", cfg.Glance)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Location().String() != "Europe/Berlin" {
		t.Fatalf("location = %s", cfg.Location())
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"bad zone":    "time_zone: Mars/Olympus\n",
		"bad privacy": "glance:\n  privacy: translucent\n",
		"bad topn":    "glance:\n  top_n: 0\n",
		"bad driver":  "storage:\n  driver: postgres\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected %s to be rejected", name)
			}
		})
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("TASKGLANCE_TOP_N", "7")
	t.Setenv("TASKGLANCE_PRIVACY", "hidden")
	t.Setenv("TASKGLANCE_ADDR", ":9999")

	cfg := FromEnv(Default())
	if cfg.Glance.TopN != 7 || cfg.Glance.Privacy != "hidden" || cfg.Server.Addr != ":9999" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}

	t.Setenv("TASKGLANCE_TOP_N", "not-a-number")
	cfg = FromEnv(Default())
	if cfg.Glance.TopN != 3 {
		t.Fatalf("unparsable env value must leave default, got %d", cfg.Glance.TopN)
	}
}
