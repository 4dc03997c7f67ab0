package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.TickMillis != 50 {
		t.Errorf("TickMillis = %d, want 50", cfg.TickMillis)
	}
	if cfg.File.AllowRead || cfg.File.AllowWrite || cfg.Web.Allow || cfg.SQL.Allow {
		t.Errorf("host access not disabled by default")
	}
	if cfg.File.PathLimit != "data" {
		t.Errorf("PathLimit = %q, want %q", cfg.File.PathLimit, "data")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.toml")
	body := `
scripts_path = "my_scripts"
tick_millis = 20

[file]
allow_read = true
path_limit = "none"

[web]
allow = true
timeout_seconds = 5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ScriptsPath != "my_scripts" {
		t.Errorf("ScriptsPath = %q", cfg.ScriptsPath)
	}
	if cfg.TickMillis != 20 {
		t.Errorf("TickMillis = %d", cfg.TickMillis)
	}
	if !cfg.File.AllowRead || cfg.File.PathLimit != "none" {
		t.Errorf("file section not applied: %+v", cfg.File)
	}
	if !cfg.Web.Allow || cfg.Web.TimeoutSeconds != 5 {
		t.Errorf("web section not applied: %+v", cfg.Web)
	}
	// Unset keys keep their defaults.
	if cfg.DataPath != "data" {
		t.Errorf("DataPath = %q, want default", cfg.DataPath)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Errorf("missing file did not error")
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.ScriptsPath != "scripts" {
		t.Errorf("ScriptsPath = %q", cfg.ScriptsPath)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QUILL_SCRIPTS_PATH", "env_scripts")
	t.Setenv("QUILL_TICK_MILLIS", "10")
	t.Setenv("QUILL_ALLOW_FILE_READ", "true")
	t.Setenv("QUILL_ALLOW_WEB", "true")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ScriptsPath != "env_scripts" {
		t.Errorf("ScriptsPath = %q", cfg.ScriptsPath)
	}
	if cfg.TickMillis != 10 {
		t.Errorf("TickMillis = %d", cfg.TickMillis)
	}
	if !cfg.File.AllowRead {
		t.Errorf("QUILL_ALLOW_FILE_READ not applied")
	}
	if !cfg.Web.Allow {
		t.Errorf("QUILL_ALLOW_WEB not applied")
	}
}

func TestEnvOverrideBadValuesIgnored(t *testing.T) {
	t.Setenv("QUILL_TICK_MILLIS", "not-a-number")
	t.Setenv("QUILL_ALLOW_SQL", "maybe")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TickMillis != 50 {
		t.Errorf("bad tick override applied: %d", cfg.TickMillis)
	}
	if cfg.SQL.Allow {
		t.Errorf("bad bool override applied")
	}
}
