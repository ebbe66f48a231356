package config

import (
	"path/filepath"
	"testing"
)

func TestNormalizeAndValidateDefaults(t *testing.T) {
	out, vr := NormalizeAndValidate(Config{})
	if !vr.OK() {
		t.Fatalf("empty config should normalize cleanly, errors: %v", vr.Errors)
	}
	if out.App.Port != DefaultPort {
		t.Errorf("port = %d, want %d", out.App.Port, DefaultPort)
	}
	if out.Scrape.TimeoutSeconds != 60 {
		t.Errorf("timeout = %d, want 60", out.Scrape.TimeoutSeconds)
	}
	if out.Scheduler.MaxConcurrentRuns != 2 {
		t.Errorf("max concurrent = %d, want 2", out.Scheduler.MaxConcurrentRuns)
	}
}

func TestNormalizeAndValidateErrors(t *testing.T) {
	var cfg Config
	cfg.App.Port = 99999
	cfg.Scrape.TimeoutSeconds = -1
	cfg.Scheduler.IntervalSeconds = -5

	_, vr := NormalizeAndValidate(cfg)
	if vr.OK() {
		t.Fatal("expected validation errors")
	}
	if len(vr.Errors) != 3 {
		t.Errorf("errors = %v, want 3 entries", vr.Errors)
	}
}

func TestNormalizeAndValidateWarnings(t *testing.T) {
	var cfg Config
	cfg.Scrape.TimeoutSeconds = 2
	cfg.Scheduler.IntervalSeconds = 5
	cfg.Scheduler.MaxConcurrentRuns = 32

	_, vr := NormalizeAndValidate(cfg)
	if !vr.OK() {
		t.Fatalf("warnings must not block: %v", vr.Errors)
	}
	if len(vr.Warnings) != 3 {
		t.Errorf("warnings = %v, want 3 entries", vr.Warnings)
	}
}

func TestSaveAtomicAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg, _ := NormalizeAndValidate(Config{})
	cfg.Scrape.TimeoutSeconds = 42

	if err := SaveAtomic(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Scrape.TimeoutSeconds != 42 {
		t.Errorf("timeout = %d, want 42", loaded.Scrape.TimeoutSeconds)
	}

	// second save keeps a .bak of the previous file
	cfg.Scrape.TimeoutSeconds = 43
	if err := SaveAtomic(path, cfg); err != nil {
		t.Fatalf("second save: %v", err)
	}
	bak, err := Load(path + ".bak")
	if err != nil {
		t.Fatalf("load .bak: %v", err)
	}
	if bak.Scrape.TimeoutSeconds != 42 {
		t.Errorf("bak timeout = %d, want 42", bak.Scrape.TimeoutSeconds)
	}
}

func TestSaveAtomicRejectsInvalid(t *testing.T) {
	var cfg Config
	cfg.App.Port = -2

	if err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg); err == nil {
		t.Fatal("invalid config must not be saved")
	}
}

func TestEnsureUserConfigSeedsWithoutDefault(t *testing.T) {
	dir := t.TempDir()
	path, err := EnsureUserConfig(dir, filepath.Join(dir, "missing-default.yml"))
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load seeded config: %v", err)
	}
	if cfg.App.Port != DefaultPort {
		t.Errorf("seeded port = %d, want %d", cfg.App.Port, DefaultPort)
	}
}
