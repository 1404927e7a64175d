package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wfdbg.yaml")
	if err := os.WriteFile(path, []byte("startEnabled: false\n"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StartEnabled {
		t.Fatal("expected startEnabled overridden to false")
	}
	if cfg.HistoryCapacity != 100 {
		t.Fatalf("historyCapacity = %d, want default 100", cfg.HistoryCapacity)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Default()
	cfg.HistoryCapacity = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero history capacity")
	}
}
