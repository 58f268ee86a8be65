package config

import (
	"os"
	"testing"
)

func TestLoadMissingFileReturnsZeroValueDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IdleTimeout() != DefaultIdleTimeoutSeconds {
		t.Errorf("IdleTimeout() = %d, want default %d", cfg.IdleTimeout(), DefaultIdleTimeoutSeconds)
	}
	if cfg.Level() != DefaultLogLevel {
		t.Errorf("Level() = %q, want default %q", cfg.Level(), DefaultLogLevel)
	}
	if cfg.Session() != DefaultSessionName {
		t.Errorf("Session() = %q, want default %q", cfg.Session(), DefaultSessionName)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	want := &Config{IdleTimeoutSeconds: 60, LogLevel: "debug", DefaultSession: "dev", FakeAdapter: true}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestDirModeIs0700AfterSave(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := Save(&Config{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("dir mode = %o, want 0700", info.Mode().Perm())
	}
}
