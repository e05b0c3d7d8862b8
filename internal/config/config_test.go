package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_PATH", "")
	t.Setenv("DATA_DIR", "")

	cfg := Load()
	if cfg.DatabasePath != "./data/fieldshot.db" {
		t.Errorf("DatabasePath = %q, want default", cfg.DatabasePath)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q, want default", cfg.DataDir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DATABASE_PATH", "/tmp/x.db")
	t.Setenv("DATA_DIR", "/tmp/data")

	cfg := Load()
	if cfg.DatabasePath != "/tmp/x.db" {
		t.Errorf("DatabasePath = %q, want /tmp/x.db", cfg.DatabasePath)
	}
	if cfg.DataDir != "/tmp/data" {
		t.Errorf("DataDir = %q, want /tmp/data", cfg.DataDir)
	}
}

func TestConstantsSane(t *testing.T) {
	if MaxImageWidth <= 0 || MaxImageHeight <= 0 {
		t.Fatal("image envelope must be positive")
	}
	if BatchSize <= 0 {
		t.Fatal("batch size must be positive")
	}
	if ImageQuality < 1 || ImageQuality > 100 {
		t.Fatalf("quality out of range: %d", ImageQuality)
	}
}
