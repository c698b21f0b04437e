package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbis.yaml")
	data := "pack: vanilla\nseed: -7\nindex: true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pack != "vanilla" || cfg.Seed != -7 || !cfg.Index {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.World != "world" {
		t.Errorf("World = %q, want default kept", cfg.World)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "orbis.yaml")
	want := DefaultConfig()
	want.Pack = "hills"
	want.DataURL = "https://example.com/data"

	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMergeKeepsExplicitFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 99
	cfg.Pack = "flag-pack"

	fromFile := DefaultConfig()
	fromFile.Seed = 1
	fromFile.Pack = "file-pack"
	fromFile.World = "file-world"

	Merge(cfg, fromFile, map[string]bool{"seed": true})

	if cfg.Seed != 99 {
		t.Errorf("Seed = %d, want flag value 99", cfg.Seed)
	}
	if cfg.Pack != "file-pack" || cfg.World != "file-world" {
		t.Errorf("Pack, World = %q, %q; want file values", cfg.Pack, cfg.World)
	}
}

func TestLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	if l, err := cfg.Level(); err != nil || l != slog.LevelDebug {
		t.Errorf("Level = %v, %v", l, err)
	}
	cfg.LogLevel = "loud"
	if _, err := cfg.Level(); err == nil {
		t.Error("expected error for unknown level")
	}
}
