package orbis

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Platform is what the host gives the engine.
type Platform interface {
	// Adaptation names the host build, e.g. "1_20_4". Data files are cached
	// under names prefixed with it.
	Adaptation() string
	Logger() *slog.Logger
	// Directory is the engine's working folder; packs live in its "packs"
	// sub-folder and data files in "data".
	Directory() string
}

// LocalPlatform is a Platform for standalone tools.
type LocalPlatform struct {
	Name string
	Log  *slog.Logger
	Dir  string
}

func (p LocalPlatform) Adaptation() string { return p.Name }

func (p LocalPlatform) Logger() *slog.Logger {
	if p.Log == nil {
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return p.Log
}

func (p LocalPlatform) Directory() string {
	if p.Dir == "" {
		return filepath.Join(".", "orbis")
	}
	return p.Dir
}
