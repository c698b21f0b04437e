package orbis

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/gen/terrain"
	"github.com/OCharnyshevich/orbis/pkg/key"
	"github.com/OCharnyshevich/orbis/pkg/pack"
)

func testPlatform(t *testing.T) LocalPlatform {
	t.Helper()
	dir := t.TempDir()
	if err := os.CopyFS(filepath.Join(dir, "packs"), os.DirFS(filepath.Join("testdata", "packs"))); err != nil {
		t.Fatal(err)
	}
	return LocalPlatform{Name: "1_20", Log: slog.New(slog.DiscardHandler), Dir: dir}
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(context.Background(), testPlatform(t), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestNewRegistersBuiltinsAndScans(t *testing.T) {
	e := newEngine(t)

	if !e.Registry().Frozen() {
		t.Error("registry not frozen")
	}
	if _, err := e.Registry().Terrain(terrain.NoiseID); err != nil {
		t.Errorf("builtin terrain missing: %v", err)
	}
	if _, err := e.Packs().Pack("basic"); err != nil {
		t.Errorf("pack not scanned: %v", err)
	}
}

func TestLoadWorld(t *testing.T) {
	e := newEngine(t)

	c, err := e.LoadWorld("world", "basic", 42)
	if err != nil {
		t.Fatalf("LoadWorld: %v", err)
	}
	if h, err := c.HeightAt(100, -100); err != nil || h != 5 {
		t.Errorf("HeightAt = %d, %v; want 5", h, err)
	}
	if b, err := c.BiomeAt(0, 0); err != nil || b.ID() != key.MustNew(key.Orbis, "grassland") {
		t.Errorf("BiomeAt = %v, %v", b, err)
	}

	again, err := e.LoadWorld("world", "basic", 7)
	if err != nil || again != c {
		t.Fatalf("second LoadWorld = %p, %v; want the loaded container %p", again, err, c)
	}
	if got, ok := e.World("world"); !ok || got != c {
		t.Error("World did not return the loaded container")
	}
	if _, err := e.LoadWorld("nether", "basic", 42); err != nil {
		t.Fatal(err)
	}
	if got := e.Worlds(); !slices.Equal(got, []string{"nether", "world"}) {
		t.Errorf("Worlds = %v", got)
	}

	if err := e.UnloadWorld("world"); err != nil {
		t.Fatalf("UnloadWorld: %v", err)
	}
	if c.State() != pack.StateUnloaded {
		t.Errorf("state = %s, want unloaded", c.State())
	}
	if _, ok := e.World("world"); ok {
		t.Error("unloaded world still listed")
	}
	if err := e.UnloadWorld("world"); !errors.Is(err, ErrWorldNotFound) {
		t.Errorf("second UnloadWorld err = %v, want ErrWorldNotFound", err)
	}
}

func TestLoadWorldUnknownPack(t *testing.T) {
	e := newEngine(t)
	if _, err := e.LoadWorld("world", "missing", 1); !errors.Is(err, pack.ErrPackNotFound) {
		t.Fatalf("err = %v, want ErrPackNotFound", err)
	}
	if len(e.Worlds()) != 0 {
		t.Error("failed load registered a world")
	}
}

func TestWithProviders(t *testing.T) {
	custom := key.MustNew("acme", "flat")
	e := newEngine(t, WithProviders(func(r *gen.Registry) error {
		return r.RegisterTerrain(custom, terrain.NewFlat)
	}))
	if _, err := e.Registry().Terrain(custom); err != nil {
		t.Errorf("custom terrain missing: %v", err)
	}

	_, err := New(context.Background(), testPlatform(t), WithProviders(terrain.Register))
	if !errors.Is(err, gen.ErrDuplicateRegistration) {
		t.Errorf("re-registering builtins: err = %v, want ErrDuplicateRegistration", err)
	}
}

func TestDataFile(t *testing.T) {
	remote := t.TempDir()
	if err := os.WriteFile(filepath.Join(remote, "1_20_blocks.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := newEngine(t, WithDataURL(remote))

	path, err := e.DataFile(context.Background(), "blocks.json")
	if err != nil {
		t.Fatalf("DataFile: %v", err)
	}
	if want := filepath.Join(e.Platform().Directory(), "data", "1_20_blocks.json"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestWithIndex(t *testing.T) {
	e := newEngine(t, WithIndex(filepath.Join(t.TempDir(), "packs.db")))
	entries, err := e.Index().Entries(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "basic" || entries[0].Status != pack.StatusOK {
		t.Errorf("entries = %+v", entries)
	}
}

func TestLoadWorldBoundToAnotherPack(t *testing.T) {
	e := newEngine(t)
	c, err := e.LoadWorld("world", "basic", 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.LoadWorld("world", "other", 1); !errors.Is(err, ErrWorldBound) {
		t.Fatalf("err = %v, want ErrWorldBound", err)
	}
	if got, _ := e.World("world"); got != c {
		t.Error("mismatched load replaced the world")
	}
}

func TestUnloadWorldReleasesNoise(t *testing.T) {
	e := newEngine(t)
	if _, err := e.LoadWorld("a", "basic", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := e.LoadWorld("b", "basic", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := e.LoadWorld("c", "basic", 2); err != nil {
		t.Fatal(err)
	}
	if n := e.noise.Len(); n != 2 {
		t.Fatalf("cached generators = %d, want 2", n)
	}

	if err := e.UnloadWorld("c"); err != nil {
		t.Fatal(err)
	}
	if n := e.noise.Len(); n != 1 {
		t.Errorf("after unloading the only seed-2 world: %d generators, want 1", n)
	}
	if err := e.UnloadWorld("a"); err != nil {
		t.Fatal(err)
	}
	if n := e.noise.Len(); n != 1 {
		t.Errorf("seed 1 still used by b: %d generators, want 1", n)
	}
	if err := e.UnloadWorld("b"); err != nil {
		t.Fatal(err)
	}
	if n := e.noise.Len(); n != 0 {
		t.Errorf("no worlds left: %d generators, want 0", n)
	}
}
