// Package terrain holds the built-in terrain providers.
package terrain

import (
	"fmt"

	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/key"
)

var (
	FlatID   = key.MustNew(key.Orbis, "flat")
	PlainsID = key.MustNew(key.Orbis, "plains")
	NoiseID  = key.MustNew(key.Orbis, "noise")
)

// Register adds the built-in terrains to r.
func Register(r *gen.Registry) error {
	builtins := []struct {
		id key.Key
		f  gen.TerrainFactory
	}{
		{FlatID, NewFlat},
		{PlainsID, NewPlains},
		{NoiseID, NewNoise},
	}
	for _, b := range builtins {
		if err := r.RegisterTerrain(b.id, b.f); err != nil {
			return fmt.Errorf("register builtin terrains: %w", err)
		}
	}
	return nil
}
