package terrain

import (
	"errors"
	"math"
	"testing"

	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/gen/distributor"
	"github.com/OCharnyshevich/orbis/pkg/key"
	"github.com/OCharnyshevich/orbis/pkg/noise"
)

func settings() gen.DimensionSettings {
	return gen.DimensionSettings{Seed: 12345, FluidHeight: 64, MinHeight: -64, MaxHeight: 320, BlendRadius: 1}
}

func load(t *testing.T, tr gen.Terrain) (*gen.Dimension, error) {
	t.Helper()
	biomes := []*gen.Biome{gen.NewBiome(key.MustNew("test", "plains"), nil)}
	d := distributor.NewSingle(gen.Binding{Provider: distributor.SingleID})
	return gen.NewDimension(settings(), nil, tr, d, biomes)
}

func TestRegister(t *testing.T) {
	r := gen.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatalf("Register: %v", err)
	}
	for _, id := range []key.Key{FlatID, PlainsID, NoiseID} {
		f, err := r.Terrain(id)
		if err != nil {
			t.Fatalf("Terrain(%s): %v", id, err)
		}
		if got := f(gen.Binding{Provider: id}).Provider(); got != id {
			t.Errorf("factory for %s built provider %s", id, got)
		}
	}
	if err := Register(r); !errors.Is(err, gen.ErrDuplicateRegistration) {
		t.Errorf("second Register err = %v, want ErrDuplicateRegistration", err)
	}
}

func TestFlatDefaultsToFluidLevel(t *testing.T) {
	f := NewFlat(gen.Binding{Provider: FlatID}).(*Flat)
	dim, err := load(t, f)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for x := -100; x <= 100; x += 25 {
		if h := dim.HeightAt(x, -x); h != 0 {
			t.Fatalf("HeightAt(%d) = %d, want fluid level 0", x, h)
		}
	}
}

func TestFlatHeight(t *testing.T) {
	level := -10
	f := NewFlat(gen.Binding{Provider: FlatID}).(*Flat)
	f.Level = &level
	dim, err := load(t, f)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if h := dim.HeightAt(3, 4); h != -10 {
		t.Errorf("HeightAt = %d, want -10", h)
	}

	high := 321
	f = NewFlat(gen.Binding{Provider: FlatID}).(*Flat)
	f.Level = &high
	_, err = load(t, f)
	var me *gen.MalformedError
	if !errors.As(err, &me) || me.Path != "terrain.height" {
		t.Fatalf("err = %v, want malformed at terrain.height", err)
	}
}

func TestPlainsStaysNearBase(t *testing.T) {
	p := NewPlains(gen.Binding{Provider: PlainsID}).(*Plains)
	p.Offset = 2
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	dim, err := load(t, p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	n := dim.Noise()
	for x := -2000; x <= 2000; x += 97 {
		h := p.Height(x, x/2, -64, 1, n)
		if h < 2-16 || h > 2+16 {
			t.Fatalf("Height(%d) = %v, want within amplitude of base 2", x, h)
		}
		if flat := p.Height(x, x/2, -64, 0, n); flat != 2 {
			t.Fatalf("Height with zero weight = %v, want base 2", flat)
		}
	}
}

func TestPlainsValidate(t *testing.T) {
	p := NewPlains(gen.Binding{}).(*Plains)
	p.Scale = 0
	var me *gen.MalformedError
	if err := p.Validate(); !errors.As(err, &me) || me.Path != "scale" {
		t.Errorf("zero scale: err = %v", err)
	}
	p = NewPlains(gen.Binding{}).(*Plains)
	p.Amplitude = -1
	if err := p.Validate(); !errors.As(err, &me) || me.Path != "amplitude" {
		t.Errorf("negative amplitude: err = %v", err)
	}
}

func TestNoiseValidate(t *testing.T) {
	tests := []struct {
		mutate func(*Noise)
		path   string
	}{
		{func(n *Noise) { n.Scale = -1 }, "scale"},
		{func(n *Noise) { n.DetailScale = 0 }, "detailScale"},
		{func(n *Noise) { n.Octaves = 0 }, "octaves"},
		{func(n *Noise) { n.DetailOctaves = 17 }, "detailOctaves"},
		{func(n *Noise) { n.Persistence = 1.5 }, "persistence"},
		{func(n *Noise) { n.Amplitude = -3 }, "amplitude"},
		{func(n *Noise) { n.DetailAmplitude = -3 }, "detailAmplitude"},
	}
	for _, tt := range tests {
		n := NewNoise(gen.Binding{}).(*Noise)
		tt.mutate(n)
		var me *gen.MalformedError
		if err := n.Validate(); !errors.As(err, &me) || me.Path != tt.path {
			t.Errorf("err = %v, want malformed at %s", err, tt.path)
		}
	}
	if err := NewNoise(gen.Binding{}).(*Noise).Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestNoiseBoundedAndDeterministic(t *testing.T) {
	a := NewNoise(gen.Binding{Provider: NoiseID}).(*Noise)
	b := NewNoise(gen.Binding{Provider: NoiseID}).(*Noise)
	if _, err := load(t, a); err != nil {
		t.Fatal(err)
	}
	if _, err := load(t, b); err != nil {
		t.Fatal(err)
	}

	n := noise.New(12345)
	limit := a.Amplitude + a.DetailAmplitude
	varied := false
	first := a.Height(0, 0, -64, 1, n)
	for x := -500; x <= 500; x += 13 {
		for z := -500; z <= 500; z += 17 {
			h := a.Height(x, z, -64, 1, n)
			if h != b.Height(x, z, -64, 1, n) {
				t.Fatalf("Height(%d,%d) differs between instances", x, z)
			}
			if math.Abs(h) > limit {
				t.Fatalf("Height(%d,%d) = %v, beyond ±%v of base 0", x, z, h, limit)
			}
			if h != first {
				varied = true
			}
		}
	}
	if !varied {
		t.Error("terrain is flat")
	}
}
