// Package noise provides seeded, deterministic coherent noise.
//
// A Generator is built once from an algorithm and a 64-bit seed. Its tables are
// never written after construction, so a single Generator may be sampled from
// any number of goroutines, and two Generators with the same algorithm and seed
// return bit-identical samples for the same coordinates.
package noise

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// Algorithm selects the underlying noise function.
type Algorithm string

const (
	Simplex     Algorithm = "simplex"
	OpenSimplex Algorithm = "opensimplex"
	Perlin      Algorithm = "perlin"
)

// Algorithms lists every supported algorithm.
func Algorithms() []Algorithm {
	return []Algorithm{Simplex, OpenSimplex, Perlin}
}

// ParseAlgorithm maps a settings value to an Algorithm. The empty string
// selects Simplex.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(s); a {
	case "":
		return Simplex, nil
	case Simplex, OpenSimplex, Perlin:
		return a, nil
	default:
		return "", fmt.Errorf("unknown noise algorithm %q", s)
	}
}

type source interface {
	noise2D(x, y float64) float64
	noise3D(x, y, z float64) float64
}

// Generator samples one noise algorithm for one seed.
type Generator struct {
	seed int64
	algo Algorithm
	src  source
}

// New creates a simplex Generator.
func New(seed int64) *Generator {
	return &Generator{seed: seed, algo: Simplex, src: newSimplex(seed)}
}

// NewWithAlgorithm creates a Generator for the given algorithm.
func NewWithAlgorithm(algo Algorithm, seed int64) (*Generator, error) {
	var src source
	switch algo {
	case Simplex, "":
		algo = Simplex
		src = newSimplex(seed)
	case OpenSimplex:
		src = openSimplexSource{opensimplex.New(seed)}
	case Perlin:
		src = perlinSource{perlin.NewPerlin(2, 2, 3, seed)}
	default:
		return nil, fmt.Errorf("unknown noise algorithm %q", algo)
	}
	return &Generator{seed: seed, algo: algo, src: src}, nil
}

// Seed returns the seed the generator was built from.
func (g *Generator) Seed() int64 { return g.seed }

// Algorithm returns the generator's algorithm.
func (g *Generator) Algorithm() Algorithm { return g.algo }

// Noise2D returns a sample in [-1, 1].
func (g *Generator) Noise2D(x, y float64) float64 {
	return g.src.noise2D(x, y)
}

// Noise3D returns a sample in [-1, 1].
func (g *Generator) Noise3D(x, y, z float64) float64 {
	return g.src.noise3D(x, y, z)
}

// OctaveNoise2D layers octaves of 2D noise, doubling frequency and scaling
// amplitude by persistence each octave. Returns a value in [-1, 1].
func (g *Generator) OctaveNoise2D(x, y float64, octaves int, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var total, maxVal float64
	frequency, amplitude := 1.0, 1.0

	for range octaves {
		total += g.src.noise2D(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2.0
	}
	return total / maxVal
}

// OctaveNoise3D is the three-dimensional counterpart of OctaveNoise2D.
func (g *Generator) OctaveNoise3D(x, y, z float64, octaves int, persistence float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var total, maxVal float64
	frequency, amplitude := 1.0, 1.0

	for range octaves {
		total += g.src.noise3D(x*frequency, y*frequency, z*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2.0
	}
	return total / maxVal
}

type openSimplexSource struct {
	n opensimplex.Noise
}

func (s openSimplexSource) noise2D(x, y float64) float64 {
	return clamp(s.n.Eval2(x, y))
}

func (s openSimplexSource) noise3D(x, y, z float64) float64 {
	return clamp(s.n.Eval3(x, y, z))
}

type perlinSource struct {
	p *perlin.Perlin
}

func (s perlinSource) noise2D(x, y float64) float64 {
	return clamp(s.p.Noise2D(x, y))
}

func (s perlinSource) noise3D(x, y, z float64) float64 {
	return clamp(s.p.Noise3D(x, y, z))
}

func clamp(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
