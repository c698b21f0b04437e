package noise

import "sync"

type cacheKey struct {
	algo Algorithm
	seed int64
}

// Cache hands out one shared Generator per (algorithm, seed). Generators are
// immutable, so worlds configured with the same seed may share them safely.
// Entries stay until Retain drops them.
type Cache struct {
	m sync.Map // cacheKey -> *Generator
}

// Get returns the cached generator, building it on first use.
func (c *Cache) Get(algo Algorithm, seed int64) (*Generator, error) {
	if algo == "" {
		algo = Simplex
	}
	k := cacheKey{algo: algo, seed: seed}
	if g, ok := c.m.Load(k); ok {
		return g.(*Generator), nil
	}
	g, err := NewWithAlgorithm(algo, seed)
	if err != nil {
		return nil, err
	}
	actual, _ := c.m.LoadOrStore(k, g)
	return actual.(*Generator), nil
}

// Retain drops every generator for which keep returns false and reports how
// many were dropped. Holders of a dropped generator may keep using it.
func (c *Cache) Retain(keep func(algo Algorithm, seed int64) bool) int {
	n := 0
	c.m.Range(func(k, _ any) bool {
		ck := k.(cacheKey)
		if !keep(ck.algo, ck.seed) {
			c.m.Delete(k)
			n++
		}
		return true
	})
	return n
}

// Len reports the number of cached generators.
func (c *Cache) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
