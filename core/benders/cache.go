package benders

import "github.com/kilianp07/flightrecovery/core/network"

// PathCache keeps the routes of one scenario between Benders iterations. Each
// scenario owns its cache and only one task touches it per iteration.
type PathCache struct {
	paths [][]*network.Path
	known map[int]bool
}

// NewPathCache seeds a cache with per-tail routes.
func NewPathCache(paths [][]*network.Path) *PathCache {
	c := &PathCache{paths: make([][]*network.Path, len(paths)), known: map[int]bool{}}
	c.Merge(paths)
	return c
}

// Merge adds routes the cache does not hold yet.
func (c *PathCache) Merge(paths [][]*network.Path) {
	for t, ps := range paths {
		for _, p := range ps {
			if c.known[p.Index] {
				continue
			}
			c.known[p.Index] = true
			c.paths[t] = append(c.paths[t], p)
		}
	}
}

// Paths returns the cached routes per tail.
func (c *PathCache) Paths() [][]*network.Path { return c.paths }

// Size returns the number of cached routes.
func (c *PathCache) Size() int { return len(c.known) }
