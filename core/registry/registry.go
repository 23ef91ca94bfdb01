// Package registry holds the read-only schedule shared by every solver
// component of a run.
package registry

import (
	"fmt"
	"sort"

	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/network"
)

// Registry owns the legs, the tails built from them and the leg network.
type Registry struct {
	legs  []*model.Leg
	tails []*model.Tail
	net   *network.Network
}

// New validates and indexes legs, groups them into tails by their original
// tail id and builds the network. Tails are ordered by id and their legs by
// departure time.
func New(legs []*model.Leg) (*Registry, error) {
	if len(legs) == 0 {
		return nil, fmt.Errorf("no legs")
	}
	seen := make(map[int]bool, len(legs))
	for _, l := range legs {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if seen[l.ID] {
			return nil, fmt.Errorf("duplicate leg id %d", l.ID)
		}
		seen[l.ID] = true
	}
	model.IndexLegs(legs)

	byTail := map[int][]*model.Leg{}
	var ids []int
	for _, l := range legs {
		if _, ok := byTail[l.OrigTailID]; !ok {
			ids = append(ids, l.OrigTailID)
		}
		byTail[l.OrigTailID] = append(byTail[l.OrigTailID], l)
	}
	sort.Ints(ids)

	tails := make([]*model.Tail, 0, len(ids))
	for _, id := range ids {
		route := byTail[id]
		sort.SliceStable(route, func(i, j int) bool { return route[i].DepTime < route[j].DepTime })
		t, err := model.NewTail(id, route)
		if err != nil {
			return nil, err
		}
		t.Index = len(tails)
		tails = append(tails, t)
	}

	r := &Registry{legs: legs, tails: tails, net: network.New(legs)}
	if _, err := r.OnPlanPaths(make([]int, len(legs))); err != nil {
		return nil, fmt.Errorf("original routes: %w", err)
	}
	return r, nil
}

// FromTails wraps legs and tails that are already indexed.
func FromTails(legs []*model.Leg, tails []*model.Tail) *Registry {
	return &Registry{legs: legs, tails: tails, net: network.New(legs)}
}

func (r *Registry) Legs() []*model.Leg        { return r.legs }
func (r *Registry) Tails() []*model.Tail      { return r.tails }
func (r *Registry) Network() *network.Network { return r.net }
func (r *Registry) NumLegs() int              { return len(r.legs) }

// OnPlanPaths returns the original route of every tail under the given
// primary delays.
func (r *Registry) OnPlanPaths(delays []int) ([]*network.Path, error) {
	out := make([]*network.Path, len(r.tails))
	for i, t := range r.tails {
		p, err := network.OnPlanPath(t, delays)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// PathCounts returns the number of routes per tail id.
func (r *Registry) PathCounts() map[int]int {
	out := make(map[int]int, len(r.tails))
	for _, t := range r.tails {
		out[t.ID] = r.net.CountPaths(t)
	}
	return out
}

// TotalBlockTime sums the scheduled flying time of all legs.
func (r *Registry) TotalBlockTime() int {
	total := 0
	for _, l := range r.legs {
		total += l.BlockTime()
	}
	return total
}
