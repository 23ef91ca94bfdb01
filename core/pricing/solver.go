// Package pricing finds routes with negative reduced cost for one tail by
// forward label setting over the leg network.
package pricing

import (
	"container/heap"
	"sort"

	"github.com/kilianp07/flightrecovery/core/model"
	"github.com/kilianp07/flightrecovery/core/network"
)

// Prices are the restricted master duals a search needs.
type Prices struct {
	Leg   []float64 // leg coverage duals
	Delay []float64 // delay link duals, non-positive
	Tail  float64   // coverage dual of the tail being priced
}

// Solver runs label-setting searches. It holds no per-search state and can be
// shared by goroutines.
type Solver struct {
	net      *network.Network
	strategy Strategy
	quota    int
}

// NewSolver creates a pricing solver. quota is ignored by AllPaths.
func NewSolver(net *network.Network, strategy Strategy, quota int) *Solver {
	if quota < 1 {
		quota = 1
	}
	return &Solver{net: net, strategy: strategy, quota: quota}
}

type search struct {
	legs   []*model.Leg
	labels []label
	byLeg  [][]int
	queue  labelQueue
	sinks  []int
}

// Solve returns routes for tail whose reduced cost is below -EPS.
func (s *Solver) Solve(tail *model.Tail, delays []int, prices Prices) []*network.Path {
	legs := s.net.Legs()
	sr := &search{legs: legs, byLeg: make([][]int, len(legs))}

	for i, leg := range legs {
		if leg.DepPort != tail.SourcePort {
			continue
		}
		total := delays[i]
		sr.push(label{leg: i, pred: -1, delay: total, rc: -(prices.Leg[i] + float64(total)*prices.Delay[i])})
	}

	for sr.queue.Len() > 0 {
		it := heap.Pop(&sr.queue).(queueItem)
		cur := sr.labels[it.idx]
		if cur.dead {
			continue
		}
		leg := legs[cur.leg]
		if leg.ArrPort == tail.SinkPort && cur.rc-prices.Tail <= -model.EPS {
			sr.sinks = append(sr.sinks, it.idx)
			if s.strategy == FirstPaths && len(sr.sinks) >= s.quota {
				break
			}
		}
		for _, next := range s.net.Neighbors(cur.leg) {
			total := network.PropagatedDelay(leg, legs[next], cur.delay) + delays[next]
			rc := cur.rc - prices.Leg[next] - float64(total)*prices.Delay[next]
			sr.push(label{leg: next, pred: it.idx, delay: total, rc: rc})
		}
	}

	sinks := sr.sinks
	if s.strategy == BestPaths {
		sort.SliceStable(sinks, func(i, j int) bool { return sr.labels[sinks[i]].rc < sr.labels[sinks[j]].rc })
		if len(sinks) > s.quota {
			sinks = sinks[:s.quota]
		}
	}

	paths := make([]*network.Path, 0, len(sinks))
	for _, idx := range sinks {
		paths = append(paths, sr.path(tail, idx))
	}
	return paths
}

// push stores l unless a live label at the same leg dominates it, and retires
// the stored labels l dominates.
func (sr *search) push(l label) {
	stored := sr.byLeg[l.leg]
	for _, j := range stored {
		if o := &sr.labels[j]; !o.dead && o.dominates(&l) {
			return
		}
	}
	live := stored[:0]
	for _, j := range stored {
		o := &sr.labels[j]
		if !o.dead && l.dominates(o) {
			o.dead = true
		}
		if !o.dead {
			live = append(live, j)
		}
	}
	idx := len(sr.labels)
	sr.labels = append(sr.labels, l)
	sr.byLeg[l.leg] = append(live, idx)
	heap.Push(&sr.queue, queueItem{rc: l.rc, idx: idx})
}

func (sr *search) path(tail *model.Tail, idx int) *network.Path {
	var chain []int
	for i := idx; i >= 0; i = sr.labels[i].pred {
		chain = append(chain, i)
	}
	p := network.NewPath(tail)
	for k := len(chain) - 1; k >= 0; k-- {
		l := sr.labels[chain[k]]
		p.AddLeg(sr.legs[l.leg], l.delay)
	}
	return p
}

// ReducedCost prices an existing path. It mirrors the incremental formula of
// the search.
func ReducedCost(p *network.Path, prices Prices) float64 {
	rc := -prices.Tail
	for i, leg := range p.Legs {
		rc -= prices.Leg[leg.Index] + float64(p.Delays[i])*prices.Delay[leg.Index]
	}
	return rc
}
