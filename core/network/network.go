package network

import (
	"errors"
	"fmt"

	"github.com/kilianp07/flightrecovery/core/model"
)

// ErrDelayInconsistent signals a total delay smaller than the primary delay of
// the same leg.
var ErrDelayInconsistent = errors.New("total delay below primary delay")

// Network is the leg connectivity graph. Edges follow time order, so the graph
// is acyclic.
type Network struct {
	legs []*model.Leg
	adj  [][]int
}

// New builds the adjacency list by checking every ordered pair of legs.
func New(legs []*model.Leg) *Network {
	adj := make([][]int, len(legs))
	for i, a := range legs {
		for j, b := range legs {
			if i != j && a.CanConnectTo(b) {
				adj[i] = append(adj[i], j)
			}
		}
	}
	return &Network{legs: legs, adj: adj}
}

// Legs returns the legs the network was built from.
func (n *Network) Legs() []*model.Leg { return n.legs }

// Neighbors returns the indices of legs reachable directly after leg idx.
func (n *Network) Neighbors(idx int) []int { return n.adj[idx] }

// NumEdges returns the number of connections.
func (n *Network) NumEdges() int {
	c := 0
	for _, a := range n.adj {
		c += len(a)
	}
	return c
}

// PropagatedDelay returns the delay pushed onto next when prev arrives
// incoming minutes late. Slack is the ground time beyond the turn time.
func PropagatedDelay(prev, next *model.Leg, incoming int) int {
	slack := next.DepTime - prev.ArrTime - prev.TurnTime
	if d := incoming - slack; d > 0 {
		return d
	}
	return 0
}

// EnumeratePaths lists every route of the tail that starts at its source port
// and ends at its sink port. Each path carries per-leg total delays computed
// from the primary delays.
func (n *Network) EnumeratePaths(tail *model.Tail, delays []int) ([]*Path, error) {
	var (
		paths      []*Path
		legStack   []*model.Leg
		delayStack []int
		onPath     = make([]bool, len(n.legs))
	)

	var visit func(idx, total int) error
	visit = func(idx, total int) error {
		leg := n.legs[idx]
		if total < delays[idx] {
			return fmt.Errorf("leg %d: %w", leg.ID, ErrDelayInconsistent)
		}
		onPath[idx] = true
		legStack = append(legStack, leg)
		delayStack = append(delayStack, total)

		if leg.ArrPort == tail.SinkPort {
			paths = append(paths, newPath(tail, legStack, delayStack))
		}
		for _, next := range n.adj[idx] {
			if onPath[next] {
				continue
			}
			prop := PropagatedDelay(leg, n.legs[next], total)
			if err := visit(next, prop+delays[next]); err != nil {
				return err
			}
		}

		legStack = legStack[:len(legStack)-1]
		delayStack = delayStack[:len(delayStack)-1]
		onPath[idx] = false
		return nil
	}

	for i, leg := range n.legs {
		if leg.DepPort != tail.SourcePort {
			continue
		}
		if err := visit(i, delays[i]); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// CountPaths returns the number of routes of the tail without materializing
// them.
func (n *Network) CountPaths(tail *model.Tail) int {
	memo := make([]int, len(n.legs))
	done := make([]bool, len(n.legs))
	var count func(idx int) int
	count = func(idx int) int {
		if done[idx] {
			return memo[idx]
		}
		c := 0
		if n.legs[idx].ArrPort == tail.SinkPort {
			c = 1
		}
		for _, next := range n.adj[idx] {
			c += count(next)
		}
		memo[idx], done[idx] = c, true
		return c
	}

	total := 0
	for i, leg := range n.legs {
		if leg.DepPort == tail.SourcePort {
			total += count(i)
		}
	}
	return total
}
