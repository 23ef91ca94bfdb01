// Package delay samples primary delay scenarios.
package delay

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/kilianp07/flightrecovery/core/model"
)

type sampler interface {
	Rand() float64
}

// Generator draws equally likely scenarios from a configured distribution.
type Generator struct {
	cfg  Config
	legs []*model.Leg
	dist sampler
}

// NewGenerator validates cfg and seeds the distribution.
func NewGenerator(cfg Config, legs []*model.Leg) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)
	g := &Generator{cfg: cfg, legs: legs}
	switch cfg.Distribution {
	case TruncatedNormal:
		g.dist = distuv.Normal{Mu: cfg.Mean, Sigma: cfg.SD, Src: src}
	case LogNormal:
		// Moment matching for the underlying normal.
		c := 1 + (cfg.SD*cfg.SD)/(cfg.Mean*cfg.Mean)
		g.dist = distuv.LogNormal{Mu: math.Log(cfg.Mean / math.Sqrt(c)), Sigma: math.Sqrt(math.Log(c)), Src: src}
	default:
		g.dist = distuv.Exponential{Rate: 1 / cfg.Mean, Src: src}
	}
	return g, nil
}

// Sample draws one non-negative delay in whole minutes. Negative draws are
// discarded.
func (g *Generator) Sample() int {
	for {
		if v := int(math.Round(g.dist.Rand())); v >= 0 {
			return v
		}
	}
}

// Generate returns cfg.NumScenarios scenarios with equal probability.
func (g *Generator) Generate() []model.Scenario {
	selected := g.SelectLegs()
	p := 1 / float64(g.cfg.NumScenarios)
	out := make([]model.Scenario, g.cfg.NumScenarios)
	for i := range out {
		delays := make(map[int]int, len(selected))
		for _, l := range selected {
			delays[l.Index] = g.Sample()
		}
		out[i] = model.Scenario{Probability: p, PrimaryDelays: delays}
	}
	return out
}

// SelectLegs returns the legs that receive primary delays.
func (g *Generator) SelectLegs() []*model.Leg {
	switch g.cfg.Strategy {
	case PickHub:
		hub := Hub(g.legs)
		var out []*model.Leg
		for _, l := range g.legs {
			if l.DepPort == hub {
				out = append(out, l)
			}
		}
		return out
	case PickRushTime:
		return rushTime(g.legs)
	default:
		return g.legs
	}
}

// Hub returns the port with the most departures. Ties go to the lower port.
func Hub(legs []*model.Leg) int {
	counts := map[int]int{}
	for _, l := range legs {
		counts[l.DepPort]++
	}
	hub, best := -1, 0
	for port, n := range counts {
		if n > best || (n == best && port < hub) {
			hub, best = port, n
		}
	}
	return hub
}

// rushTime selects legs departing in the first quarter of the schedule span.
func rushTime(legs []*model.Leg) []*model.Leg {
	if len(legs) == 0 {
		return nil
	}
	first, last := legs[0].DepTime, legs[0].ArrTime
	for _, l := range legs[1:] {
		first = min(first, l.DepTime)
		last = max(last, l.ArrTime)
	}
	cutoff := first + int(0.25*float64(last-first))
	var out []*model.Leg
	for _, l := range legs {
		if l.DepTime <= cutoff {
			out = append(out, l)
		}
	}
	return out
}
