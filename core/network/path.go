package network

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/kilianp07/flightrecovery/core/model"
)

// ErrIllegalPath is returned when a route breaks source, sink or connectivity
// rules.
var ErrIllegalPath = errors.New("illegal path")

var pathCounter atomic.Int64

// Path is a candidate route for one tail. Delays holds the total delay
// (propagated plus primary) of each leg.
type Path struct {
	Tail   *model.Tail
	Legs   []*model.Leg
	Delays []int
	Index  int
}

// NewPath creates an empty route with a fresh index.
func NewPath(tail *model.Tail) *Path {
	return &Path{Tail: tail, Index: int(pathCounter.Add(1) - 1)}
}

func newPath(tail *model.Tail, legs []*model.Leg, delays []int) *Path {
	p := NewPath(tail)
	p.Legs = append([]*model.Leg(nil), legs...)
	p.Delays = append([]int(nil), delays...)
	return p
}

// AddLeg appends a leg with its total delay.
func (p *Path) AddLeg(leg *model.Leg, delay int) {
	p.Legs = append(p.Legs, leg)
	p.Delays = append(p.Delays, delay)
}

// Empty reports whether the route flies nothing.
func (p *Path) Empty() bool { return len(p.Legs) == 0 }

// CheckLegality verifies that the route starts at the tail's source port, ends
// at its sink port and that consecutive legs connect.
func (p *Path) CheckLegality() error {
	if p.Empty() {
		return nil
	}
	if first := p.Legs[0]; first.DepPort != p.Tail.SourcePort {
		return fmt.Errorf("%w: path %d starts at port %d, tail %d source is %d",
			ErrIllegalPath, p.Index, first.DepPort, p.Tail.ID, p.Tail.SourcePort)
	}
	if last := p.Legs[len(p.Legs)-1]; last.ArrPort != p.Tail.SinkPort {
		return fmt.Errorf("%w: path %d ends at port %d, tail %d sink is %d",
			ErrIllegalPath, p.Index, last.ArrPort, p.Tail.ID, p.Tail.SinkPort)
	}
	for i := 1; i < len(p.Legs); i++ {
		if !p.Legs[i-1].CanConnectTo(p.Legs[i]) {
			return fmt.Errorf("%w: path %d cannot connect leg %d to leg %d",
				ErrIllegalPath, p.Index, p.Legs[i-1].ID, p.Legs[i].ID)
		}
	}
	return nil
}

// OnPlanPath builds the tail's original route with delays propagated along it.
func OnPlanPath(tail *model.Tail, delays []int) (*Path, error) {
	p := NewPath(tail)
	var prev *model.Leg
	total := 0
	for _, leg := range tail.OrigLegs {
		if prev == nil {
			total = delays[leg.Index]
		} else {
			total = PropagatedDelay(prev, leg, total) + delays[leg.Index]
		}
		p.AddLeg(leg, total)
		prev = leg
	}
	if err := p.CheckLegality(); err != nil {
		return nil, err
	}
	return p, nil
}

// EmptyPath returns the idle route of a tail.
func EmptyPath(tail *model.Tail) *Path { return NewPath(tail) }

func (p *Path) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Path(%d, tail=%d:", p.Index, p.Tail.ID)
	for i, l := range p.Legs {
		fmt.Fprintf(&b, " %d[%d]", l.ID, p.Delays[i])
	}
	b.WriteString(")")
	return b.String()
}
