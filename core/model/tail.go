package model

import (
	"errors"
	"fmt"
)

// ErrEmptyRoute is returned when a tail has no original legs.
var ErrEmptyRoute = errors.New("tail has an empty original route")

// Tail is one aircraft and its original route.
type Tail struct {
	ID         int
	Index      int
	OrigLegs   []*Leg
	SourcePort int
	SinkPort   int
}

// NewTail builds a tail from its ordered original legs.
func NewTail(id int, legs []*Leg) (*Tail, error) {
	if len(legs) == 0 {
		return nil, fmt.Errorf("tail %d: %w", id, ErrEmptyRoute)
	}
	return &Tail{
		ID:         id,
		OrigLegs:   legs,
		SourcePort: legs[0].DepPort,
		SinkPort:   legs[len(legs)-1].ArrPort,
	}, nil
}

func (t *Tail) String() string {
	return fmt.Sprintf("Tail(id=%d, legs=%d, %d->%d)", t.ID, len(t.OrigLegs), t.SourcePort, t.SinkPort)
}
