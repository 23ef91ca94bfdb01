package model

import "fmt"

// Leg is one scheduled flight. Times are expressed in minutes from a common
// epoch chosen by the loader.
type Leg struct {
	ID         int    `json:"id" yaml:"id"`
	FlightNum  int    `json:"flight_num" yaml:"flight_num"`
	DepPort    int    `json:"dep_port" yaml:"dep_port"`
	ArrPort    int    `json:"arr_port" yaml:"arr_port"`
	TurnTime   int    `json:"turn_time" yaml:"turn_time"`
	OrigTailID int    `json:"tail_id" yaml:"tail_id"`
	Index      int    `json:"-" yaml:"-"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`

	// Current times. They move with Reschedule.
	DepTime int `json:"dep_time" yaml:"dep_time"`
	ArrTime int `json:"arr_time" yaml:"arr_time"`

	OrigDepTime int `json:"-" yaml:"-"`
	OrigArrTime int `json:"-" yaml:"-"`

	RescheduleCostPerMin float64 `json:"reschedule_cost_per_min" yaml:"reschedule_cost_per_min"`
	DelayCostPerMin      float64 `json:"delay_cost_per_min" yaml:"delay_cost_per_min"`
}

// Validate checks the leg times.
func (l *Leg) Validate() error {
	if l.ArrTime <= l.DepTime {
		return fmt.Errorf("leg %d: arrival %d not after departure %d", l.ID, l.ArrTime, l.DepTime)
	}
	if l.TurnTime < 0 {
		return fmt.Errorf("leg %d: negative turn time", l.ID)
	}
	if l.RescheduleCostPerMin < 0 || l.DelayCostPerMin < 0 {
		return fmt.Errorf("leg %d: negative cost coefficient", l.ID)
	}
	return nil
}

// CanConnectTo reports whether the same aircraft can fly next after l.
func (l *Leg) CanConnectTo(next *Leg) bool {
	return l.ArrPort == next.DepPort && next.DepTime >= l.ArrTime+l.TurnTime
}

// BlockTime is the scheduled flying time in minutes.
func (l *Leg) BlockTime() int { return l.ArrTime - l.DepTime }

// Reschedule shifts the leg by the given number of minutes from its original
// times.
func (l *Leg) Reschedule(minutes int) {
	l.DepTime = l.OrigDepTime + minutes
	l.ArrTime = l.OrigArrTime + minutes
}

// RevertReschedule restores the original times.
func (l *Leg) RevertReschedule() {
	l.DepTime = l.OrigDepTime
	l.ArrTime = l.OrigArrTime
}

func (l *Leg) String() string {
	return fmt.Sprintf("Leg(id=%d, flt=%d, %d->%d, dep=%d, arr=%d)",
		l.ID, l.FlightNum, l.DepPort, l.ArrPort, l.DepTime, l.ArrTime)
}

// IndexLegs assigns stable indices and records original times. It must be
// called once after loading.
func IndexLegs(legs []*Leg) {
	for i, l := range legs {
		l.Index = i
		l.OrigDepTime = l.DepTime
		l.OrigArrTime = l.ArrTime
	}
}

// CloneLegs deep-copies legs so callers can reschedule them without touching
// shared data.
func CloneLegs(legs []*Leg) []*Leg {
	out := make([]*Leg, len(legs))
	for i, l := range legs {
		c := *l
		out[i] = &c
	}
	return out
}
