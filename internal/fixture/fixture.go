// Package fixture provides small schedules shared by tests.
package fixture

import "github.com/kilianp07/flightrecovery/core/model"

// Hub returns two tails flying out of and back to port 1 through port 2. Both
// outbound legs can connect to both inbound legs, so the tails may swap.
//
//	tail 1: L0 1->2 [0,60]   L1 2->1 [100,160]
//	tail 2: L2 1->2 [10,70]  L3 2->1 [200,260]
func Hub() ([]*model.Leg, []*model.Tail) {
	legs := []*model.Leg{
		{ID: 100, FlightNum: 1, DepPort: 1, ArrPort: 2, DepTime: 0, ArrTime: 60, TurnTime: 30, OrigTailID: 1},
		{ID: 101, FlightNum: 2, DepPort: 2, ArrPort: 1, DepTime: 100, ArrTime: 160, TurnTime: 30, OrigTailID: 1},
		{ID: 102, FlightNum: 3, DepPort: 1, ArrPort: 2, DepTime: 10, ArrTime: 70, TurnTime: 30, OrigTailID: 2},
		{ID: 103, FlightNum: 4, DepPort: 2, ArrPort: 1, DepTime: 200, ArrTime: 260, TurnTime: 30, OrigTailID: 2},
	}
	for _, l := range legs {
		l.RescheduleCostPerMin = 0.5
		l.DelayCostPerMin = 1
	}
	model.IndexLegs(legs)
	t1, _ := model.NewTail(1, []*model.Leg{legs[0], legs[1]})
	t2, _ := model.NewTail(2, []*model.Leg{legs[2], legs[3]})
	t1.Index, t2.Index = 0, 1
	return legs, []*model.Tail{t1, t2}
}

// Chain returns a single tail flying a three-leg round trip with tight turns.
func Chain() ([]*model.Leg, []*model.Tail) {
	legs := []*model.Leg{
		{ID: 1, DepPort: 1, ArrPort: 2, DepTime: 0, ArrTime: 50, TurnTime: 20, OrigTailID: 9},
		{ID: 2, DepPort: 2, ArrPort: 3, DepTime: 85, ArrTime: 135, TurnTime: 20, OrigTailID: 9},
		{ID: 3, DepPort: 3, ArrPort: 1, DepTime: 160, ArrTime: 220, TurnTime: 20, OrigTailID: 9},
	}
	for _, l := range legs {
		l.RescheduleCostPerMin = 1
		l.DelayCostPerMin = 2
	}
	model.IndexLegs(legs)
	tail, _ := model.NewTail(9, legs)
	return legs, []*model.Tail{tail}
}
