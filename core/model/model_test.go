package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegCanConnectTo(t *testing.T) {
	a := &Leg{ID: 1, DepPort: 1, ArrPort: 2, DepTime: 0, ArrTime: 60, TurnTime: 30}
	cases := []struct {
		name string
		next Leg
		want bool
	}{
		{"enough turn", Leg{DepPort: 2, DepTime: 90}, true},
		{"short turn", Leg{DepPort: 2, DepTime: 89}, false},
		{"wrong port", Leg{DepPort: 3, DepTime: 200}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := tc.next
			assert.Equal(t, tc.want, a.CanConnectTo(&next))
		})
	}
}

func TestLegRescheduleRevert(t *testing.T) {
	legs := []*Leg{{DepTime: 100, ArrTime: 160}}
	IndexLegs(legs)
	legs[0].Reschedule(15)
	assert.Equal(t, 115, legs[0].DepTime)
	assert.Equal(t, 175, legs[0].ArrTime)
	legs[0].Reschedule(30)
	assert.Equal(t, 130, legs[0].DepTime)
	legs[0].RevertReschedule()
	assert.Equal(t, 100, legs[0].DepTime)
	assert.Equal(t, 160, legs[0].ArrTime)
}

func TestCloneLegsIsolated(t *testing.T) {
	legs := []*Leg{{DepTime: 10, ArrTime: 20}}
	IndexLegs(legs)
	c := CloneLegs(legs)
	c[0].Reschedule(5)
	assert.Equal(t, 10, legs[0].DepTime)
	assert.Equal(t, 15, c[0].DepTime)
}

func TestNewTail(t *testing.T) {
	_, err := NewTail(7, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyRoute))

	tail, err := NewTail(7, []*Leg{{DepPort: 1, ArrPort: 2}, {DepPort: 2, ArrPort: 3}})
	require.NoError(t, err)
	assert.Equal(t, 1, tail.SourcePort)
	assert.Equal(t, 3, tail.SinkPort)
}

func TestScenarioDelays(t *testing.T) {
	s := Scenario{Probability: 1, PrimaryDelays: map[int]int{0: 5, 2: 7, 9: 1}}
	assert.Equal(t, []int{5, 0, 7}, s.Delays(3))
}

func TestValidateScenarios(t *testing.T) {
	assert.NoError(t, ValidateScenarios([]Scenario{{Probability: 0.25}, {Probability: 0.75}}))
	assert.Error(t, ValidateScenarios(nil))
	assert.Error(t, ValidateScenarios([]Scenario{{Probability: 0.5}}))
	assert.Error(t, ValidateScenarios([]Scenario{{Probability: 1, PrimaryDelays: map[int]int{0: -1}}}))
}

func TestLegValidate(t *testing.T) {
	assert.NoError(t, (&Leg{DepTime: 0, ArrTime: 10}).Validate())
	assert.Error(t, (&Leg{DepTime: 10, ArrTime: 10}).Validate())
	assert.Error(t, (&Leg{DepTime: 0, ArrTime: 10, TurnTime: -1}).Validate())
}
