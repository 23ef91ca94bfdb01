package benders

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/flightrecovery/core/network"
	"github.com/kilianp07/flightrecovery/internal/fixture"
)

func TestCutSeparates(t *testing.T) {
	c := &Cut{Alpha: 10, Beta: []float64{1, 0}}
	point := []float64{2, 5}

	tests := []struct {
		theta float64
		want  bool
	}{
		{theta: 5, want: true},
		{theta: 7.98, want: true},
		{theta: 7.995, want: false},
		{theta: 8, want: false},
		{theta: 12, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Separates(point, tt.theta), "theta=%v", tt.theta)
	}
	assert.InDelta(t, 7.0, c.LHS(point, 5), 1e-12)
}

func TestCutAdd(t *testing.T) {
	a := &Cut{Alpha: 1, Beta: []float64{1, 2}}
	a.Add(&Cut{Alpha: 2, Beta: []float64{-1, 1}})
	assert.Equal(t, 3.0, a.Alpha)
	assert.Equal(t, []float64{0, 3}, a.Beta)
	assert.Contains(t, a.String(), "alpha=3")
}

func TestDataAddScenarioConcurrent(t *testing.T) {
	d := NewData(1, 2, 4)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.AddScenario(0, &Cut{Alpha: 1, Beta: []float64{0.5, 0}}, 0.1)
		}()
	}
	wg.Wait()
	require.Len(t, d.Cuts(), 1)
	assert.InDelta(t, 50.0, d.Cuts()[0].Alpha, 1e-9)
	assert.InDelta(t, 25.0, d.Cuts()[0].Beta[0], 1e-9)
	assert.InDelta(t, 9.0, d.UpperBound(), 1e-9)
}

func TestPathCacheMerge(t *testing.T) {
	_, tails := fixture.Hub()
	empty := network.EmptyPath(tails[0])
	onPlan, err := network.OnPlanPath(tails[0], make([]int, 4))
	require.NoError(t, err)

	c := NewPathCache([][]*network.Path{{empty}, nil})
	c.Merge([][]*network.Path{{empty, onPlan}, nil})
	assert.Equal(t, 2, c.Size())
	assert.Len(t, c.Paths()[0], 2)
	assert.Empty(t, c.Paths()[1])
}
