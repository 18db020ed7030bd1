package scale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinear_MapAndInvert(t *testing.T) {
	s := BuildLinear([2]float64{0, 10}, [2]float64{0, 100}, false)
	assert.Equal(t, 50.0, s.Map(5))
	assert.Equal(t, 5.0, s.Invert(50))
	assert.Equal(t, 150.0, s.Map(15))
	assert.True(t, math.IsNaN(s.Map(math.NaN())))
	assert.True(t, math.IsNaN(s.Invert(math.NaN())))
}

func TestLinear_ReversedRange(t *testing.T) {
	s := BuildLinear([2]float64{0, 8}, [2]float64{300, 0}, false)
	assert.Equal(t, 300.0, s.Map(0))
	assert.Equal(t, 0.0, s.Map(8))
	assert.Equal(t, 150.0, s.Map(4))
}

func TestLinear_DegenerateDomainMapsToMidpoint(t *testing.T) {
	s := BuildLinear([2]float64{3, 3}, [2]float64{0, 100}, true)
	assert.Equal(t, [2]float64{3, 3}, s.Domain())
	assert.Equal(t, 50.0, s.Map(3))
	assert.Equal(t, 50.0, s.Map(-7))
}

func TestLinear_Nice(t *testing.T) {
	tests := []struct {
		in, want [2]float64
	}{
		{in: [2]float64{0, 7.3}, want: [2]float64{0, 8}},
		{in: [2]float64{0, 2.79}, want: [2]float64{0, 2.8}},
		{in: [2]float64{0.123, 97.6}, want: [2]float64{0, 100}},
		{in: [2]float64{-0.53, 0.87}, want: [2]float64{-0.6, 1}},
		{in: [2]float64{7.3, 0}, want: [2]float64{8, 0}},
		{in: [2]float64{0, 4.5}, want: [2]float64{0, 4.5}},
	}
	for _, tt := range tests {
		got := BuildLinear(tt.in, [2]float64{0, 1}, true).Domain()
		assert.InDelta(t, tt.want[0], got[0], 1e-12, "nice(%v)", tt.in)
		assert.InDelta(t, tt.want[1], got[1], 1e-12, "nice(%v)", tt.in)
	}
}

func TestLinear_NiceLeavesNonFiniteAlone(t *testing.T) {
	s := BuildLinear([2]float64{0, math.Inf(1)}, [2]float64{0, 1}, true)
	assert.True(t, math.IsInf(s.Domain()[1], 1))
}

func TestTicks(t *testing.T) {
	got := Ticks(0, 1, 10)
	assert.Len(t, got, 11)
	assert.InDelta(t, 0.3, got[3], 1e-15)
	assert.Equal(t, 1.0, got[10])

	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5, 6, 7, 8}, Ticks(0, 8, 10))
	assert.Equal(t, []float64{0, 20, 40, 60, 80, 100}, Ticks(0, 100, 5))
	assert.Equal(t, []float64{1, 0.5, 0}, Ticks(1, 0, 2))
	assert.Equal(t, []float64{4}, Ticks(4, 4, 10))
	assert.Nil(t, Ticks(0, 1, 0))
	assert.Nil(t, Ticks(math.NaN(), 1, 10))
}

func TestLinear_TicksFollowNicedDomain(t *testing.T) {
	s := BuildLinear([2]float64{0, 7.3}, [2]float64{300, 0}, true)
	ticks := s.Ticks(DefaultTickCount)
	assert.Equal(t, 0.0, ticks[0])
	assert.Equal(t, 8.0, ticks[len(ticks)-1])
}
