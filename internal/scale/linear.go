package scale

import (
	"math"
)

// DefaultTickCount is the tick count d3 uses when none is given.
const DefaultTickCount = 10

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Linear is a continuous affine map from a domain interval to a range
// interval. The zero value is not useful; use BuildLinear.
type Linear struct {
	d0, d1 float64
	r0, r1 float64
}

// BuildLinear returns a linear scale over domain and rng. When nice is set
// the domain is extended to round tick values, as d3's nice() does.
func BuildLinear(domain, rng [2]float64, nice bool) *Linear {
	s := &Linear{d0: domain[0], d1: domain[1], r0: rng[0], r1: rng[1]}
	if nice {
		s.Nice(DefaultTickCount)
	}
	return s
}

// Domain returns the (possibly niced) input interval.
func (s *Linear) Domain() [2]float64 { return [2]float64{s.d0, s.d1} }

// Range returns the output interval.
func (s *Linear) Range() [2]float64 { return [2]float64{s.r0, s.r1} }

// Map projects v into the range. A degenerate domain maps everything to the
// middle of the range; NaN stays NaN.
func (s *Linear) Map(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	return s.r0 + normalize(s.d0, s.d1, v)*(s.r1-s.r0)
}

// Invert maps a range value back into the domain.
func (s *Linear) Invert(y float64) float64 {
	if math.IsNaN(y) {
		return math.NaN()
	}
	return s.d0 + normalize(s.r0, s.r1, y)*(s.d1-s.d0)
}

func normalize(a, b, x float64) float64 {
	if b-a == 0 {
		return 0.5
	}
	return (x - a) / (b - a)
}

// Nice extends the domain so both ends land on multiples of the tick step,
// iterating until the step settles. Non-finite or empty domains are left
// untouched.
func (s *Linear) Nice(count int) *Linear {
	start, stop := s.d0, s.d1
	if !finite(start) || !finite(stop) || start == stop {
		return s
	}
	if count <= 0 {
		count = DefaultTickCount
	}
	reversed := stop < start
	if reversed {
		start, stop = stop, start
	}
	var prestep float64
	for i := 0; i < 10; i++ {
		step := tickIncrement(start, stop, float64(count))
		if step == prestep {
			if reversed {
				s.d0, s.d1 = stop, start
			} else {
				s.d0, s.d1 = start, stop
			}
			return s
		}
		switch {
		case step > 0:
			start = math.Floor(start/step) * step
			stop = math.Ceil(stop/step) * step
		case step < 0:
			start = math.Ceil(start*step) / step
			stop = math.Floor(stop*step) / step
		default:
			return s
		}
		prestep = step
	}
	return s
}

// Ticks returns roughly count evenly spaced, human-friendly values inside
// the domain.
func (s *Linear) Ticks(count int) []float64 {
	return Ticks(s.d0, s.d1, count)
}

// Ticks is d3.ticks: uniformly spaced values that are multiples of 1, 2 or
// 5 times a power of ten.
func Ticks(start, stop float64, count int) []float64 {
	if count <= 0 || !finite(start) || !finite(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	i1, i2, inc := tickSpec(start, stop, float64(count))
	if !(i2 >= i1) {
		return nil
	}
	n := int(i2-i1) + 1
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var v float64
		if inc < 0 {
			v = (i1 + float64(i)) / -inc
		} else {
			v = (i1 + float64(i)) * inc
		}
		if reverse {
			out[n-1-i] = v
		} else {
			out[i] = v
		}
	}
	return out
}

func tickIncrement(start, stop, count float64) float64 {
	_, _, inc := tickSpec(start, stop, count)
	return inc
}

// tickSpec returns the integer tick bounds and the increment. A negative
// increment means "divide by -inc", which keeps fractional steps exact.
func tickSpec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / math.Max(0, count)
	power := exponent(step)
	err := step / math.Pow10(power)
	factor := 1.0
	switch {
	case err >= e10:
		factor = 10
	case err >= e5:
		factor = 5
	case err >= e2:
		factor = 2
	}
	if power < 0 {
		inc = math.Pow10(-power) / factor
		i1 = jsRound(start * inc)
		i2 = jsRound(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow10(power) * factor
		i1 = jsRound(start / inc)
		i2 = jsRound(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	if i2 < i1 && 0.5 <= count && count < 2 {
		return tickSpec(start, stop, count*2)
	}
	return i1, i2, inc
}

// exponent is floor(log10(x)) corrected for rounding in math.Log10.
func exponent(x float64) int {
	p := int(math.Floor(math.Log10(x)))
	if math.Pow10(p+1) <= x {
		p++
	} else if math.Pow10(p) > x {
		p--
	}
	return p
}

// jsRound rounds half up, matching JavaScript's Math.round.
func jsRound(x float64) float64 { return math.Floor(x + 0.5) }

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
