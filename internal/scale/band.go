package scale

import "math"

// Band maps a discrete domain onto evenly spaced bands of a continuous
// range, like d3.scaleBand with equal inner and outer padding and centered
// alignment.
type Band[T comparable] struct {
	domain    []T
	index     map[T]int
	pos       []float64
	step      float64
	bandwidth float64
}

// NewBand builds a band scale. Duplicate domain values keep their first
// position. When rng is reversed the first domain value gets the band
// nearest rng[0].
func NewBand[T comparable](domain []T, rng [2]float64, padding float64) *Band[T] {
	b := &Band[T]{index: make(map[T]int, len(domain))}
	for _, v := range domain {
		if _, ok := b.index[v]; ok {
			continue
		}
		b.index[v] = len(b.domain)
		b.domain = append(b.domain, v)
	}

	n := float64(len(b.domain))
	start, stop := rng[0], rng[1]
	reverse := stop < start
	if reverse {
		start, stop = stop, start
	}
	padding = math.Min(1, math.Max(0, padding))
	step := (stop - start) / math.Max(1, n-padding+padding*2)
	start += (stop - start - step*(n-padding)) * 0.5
	b.step = step
	b.bandwidth = step * (1 - padding)

	b.pos = make([]float64, len(b.domain))
	for i := range b.pos {
		b.pos[i] = start + step*float64(i)
	}
	if reverse {
		for i, j := 0, len(b.pos)-1; i < j; i, j = i+1, j-1 {
			b.pos[i], b.pos[j] = b.pos[j], b.pos[i]
		}
	}
	return b
}

// Position returns the start of v's band.
func (b *Band[T]) Position(v T) (float64, bool) {
	i, ok := b.index[v]
	if !ok {
		return 0, false
	}
	return b.pos[i], true
}

// Bandwidth is the width of every band.
func (b *Band[T]) Bandwidth() float64 { return b.bandwidth }

// Step is the distance between the starts of adjacent bands.
func (b *Band[T]) Step() float64 { return b.step }

// Domain returns the deduplicated domain in order.
func (b *Band[T]) Domain() []T {
	out := make([]T, len(b.domain))
	copy(out, b.domain)
	return out
}
