package channel

import (
	"math"
	"sort"

	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-dspgraph/dsp/core"
)

// Epoch is a fixed-length window over the history of a channel. The window
// ends at Position, so it covers [Position-Length+1, Position].
//
// With zero padding enabled (the default) the part of the window reaching
// before the retained history counts as padding and is left out of every
// aggregate. Without padding an epoch that does not fit is empty.
type Epoch struct {
	ch       *Channel
	length   int
	position int64
	padding  bool
	window   []float64
	scratch  []float64
}

// NewEpoch returns an epoch of length samples over ch, positioned at index 0.
func NewEpoch(ch *Channel, length int) *Epoch {
	if length < 0 {
		length = 0
	}
	return &Epoch{ch: ch, length: length, padding: true}
}

// Channel returns the underlying channel.
func (e *Epoch) Channel() *Channel { return e.ch }

// Length returns the window length.
func (e *Epoch) Length() int { return e.length }

// Position returns the index of the newest sample in the window.
func (e *Epoch) Position() int64 { return e.position }

// SetPosition moves the window so it ends at index.
func (e *Epoch) SetPosition(index int64) { e.position = index }

// SetZeroPadding enables or disables zero padding.
func (e *Epoch) SetZeroPadding(enabled bool) { e.padding = enabled }

// SetWindow sets per-position coefficients that multiply the samples. The
// slice must have Length elements. A nil window disables weighting.
func (e *Epoch) SetWindow(coeffs []float64) { e.window = coeffs }

// NumPaddingSamples returns how many leading window positions are padding.
func (e *Epoch) NumPaddingSamples() int {
	if e.ch == nil || !e.padding {
		return 0
	}
	if avail := e.ch.NumSamples(); e.length > avail {
		return e.length - avail
	}
	return 0
}

// NumSamples returns the window length, or 0 if padding is disabled and the
// window does not fit into the retained history.
func (e *Epoch) NumSamples() int {
	if e.ch == nil {
		return 0
	}
	if !e.padding && e.length > e.ch.NumSamples() {
		return 0
	}
	return e.length
}

func (e *Epoch) numValid() int {
	if e.NumSamples() == 0 {
		return 0
	}
	return e.length - e.NumPaddingSamples()
}

// Sample returns the weighted value at window position i. Positions that do
// not map to a retained sample read as 0.
func (e *Epoch) Sample(i int) float64 {
	if e.ch == nil || e.length == 0 || i < 0 || i >= e.length {
		return 0
	}

	last := int64(e.length - 1)
	if !e.padding && e.position < last {
		return 0
	}

	index := e.position + int64(i) - last
	if !e.ch.IsValid(index) {
		return 0
	}

	v := e.ch.Sample(index)
	if len(e.window) == e.length {
		v *= e.window[i]
	}
	return v
}

// Values returns the weighted non-padding values. The slice is reused by the
// next call.
func (e *Epoch) Values() []float64 {
	n := e.numValid()
	e.scratch = core.EnsureLen(e.scratch, n)

	pad := e.length - n
	last := int64(e.length - 1)
	for i := range e.scratch {
		index := e.position + int64(pad+i) - last
		e.scratch[i] = e.ch.Sample(index)
	}

	if len(e.window) == e.length && n > 0 {
		vecmath.MulBlockInPlace(e.scratch, e.window[pad:])
	}
	return e.scratch
}

// Sum returns the sum of the values.
func (e *Epoch) Sum() float64 {
	v := e.Values()
	if len(v) == 0 {
		return 0
	}
	return f64.Sum(v)
}

// Product returns the product of the values.
func (e *Epoch) Product() float64 {
	v := e.Values()
	if len(v) == 0 {
		return 0
	}
	return floats.Prod(v)
}

// Mean returns the arithmetic mean.
func (e *Epoch) Mean() float64 {
	n := e.numValid()
	if n == 0 {
		return 0
	}
	return e.Sum() / float64(n)
}

// Min returns the smallest value.
func (e *Epoch) Min() float64 {
	v := e.Values()
	if len(v) == 0 {
		return 0
	}
	return floats.Min(v)
}

// Max returns the largest value.
func (e *Epoch) Max() float64 {
	v := e.Values()
	if len(v) == 0 {
		return 0
	}
	return floats.Max(v)
}

// Range returns the peak-to-peak distance.
func (e *Epoch) Range() float64 {
	return math.Abs(e.Max() - e.Min())
}

// SumSquares returns the sum of squared values.
func (e *Epoch) SumSquares() float64 {
	v := e.Values()
	if len(v) == 0 {
		return 0
	}
	return f64.DotProduct(v, v)
}

// RMS returns the root mean square.
func (e *Epoch) RMS() float64 {
	n := e.numValid()
	if n == 0 {
		return 0
	}
	return math.Sqrt(e.SumSquares() / float64(n))
}

// Variance returns the population variance.
func (e *Epoch) Variance() float64 {
	v := e.Values()
	if len(v) == 0 {
		return 0
	}
	return stat.PopVariance(v, nil)
}

// StdDev returns the population standard deviation.
func (e *Epoch) StdDev() float64 {
	return math.Sqrt(e.Variance())
}

// HarmonicMean returns n / sum(1/x). Any zero value makes it 0.
func (e *Epoch) HarmonicMean() float64 {
	v := e.Values()
	if len(v) == 0 {
		return 0
	}
	for _, x := range v {
		if x == 0 {
			return 0
		}
	}
	return stat.HarmonicMean(v, nil)
}

// GeometricMean returns the n-th root of the product. It is 0 unless every
// value is positive.
func (e *Epoch) GeometricMean() float64 {
	v := e.Values()
	if len(v) == 0 {
		return 0
	}
	for _, x := range v {
		if x <= 0 {
			return 0
		}
	}
	return stat.GeometricMean(v, nil)
}

// Quantile returns the n-th q-quantile using the lower nearest rank of the
// sorted values.
func (e *Epoch) Quantile(q, n int) float64 {
	if q <= 0 || n < 0 || n > q {
		return 0
	}

	v := e.Values()
	switch len(v) {
	case 0:
		return 0
	case 1:
		return v[0]
	}

	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	index := (len(sorted) - 1) * n / q
	return sorted[index]
}

// Percentile returns the n-th percentile.
func (e *Epoch) Percentile(n int) float64 {
	return e.Quantile(100, n)
}

// Median returns the lower median.
func (e *Epoch) Median() float64 {
	return e.Quantile(2, 1)
}
