package filter

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const defaultQ = 1 / math.Sqrt2

var (
	// ErrUnknownKind indicates a response name that does not parse.
	ErrUnknownKind = errors.New("filter: unknown kind")
	// ErrInvalidFrequency is returned for corner frequencies outside
	// (0, rate/2).
	ErrInvalidFrequency = errors.New("filter: frequency outside (0, nyquist)")
)

// Kind selects the filter response.
type Kind int

const (
	// Custom uses Settings.Coefficients as given.
	Custom Kind = iota
	Lowpass
	Highpass
	Bandpass
	Notch
	Allpass
)

var kindNames = []string{
	Custom:   "custom",
	Lowpass:  "lowpass",
	Highpass: "highpass",
	Bandpass: "bandpass",
	Notch:    "notch",
	Allpass:  "allpass",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a kind name as printed by String.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Design returns RBJ coefficients of kind at freq Hz for the given sample
// rate. A q that is not positive selects 1/sqrt(2).
func Design(kind Kind, freq, q, sampleRate float64) (Coefficients, error) {
	if kind == Custom {
		return Identity, nil
	}
	if int(kind) < 0 || int(kind) >= len(kindNames) {
		return Coefficients{}, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}

	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return Coefficients{}, fmt.Errorf("%w: %g Hz at %g Hz", ErrInvalidFrequency, freq, sampleRate)
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))
	a0, a1, a2 := 1+alpha, -2*cw, 1-alpha

	var b0, b1, b2 float64
	switch kind {
	case Lowpass:
		b0, b1, b2 = (1-cw)/2, 1-cw, (1-cw)/2
	case Highpass:
		b0, b1, b2 = (1+cw)/2, -(1 + cw), (1+cw)/2
	case Bandpass:
		b0, b1, b2 = alpha, 0, -alpha
	case Notch:
		b0, b1, b2 = 1, -2*cw, 1
	case Allpass:
		b0, b1, b2 = 1-alpha, -2*cw, 1+alpha
	}

	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}, nil
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}

	return q
}

// Response returns the magnitude of c at freq Hz.
func (c Coefficients) Response(freq, sampleRate float64) float64 {
	w := 2 * math.Pi * freq / sampleRate
	cos1, sin1 := math.Cos(w), math.Sin(w)
	cos2, sin2 := math.Cos(2*w), math.Sin(2*w)

	numRe := c.B0 + c.B1*cos1 + c.B2*cos2
	numIm := -(c.B1*sin1 + c.B2*sin2)
	denRe := 1 + c.A1*cos1 + c.A2*cos2
	denIm := -(c.A1*sin1 + c.A2*sin2)

	return math.Hypot(numRe, numIm) / math.Hypot(denRe, denIm)
}
