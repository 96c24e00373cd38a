// Package window generates weighting coefficients for epochs.
package window

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// ErrUnknownType indicates a window name that does not parse.
var ErrUnknownType = errors.New("window: unknown type")

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeTriangular
	TypeWelch
	TypeHann
	TypeHamming
	TypeBlackman
	TypeNuttall
	TypeBlackmanNuttall
	TypeBlackmanHarris
	TypeFlatTop
	TypeCosine
	TypeGaussian
	TypeBartlettHann
	TypeLanczos
)

var typeNames = []string{
	TypeRectangular:     "rectangular",
	TypeTriangular:      "triangular",
	TypeWelch:           "welch",
	TypeHann:            "hann",
	TypeHamming:         "hamming",
	TypeBlackman:        "blackman",
	TypeNuttall:         "nuttall",
	TypeBlackmanNuttall: "blackman-nuttall",
	TypeBlackmanHarris:  "blackman-harris",
	TypeFlatTop:         "flat-top",
	TypeCosine:          "cosine",
	TypeGaussian:        "gaussian",
	TypeBartlettHann:    "bartlett-hann",
	TypeLanczos:         "lanczos",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a window name as printed by String.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

var (
	hannCoeffs            = []float64{0.5, 0.5}
	hammingCoeffs         = []float64{0.53836, 0.46164}
	blackmanCoeffs        = []float64{7938.0 / 18608, 9240.0 / 18608, 1430.0 / 18608}
	nuttallCoeffs         = []float64{0.355768, 0.487396, 0.144232, 0.012604}
	blackmanNuttallCoeffs = []float64{0.3635819, 0.4891775, 0.1365995, 0.0106411}
	blackmanHarrisCoeffs  = []float64{0.35875, 0.48829, 0.14128, 0.01168}
	flatTopCoeffs         = []float64{1, 1.93, 1.29, 0.388, 0.028}
)

// gaussianSigma is the width of the Gaussian window relative to half its
// length.
const gaussianSigma = 0.4

// Generate returns symmetric window coefficients of the given length. A
// window of length 1 is a single 1.
func Generate(t Type, length int) []float64 {
	if length <= 0 {
		return nil
	}

	out := make([]float64, length)
	if length == 1 {
		out[0] = 1
		return out
	}

	for i := range out {
		out[i] = evalWindow(t, float64(i)/float64(length-1))
	}
	return out
}

// Apply multiplies buf in-place by the selected window.
func Apply(t Type, buf []float64) {
	if len(buf) == 0 {
		return
	}
	vecmath.MulBlockInPlace(buf, Generate(t, len(buf)))
}

// Normalize scales coeffs in place so they sum to their length. Weighted
// means of a constant then equal the constant.
func Normalize(coeffs []float64) {
	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	if sum == 0 {
		return
	}
	vecmath.ScaleBlock(coeffs, coeffs, float64(len(coeffs))/sum)
}

// evalWindow evaluates t at x in [0, 1].
func evalWindow(t Type, x float64) float64 {
	switch t {
	case TypeTriangular:
		return 1 - math.Abs(2*x-1)
	case TypeWelch:
		d := 2*x - 1
		return 1 - d*d
	case TypeHann:
		return cosineSum(x, hannCoeffs)
	case TypeHamming:
		return cosineSum(x, hammingCoeffs)
	case TypeBlackman:
		return cosineSum(x, blackmanCoeffs)
	case TypeNuttall:
		return cosineSum(x, nuttallCoeffs)
	case TypeBlackmanNuttall:
		return cosineSum(x, blackmanNuttallCoeffs)
	case TypeBlackmanHarris:
		return cosineSum(x, blackmanHarrisCoeffs)
	case TypeFlatTop:
		return cosineSum(x, flatTopCoeffs)
	case TypeCosine:
		return math.Sin(math.Pi * x)
	case TypeGaussian:
		v := (x - 0.5) / (gaussianSigma * 0.5)
		return math.Exp(-0.5 * v * v)
	case TypeBartlettHann:
		return 0.62 - 0.48*math.Abs(x-0.5) - 0.38*math.Cos(2*math.Pi*x)
	case TypeLanczos:
		return sinc(2*x - 1)
	default:
		return 1
	}
}

// cosineSum evaluates a0 - a1 cos(2πx) + a2 cos(4πx) - ...
func cosineSum(x float64, coeffs []float64) float64 {
	sum := 0.0
	sign := 1.0
	for k, a := range coeffs {
		sum += sign * a * math.Cos(2*math.Pi*float64(k)*x)
		sign = -sign
	}
	return sum
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}
