package window

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dspgraph/internal/testutil"
)

func TestGenerateIsSymmetric(t *testing.T) {
	for i := range typeNames {
		typ := Type(i)
		t.Run(typ.String(), func(t *testing.T) {
			t.Parallel()
			w := Generate(typ, 9)
			require.Len(t, w, 9)
			for k := range w {
				assert.InDelta(t, w[k], w[len(w)-1-k], 1e-12)
			}
			assert.InDelta(t, evalWindow(typ, 0.5), w[4], 1e-12)
		})
	}
}

func TestGenerateKnownValues(t *testing.T) {
	testutil.RequireSliceNearlyEqual(t, []float64{0, 0.75, 0.75, 0}, Generate(TypeHann, 4), 1e-12)
	testutil.RequireSliceNearlyEqual(t, []float64{0, 1, 0}, Generate(TypeTriangular, 3), 1e-12)
	testutil.RequireSliceNearlyEqual(t, []float64{1, 1}, Generate(TypeRectangular, 2), 1e-12)
	assert.Equal(t, []float64{1}, Generate(TypeHann, 1))
	assert.Nil(t, Generate(TypeHann, 0))
}

func TestApplyAndNormalize(t *testing.T) {
	buf := []float64{2, 2, 2, 2, 2}
	Apply(TypeWelch, buf)
	testutil.RequireSliceNearlyEqual(t, []float64{0, 1.5, 2, 1.5, 0}, buf, 1e-12)

	coeffs := Generate(TypeHann, 8)
	Normalize(coeffs)
	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	assert.InDelta(t, 8, sum, 1e-9)

	zeros := []float64{0, 0}
	Normalize(zeros)
	assert.Equal(t, []float64{0, 0}, zeros)
	Apply(TypeHann, nil)
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("Blackman-Harris")
	require.NoError(t, err)
	assert.Equal(t, TypeBlackmanHarris, typ)

	_, err = ParseType("kaiser")
	assert.ErrorIs(t, err, ErrUnknownType)
	assert.Equal(t, "Type(99)", Type(99).String())
}

func ExampleGenerate() {
	w := Generate(TypeHann, 4)
	fmt.Printf("%.2f %.2f %.2f %.2f\n", w[0], w[1], w[2], w[3])
	// Output:
	// 0.00 0.75 0.75 0.00
}
