package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/internal/testutil"
)

func TestDesignResponses(t *testing.T) {
	t.Parallel()

	const rate = 1000.0

	tests := []struct {
		kind     Kind
		freq     float64
		atDC     float64
		atNyq    float64
		atCorner float64
	}{
		{Lowpass, 100, 1, 0, 1 / math.Sqrt2},
		{Highpass, 100, 0, 1, 1 / math.Sqrt2},
		{Bandpass, 100, 0, 0, 1},
		{Notch, 100, 1, 1, 0},
		{Allpass, 100, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			t.Parallel()

			c, err := Design(tt.kind, tt.freq, 0, rate)
			require.NoError(t, err)
			assert.True(t, c.IsStable())
			assert.InDelta(t, tt.atDC, c.Response(0, rate), 1e-9)
			assert.InDelta(t, tt.atNyq, c.Response(rate/2, rate), 1e-9)
			assert.InDelta(t, tt.atCorner, c.Response(tt.freq, rate), 1e-9)
		})
	}
}

func TestDesignRejects(t *testing.T) {
	t.Parallel()

	_, err := Design(Lowpass, 600, 1, 1000)
	require.ErrorIs(t, err, ErrInvalidFrequency)
	_, err = Design(Lowpass, 10, 1, 0)
	require.ErrorIs(t, err, ErrInvalidFrequency)
	_, err = Design(Kind(42), 10, 1, 100)
	require.ErrorIs(t, err, ErrUnknownKind)

	c, err := Design(Custom, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, Identity, c)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := ParseKind("HighPass")
	require.NoError(t, err)
	assert.Equal(t, Highpass, k)

	_, err = ParseKind("comb")
	require.ErrorIs(t, err, ErrUnknownKind)
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestSectionImpulseResponse(t *testing.T) {
	t.Parallel()

	s := NewSection(Coefficients{B0: 0.5, B1: 0.25, A1: -0.5})
	buf := testutil.Impulse(4, 0, 1)
	s.ProcessBlock(buf)
	testutil.RequireSliceNearlyEqual(t, []float64{0.5, 0.5, 0.25, 0.125}, buf, 1e-12)

	s.Reset()
	assert.Equal(t, 0.5, s.ProcessSample(1))
}

func TestProcessorLowpassSettlesOnDC(t *testing.T) {
	t.Parallel()

	in := channel.New("eeg", 250, 0)
	p := New(Settings{Kind: Lowpass, Frequency: 10, Gain: 2})
	require.NoError(t, p.SetInput(0, in))
	require.NoError(t, p.ReInit())
	assert.Empty(t, p.Warnings())

	out := p.Output(0)
	assert.Equal(t, 250.0, out.SampleRate())
	assert.Equal(t, "eeg", out.SourceName())

	testutil.Feed(in, testutil.DC(1, 500)...)
	p.Update(0, 0)
	require.Equal(t, 500, out.NumNewSamples())
	assert.InDelta(t, 2, out.Last(), 1e-6)
	assert.False(t, p.IsDiverged())
}

func TestProcessorCustomPassesThrough(t *testing.T) {
	t.Parallel()

	in := channel.New("events", 0, 0)
	s := DefaultSettings()
	s.Kind = Custom
	p := New(s)
	require.NoError(t, p.SetInput(0, in))
	require.NoError(t, p.ReInit())
	assert.True(t, p.Output(0).IsIndependent())

	testutil.Feed(in, 3, -1, 4)
	p.Update(0, 0)
	assert.Equal(t, []float64{3, -1, 4}, testutil.History(p.Output(0)))
}

func TestProcessorErrors(t *testing.T) {
	t.Parallel()

	p := New(DefaultSettings())
	require.Error(t, p.ReInit())
	assert.False(t, p.IsInitialized())

	require.NoError(t, p.SetInput(0, channel.New("events", 0, 0)))
	require.ErrorIs(t, p.ReInit(), ErrNeedsSampleRate)

	require.NoError(t, p.SetInput(0, channel.New("slow", 1, 0)))
	require.ErrorIs(t, p.ReInit(), ErrInvalidFrequency)
}

func TestProcessorFlagsDivergence(t *testing.T) {
	t.Parallel()

	in := channel.New("x", 100, 0)
	s := DefaultSettings()
	s.Kind = Custom
	s.Coefficients = Coefficients{B0: 1, A1: -2}
	p := New(s)
	require.NoError(t, p.SetInput(0, in))
	require.NoError(t, p.ReInit())
	require.ErrorIs(t, p.Warnings()[0], ErrUnstable)

	testutil.Feed(in, testutil.DC(1, 40)...)
	p.Update(0, 0)
	assert.True(t, p.IsDiverged())
	assert.Len(t, p.Warnings(), 2)

	require.NoError(t, p.ReInit())
	assert.False(t, p.IsDiverged())
}
