package resample

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/dsp/clock"
	"github.com/cwbudde/algo-dspgraph/dsp/processor"
)

func newWired(t *testing.T, in *channel.Channel, opts ...Option) *Resampler {
	t.Helper()

	r := New(NewSettings(opts...))
	require.NoError(t, r.SetInput(0, in))
	require.NoError(t, r.ReInit())
	return r
}

func history(ch *channel.Channel) []float64 {
	out := make([]float64, ch.NumSamples())
	ch.CopyRange(out, ch.MinIndex())
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in, target float64
		want       Type
	}{
		{in: 100, target: 0, want: NoResampling},
		{in: 100, target: 100.0001, want: NoResampling},
		{in: 0, target: 10, want: Naive},
		{in: 100, target: 300, want: IntegerUpsample},
		{in: 100, target: 250, want: FractionalUpsample},
		{in: 100, target: 25, want: IntegerDownsample},
		{in: 100, target: 30, want: FractionalDownsample},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.in, tt.target))
		})
	}
}

func TestSelectAlgorithm(t *testing.T) {
	assert.Equal(t, Forward, SelectAlgorithm(NoResampling, GoodQuality, Boxcar))
	assert.Equal(t, OutputLast, SelectAlgorithm(Naive, Manual, Boxcar))
	assert.Equal(t, NearestNeighbor, SelectAlgorithm(FractionalDownsample, Realtime, Boxcar))
	assert.Equal(t, LinearInterpolate, SelectAlgorithm(IntegerUpsample, GoodQuality, Forward))
	assert.Equal(t, Boxcar, SelectAlgorithm(IntegerDownsample, GoodQuality, Forward))
	assert.Equal(t, OutputLast, SelectAlgorithm(IntegerDownsample, Manual, OutputLast))
}

func TestForwardIdentity(t *testing.T) {
	in := channel.New("in", 100, 64)
	in.SetStartTime(time.Second)
	r := newWired(t, in, WithTargetSampleRate(100))
	require.Equal(t, Forward, r.Algorithm())
	assert.False(t, r.Clock().IsRunning())
	assert.Equal(t, 0.0, r.Delay())

	var want []float64
	for frame := 0; frame < 5; frame++ {
		for i := 0; i < 3; i++ {
			v := float64(frame*3 + i)
			in.Add(v)
			want = append(want, v)
		}
		r.Update(0, 0)
	}

	out := r.Output(0)
	assert.Equal(t, want, history(out))
	assert.Equal(t, 100.0, out.SampleRate())
	assert.Equal(t, time.Second, out.StartTime())
	assert.Equal(t, "in", out.SourceName())
}

func TestNearestNeighborUpsampleScenario(t *testing.T) {
	in := channel.New("in", 100, 256)
	r := newWired(t, in, WithTargetSampleRate(300), WithMode(Realtime))

	require.Equal(t, IntegerUpsample, r.Type())
	require.Equal(t, NearestNeighbor, r.Algorithm())
	assert.Equal(t, clock.SyncedAhead, r.Clock().Mode())
	assert.Equal(t, 3, r.IntFactor())
	assert.Equal(t, 1.0, r.Delay())
	assert.InDelta(t, 1.0/3, r.SampleRatio(), 1e-12)

	const n = 10
	inputs := make([]float64, n)
	for i := range inputs {
		inputs[i] = float64(i + 1)
		in.Add(inputs[i])
		r.Update(0, 0)
	}

	out := history(r.Output(0))
	require.Len(t, out, 3*n+1, "one synced-ahead lead tick on top of the 3x rate")
	assert.Equal(t, []float64{0, 0}, out[:2])
	for k := 0; k < n-1; k++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, inputs[k], out[2+3*k+j], "output %d", 2+3*k+j)
		}
	}
	assert.Equal(t, 0, r.InputReader(0).NumNewSamples())
	assert.False(t, r.Output(0).IsIndependent())
}

func TestNearestNeighborDropsEvictedTicks(t *testing.T) {
	in := channel.New("in", 100, 4)
	r := newWired(t, in, WithTargetSampleRate(50))
	require.Equal(t, NearestNeighbor, r.Algorithm())
	assert.Equal(t, 0.0, r.Delay(), "downsampling adds no delay")

	burst := make([]float64, 20)
	for i := range burst {
		burst[i] = float64(i)
	}
	in.AddSamples(burst...)
	r.Update(0, 0)

	assert.Equal(t, []float64{17, 19}, history(r.Output(0)), "evicted ticks produce nothing")
	assert.Equal(t, 0, r.Clock().NumNewTicks())
	assert.True(t, r.IsInitialized())
	assert.NoError(t, r.Err())
	assert.Equal(t, 0, r.InputReader(0).NumNewSamples())
}

func TestNearestNeighborRecoversAfterEviction(t *testing.T) {
	in := channel.New("in", 100, 4)
	r := newWired(t, in, WithTargetSampleRate(50))

	in.AddSamples(make([]float64, 20)...)
	r.Update(0, 0)

	const frames = 50
	for frame := 0; frame < frames; frame++ {
		in.AddSamples(1, 2)
		r.Update(0, 0)
	}

	out := r.Output(0)
	assert.Equal(t, int64(2+frames), out.Counter())
	assert.Equal(t, 2.0, out.Last())
	assert.LessOrEqual(t, r.Clock().NumNewTicks(), 1, "ticks do not pile up")
}

func TestBoxcar(t *testing.T) {
	t.Run("constant", func(t *testing.T) {
		in := channel.New("in", 100, 64)
		r := newWired(t, in, WithTargetSampleRate(25), WithMode(GoodQuality))
		require.Equal(t, Boxcar, r.Algorithm())
		assert.Equal(t, clock.Synced, r.Clock().Mode())

		for i := 0; i < 20; i++ {
			in.Add(5)
		}
		r.Update(0, 0)
		assert.Equal(t, []float64{5, 5, 5, 5, 5}, history(r.Output(0)))
	})

	t.Run("impulse", func(t *testing.T) {
		in := channel.New("in", 100, 64)
		r := newWired(t, in, WithTargetSampleRate(25), WithMode(GoodQuality))

		samples := make([]float64, 20)
		samples[5] = 8
		in.AddSamples(samples...)
		r.Update(0, 0)
		assert.Equal(t, []float64{0, 2, 0, 0, 0}, history(r.Output(0)))
	})

	t.Run("evicted tick is skipped", func(t *testing.T) {
		in := channel.New("in", 100, 2)
		r := newWired(t, in, WithTargetSampleRate(25), WithMode(GoodQuality))

		for i := 0; i < 12; i++ {
			in.Add(1)
		}
		r.Update(0, 0)
		assert.Equal(t, 1, r.Output(0).NumSamples(), "only the tick at index 11 survives")
		assert.Equal(t, 0.5, r.Output(0).Last(), "padding is left out of the sum but not the length")
	})
}

func TestOutputLastDrainsInput(t *testing.T) {
	in := channel.New("events", 0, 16)
	r := newWired(t, in, WithTargetSampleRate(10))
	require.Equal(t, Naive, r.Type())
	require.Equal(t, OutputLast, r.Algorithm())
	assert.Equal(t, clock.FreeRunning, r.Clock().Mode())

	r.Update(500*time.Millisecond, 500*time.Millisecond)
	assert.Equal(t, []float64{0, 0, 0, 0, 0}, history(r.Output(0)))

	in.AddSamples(1, 2, 3)
	r.Update(time.Second, 200*time.Millisecond)
	assert.Equal(t, 0, r.InputReader(0).NumNewSamples())
	assert.Equal(t, 2, r.Output(0).NumNewSamples())
	assert.Equal(t, 3.0, r.Output(0).Last())
}

func TestLinearInterpolateIsAGap(t *testing.T) {
	in := channel.New("in", 100, 64)
	r := New(NewSettings(WithTargetSampleRate(200), WithMode(GoodQuality)))
	require.NoError(t, r.SetInput(0, in))
	require.NoError(t, r.ReInit())

	require.Equal(t, LinearInterpolate, r.Algorithm())
	require.Len(t, r.Warnings(), 1)
	assert.ErrorIs(t, r.Warnings()[0], ErrAlgorithmNotImplemented)
	assert.Equal(t, clock.Synced, r.Clock().Mode())
	assert.Equal(t, 1.0, r.Delay())
	assert.Equal(t, 2, r.NumStartupSamples())
	assert.Equal(t, 2, r.NumEpochSamples())

	in.AddSamples(1, 2, 3, 4)
	r.Update(0, 0)
	assert.Equal(t, 0, r.Output(0).NumSamples())
	assert.Equal(t, 0, r.Clock().NumNewTicks())
	assert.Equal(t, 0, r.InputReader(0).NumNewSamples())
}

func TestDerivedProperties(t *testing.T) {
	tests := []struct {
		name     string
		target   float64
		opts     []Option
		delay    float64
		startup  int
		algorithm Algorithm
	}{
		{name: "forward", target: 0, delay: 0, startup: 1, algorithm: Forward},
		{name: "nn up", target: 400, delay: 1, startup: 1, algorithm: NearestNeighbor},
		{name: "nn down", target: 20, delay: 0, startup: 1, algorithm: NearestNeighbor},
		{name: "boxcar", target: 20, opts: []Option{WithMode(GoodQuality)}, delay: 5, startup: 10, algorithm: Boxcar},
		{name: "manual boxcar up", target: 200, opts: []Option{WithAlgorithm(Boxcar)}, delay: 2, startup: 4, algorithm: Boxcar},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := channel.New("in", 100, 64)
			r := newWired(t, in, append([]Option{WithTargetSampleRate(tt.target)}, tt.opts...)...)
			assert.Equal(t, tt.algorithm, r.Algorithm())
			assert.Equal(t, tt.delay, r.Delay())
			assert.Equal(t, tt.startup, r.NumStartupSamples())
			assert.Equal(t, tt.startup, r.NumEpochSamples())
		})
	}
}

func TestReInitErrors(t *testing.T) {
	r := New(DefaultSettings())
	assert.ErrorIs(t, r.ReInit(), processor.ErrMissingInput)
	r.Update(0, time.Second)
	assert.Equal(t, 0, r.Output(0).NumSamples())

	in := channel.New("in", 100, 16)
	require.NoError(t, r.SetInput(0, in))
	r.Setup(NewSettings(WithTargetSampleRate(-3)))
	assert.ErrorIs(t, r.ReInit(), ErrInvalidTargetRate)
	assert.False(t, r.IsInitialized())

	in.AddSamples(1, 2, 3)
	r.Update(0, 0)
	assert.Equal(t, 0, r.InputReader(0).NumNewSamples(), "uninitialized processors drain their input")

	r.Setup(NewSettings(WithTargetSampleRate(50), WithAlgorithm(Algorithm(42))))
	assert.ErrorIs(t, r.ReInit(), ErrUnknownAlgorithm)

	r.Setup(NewSettings(WithTargetSampleRate(50)))
	require.NoError(t, r.ReInit())
	assert.True(t, r.IsInitialized())
	assert.Equal(t, 50.0, r.Settings().TargetSampleRate)
}

func TestStartTimeAlignsOutput(t *testing.T) {
	in := channel.New("in", 100, 64)
	r := newWired(t, in, WithTargetSampleRate(50), WithStartTime(2*time.Second))
	assert.Equal(t, 2*time.Second, r.Output(0).StartTime())
	assert.Equal(t, 2*time.Second, r.Clock().StartTime())
	assert.Equal(t, 50.0, r.Output(0).SampleRate())
}

func TestParseNames(t *testing.T) {
	m, err := ParseMode("Good-Quality")
	require.NoError(t, err)
	assert.Equal(t, GoodQuality, m)

	a, err := ParseAlgorithm("boxcar")
	require.NoError(t, err)
	assert.Equal(t, Boxcar, a)

	_, err = ParseAlgorithm("polyphase")
	assert.ErrorIs(t, err, ErrUnknownName)
	_, err = ParseMode("")
	assert.ErrorIs(t, err, ErrUnknownName)

	assert.Equal(t, "Algorithm(9)", Algorithm(9).String())
	assert.Equal(t, "Mode(9)", Mode(9).String())
	assert.Equal(t, "Type(9)", Type(9).String())
}
