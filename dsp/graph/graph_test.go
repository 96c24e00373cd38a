package graph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dspgraph/dsp/core"
	"github.com/cwbudde/algo-dspgraph/dsp/delay"
	"github.com/cwbudde/algo-dspgraph/internal/testutil"
)

func sourceDescription(rate float64, channels int) NodeDescription {
	return NodeDescription{
		Name: "src",
		Type: TypeSource,
		Params: map[string]any{
			"rate":     rate,
			"channels": channels,
			"waveform": "constant",
			"offset":   0.5,
		},
	}
}

func TestGraphRunsSourceThroughStatistics(t *testing.T) {
	t.Parallel()

	desc := Description{
		Nodes: []NodeDescription{
			{Name: "mean", Type: TypeStatistics, Params: map[string]any{
				"method":  "mean",
				"samples": 10,
				"epoch":   "on",
			}},
			sourceDescription(100, 2),
		},
		Connections: []Connection{{From: "src", To: "mean"}},
	}

	g, err := Build(DefaultRegistry(), desc)
	require.NoError(t, err)

	order, err := g.Order()
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, "src", order[0].Name())
	assert.Equal(t, "mean", order[1].Name())

	require.NoError(t, g.Start(0))
	require.NoError(t, g.Run(context.Background(), time.Second))
	assert.Equal(t, time.Second, g.Elapsed())

	out := g.Node("mean").Output(0)
	require.Equal(t, 2, out.Len())
	for _, c := range out.Channels() {
		assert.Equal(t, 10.0, c.SampleRate())
		testutil.RequireSliceNearlyEqual(t, []float64{
			1.5, 1.5, 1.5, 1.5, 1.5, 1.5, 1.5, 1.5, 1.5, 1.5,
		}, testutil.History(c), 1e-12)
	}
}

func TestGraphResamplesUpward(t *testing.T) {
	t.Parallel()

	desc := Description{
		Nodes: []NodeDescription{
			sourceDescription(100, 1),
			{Name: "up", Type: TypeResample, Params: map[string]any{"target_rate": 300}},
		},
		Connections: []Connection{{From: "src", To: "up"}},
	}

	g, err := Build(DefaultRegistry(), desc, core.WithFrameRate(25))
	require.NoError(t, err)
	require.NoError(t, g.Start(0))
	require.NoError(t, g.Run(context.Background(), time.Second))

	src := g.Node("src").Output(0).At(0)
	up := g.Node("up").Output(0).At(0)
	require.Equal(t, 100, src.NumSamples())
	assert.Equal(t, 300.0, up.SampleRate())
	assert.InDelta(t, 3*src.NumSamples()+1, up.NumSamples(), 1)
	assert.Equal(t, 1.5, up.Last())
}

func TestGraphDetectsCycle(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.Add(NewNode("a", newAdder, 1)))
	require.NoError(t, g.Add(NewNode("b", newAdder, 1)))
	require.NoError(t, g.Connect("a", 0, "b", 0))
	require.NoError(t, g.Connect("b", 0, "a", 0))

	_, err := g.Order()
	require.ErrorIs(t, err, ErrCycle)
	require.ErrorIs(t, g.Start(0), ErrCycle)
	require.ErrorIs(t, g.Connect("a", 0, "a", 1), ErrCycle)
}

func TestGraphRejectsBadWiring(t *testing.T) {
	t.Parallel()

	g := New()
	require.NoError(t, g.Add(NewNode("a", newAdder, 1)))
	require.ErrorIs(t, g.Add(NewNode("a", newAdder, 1)), ErrDuplicateNode)
	require.ErrorIs(t, g.Connect("a", 0, "missing", 0), ErrUnknownNode)
	require.ErrorIs(t, g.Connect("missing", 0, "a", 0), ErrUnknownNode)

	require.NoError(t, g.Add(NewNode("b", newAdder, 1)))
	require.ErrorIs(t, g.Connect("a", 3, "b", 0), ErrPortRange)
	require.ErrorIs(t, g.Connect("a", 0, "b", 5), ErrPortRange)
}

func TestGraphStartCollectsNodeErrors(t *testing.T) {
	t.Parallel()

	desc := Description{
		Nodes: []NodeDescription{
			sourceDescription(100, 1),
			{Name: "dangling", Type: TypeResample},
		},
	}

	g, err := Build(DefaultRegistry(), desc)
	require.NoError(t, err)

	err = g.Start(0)
	require.ErrorIs(t, err, ErrNotConnected)
	assert.Contains(t, err.Error(), "dangling")
	assert.True(t, g.Node("src").IsInitialized())

	g.Update(frame)
	assert.Equal(t, 2, g.Node("src").Output(0).At(0).NumSamples())
}

func TestGraphRunHonorsContext(t *testing.T) {
	t.Parallel()

	g, err := Build(DefaultRegistry(), Description{Nodes: []NodeDescription{sourceDescription(100, 1)}})
	require.NoError(t, err)
	require.NoError(t, g.Start(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, g.Run(ctx, time.Second), context.Canceled)
	assert.Zero(t, g.Elapsed())
}

func TestGraphResetRewinds(t *testing.T) {
	t.Parallel()

	g, err := Build(DefaultRegistry(), Description{Nodes: []NodeDescription{sourceDescription(100, 1)}})
	require.NoError(t, err)
	require.NoError(t, g.Start(0))
	g.Update(frame)

	g.Reset()
	assert.Zero(t, g.Elapsed())
	assert.False(t, g.Node("src").IsInitialized())
	assert.Zero(t, g.Node("src").Output(0).At(0).NumSamples())
}

func TestBuildUnknownType(t *testing.T) {
	t.Parallel()

	_, err := Build(DefaultRegistry(), Description{Nodes: []NodeDescription{{Name: "x", Type: "fft"}}})
	require.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestGraphChainsFilterAndDelay(t *testing.T) {
	t.Parallel()

	desc := Description{
		Nodes: []NodeDescription{
			sourceDescription(100, 2),
			{Name: "lp", Type: TypeFilter, Params: map[string]any{"kind": "lowpass", "frequency": 5.0}},
			{Name: "late", Type: TypeDelay, Params: map[string]any{"seconds": 0.1}},
		},
		Connections: []Connection{
			{From: "src", To: "lp"},
			{From: "lp", To: "late"},
		},
	}

	g, err := Build(DefaultRegistry(), desc)
	require.NoError(t, err)
	require.NoError(t, g.Start(0))
	require.NoError(t, g.Run(context.Background(), 2*time.Second))

	late := g.Node("late")
	require.Equal(t, 2, late.Output(0).Len())
	for _, c := range late.Output(0).Channels() {
		history := testutil.History(c)
		require.Len(t, history, 200)
		assert.Equal(t, make([]float64, 10), history[:10])
		assert.InDelta(t, 1.5, c.Last(), 1e-6)
	}
	assert.Equal(t, 100*time.Millisecond, late.(*Node[delay.Settings]).Latency())
}
