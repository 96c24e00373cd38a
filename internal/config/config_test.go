package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-dspgraph/dsp/core"
	"github.com/cwbudde/algo-dspgraph/dsp/graph"
)

const scenario = `
duration_s: 1.5
graph:
  nodes:
    - name: src
      type: source
      params:
        rate: 100
        channels: 3
        waveform: noise
    - name: down
      type: resample
      params:
        target_rate: 25
        algorithm: boxcar
  connections:
    - from: src
      to: down
output:
  node: down
  wav_path: out.wav
  bit_depth: 24
`

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(scenario), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.FrameRateHz)
	assert.Equal(t, 10*time.Second, cfg.Buffer())
	assert.Equal(t, 1500*time.Millisecond, cfg.Duration())
	assert.Equal(t, 24, cfg.Output.BitDepth)
	assert.Equal(t, "out.wav", cfg.Output.WAVPath)
	require.Len(t, cfg.Graph.Nodes, 2)
	assert.Equal(t, 100, cfg.Graph.Nodes[0].Params["rate"])
	assert.Equal(t, "boxcar", cfg.Graph.Nodes[1].Params["algorithm"])
	assert.Equal(t, []graph.Connection{{From: "src", To: "down"}}, cfg.Graph.Connections)

	engine := core.ApplyEngineOptions(cfg.EngineOptions()...)
	assert.Equal(t, 20*time.Millisecond, engine.FrameDuration())
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"syntax", "graph: [", "failed to parse"},
		{"no nodes", "duration_s: 1", "graph has no nodes"},
		{"no duration", "graph: {nodes: [{name: a, type: source}]}", "duration_s"},
		{"negative frame rate", "frame_rate_hz: -1\nduration_s: 1\ngraph: {nodes: [{name: a, type: source}]}", "frame_rate_hz"},
		{"duplicate", "duration_s: 1\ngraph: {nodes: [{name: a, type: source}, {name: a, type: source}]}", "defined twice"},
		{"untyped", "duration_s: 1\ngraph: {nodes: [{name: a}]}", "has no type"},
		{"dangling", "duration_s: 1\ngraph: {nodes: [{name: a, type: source}], connections: [{from: a, to: b}]}", `unknown node "b"`},
		{"output", "duration_s: 1\ngraph: {nodes: [{name: a, type: source}]}\noutput: {node: z}", "output node"},
		{"bit depth", "duration_s: 1\ngraph: {nodes: [{name: a, type: source}]}\noutput: {bit_depth: 8}", "bit_depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultBuildsAndRuns(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))

	g, err := graph.Build(graph.DefaultRegistry(), cfg.Graph, cfg.EngineOptions()...)
	require.NoError(t, err)
	require.NoError(t, g.Start(0))
	require.NoError(t, g.Run(t.Context(), cfg.Duration()))

	assert.Equal(t, 2, g.Node("up").Output(0).Len())
	assert.Equal(t, 2, g.Node("rms").Output(0).Len())
	assert.Equal(t, 4, g.Node("rms").Output(0).At(0).NumSamples())
}
