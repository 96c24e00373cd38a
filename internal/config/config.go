// Package config loads dspgraph scenarios from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-dspgraph/dsp/core"
	"github.com/cwbudde/algo-dspgraph/dsp/graph"
)

// Config is one scenario: a graph, how long to run it and what to export.
type Config struct {
	FrameRateHz float64           `yaml:"frame_rate_hz"` // update frames per second (default: 50)
	DurationS   float64           `yaml:"duration_s"`
	BufferS     float64           `yaml:"buffer_s"` // default channel history (default: 10)
	Graph       graph.Description `yaml:"graph"`
	Output      OutputConfig      `yaml:"output"`
}

// OutputConfig selects the node whose first output is exported.
type OutputConfig struct {
	Node     string `yaml:"node"`
	WAVPath  string `yaml:"wav_path"`
	BitDepth int    `yaml:"bit_depth"` // 16, 24 or 32 (default: 16)
}

// Default returns a two channel sine source resampled from 100 Hz to
// 300 Hz, with a running RMS over the source.
func Default() *Config {
	cfg := &Config{
		DurationS: 2,
		Graph: graph.Description{
			Nodes: []graph.NodeDescription{
				{Name: "src", Type: graph.TypeSource, Params: map[string]any{
					"rate": 100.0, "channels": 2, "waveform": "sine", "frequency": 5.0,
				}},
				{Name: "up", Type: graph.TypeResample, Params: map[string]any{
					"target_rate": 300.0,
				}},
				{Name: "rms", Type: graph.TypeStatistics, Params: map[string]any{
					"method": "rms", "interval": 0.5, "epoch": "on",
				}},
			},
			Connections: []graph.Connection{
				{From: "src", To: "up"},
				{From: "src", To: "rms"},
			},
		},
		Output: OutputConfig{Node: "up"},
	}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	def := core.DefaultEngineConfig()
	if cfg.FrameRateHz == 0 {
		cfg.FrameRateHz = def.FrameRate
	}
	if cfg.BufferS == 0 {
		cfg.BufferS = core.Seconds(def.BufferDuration)
	}
	if cfg.Output.BitDepth == 0 {
		cfg.Output.BitDepth = 16
	}
}

// Validate checks ranges and that every connection names a node.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.FrameRateHz <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate_hz must be positive, got %g", cfg.FrameRateHz))
	}
	if cfg.DurationS <= 0 {
		errs = append(errs, fmt.Errorf("duration_s must be positive, got %g", cfg.DurationS))
	}
	if cfg.BufferS <= 0 {
		errs = append(errs, fmt.Errorf("buffer_s must be positive, got %g", cfg.BufferS))
	}
	if len(cfg.Graph.Nodes) == 0 {
		errs = append(errs, errors.New("graph has no nodes"))
	}

	names := make(map[string]bool, len(cfg.Graph.Nodes))
	for i, n := range cfg.Graph.Nodes {
		switch {
		case n.Name == "":
			errs = append(errs, fmt.Errorf("node %d has no name", i))
		case names[n.Name]:
			errs = append(errs, fmt.Errorf("node %q defined twice", n.Name))
		}
		if n.Type == "" {
			errs = append(errs, fmt.Errorf("node %q has no type", n.Name))
		}
		names[n.Name] = true
	}

	for _, c := range cfg.Graph.Connections {
		if !names[c.From] {
			errs = append(errs, fmt.Errorf("connection from unknown node %q", c.From))
		}
		if !names[c.To] {
			errs = append(errs, fmt.Errorf("connection to unknown node %q", c.To))
		}
	}

	if cfg.Output.Node != "" && !names[cfg.Output.Node] {
		errs = append(errs, fmt.Errorf("output node %q not in graph", cfg.Output.Node))
	}
	switch cfg.Output.BitDepth {
	case 16, 24, 32:
	default:
		errs = append(errs, fmt.Errorf("bit_depth must be 16, 24 or 32, got %d", cfg.Output.BitDepth))
	}

	return errors.Join(errs...)
}

// EngineOptions returns the engine settings of the scenario.
func (c *Config) EngineOptions() []core.EngineOption {
	return []core.EngineOption{
		core.WithFrameRate(c.FrameRateHz),
		core.WithBufferDuration(c.Buffer()),
	}
}

// Duration returns how long the scenario runs.
func (c *Config) Duration() time.Duration { return core.Duration(c.DurationS) }

// Buffer returns the default channel history.
func (c *Config) Buffer() time.Duration { return core.Duration(c.BufferS) }
