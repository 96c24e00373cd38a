package core

import "time"

// EngineConfig defines how the engine steps a graph: how many frames per
// second it runs and how much history each channel retains.
type EngineConfig struct {
	FrameRate      float64
	BufferDuration time.Duration
}

// EngineOption mutates an EngineConfig.
type EngineOption func(*EngineConfig)

// DefaultEngineConfig returns the settings used by the command and tests.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		FrameRate:      50,
		BufferDuration: 10 * time.Second,
	}
}

// WithFrameRate sets the number of update frames per second.
func WithFrameRate(rate float64) EngineOption {
	return func(cfg *EngineConfig) {
		if rate > 0 {
			cfg.FrameRate = rate
		}
	}
}

// WithBufferDuration sets the retained channel history.
func WithBufferDuration(d time.Duration) EngineOption {
	return func(cfg *EngineConfig) {
		if d > 0 {
			cfg.BufferDuration = d
		}
	}
}

// ApplyEngineOptions applies zero or more options to the default config.
func ApplyEngineOptions(opts ...EngineOption) EngineConfig {
	cfg := DefaultEngineConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// FrameDuration returns the time step of one update frame.
func (c EngineConfig) FrameDuration() time.Duration {
	return Period(c.FrameRate)
}

// Capacity returns the number of samples a channel at rate must retain to
// cover the buffer duration. Rates of zero get a small fixed history.
func (c EngineConfig) Capacity(rate float64) int {
	const minCapacity = 16
	if rate <= 0 {
		return minCapacity
	}
	n := int(rate*c.BufferDuration.Seconds()) + 1
	if n < minCapacity {
		return minCapacity
	}
	return n
}
