package signal

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/dsp/clock"
)

var (
	// ErrInvalidRate indicates a non-positive source rate.
	ErrInvalidRate = errors.New("signal: sample rate must be > 0")
	// ErrInvalidAmplitude indicates a negative amplitude.
	ErrInvalidAmplitude = errors.New("signal: amplitude must be >= 0")
	// ErrUnknownWaveform indicates a waveform name that does not parse.
	ErrUnknownWaveform = errors.New("signal: unknown waveform")
)

// Waveform is the shape a Source produces.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Sawtooth
	Noise
	Constant
	Impulse
)

var waveformNames = []string{
	Sine:     "sine",
	Square:   "square",
	Sawtooth: "sawtooth",
	Noise:    "noise",
	Constant: "constant",
	Impulse:  "impulse",
}

func (w Waveform) String() string {
	if w >= 0 && int(w) < len(waveformNames) {
		return waveformNames[w]
	}
	return fmt.Sprintf("Waveform(%d)", int(w))
}

// ParseWaveform resolves a waveform name as printed by String.
func ParseWaveform(s string) (Waveform, error) {
	for i, name := range waveformNames {
		if strings.EqualFold(s, name) {
			return Waveform(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownWaveform, s)
}

// Config describes the produced signal.
type Config struct {
	Waveform  Waveform
	Frequency float64
	Amplitude float64
	Offset    float64
	Seed      int64
}

// Option configures a Source.
type Option func(*Config)

// DefaultConfig is a 10 Hz unit sine.
func DefaultConfig() Config {
	return Config{
		Waveform:  Sine,
		Frequency: 10,
		Amplitude: 1,
		Seed:      1,
	}
}

// WithWaveform sets the waveform.
func WithWaveform(w Waveform) Option {
	return func(c *Config) {
		c.Waveform = w
	}
}

// WithFrequency sets the waveform frequency in Hz.
func WithFrequency(hz float64) Option {
	return func(c *Config) {
		if hz >= 0 {
			c.Frequency = hz
		}
	}
}

// WithAmplitude sets the peak amplitude.
func WithAmplitude(a float64) Option {
	return func(c *Config) {
		c.Amplitude = a
	}
}

// WithOffset adds a constant to every sample.
func WithOffset(v float64) Option {
	return func(c *Config) {
		c.Offset = v
	}
}

// WithSeed sets the deterministic random seed for noise.
func WithSeed(seed int64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// Source appends a waveform to its channel at a fixed rate.
type Source struct {
	cfg   Config
	rate  float64
	out   *channel.Channel
	clock *clock.Generator
	rng   *rand.Rand
}

// NewSource returns a stopped source writing to a new channel.
func NewSource(name string, rate float64, capacity int, opts ...Option) (*Source, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidRate, rate)
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Amplitude < 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidAmplitude, cfg.Amplitude)
	}

	s := &Source{
		cfg:   cfg,
		rate:  rate,
		out:   channel.New(name, rate, capacity),
		clock: clock.New(rate),
	}
	s.out.SetIndependent(false)
	s.Reset()
	return s, nil
}

// Config returns the signal configuration.
func (s *Source) Config() Config { return s.cfg }

// Channel returns the output channel.
func (s *Source) Channel() *channel.Channel { return s.out }

// Start begins producing samples stamped from t on.
func (s *Source) Start(t time.Duration) {
	s.out.SetStartTime(t)
	s.clock.SetStartTime(t)
	s.clock.Start()
}

// Stop pauses production.
func (s *Source) Stop() { s.clock.Stop() }

// Reset clears the channel and rewinds the waveform.
func (s *Source) Reset() {
	s.out.Reset()
	s.clock.Reset()
	s.rng = rand.New(rand.NewSource(s.cfg.Seed))
}

// Update appends the samples that became due during delta.
func (s *Source) Update(elapsed, delta time.Duration) {
	s.out.BeginAddSamples()
	s.clock.Update(elapsed, delta)
	for {
		tick, ok := s.clock.PopOldestTick()
		if !ok {
			break
		}
		s.out.Add(s.Value(tick.Index))
	}
	s.out.SetElapsed(elapsed)
}

// Value returns sample i of the waveform. Noise ignores i and draws the
// next value from the seeded generator.
func (s *Source) Value(i uint64) float64 {
	c := s.cfg
	phase := c.Frequency * float64(i) / s.rate
	frac := phase - math.Floor(phase)

	var v float64
	switch c.Waveform {
	case Sine:
		v = math.Sin(2 * math.Pi * phase)
	case Square:
		v = 1
		if frac >= 0.5 {
			v = -1
		}
	case Sawtooth:
		v = 2*frac - 1
	case Noise:
		v = s.rng.Float64()*2 - 1
	case Constant:
		v = 1
	case Impulse:
		period := uint64(1)
		if c.Frequency > 0 {
			period = max(1, uint64(math.Round(s.rate/c.Frequency)))
		}
		if c.Frequency > 0 && i%period == 0 || i == 0 {
			v = 1
		}
	}
	return c.Offset + c.Amplitude*v
}
