package resample

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects which family of algorithms is chosen automatically.
type Mode int

const (
	// Realtime prefers minimum latency.
	Realtime Mode = iota
	// GoodQuality prefers accuracy and accepts added delay.
	GoodQuality
	// Manual uses Settings.Algorithm as is.
	Manual
)

var modeNames = map[Mode]string{
	Realtime:    "realtime",
	GoodQuality: "good-quality",
	Manual:      "manual",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode resolves a mode name as printed by String.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: mode %q", ErrUnknownName, s)
}

// Algorithm is the closed set of conversion algorithms.
type Algorithm int

const (
	// Forward copies every input sample.
	Forward Algorithm = iota
	// OutputLast repeats the newest input value on every tick.
	OutputLast
	// NearestNeighbor emits the newest input sample not later than each
	// tick.
	NearestNeighbor
	// LinearInterpolate is reserved and produces no samples.
	LinearInterpolate
	// Boxcar emits the mean of a window ending at each tick.
	Boxcar
)

var algorithmNames = map[Algorithm]string{
	Forward:           "forward",
	OutputLast:        "output-last",
	NearestNeighbor:   "nearest-neighbor",
	LinearInterpolate: "linear-interpolate",
	Boxcar:            "boxcar",
}

func (a Algorithm) String() string {
	if s, ok := algorithmNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}

// ParseAlgorithm resolves an algorithm name as printed by String.
func ParseAlgorithm(s string) (Algorithm, error) {
	for a, name := range algorithmNames {
		if strings.EqualFold(s, name) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: algorithm %q", ErrUnknownName, s)
}

// Type classifies a conversion by its rates. Naive means the input is
// independent and has no rate to convert from.
type Type int

const (
	NoResampling Type = iota
	Naive
	IntegerUpsample
	FractionalUpsample
	IntegerDownsample
	FractionalDownsample
)

func (t Type) String() string {
	switch t {
	case NoResampling:
		return "no-resampling"
	case Naive:
		return "naive"
	case IntegerUpsample:
		return "integer-upsample"
	case FractionalUpsample:
		return "fractional-upsample"
	case IntegerDownsample:
		return "integer-downsample"
	case FractionalDownsample:
		return "fractional-downsample"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// IsUpsample reports whether the output rate exceeds the input rate.
func (t Type) IsUpsample() bool {
	return t == IntegerUpsample || t == FractionalUpsample
}

// Settings configures a Resampler.
type Settings struct {
	// TargetSampleRate is the output rate in Hz. Zero forwards the input.
	TargetSampleRate float64
	Mode             Mode
	// Algorithm is only used in Manual mode.
	Algorithm Algorithm
	// StartTime aligns the output clock with the graph time origin.
	StartTime time.Duration
	// BufferDuration sizes the output channel history.
	BufferDuration time.Duration
}

// Option mutates Settings.
type Option func(*Settings)

// DefaultSettings forwards the input in realtime mode.
func DefaultSettings() Settings {
	return Settings{
		Mode:           Realtime,
		Algorithm:      NearestNeighbor,
		BufferDuration: 10 * time.Second,
	}
}

// NewSettings applies opts to the defaults.
func NewSettings(opts ...Option) Settings {
	s := DefaultSettings()
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// WithTargetSampleRate sets the output rate.
func WithTargetSampleRate(rate float64) Option {
	return func(s *Settings) {
		s.TargetSampleRate = rate
	}
}

// WithMode sets the selection mode.
func WithMode(m Mode) Option {
	return func(s *Settings) {
		s.Mode = m
	}
}

// WithAlgorithm switches to Manual mode with algorithm a.
func WithAlgorithm(a Algorithm) Option {
	return func(s *Settings) {
		s.Mode = Manual
		s.Algorithm = a
	}
}

// WithStartTime sets the output time origin.
func WithStartTime(t time.Duration) Option {
	return func(s *Settings) {
		s.StartTime = t
	}
}

// WithBufferDuration sets the retained output history.
func WithBufferDuration(d time.Duration) Option {
	return func(s *Settings) {
		if d > 0 {
			s.BufferDuration = d
		}
	}
}
