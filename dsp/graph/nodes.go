package graph

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-dspgraph/dsp/core"
	"github.com/cwbudde/algo-dspgraph/dsp/delay"
	"github.com/cwbudde/algo-dspgraph/dsp/filter"
	"github.com/cwbudde/algo-dspgraph/dsp/resample"
	"github.com/cwbudde/algo-dspgraph/dsp/signal"
	"github.com/cwbudde/algo-dspgraph/dsp/statistics"
	"github.com/cwbudde/algo-dspgraph/dsp/window"
)

// Node type names known to DefaultRegistry.
const (
	TypeSource     = "source"
	TypeResample   = "resample"
	TypeStatistics = "statistics"
	TypeFilter     = "filter"
	TypeDelay      = "delay"
)

// DefaultRegistry returns a registry with the built-in node types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(TypeSource, buildSource)
	r.MustRegister(TypeResample, buildResample)
	r.MustRegister(TypeStatistics, buildStatistics)
	r.MustRegister(TypeFilter, buildFilter)
	r.MustRegister(TypeDelay, buildDelay)
	return r
}

// NewResampleNode returns a resampling node whose output clock starts
// when the node starts.
func NewResampleNode(name string, settings resample.Settings) *Node[resample.Settings] {
	n := NewNode(name, resample.Factory, settings)
	n.OnStart(func(s *resample.Settings, elapsed time.Duration) {
		s.StartTime = elapsed
	})
	return n
}

// NewStatisticsNode returns a node computing a statistic per channel.
func NewStatisticsNode(name string, settings statistics.Settings) *Node[statistics.Settings] {
	return NewNode(name, statistics.Factory, settings)
}

// buildSource reads rate, channels, waveform, frequency, amplitude,
// offset, seed and buffer. Channel k runs at frequency*(k+1) and draws
// noise from seed+k.
func buildSource(p Params) (Runnable, error) {
	rate := p.GetNum("rate", 100)
	count := max(1, p.GetInt("channels", 1))

	wf, err := signal.ParseWaveform(p.GetStr("waveform", signal.Sine.String()))
	if err != nil {
		return nil, err
	}

	def := signal.DefaultConfig()
	freq := p.GetNum("frequency", def.Frequency)
	buffer := p.GetDuration("buffer", core.DefaultEngineConfig().BufferDuration)
	capacity := core.ApplyEngineOptions(core.WithBufferDuration(buffer)).Capacity(rate)

	sources := make([]*signal.Source, count)
	for k := range sources {
		s, err := signal.NewSource(fmt.Sprintf("%s.%d", p.Name, k), rate, capacity,
			signal.WithWaveform(wf),
			signal.WithFrequency(freq*float64(k+1)),
			signal.WithAmplitude(p.GetNum("amplitude", def.Amplitude)),
			signal.WithOffset(p.GetNum("offset", def.Offset)),
			signal.WithSeed(int64(p.GetNum("seed", float64(def.Seed)))+int64(k)),
		)
		if err != nil {
			return nil, err
		}
		sources[k] = s
	}
	return NewSourceNode(p.Name, sources...), nil
}

// buildResample reads target_rate, mode, algorithm and buffer. Naming an
// algorithm implies manual mode.
func buildResample(p Params) (Runnable, error) {
	s := resample.DefaultSettings()
	s.TargetSampleRate = p.GetNum("target_rate", s.TargetSampleRate)
	s.BufferDuration = p.GetDuration("buffer", s.BufferDuration)

	if name := p.GetStr("mode", ""); name != "" {
		m, err := resample.ParseMode(name)
		if err != nil {
			return nil, err
		}
		s.Mode = m
	}
	if name := p.GetStr("algorithm", ""); name != "" {
		a, err := resample.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		s.Algorithm = a
		s.Mode = resample.Manual
	}
	return NewResampleNode(p.Name, s), nil
}

// buildStatistics reads method, samples, interval, epoch, shift, padding,
// percentile, window and buffer. Giving samples disables interval timing.
func buildStatistics(p Params) (Runnable, error) {
	s := statistics.DefaultSettings()

	m, err := statistics.ParseMethod(p.GetStr("method", s.Method.String()))
	if err != nil {
		return nil, err
	}
	s.Method = m

	if _, ok := p.Num["samples"]; ok {
		s.NumSamples = max(1, p.GetInt("samples", s.NumSamples))
		s.SetByTime = false
	}
	s.IntervalDuration = p.GetDuration("interval", s.IntervalDuration)
	s.EpochShift = p.GetInt("shift", s.EpochShift)
	s.ZeroPadding = p.GetBool("padding", s.ZeroPadding)
	s.Percentile = p.GetInt("percentile", s.Percentile)
	s.BufferDuration = p.GetDuration("buffer", s.BufferDuration)

	switch e := p.GetStr("epoch", "off"); e {
	case "off":
		s.EpochMode = statistics.EpochOff
	case "on":
		s.EpochMode = statistics.EpochOn
	case "custom":
		s.EpochMode = statistics.EpochCustom
	default:
		return nil, fmt.Errorf("%w: epoch mode %q", statistics.ErrUnknownMethod, e)
	}

	w, err := window.ParseType(p.GetStr("window", s.Window.String()))
	if err != nil {
		return nil, err
	}
	s.Window = w

	return NewStatisticsNode(p.Name, s), nil
}

// buildFilter reads kind, frequency, q, gain, buffer and, for the custom
// kind, b0, b1, b2, a1 and a2.
func buildFilter(p Params) (Runnable, error) {
	s := filter.DefaultSettings()

	k, err := filter.ParseKind(p.GetStr("kind", s.Kind.String()))
	if err != nil {
		return nil, err
	}
	s.Kind = k
	s.Frequency = p.GetNum("frequency", s.Frequency)
	s.Q = p.GetNum("q", s.Q)
	s.Gain = p.GetNum("gain", s.Gain)
	s.BufferDuration = p.GetDuration("buffer", s.BufferDuration)
	s.Coefficients = filter.Coefficients{
		B0: p.GetNum("b0", s.Coefficients.B0),
		B1: p.GetNum("b1", s.Coefficients.B1),
		B2: p.GetNum("b2", s.Coefficients.B2),
		A1: p.GetNum("a1", s.Coefficients.A1),
		A2: p.GetNum("a2", s.Coefficients.A2),
	}

	return NewNode(p.Name, filter.Factory, s), nil
}

// buildDelay reads samples or seconds. Giving samples disables time based
// delays.
func buildDelay(p Params) (Runnable, error) {
	s := delay.DefaultSettings()
	s.Duration = p.GetDuration("seconds", s.Duration)
	if _, ok := p.Num["samples"]; ok {
		s.Samples = p.GetInt("samples", 0)
		s.SetByTime = false
	}
	s.BufferDuration = p.GetDuration("buffer", s.BufferDuration)

	return NewNode(p.Name, delay.Factory, s), nil
}
