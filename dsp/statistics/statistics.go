package statistics

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/dsp/core"
	"github.com/cwbudde/algo-dspgraph/dsp/processor"
	"github.com/cwbudde/algo-dspgraph/dsp/window"
)

var (
	// ErrEmptyInterval indicates an interval of zero samples.
	ErrEmptyInterval = errors.New("statistics: interval is empty")
	// ErrUnknownMethod indicates a method name or value outside the known set.
	ErrUnknownMethod = errors.New("statistics: unknown method")
)

// Method is the statistic computed over each epoch.
type Method int

const (
	Mean Method = iota
	Sum
	Product
	Min
	Max
	Range
	Variance
	StdDev
	RMS
	Percentile
	HarmonicMean
	GeometricMean
	Median
)

var methodNames = []string{
	Mean:          "mean",
	Sum:           "sum",
	Product:       "product",
	Min:           "min",
	Max:           "max",
	Range:         "range",
	Variance:      "variance",
	StdDev:        "stddev",
	RMS:           "rms",
	Percentile:    "percentile",
	HarmonicMean:  "harmonic-mean",
	GeometricMean: "geometric-mean",
	Median:        "median",
}

func (m Method) String() string {
	if m >= 0 && int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod resolves a method name as printed by String.
func ParseMethod(s string) (Method, error) {
	for i, name := range methodNames {
		if strings.EqualFold(s, name) {
			return Method(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// EpochMode selects how far consecutive epochs are apart.
type EpochMode int

const (
	// EpochOff slides the window by one sample.
	EpochOff EpochMode = iota
	// EpochOn uses non-overlapping epochs.
	EpochOn
	// EpochCustom uses Settings.EpochShift.
	EpochCustom
)

// Settings configures a Processor.
type Settings struct {
	Method Method
	// NumSamples is the interval length unless SetByTime is set.
	NumSamples int
	// IntervalDuration is converted to NumSamples with the input rate when
	// SetByTime is set.
	IntervalDuration time.Duration
	SetByTime        bool
	EpochMode        EpochMode
	EpochShift       int
	ZeroPadding      bool
	// Percentile is used by the Percentile method, in [0, 100].
	Percentile int
	// Window weights each epoch. Rectangular leaves samples unchanged.
	Window         window.Type
	BufferDuration time.Duration
}

// DefaultSettings computes the mean over one second, sliding by one sample.
func DefaultSettings() Settings {
	return Settings{
		Method:           Mean,
		NumSamples:       1,
		IntervalDuration: time.Second,
		SetByTime:        true,
		ZeroPadding:      true,
		Percentile:       50,
		Window:           window.TypeRectangular,
		BufferDuration:   10 * time.Second,
	}
}

// Processor computes a statistic over epochs of its single input.
type Processor struct {
	processor.Base

	settings   Settings
	numSamples int
	coeffs     []float64
}

var _ processor.Configurable[Settings] = (*Processor)(nil)

// New returns a statistics processor.
func New(settings Settings) *Processor {
	p := &Processor{
		Base:     processor.NewBase(1, 1),
		settings: settings,
	}
	p.Output(0).SetName("statistic")
	return p
}

// Factory builds a Processor from settings.
func Factory(settings Settings) processor.Configurable[Settings] {
	return New(settings)
}

// Setup replaces the settings. They apply on the next ReInit.
func (p *Processor) Setup(settings Settings) { p.settings = settings }

// Settings returns the current settings.
func (p *Processor) Settings() Settings { return p.settings }

// NumSamples returns the interval length resolved by the last ReInit.
func (p *Processor) NumSamples() int { return p.numSamples }

// ReInit resolves the interval and configures epoching on the input reader.
func (p *Processor) ReInit() error {
	_ = p.Base.ReInit()

	if !p.RequireInput(0) {
		return p.Err()
	}

	if int(p.settings.Method) < 0 || int(p.settings.Method) >= len(methodNames) {
		p.AddError(fmt.Errorf("%w: %v", ErrUnknownMethod, p.settings.Method))
		return p.Err()
	}

	in := p.Input(0)
	inRate := in.SampleRate()

	p.numSamples = p.settings.NumSamples
	if p.settings.SetByTime && inRate > 0 {
		p.numSamples = int(math.Ceil(inRate*p.settings.IntervalDuration.Seconds() - 1e-9))
	}
	if p.numSamples <= 0 {
		p.AddError(fmt.Errorf("%w: %d samples", ErrEmptyInterval, p.numSamples))
		return p.Err()
	}

	reader := p.InputReader(0)
	reader.SetEpochLength(p.numSamples)
	switch p.settings.EpochMode {
	case EpochOn:
		reader.SetEpochShift(p.numSamples)
	case EpochCustom:
		reader.SetEpochShift(max(1, p.settings.EpochShift))
	default:
		reader.SetEpochShift(1)
	}
	reader.SetEpochZeroPadding(p.settings.ZeroPadding)

	p.coeffs = nil
	if p.settings.Window != window.TypeRectangular {
		p.coeffs = window.Generate(p.settings.Window, p.numSamples)
		window.Normalize(p.coeffs)
	}

	out := p.Output(0)
	rate := inRate / p.SampleRatio()
	if out.SampleRate() != rate {
		out.Reset()
	}
	out.SetSampleRate(rate)
	out.SetIndependent(in.IsIndependent())
	out.SetStartTime(in.StartTime())
	out.SetSourceName(in.Name())
	out.SetUnit(in.Unit())

	cfg := core.ApplyEngineOptions(core.WithBufferDuration(p.settings.BufferDuration))
	out.SetCapacity(cfg.Capacity(rate))

	return p.Err()
}

// Update emits one value per new epoch.
func (p *Processor) Update(elapsed, delta time.Duration) {
	p.Base.Update(elapsed, delta)
	if !p.IsInitialized() {
		return
	}

	reader := p.InputReader(0)
	if reader == nil {
		return
	}

	out := p.Output(0)
	for range reader.NumEpochs() {
		e := reader.Epoch(0)
		e.SetWindow(p.coeffs)
		out.Add(p.compute(e))
		reader.PopOldestEpoch()
	}
}

func (p *Processor) compute(e *channel.Epoch) float64 {
	switch p.settings.Method {
	case Sum:
		return e.Sum()
	case Product:
		return e.Product()
	case Min:
		return e.Min()
	case Max:
		return e.Max()
	case Range:
		return e.Range()
	case Variance:
		return e.Variance()
	case StdDev:
		return e.StdDev()
	case RMS:
		return e.RMS()
	case Percentile:
		return e.Percentile(int(core.ClampInt(int64(p.settings.Percentile), 0, 100)))
	case HarmonicMean:
		return e.HarmonicMean()
	case GeometricMean:
		return e.GeometricMean()
	case Median:
		return e.Median()
	default:
		return e.Mean()
	}
}

// Delay is zero for non-overlapping epochs and the interval otherwise.
func (p *Processor) Delay() float64 {
	if p.settings.EpochMode == EpochOn {
		return 0
	}
	return float64(p.numSamples)
}

// SampleRatio is the epoch shift: the interval for non-overlapping epochs,
// the custom shift, or 1 for a sliding window.
func (p *Processor) SampleRatio() float64 {
	switch p.settings.EpochMode {
	case EpochOn:
		if p.numSamples > 0 {
			return float64(p.numSamples)
		}
	case EpochCustom:
		return float64(max(1, p.settings.EpochShift))
	}
	return 1
}

// NumStartupSamples is the interval for non-overlapping epochs and 1
// otherwise.
func (p *Processor) NumStartupSamples() int {
	if p.settings.EpochMode == EpochOn {
		return max(1, p.numSamples)
	}
	return 1
}

// NumEpochSamples returns the interval.
func (p *Processor) NumEpochSamples() int {
	return max(1, p.numSamples)
}
