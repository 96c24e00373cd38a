package delay

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-dspgraph/dsp/core"
	"github.com/cwbudde/algo-dspgraph/dsp/processor"
)

// ErrNeedsSampleRate is reported when a delay given as time meets an input
// without a fixed rate.
var ErrNeedsSampleRate = errors.New("delay: input has no sample rate")

// Settings configures a Processor.
type Settings struct {
	// Samples is the delay unless SetByTime is set.
	Samples int
	// Duration is converted to samples with the input rate when SetByTime
	// is set, so the delay keeps its length in time across rate changes.
	Duration       time.Duration
	SetByTime      bool
	BufferDuration time.Duration
}

// DefaultSettings delays by nothing.
func DefaultSettings() Settings {
	return Settings{
		SetByTime:      true,
		BufferDuration: core.DefaultEngineConfig().BufferDuration,
	}
}

// Processor emits zeros for the first n input samples, then the input
// shifted by n samples.
type Processor struct {
	processor.Base

	settings Settings
	line     *Line
}

var _ processor.Configurable[Settings] = (*Processor)(nil)

// New returns an uninitialized delay.
func New(settings Settings) *Processor {
	return &Processor{
		Base:     processor.NewBase(1, 1),
		settings: settings,
		line:     &Line{},
	}
}

// Factory adapts New to processor.Factory.
func Factory(settings Settings) processor.Configurable[Settings] {
	return New(settings)
}

// Setup replaces the settings. They apply on the next ReInit.
func (p *Processor) Setup(settings Settings) { p.settings = settings }

// Settings returns the current settings.
func (p *Processor) Settings() Settings { return p.settings }

// ReInit resolves the delay length and clears the line.
func (p *Processor) ReInit() error {
	_ = p.Base.ReInit()

	if !p.RequireInput(0) {
		return p.Err()
	}

	in := p.Input(0)
	rate := in.SampleRate()

	n := p.settings.Samples
	if p.settings.SetByTime {
		if rate <= 0 && p.settings.Duration > 0 {
			p.AddError(fmt.Errorf("%w: %s", ErrNeedsSampleRate, in.Name()))
			return p.Err()
		}
		n = int(math.Round(rate * p.settings.Duration.Seconds()))
	}

	line, err := NewLine(n)
	if err != nil {
		p.AddError(err)
		return p.Err()
	}
	p.line = line

	out := p.Output(0)
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

// Update pushes every new input sample through the line.
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
	for reader.NumNewSamples() > 0 {
		out.Add(p.line.Process(reader.PopOldest()))
	}
}

// Delay returns the delay in input samples.
func (p *Processor) Delay() float64 { return float64(p.line.Len()) }

// NumSamples returns the delay resolved by the last ReInit.
func (p *Processor) NumSamples() int { return p.line.Len() }
