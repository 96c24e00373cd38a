package filter

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-dspgraph/dsp/core"
	"github.com/cwbudde/algo-dspgraph/dsp/processor"
)

// unstableLevel is the output magnitude beyond which a filter is assumed to
// have diverged.
const unstableLevel = 1e7

var (
	// ErrNeedsSampleRate is reported when a designed response meets an
	// input without a fixed rate.
	ErrNeedsSampleRate = errors.New("filter: input has no sample rate")
	// ErrUnstable is raised as a warning once the output diverges.
	ErrUnstable = errors.New("filter: output diverged")
)

// Settings configures a Processor.
type Settings struct {
	Kind      Kind
	Frequency float64
	Q         float64
	// Gain scales the filtered output.
	Gain float64
	// Coefficients are used as is by the Custom kind.
	Coefficients   Coefficients
	BufferDuration time.Duration
}

// DefaultSettings is a unity gain 1 Hz Butterworth lowpass.
func DefaultSettings() Settings {
	return Settings{
		Kind:           Lowpass,
		Frequency:      1,
		Q:              defaultQ,
		Gain:           1,
		Coefficients:   Identity,
		BufferDuration: core.DefaultEngineConfig().BufferDuration,
	}
}

// Processor filters its single input with one biquad section.
type Processor struct {
	processor.Base

	settings Settings
	section  *Section
	block    []float64
	diverged bool
}

var _ processor.Configurable[Settings] = (*Processor)(nil)

// New returns an uninitialized filter.
func New(settings Settings) *Processor {
	return &Processor{
		Base:     processor.NewBase(1, 1),
		settings: settings,
		section:  NewSection(Identity),
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

// Coefficients returns the section in use.
func (p *Processor) Coefficients() Coefficients { return p.section.Coefficients }

// ReInit designs the section for the input rate and clears its state.
func (p *Processor) ReInit() error {
	_ = p.Base.ReInit()
	p.diverged = false
	p.section = NewSection(Identity)

	if !p.RequireInput(0) {
		return p.Err()
	}

	in := p.Input(0)
	rate := in.SampleRate()

	coeffs := p.settings.Coefficients
	if p.settings.Kind != Custom {
		if rate <= 0 {
			p.AddError(fmt.Errorf("%w: %s", ErrNeedsSampleRate, in.Name()))
			return p.Err()
		}
		c, err := Design(p.settings.Kind, p.settings.Frequency, p.settings.Q, rate)
		if err != nil {
			p.AddError(err)
			return p.Err()
		}
		coeffs = c
	}
	p.section = NewSection(coeffs)
	if !coeffs.IsStable() {
		p.AddWarning(fmt.Errorf("%w: poles outside the unit circle", ErrUnstable))
	}

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

// Update filters every new input sample.
func (p *Processor) Update(elapsed, delta time.Duration) {
	p.Base.Update(elapsed, delta)
	if !p.IsInitialized() {
		return
	}

	reader := p.InputReader(0)
	if reader == nil {
		return
	}

	n := reader.NumNewSamples()
	if n == 0 {
		return
	}
	p.block = core.EnsureLen(p.block, n)
	for i := range p.block {
		p.block[i] = reader.Sample(i)
	}
	reader.Advance(n)
	p.section.ProcessBlock(p.block)

	out := p.Output(0)
	for _, y := range p.block {
		y *= p.settings.Gain
		if !p.diverged && (math.Abs(y) > unstableLevel || math.IsNaN(y)) {
			p.diverged = true
			p.AddWarning(ErrUnstable)
		}
		out.Add(y)
	}
}

// IsDiverged reports whether the output left the plausible range since the
// last ReInit.
func (p *Processor) IsDiverged() bool { return p.diverged }
