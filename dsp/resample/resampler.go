package resample

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/dsp/clock"
	"github.com/cwbudde/algo-dspgraph/dsp/core"
	"github.com/cwbudde/algo-dspgraph/dsp/processor"
)

var (
	// ErrInvalidTargetRate indicates a negative target rate.
	ErrInvalidTargetRate = errors.New("resample: invalid target sample rate")
	// ErrUnknownName indicates a mode or algorithm name that does not parse.
	ErrUnknownName = errors.New("resample: unknown name")
	// ErrUnknownAlgorithm indicates an algorithm value outside the known set.
	ErrUnknownAlgorithm = errors.New("resample: unknown algorithm")
	// ErrAlgorithmNotImplemented is raised as a warning when the selected
	// algorithm produces no samples.
	ErrAlgorithmNotImplemented = errors.New("resample: algorithm produces no samples")
)

// ratioEpsilon is the tolerance for treating a rate ratio as 1 or as an
// integer.
const ratioEpsilon = 1e-5

// Resampler converts its single input to the target rate.
type Resampler struct {
	processor.Base

	settings  Settings
	typ       Type
	algorithm Algorithm
	factor    float64
	intFactor int

	clock  *clock.Generator
	kernel *channel.Epoch
}

var _ processor.Configurable[Settings] = (*Resampler)(nil)

// New returns an unconfigured resampler. Connect an input and call ReInit
// before the first Update.
func New(settings Settings) *Resampler {
	r := &Resampler{
		Base:      processor.NewBase(1, 1),
		settings:  settings,
		clock:     clock.New(0),
		intFactor: 1,
	}
	r.Output(0).SetName("resampled")
	return r
}

// Factory builds a Resampler from settings.
func Factory(settings Settings) processor.Configurable[Settings] {
	return New(settings)
}

// Setup replaces the settings. They apply on the next ReInit.
func (r *Resampler) Setup(settings Settings) { r.settings = settings }

// Settings returns the current settings.
func (r *Resampler) Settings() Settings { return r.settings }

// Type returns the conversion type chosen by the last ReInit.
func (r *Resampler) Type() Type { return r.typ }

// Algorithm returns the algorithm chosen by the last ReInit.
func (r *Resampler) Algorithm() Algorithm { return r.algorithm }

// Factor returns target rate divided by input rate.
func (r *Resampler) Factor() float64 { return r.factor }

// IntFactor returns the integer conversion factor, at least 1.
func (r *Resampler) IntFactor() int { return r.intFactor }

// Clock returns the tick generator.
func (r *Resampler) Clock() *clock.Generator { return r.clock }

// Classify returns the conversion type for the given rates.
func Classify(inRate, targetRate float64) Type {
	if targetRate <= 0 {
		return NoResampling
	}
	if inRate <= 0 {
		return Naive
	}

	ratio := targetRate / inRate
	if core.NearlyEqual(ratio, 1, ratioEpsilon) {
		return NoResampling
	}

	if ratio > 1 {
		if core.IsInteger(ratio, ratioEpsilon) {
			return IntegerUpsample
		}
		return FractionalUpsample
	}

	if core.IsInteger(1/ratio, ratioEpsilon) {
		return IntegerDownsample
	}
	return FractionalDownsample
}

// SelectAlgorithm picks the algorithm for a conversion type.
func SelectAlgorithm(t Type, mode Mode, manual Algorithm) Algorithm {
	switch t {
	case NoResampling:
		return Forward
	case Naive:
		return OutputLast
	}

	switch mode {
	case GoodQuality:
		if t.IsUpsample() {
			return LinearInterpolate
		}
		return Boxcar
	case Manual:
		return manual
	default:
		return NearestNeighbor
	}
}

// ReInit derives type, algorithm and clock wiring from the input rate and
// the settings.
func (r *Resampler) ReInit() error {
	_ = r.Base.ReInit()

	r.clock.Stop()
	r.clock.Reset()
	r.clock.SetReferenceChannel(nil)

	if !r.RequireInput(0) {
		return r.Err()
	}

	in := r.Input(0)
	inRate := in.SampleRate()
	target := r.settings.TargetSampleRate
	if target < 0 {
		r.AddError(fmt.Errorf("%w: %g Hz", ErrInvalidTargetRate, target))
		return r.Err()
	}

	r.typ = Classify(inRate, target)
	r.algorithm = SelectAlgorithm(r.typ, r.settings.Mode, r.settings.Algorithm)
	if _, ok := algorithmNames[r.algorithm]; !ok {
		r.AddError(fmt.Errorf("%w: %v", ErrUnknownAlgorithm, r.algorithm))
		return r.Err()
	}

	r.factor = 1
	if inRate > 0 && target > 0 {
		r.factor = target / inRate
	}
	r.intFactor = integerFactor(r.factor)

	r.configureOutput(in)
	r.configureClock(in)

	r.kernel = channel.NewEpoch(in, r.intFactor)

	if r.algorithm == LinearInterpolate {
		r.AddWarning(ErrAlgorithmNotImplemented)
	}
	return r.Err()
}

func integerFactor(factor float64) int {
	if factor <= 0 {
		return 1
	}
	if factor < 1 {
		factor = 1 / factor
	}
	return max(1, int(math.Floor(factor+ratioEpsilon)))
}

func (r *Resampler) configureOutput(in *channel.Channel) {
	out := r.Output(0)

	rate := r.settings.TargetSampleRate
	independent := false
	start := r.settings.StartTime
	if r.algorithm == Forward {
		rate = in.SampleRate()
		independent = in.IsIndependent()
		start = in.StartTime()
	}

	if out.SampleRate() != rate || out.StartTime() != start {
		out.Reset()
	}
	out.SetSampleRate(rate)
	out.SetIndependent(independent)
	out.SetStartTime(start)
	out.SetSourceName(in.Name())
	out.SetUnit(in.Unit())

	cfg := core.ApplyEngineOptions(core.WithBufferDuration(r.settings.BufferDuration))
	out.SetCapacity(cfg.Capacity(rate))
}

func (r *Resampler) configureClock(in *channel.Channel) {
	r.clock.SetFrequency(r.settings.TargetSampleRate)
	r.clock.SetStartTime(r.settings.StartTime)

	switch r.algorithm {
	case Forward:
		return
	case OutputLast:
		r.clock.SetMode(clock.FreeRunning)
	case NearestNeighbor:
		r.clock.SetMode(clock.SyncedAhead)
		r.clock.SetReferenceChannel(in)
	case LinearInterpolate, Boxcar:
		r.clock.SetMode(clock.Synced)
		r.clock.SetReferenceChannel(in)
	}
	r.clock.Start()
}

// Update advances the clock, then converts the new input.
func (r *Resampler) Update(elapsed, delta time.Duration) {
	if r.IsInitialized() {
		r.clock.Update(elapsed, delta)
	}

	r.Base.Update(elapsed, delta)
	if !r.IsInitialized() {
		return
	}

	reader := r.InputReader(0)
	if reader == nil {
		return
	}

	run(r.algorithm, state{
		in:     reader,
		out:    r.Output(0),
		clock:  r.clock,
		kernel: r.kernel,
	})
}

// Delay returns the algorithm delay in input samples.
func (r *Resampler) Delay() float64 {
	switch r.algorithm {
	case NearestNeighbor:
		if r.typ.IsUpsample() {
			return 1
		}
		return 0
	case LinearInterpolate:
		return 1
	case Boxcar:
		return float64(r.intFactor)
	default:
		return 0
	}
}

// SampleRatio returns input samples per output sample.
func (r *Resampler) SampleRatio() float64 {
	if r.factor <= 0 {
		return 1
	}
	return 1 / r.factor
}

// NumStartupSamples returns how many input samples the algorithm needs
// before its output is meaningful.
func (r *Resampler) NumStartupSamples() int {
	switch r.algorithm {
	case LinearInterpolate:
		return 2
	case Boxcar:
		return 2 * r.intFactor
	default:
		return 1
	}
}

// NumEpochSamples returns how much input history the algorithm reads at
// once.
func (r *Resampler) NumEpochSamples() int {
	return r.NumStartupSamples()
}
