package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/dsp/core"
)

var (
	// ErrMissingInput is reported when a required input is unconnected.
	ErrMissingInput = errors.New("processor: input not connected")
	// ErrIncompatibleInputs is reported when inputs disagree on rate or
	// clocking.
	ErrIncompatibleInputs = errors.New("processor: incompatible inputs")
	// ErrSlotRange is returned for slot indices outside the fixed counts.
	ErrSlotRange = errors.New("processor: slot out of range")
)

// Processor is one unit of per-element computation. Input and output
// counts are fixed at construction.
//
// ReInit and Update are never called concurrently on one instance.
type Processor interface {
	NumInputs() int
	NumOutputs() int

	// SetInput binds ch to an owned reader in slot.
	SetInput(slot int, ch *channel.Channel) error
	// SetDelegateInputReader makes slot borrow the reader h of arena.
	SetDelegateInputReader(slot int, arena *Arena, h Handle) error
	// RemoveDelegateInputReader reinstates an empty owned reader in slot.
	RemoveDelegateInputReader(slot int) error
	Input(slot int) *channel.Channel
	InputReader(slot int) *channel.Reader
	Output(slot int) *channel.Channel

	// ReInit re-derives the configuration and resets transient state
	// without destroying channels. It returns the configuration errors, if
	// any, and leaves the processor uninitialized in that case.
	ReInit() error
	// Update consumes new input samples and appends output samples.
	Update(elapsed, delta time.Duration)
	IsInitialized() bool
	Errors() []error
	Warnings() []error
	Err() error

	// Delay returns the processing delay in input samples.
	Delay() float64
	// SampleRatio returns input samples consumed per output sample.
	SampleRatio() float64
	NumStartupSamples() int
	NumEpochSamples() int
}

// Configurable is a processor driven by a settings record.
type Configurable[S any] interface {
	Processor
	Setup(settings S)
	Settings() S
}

// Factory builds an independent processor from settings.
type Factory[S any] func(settings S) Configurable[S]

// Latency converts the delay of p into time using the rate of its first
// input. Processors without a rated input report no latency.
func Latency(p Processor) time.Duration {
	if p.NumInputs() == 0 {
		return 0
	}
	in := p.Input(0)
	if in == nil || in.SampleRate() <= 0 {
		return 0
	}
	return core.Duration(p.Delay() / in.SampleRate())
}

// Base implements the slot, output and error bookkeeping of a Processor.
// Concrete processors embed it and provide ReInit, Update and the delay
// queries, calling the Base versions first.
type Base struct {
	inputs      []Slot
	outputs     []*channel.Channel
	initialized bool
	errs        []error
	warnings    []error
}

// NewBase returns a Base with owned empty input slots and fresh output
// channels.
func NewBase(numInputs, numOutputs int) Base {
	b := Base{
		inputs:  make([]Slot, numInputs),
		outputs: make([]*channel.Channel, numOutputs),
	}
	for i := range b.inputs {
		b.inputs[i] = NewOwned(nil)
	}
	for i := range b.outputs {
		b.outputs[i] = channel.New(fmt.Sprintf("out%d", i), 0, 0)
	}
	return b
}

// NumInputs returns the number of input slots.
func (b *Base) NumInputs() int { return len(b.inputs) }

// NumOutputs returns the number of output channels.
func (b *Base) NumOutputs() int { return len(b.outputs) }

func (b *Base) checkSlot(slot int) error {
	if slot < 0 || slot >= len(b.inputs) {
		return fmt.Errorf("%w: input %d of %d", ErrSlotRange, slot, len(b.inputs))
	}
	return nil
}

// SetInput binds ch to a fresh owned reader, dropping any borrowed one.
func (b *Base) SetInput(slot int, ch *channel.Channel) error {
	if err := b.checkSlot(slot); err != nil {
		return err
	}
	b.inputs[slot] = NewOwned(ch)
	return nil
}

// SetDelegateInputReader makes slot borrow reader h of arena.
func (b *Base) SetDelegateInputReader(slot int, arena *Arena, h Handle) error {
	if err := b.checkSlot(slot); err != nil {
		return err
	}
	if arena.Reader(h) == nil {
		return fmt.Errorf("%w: no reader %d in arena", ErrSlotRange, h)
	}
	b.inputs[slot] = Borrowed{Arena: arena, Handle: h}
	return nil
}

// RemoveDelegateInputReader replaces a borrowed reader with an empty owned
// one. Owned slots are left alone.
func (b *Base) RemoveDelegateInputReader(slot int) error {
	if err := b.checkSlot(slot); err != nil {
		return err
	}
	if _, ok := b.inputs[slot].(Borrowed); ok {
		b.inputs[slot] = NewOwned(nil)
	}
	return nil
}

// Slot returns the slot at index.
func (b *Base) Slot(slot int) Slot { return b.inputs[slot] }

// InputReader returns the reader of slot, or nil.
func (b *Base) InputReader(slot int) *channel.Reader {
	if b.checkSlot(slot) != nil {
		return nil
	}
	return b.inputs[slot].Reader()
}

// Input returns the channel read by slot, or nil.
func (b *Base) Input(slot int) *channel.Channel {
	r := b.InputReader(slot)
	if r == nil {
		return nil
	}
	return r.Channel()
}

// Output returns the output channel at slot.
func (b *Base) Output(slot int) *channel.Channel {
	if slot < 0 || slot >= len(b.outputs) {
		return nil
	}
	return b.outputs[slot]
}

// ReInit clears errors and warnings, resets every owned reader and marks
// the processor initialized.
func (b *Base) ReInit() error {
	b.errs = nil
	b.warnings = nil
	for _, s := range b.inputs {
		if o, ok := s.(Owned); ok {
			o.reader.Reset()
		}
	}
	b.initialized = true
	return nil
}

// Update advances owned readers and opens a new frame on every output. An
// uninitialized processor flushes its owned readers instead.
func (b *Base) Update(_, _ time.Duration) {
	for _, s := range b.inputs {
		if o, ok := s.(Owned); ok {
			o.reader.Update()
			if !b.initialized {
				o.reader.Flush()
			}
		}
	}
	for _, out := range b.outputs {
		out.BeginAddSamples()
	}
}

// IsInitialized reports whether the last ReInit succeeded.
func (b *Base) IsInitialized() bool { return b.initialized }

// AddError records a configuration error and marks the processor
// uninitialized.
func (b *Base) AddError(err error) {
	b.errs = append(b.errs, err)
	b.initialized = false
}

// AddWarning records a non-fatal problem.
func (b *Base) AddWarning(err error) {
	b.warnings = append(b.warnings, err)
}

// Errors returns the configuration errors of the last ReInit.
func (b *Base) Errors() []error { return b.errs }

// Warnings returns the warnings of the last ReInit.
func (b *Base) Warnings() []error { return b.warnings }

// Err joins the configuration errors, or returns nil.
func (b *Base) Err() error { return errors.Join(b.errs...) }

// RequireInput records ErrMissingInput if slot is unconnected and reports
// whether it is connected.
func (b *Base) RequireInput(slot int) bool {
	if b.Input(slot) != nil {
		return true
	}
	b.AddError(fmt.Errorf("%w: slot %d", ErrMissingInput, slot))
	return false
}

// Delay reports no processing delay.
func (b *Base) Delay() float64 { return 0 }

// SampleRatio reports one input sample per output sample.
func (b *Base) SampleRatio() float64 { return 1 }

// NumStartupSamples reports one sample.
func (b *Base) NumStartupSamples() int { return 1 }

// NumEpochSamples reports one sample.
func (b *Base) NumEpochSamples() int { return 1 }
