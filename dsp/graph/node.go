package graph

import (
	"errors"
	"fmt"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/dsp/processor"
	"github.com/cwbudde/algo-dspgraph/internal/log"
)

var (
	// ErrIncompatibleMultiChannels is reported when two connected input
	// ports carry different numbers of channels and neither has one.
	ErrIncompatibleMultiChannels = errors.New("graph: sizes of input multichannels are incompatible")
	// ErrMixedClocking is reported when synced and independent channels
	// meet at one node.
	ErrMixedClocking = errors.New("graph: inputs mix synced and independent channels")
	// ErrNotConnected is reported when no input port carries a channel.
	ErrNotConnected = errors.New("graph: no input connected")
	// ErrCloneInit wraps the failure of a single clone.
	ErrCloneInit = errors.New("graph: processor failed to initialize")
	// ErrPortRange is returned for port indices outside the node.
	ErrPortRange = errors.New("graph: port out of range")
)

// Runnable is a node the Graph can schedule.
type Runnable interface {
	ID() string
	Name() string
	NumInputPorts() int
	NumOutputPorts() int
	// Connect attaches mc to input port. A nil mc disconnects the port.
	Connect(port int, mc *channel.MultiChannel) error
	Output(port int) *channel.MultiChannel
	Start(elapsed time.Duration) error
	Update(elapsed, delta time.Duration)
	Reset()
	IsInitialized() bool
	Errors() []error
}

// inputState is what a node saw on one input channel at its last Start.
type inputState struct {
	ch   *channel.Channel
	rate float64
}

// restartOn lists the reader changes that invalidate a started node.
const restartOn = channel.ChangeReference | channel.ChangeSampleRate | channel.ChangeReset

// StartHook adjusts the settings of every clone when a node starts.
type StartHook[S any] func(settings *S, elapsed time.Duration)

// Node fans out processors built by a factory, one per element of its
// widest input.
type Node[S any] struct {
	id       string
	name     string
	factory  processor.Factory[S]
	settings S
	onStart  StartHook[S]

	inputs  []*channel.MultiChannel
	outputs []*channel.MultiChannel

	clones    []processor.Configurable[S]
	arena     *processor.Arena
	readerMap [][]processor.Handle

	started     time.Duration
	attempted   bool
	layout      [][]inputState
	initialized bool
	errs        []error
	log         *logrus.Entry
}

// NewNode returns a dormant node. The factory is invoked once to learn the
// port counts.
func NewNode[S any](name string, factory processor.Factory[S], settings S) *Node[S] {
	probe := factory(settings)

	n := &Node[S]{
		id:       uuid.NewString(),
		name:     name,
		factory:  factory,
		settings: settings,
		inputs:   make([]*channel.MultiChannel, probe.NumInputs()),
		outputs:  make([]*channel.MultiChannel, probe.NumOutputs()),
		arena:    processor.NewArena(),
		log:      log.New("graph").WithField("node", name),
	}
	for i := range n.outputs {
		n.outputs[i] = channel.NewMultiChannel()
	}
	return n
}

// OnStart registers a hook that adjusts clone settings at Start.
func (n *Node[S]) OnStart(hook StartHook[S]) { n.onStart = hook }

// ID returns the unique node identity.
func (n *Node[S]) ID() string { return n.id }

// Name returns the node name.
func (n *Node[S]) Name() string { return n.name }

// NumInputPorts returns the number of input ports.
func (n *Node[S]) NumInputPorts() int { return len(n.inputs) }

// NumOutputPorts returns the number of output ports.
func (n *Node[S]) NumOutputPorts() int { return len(n.outputs) }

// Connect attaches mc to input port. A started node picks the change up on
// its next Update.
func (n *Node[S]) Connect(port int, mc *channel.MultiChannel) error {
	if port < 0 || port >= len(n.inputs) {
		return fmt.Errorf("%w: input %d of %s", ErrPortRange, port, n.name)
	}
	n.inputs[port] = mc
	return nil
}

// Input returns the multichannel connected to port, or nil.
func (n *Node[S]) Input(port int) *channel.MultiChannel {
	if port < 0 || port >= len(n.inputs) {
		return nil
	}
	return n.inputs[port]
}

// Output returns output port. The multichannel keeps its identity across
// restarts, so downstream nodes can hold on to it.
func (n *Node[S]) Output(port int) *channel.MultiChannel {
	if port < 0 || port >= len(n.outputs) {
		return nil
	}
	return n.outputs[port]
}

// NumProcessors returns the number of clones.
func (n *Node[S]) NumProcessors() int { return len(n.clones) }

// Processor returns clone i.
func (n *Node[S]) Processor(i int) processor.Configurable[S] { return n.clones[i] }

// Settings returns the node settings.
func (n *Node[S]) Settings() S { return n.settings }

// IsInitialized reports whether the last Start or Setup succeeded.
func (n *Node[S]) IsInitialized() bool { return n.initialized }

// Errors returns the errors of the last Start or Setup.
func (n *Node[S]) Errors() []error { return n.errs }

// Err joins the errors of the last Start or Setup.
func (n *Node[S]) Err() error { return errors.Join(n.errs...) }

// numProcessors returns the widest connected input. Ports with one channel
// do not constrain the count.
func (n *Node[S]) numProcessors() (int, error) {
	if len(n.inputs) == 0 {
		return 1, nil
	}

	width := 0
	for _, mc := range n.inputs {
		width = max(width, mc.Len())
	}
	if width == 0 {
		return 0, ErrNotConnected
	}

	for i, mc := range n.inputs {
		if l := mc.Len(); l > 1 && l != width {
			return 0, fmt.Errorf("%w: port %d has %d channels, want 1 or %d",
				ErrIncompatibleMultiChannels, i, l, width)
		}
	}
	return width, nil
}

func (n *Node[S]) checkClocking() error {
	var synced, independent bool
	for _, mc := range n.inputs {
		if mc.Len() == 0 {
			continue
		}
		switch mc.Independence() {
		case channel.Mixed:
			return ErrMixedClocking
		case channel.AllIndependent:
			independent = true
		case channel.AllSynced:
			synced = true
		}
	}
	if synced && independent {
		return ErrMixedClocking
	}
	return nil
}

// buildReaders creates one arena reader per (port, clone) pair.
func (n *Node[S]) buildReaders(width int) {
	n.arena.Clear()
	n.readerMap = make([][]processor.Handle, len(n.inputs))
	for port, mc := range n.inputs {
		n.readerMap[port] = make([]processor.Handle, width)
		for p := range width {
			switch mc.Len() {
			case 0:
				n.readerMap[port][p] = processor.InvalidHandle
			case 1:
				n.readerMap[port][p] = n.arena.Add(mc.At(0))
			default:
				n.readerMap[port][p] = n.arena.Add(mc.At(p))
			}
		}
	}
	n.arena.ResetAll()
}

// snapshotInputs records the channels and rates the node starts from.
func (n *Node[S]) snapshotInputs() {
	n.layout = make([][]inputState, len(n.inputs))
	for port, mc := range n.inputs {
		for _, c := range mc.Channels() {
			n.layout[port] = append(n.layout[port], inputState{ch: c, rate: c.SampleRate()})
		}
	}
}

// inputsChanged reports whether the inputs differ from the last Start:
// other channels behind a port, a new sample rate or a rewound counter.
func (n *Node[S]) inputsChanged() bool {
	for i := range n.arena.Len() {
		if n.arena.Reader(processor.Handle(i)).HasChanged(restartOn) {
			return true
		}
	}

	if len(n.layout) != len(n.inputs) {
		return true
	}
	for port, mc := range n.inputs {
		seen := n.layout[port]
		if mc.Len() != len(seen) {
			return true
		}
		for i, c := range mc.Channels() {
			if c != seen[i].ch || c.SampleRate() != seen[i].rate {
				return true
			}
		}
	}
	return false
}

// Start rebuilds the clones from the current inputs. On failure the node
// is left fully reset.
func (n *Node[S]) Start(elapsed time.Duration) error {
	n.clear()
	n.started = elapsed
	n.attempted = true
	n.snapshotInputs()

	width, err := n.numProcessors()
	if err == nil {
		err = n.checkClocking()
	}
	if err != nil {
		return n.fail(err)
	}

	n.buildReaders(width)
	for i := range n.arena.Len() {
		n.arena.Reader(processor.Handle(i)).Start(elapsed)
	}

	settings := n.cloneSettings()
	n.clones = make([]processor.Configurable[S], width)
	for p := range width {
		c := n.factory(settings)
		for port := range n.inputs {
			if err := n.wireInput(c, port, n.readerMap[port][p]); err != nil {
				return n.fail(err)
			}
		}
		for port, out := range n.outputs {
			out.Add(c.Output(port))
		}
		n.clones[p] = c
	}

	if err := n.reinitClones(settings); err != nil {
		return n.fail(err)
	}

	n.nameOutputs()
	n.initialized = true
	n.log.WithField("processors", width).Debug("node started")
	return nil
}

func (n *Node[S]) cloneSettings() S {
	settings := n.settings
	if n.onStart != nil {
		n.onStart(&settings, n.started)
	}
	return settings
}

func (n *Node[S]) wireInput(c processor.Processor, port int, h processor.Handle) error {
	if h == processor.InvalidHandle {
		if err := c.RemoveDelegateInputReader(port); err != nil {
			return err
		}
		return c.SetInput(port, nil)
	}
	return c.SetDelegateInputReader(port, n.arena, h)
}

// reinitClones pushes settings into every clone and re-initializes them,
// collecting the failure of each clone.
func (n *Node[S]) reinitClones(settings S) error {
	var errs []error
	for p, c := range n.clones {
		c.Setup(settings)
		if err := c.ReInit(); err != nil {
			errs = append(errs, fmt.Errorf("%w: clone %d: %w", ErrCloneInit, p, err))
		}
	}
	return errors.Join(errs...)
}

// nameOutputs names every output channel after the input it derives from.
func (n *Node[S]) nameOutputs() {
	if len(n.inputs) == 0 {
		return
	}
	for _, out := range n.outputs {
		for p, c := range out.Channels() {
			src := n.clones[p].Input(0)
			if src == nil {
				continue
			}
			c.SetName(src.Name())
			c.SetSourceName(src.Name())
			c.SetColor(src.Color())
		}
	}
}

func (n *Node[S]) fail(err error) error {
	if n.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		n.log.WithError(err).Debug(n.DebugString())
	}
	n.clear()
	n.errs = append(n.errs, err)
	n.log.WithError(err).Warn("node not initialized")
	return err
}

// Setup replaces the settings and re-initializes every clone. If a clone
// fails the node is fully reset. A node whose Start failed is started again
// with the new settings.
func (n *Node[S]) Setup(settings S) error {
	n.settings = settings
	if !n.initialized {
		if !n.attempted {
			return nil
		}
		return n.Start(n.started)
	}

	n.errs = nil
	if err := n.reinitClones(n.cloneSettings()); err != nil {
		return n.fail(err)
	}
	return nil
}

// Reset drops every clone, reader and output channel. The node waits for
// the next Start.
func (n *Node[S]) Reset() {
	n.clear()
	n.attempted = false
}

func (n *Node[S]) clear() {
	n.clones = nil
	n.arena.Clear()
	n.readerMap = nil
	for _, out := range n.outputs {
		out.Clear()
	}
	n.initialized = false
	n.errs = nil
}

// Update runs every clone in order. A node whose inputs were replaced,
// resampled or rewound since Start is started again first. A dormant node
// only drains its inputs.
func (n *Node[S]) Update(elapsed, delta time.Duration) {
	n.arena.UpdateAll()
	if n.attempted && n.inputsChanged() {
		n.log.Info("inputs changed, restarting node")
		if err := n.Start(elapsed); err == nil {
			n.arena.UpdateAll()
		}
	}
	if !n.initialized {
		n.arena.FlushAll()
		return
	}

	for _, c := range n.clones {
		c.Update(elapsed, delta)
	}
	for _, out := range n.outputs {
		for _, c := range out.Channels() {
			c.SetElapsed(elapsed)
		}
	}
}

// Delay returns the delay of the first clone in input samples.
func (n *Node[S]) Delay() float64 {
	if len(n.clones) == 0 {
		return 0
	}
	return n.clones[0].Delay()
}

// Latency returns the delay of the first clone as time.
func (n *Node[S]) Latency() time.Duration {
	if len(n.clones) == 0 {
		return 0
	}
	return processor.Latency(n.clones[0])
}

// SampleRatio returns the input to output sample ratio of the first clone.
func (n *Node[S]) SampleRatio() float64 {
	if len(n.clones) == 0 {
		return 1
	}
	return n.clones[0].SampleRatio()
}

// NumStartupSamples returns the startup requirement of the first clone.
func (n *Node[S]) NumStartupSamples() int {
	if len(n.clones) == 0 {
		return 0
	}
	return n.clones[0].NumStartupSamples()
}

// NumEpochSamples returns the epoch requirement of the first clone.
func (n *Node[S]) NumEpochSamples() int {
	if len(n.clones) == 0 {
		return 0
	}
	return n.clones[0].NumEpochSamples()
}

// DebugString dumps the wiring of the node.
func (n *Node[S]) DebugString() string {
	return spew.Sdump(struct {
		ID          string
		Name        string
		Initialized bool
		Processors  int
		Readers     int
		ReaderMap   [][]processor.Handle
		Traffic     []string
		Settings    S
		Errors      []string
	}{
		ID:          n.id,
		Name:        n.name,
		Initialized: n.initialized,
		Processors:  len(n.clones),
		Readers:     n.arena.Len(),
		ReaderMap:   n.readerMap,
		Traffic:     n.readerTraffic(),
		Settings:    n.settings,
		Errors:      errorStrings(n.errs),
	})
}

// readerTraffic lists "channel received/processed" per arena reader.
func (n *Node[S]) readerTraffic() []string {
	out := make([]string, n.arena.Len())
	for i := range out {
		r := n.arena.Reader(processor.Handle(i))
		name := "-"
		if ch := r.Channel(); ch != nil {
			name = ch.Name()
		}
		out[i] = fmt.Sprintf("%s %d/%d", name, r.NumReceived(), r.NumProcessed())
	}
	return out
}

func errorStrings(errs []error) []string {
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
