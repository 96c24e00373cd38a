package graph

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/dsp/signal"
)

// SourceNode drives a set of signal sources. It has no inputs and one
// output carrying one channel per source.
type SourceNode struct {
	id          string
	name        string
	sources     []*signal.Source
	out         *channel.MultiChannel
	initialized bool
}

// NewSourceNode groups sources into a node.
func NewSourceNode(name string, sources ...*signal.Source) *SourceNode {
	n := &SourceNode{
		id:      uuid.NewString(),
		name:    name,
		sources: sources,
		out:     channel.NewMultiChannel(),
	}
	for _, s := range sources {
		n.out.Add(s.Channel())
	}
	return n
}

// ID returns the unique node identity.
func (n *SourceNode) ID() string { return n.id }

// Name returns the node name.
func (n *SourceNode) Name() string { return n.name }

// NumInputPorts returns zero.
func (n *SourceNode) NumInputPorts() int { return 0 }

// NumOutputPorts returns one.
func (n *SourceNode) NumOutputPorts() int { return 1 }

// Connect always fails since a source has no inputs.
func (n *SourceNode) Connect(port int, _ *channel.MultiChannel) error {
	return fmt.Errorf("%w: input %d of source %s", ErrPortRange, port, n.name)
}

// Output returns the source channels for port 0.
func (n *SourceNode) Output(port int) *channel.MultiChannel {
	if port != 0 {
		return nil
	}
	return n.out
}

// Sources returns the wrapped sources.
func (n *SourceNode) Sources() []*signal.Source { return n.sources }

// Start rewinds every source and stamps its samples from elapsed on.
func (n *SourceNode) Start(elapsed time.Duration) error {
	for _, s := range n.sources {
		s.Reset()
		s.Start(elapsed)
	}
	n.initialized = true
	return nil
}

// Update appends the samples that became due.
func (n *SourceNode) Update(elapsed, delta time.Duration) {
	if !n.initialized {
		return
	}
	for _, s := range n.sources {
		s.Update(elapsed, delta)
	}
}

// Reset stops and rewinds every source.
func (n *SourceNode) Reset() {
	for _, s := range n.sources {
		s.Stop()
		s.Reset()
	}
	n.initialized = false
}

// IsInitialized reports whether the node was started.
func (n *SourceNode) IsInitialized() bool { return n.initialized }

// Errors returns nil; starting a source cannot fail.
func (n *SourceNode) Errors() []error { return nil }
