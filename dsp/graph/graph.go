package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-dspgraph/dsp/core"
	"github.com/cwbudde/algo-dspgraph/internal/log"
)

var (
	// ErrCycle is returned when the connections form a cycle.
	ErrCycle = errors.New("graph: contains cycle")
	// ErrDuplicateNode is returned when two nodes share a name.
	ErrDuplicateNode = errors.New("graph: duplicate node name")
	// ErrUnknownNode is returned for connections naming a missing node.
	ErrUnknownNode = errors.New("graph: unknown node")
)

// Description is the serializable form of a graph.
type Description struct {
	Nodes       []NodeDescription `yaml:"nodes"`
	Connections []Connection      `yaml:"connections"`
}

// NodeDescription names a node, its registered type and its parameters.
type NodeDescription struct {
	Name   string         `yaml:"name"`
	Type   string         `yaml:"type"`
	Params map[string]any `yaml:"params"`
}

// Connection links output port FromPort of From to input port ToPort of
// To.
type Connection struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	FromPort int    `yaml:"from_port,omitempty"`
	ToPort   int    `yaml:"to_port,omitempty"`
}

// Graph owns a set of named nodes and updates them in topological order.
type Graph struct {
	cfg     core.EngineConfig
	nodes   map[string]Runnable
	names   []string
	edges   []Connection
	order   []Runnable
	dirty   bool
	elapsed time.Duration
	log     *logrus.Entry
}

// New returns an empty graph.
func New(opts ...core.EngineOption) *Graph {
	return &Graph{
		cfg:   core.ApplyEngineOptions(opts...),
		nodes: make(map[string]Runnable),
		log:   log.New("graph"),
	}
}

// Build creates every described node through reg and connects them.
func Build(reg *Registry, desc Description, opts ...core.EngineOption) (*Graph, error) {
	g := New(opts...)

	for _, nd := range desc.Nodes {
		num, str := parseParams(nd.Params)
		node, err := reg.Build(Params{Name: nd.Name, Type: nd.Type, Num: num, Str: str})
		if err != nil {
			return nil, err
		}
		if err := g.Add(node); err != nil {
			return nil, err
		}
	}

	for _, c := range desc.Connections {
		if err := g.Connect(c.From, c.FromPort, c.To, c.ToPort); err != nil {
			return nil, err
		}
	}

	if _, err := g.Order(); err != nil {
		return nil, err
	}
	return g, nil
}

// Config returns the engine configuration.
func (g *Graph) Config() core.EngineConfig { return g.cfg }

// Add registers n under its name.
func (g *Graph) Add(n Runnable) error {
	if _, exists := g.nodes[n.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.Name())
	}
	g.nodes[n.Name()] = n
	g.names = append(g.names, n.Name())
	g.dirty = true
	return nil
}

// Node returns the node called name, or nil.
func (g *Graph) Node(name string) Runnable { return g.nodes[name] }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Runnable {
	out := make([]Runnable, len(g.names))
	for i, name := range g.names {
		out[i] = g.nodes[name]
	}
	return out
}

// Connect feeds output port fromPort of from into input port toPort of
// to. The link takes effect when the graph starts.
func (g *Graph) Connect(from string, fromPort int, to string, toPort int) error {
	src, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	dst, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	if from == to {
		return fmt.Errorf("%w: %s feeds itself", ErrCycle, from)
	}

	out := src.Output(fromPort)
	if out == nil {
		return fmt.Errorf("%w: output %d of %s", ErrPortRange, fromPort, from)
	}
	if err := dst.Connect(toPort, out); err != nil {
		return err
	}

	g.edges = append(g.edges, Connection{From: from, To: to, FromPort: fromPort, ToPort: toPort})
	g.dirty = true
	return nil
}

// Order returns the nodes sorted so that every node follows the nodes
// feeding it. Ties keep insertion order.
func (g *Graph) Order() ([]Runnable, error) {
	if !g.dirty && g.order != nil {
		return g.order, nil
	}

	indegree := make(map[string]int, len(g.names))
	outgoing := make(map[string][]string, len(g.names))
	for _, e := range g.edges {
		outgoing[e.From] = append(outgoing[e.From], e.To)
		indegree[e.To]++
	}

	queue := make([]string, 0, len(g.names))
	for _, name := range g.names {
		if indegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]Runnable, 0, len(g.names))
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		order = append(order, g.nodes[name])
		for _, to := range outgoing[name] {
			indegree[to]--
			if indegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}

	if len(order) != len(g.names) {
		return nil, ErrCycle
	}

	g.order = order
	g.dirty = false
	return order, nil
}

// Start starts every node in order at elapsed. Nodes that fail stay
// dormant; their errors are joined into the result.
func (g *Graph) Start(elapsed time.Duration) error {
	order, err := g.Order()
	if err != nil {
		return err
	}

	g.elapsed = elapsed
	var errs []error
	for _, n := range order {
		if err := n.Start(elapsed); err != nil {
			errs = append(errs, fmt.Errorf("node %q: %w", n.Name(), err))
		}
	}

	g.log.WithFields(logrus.Fields{
		"nodes":  len(order),
		"failed": len(errs),
	}).Debug("graph started")
	return errors.Join(errs...)
}

// Update advances the graph time by delta and updates every node once.
func (g *Graph) Update(delta time.Duration) {
	g.elapsed += delta
	for _, n := range g.order {
		n.Update(g.elapsed, delta)
	}
}

// Run steps the graph in frames of the configured frame duration until d
// has passed or ctx is done.
func (g *Graph) Run(ctx context.Context, d time.Duration) error {
	frame := g.cfg.FrameDuration()
	if frame <= 0 {
		return fmt.Errorf("graph: invalid frame rate %g", g.cfg.FrameRate)
	}

	for remaining := d; remaining > 0; remaining -= frame {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Update(min(frame, remaining))
	}
	return nil
}

// Elapsed returns the current graph time.
func (g *Graph) Elapsed() time.Duration { return g.elapsed }

// Reset resets every node and rewinds the graph time.
func (g *Graph) Reset() {
	for _, n := range g.Nodes() {
		n.Reset()
	}
	g.elapsed = 0
}
