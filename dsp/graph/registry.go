package graph

import (
	"errors"
	"fmt"
	"sort"
)

// NodeFactory builds a node from its parameters.
type NodeFactory func(p Params) (Runnable, error)

// Registry maps node type names to their factories.
type Registry struct {
	factories map[string]NodeFactory
}

var (
	errDuplicateType = errors.New("graph: duplicate node type")
	// ErrUnknownNodeType is returned for a type no factory is registered
	// for.
	ErrUnknownNodeType = errors.New("graph: unknown node type")
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]NodeFactory)}
}

// Register adds a factory for the given node type.
func (r *Registry) Register(nodeType string, factory NodeFactory) error {
	if nodeType == "" {
		return errors.New("graph: empty node type")
	}

	if factory == nil {
		return errors.New("graph: nil factory")
	}

	if _, exists := r.factories[nodeType]; exists {
		return fmt.Errorf("%w: %s", errDuplicateType, nodeType)
	}

	r.factories[nodeType] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(nodeType string, factory NodeFactory) {
	if err := r.Register(nodeType, factory); err != nil {
		panic(err.Error())
	}
}

// Lookup returns the factory for the given node type, or nil.
func (r *Registry) Lookup(nodeType string) NodeFactory {
	return r.factories[nodeType]
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates a node of p.Type.
func (r *Registry) Build(p Params) (Runnable, error) {
	factory := r.Lookup(p.Type)
	if factory == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNodeType, p.Type)
	}

	node, err := factory(p)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", p.Name, err)
	}
	return node, nil
}
