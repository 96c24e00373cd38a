// Package graph wires processors into a directed graph of nodes and steps
// it frame by frame.
//
// A Node fans one logical node out into one processor per element of its
// widest multichannel input. Input port i of clone p reads element p of the
// multichannel connected to port i; a port carrying a single channel is
// broadcast to every clone. Clone p's output channel becomes element p of
// each output multichannel, so element order is preserved from inputs to
// outputs.
//
// Start is all or nothing: if any clone fails to initialize, the node
// drops every clone and output channel and stays dormant until the next
// successful Start. A dormant node drains its inputs on every Update.
//
// A Graph orders its nodes topologically and updates them once per frame.
// Nothing in this package blocks or spawns goroutines.
package graph
