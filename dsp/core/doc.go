// Package core holds small shared helpers for the graph engine: float
// comparison, duration and sample-rate conversions, scratch buffer handling
// and the engine frame configuration.
package core
