// Package delay shifts a channel by a fixed number of samples.
package delay

import "fmt"

// Line is a circular delay line of fixed length.
type Line struct {
	buffer   []float64
	writePos int
}

// NewLine returns a line that delays by size samples. A size of zero passes
// samples through.
func NewLine(size int) (*Line, error) {
	if size < 0 {
		return nil, fmt.Errorf("delay: size must be >= 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns the delay in samples.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Process writes x and returns the sample written Len calls earlier, or
// zero while the line fills.
func (d *Line) Process(x float64) float64 {
	if len(d.buffer) == 0 {
		return x
	}

	y := d.buffer[d.writePos]
	d.buffer[d.writePos] = x
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
	return y
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
