package processor

import "github.com/cwbudde/algo-dspgraph/dsp/channel"

// Handle names a reader in an Arena.
type Handle int

// InvalidHandle names no reader.
const InvalidHandle Handle = -1

// Arena owns a set of readers addressed by handle.
type Arena struct {
	readers []*channel.Reader
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Add creates a reader over ch and returns its handle.
func (a *Arena) Add(ch *channel.Channel) Handle {
	a.readers = append(a.readers, channel.NewReader(ch))
	return Handle(len(a.readers) - 1)
}

// Reader returns the reader behind h, or nil for an unknown handle.
func (a *Arena) Reader(h Handle) *channel.Reader {
	if a == nil || h < 0 || int(h) >= len(a.readers) {
		return nil
	}
	return a.readers[h]
}

// Len returns the number of readers.
func (a *Arena) Len() int {
	if a == nil {
		return 0
	}
	return len(a.readers)
}

// UpdateAll updates every reader.
func (a *Arena) UpdateAll() {
	for _, r := range a.readers {
		r.Update()
	}
}

// FlushAll consumes every pending sample of every reader.
func (a *Arena) FlushAll() {
	for _, r := range a.readers {
		r.Flush()
	}
}

// ResetAll resets every reader.
func (a *Arena) ResetAll() {
	for _, r := range a.readers {
		r.Reset()
	}
}

// Clear drops every reader. Handles issued before become invalid.
func (a *Arena) Clear() {
	a.readers = a.readers[:0]
}
