package processor

import "github.com/cwbudde/algo-dspgraph/dsp/channel"

// Slot is an input slot of a processor. It is either Owned or Borrowed.
type Slot interface {
	// Reader returns the reader behind the slot, which may be nil for a
	// borrowed slot whose handle went stale.
	Reader() *channel.Reader
	slot()
}

// Owned holds a reader that belongs to the processor.
type Owned struct {
	reader *channel.Reader
}

// NewOwned returns an owned slot reading ch, which may be nil.
func NewOwned(ch *channel.Channel) Owned {
	return Owned{reader: channel.NewReader(ch)}
}

// Reader returns the owned reader.
func (o Owned) Reader() *channel.Reader { return o.reader }

func (Owned) slot() {}

// Borrowed refers to a reader owned by an arena.
type Borrowed struct {
	Arena  *Arena
	Handle Handle
}

// Reader resolves the handle.
func (b Borrowed) Reader() *channel.Reader { return b.Arena.Reader(b.Handle) }

func (Borrowed) slot() {}
