package clock

import (
	"math"
	"time"

	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/dsp/core"
)

// Mode selects how a Generator produces ticks.
type Mode int

const (
	// FreeRunning emits ticks from accumulated elapsed time.
	FreeRunning Mode = iota
	// Synced emits ticks up to the newest sample of the reference channel.
	Synced
	// SyncedAhead emits ticks up to one period past the newest reference
	// sample.
	SyncedAhead
)

func (m Mode) String() string {
	switch m {
	case FreeRunning:
		return "free-running"
	case Synced:
		return "synced"
	case SyncedAhead:
		return "synced-ahead"
	default:
		return "unknown"
	}
}

// tickSlack absorbs nanosecond rounding when tick and sample times are
// compared.
const tickSlack = time.Microsecond

// Tick is one scheduled output instant.
type Tick struct {
	Index uint64
	Time  time.Duration
}

// Generator produces a queue of ticks at a fixed frequency.
type Generator struct {
	mode      Mode
	frequency float64
	startTime time.Duration
	reference *channel.Channel
	running   bool

	pending []Tick
	next    uint64

	acc         time.Duration
	seenCounter int64
}

// New returns a stopped free-running generator at frequency Hz.
func New(frequency float64) *Generator {
	return &Generator{frequency: math.Max(frequency, 0)}
}

// Mode returns the tick discipline.
func (g *Generator) Mode() Mode { return g.mode }

// SetMode changes the tick discipline.
func (g *Generator) SetMode(mode Mode) { g.mode = mode }

// Frequency returns the tick rate in Hz.
func (g *Generator) Frequency() float64 { return g.frequency }

// SetFrequency changes the tick rate. Negative values are stored as 0,
// which stops tick production.
func (g *Generator) SetFrequency(frequency float64) { g.frequency = math.Max(frequency, 0) }

// StartTime returns the time origin of tick 0.
func (g *Generator) StartTime() time.Duration { return g.startTime }

// SetStartTime sets the time origin of tick 0.
func (g *Generator) SetStartTime(t time.Duration) { g.startTime = t }

// Reference returns the channel synced modes follow.
func (g *Generator) Reference() *channel.Channel { return g.reference }

// SetReferenceChannel sets the channel synced modes follow. It does not own
// the channel.
func (g *Generator) SetReferenceChannel(ch *channel.Channel) {
	g.reference = ch
	g.seenCounter = 0
}

// Start enables tick production.
func (g *Generator) Start() { g.running = true }

// Stop disables tick production. Pending ticks are kept.
func (g *Generator) Stop() { g.running = false }

// IsRunning reports whether the generator produces ticks.
func (g *Generator) IsRunning() bool { return g.running }

// Reset drops pending ticks and rewinds the tick counter. Mode, frequency,
// start time and reference are kept.
func (g *Generator) Reset() {
	g.pending = g.pending[:0]
	g.next = 0
	g.acc = 0
	g.seenCounter = 0
}

// TickTime returns the timestamp of tick index.
func (g *Generator) TickTime(index uint64) time.Duration {
	if g.frequency <= 0 {
		return g.startTime
	}
	return g.startTime + core.Duration(float64(index+1)/g.frequency)
}

// TickCount returns how many ticks were emitted since the last reset.
func (g *Generator) TickCount() uint64 { return g.next }

// Update emits the ticks that became due. elapsed is the current graph time
// and delta the time since the previous update.
func (g *Generator) Update(elapsed, delta time.Duration) {
	if !g.running || g.frequency <= 0 {
		return
	}

	switch g.mode {
	case FreeRunning:
		g.updateFreeRunning(delta)
	case Synced:
		g.updateSynced(0)
	case SyncedAhead:
		g.updateSynced(core.Period(g.frequency))
	}
}

func (g *Generator) updateFreeRunning(delta time.Duration) {
	if delta <= 0 {
		return
	}

	g.acc += delta
	n := uint64(math.Floor(g.acc.Seconds()*g.frequency + 1e-9))
	if n == 0 {
		return
	}

	g.acc -= core.Duration(float64(n) / g.frequency)
	if g.acc < 0 {
		g.acc = 0
	}
	g.emit(n)
}

// updateSynced only acts on new reference samples, never on wall time.
func (g *Generator) updateSynced(lead time.Duration) {
	ref := g.reference
	if ref == nil {
		return
	}

	counter := ref.Counter()
	if counter < g.seenCounter {
		g.seenCounter = counter
	}
	if counter == g.seenCounter {
		return
	}
	g.seenCounter = counter

	horizon := ref.LastSampleTime() + lead + tickSlack
	var n uint64
	for g.TickTime(g.next+n) <= horizon {
		n++
	}
	g.emit(n)
}

func (g *Generator) emit(n uint64) {
	for range n {
		g.pending = append(g.pending, Tick{Index: g.next, Time: g.TickTime(g.next)})
		g.next++
	}
}

// NumNewTicks returns the number of pending ticks.
func (g *Generator) NumNewTicks() int { return len(g.pending) }

// Peek returns the oldest pending tick without removing it.
func (g *Generator) Peek() (Tick, bool) {
	if len(g.pending) == 0 {
		return Tick{}, false
	}
	return g.pending[0], true
}

// PopOldestTick removes and returns the oldest pending tick.
func (g *Generator) PopOldestTick() (Tick, bool) {
	t, ok := g.Peek()
	if ok {
		g.pending = g.pending[1:]
	}
	return t, ok
}

// ClearNewTicks drops every pending tick.
func (g *Generator) ClearNewTicks() {
	g.pending = g.pending[:0]
}
