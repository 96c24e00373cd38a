package channel

import (
	"math"
	"time"
)

// Change flags what a reader noticed about its channel during Update.
type Change uint8

const (
	// ChangeReference means the reader was pointed at a different channel.
	ChangeReference Change = 1 << iota
	// ChangeSampleRate means the channel rate differs from the last update.
	ChangeSampleRate
	// ChangeReset means the channel counter went backwards.
	ChangeReset
)

// Reader is a cursor over a Channel that separates consumed samples from
// new ones. It never mutates the channel.
type Reader struct {
	ch       *Channel
	lastRead int64

	startTime  time.Duration
	needsAlign bool

	processed uint64
	received  uint64

	epochLength  int
	epochShift   int
	epochPadding bool

	seenCh      *Channel
	seenRate    float64
	seenCounter int64
	changes     Change
}

// NewReader returns a reader positioned at the oldest retained sample of ch.
func NewReader(ch *Channel) *Reader {
	r := &Reader{epochPadding: true}
	r.SetChannel(ch)
	return r
}

// Channel returns the target channel, which may be nil.
func (r *Reader) Channel() *Channel { return r.ch }

// SetChannel retargets the reader. The cursor restarts at the oldest
// retained sample of the new channel.
func (r *Reader) SetChannel(ch *Channel) {
	r.ch = ch
	r.lastRead = 0
	if ch != nil {
		r.lastRead = ch.MinIndex()
	}
}

// Reset rewinds the cursor and clears counters, change flags and any pending
// start alignment.
func (r *Reader) Reset() {
	r.ResetCounters()
	r.lastRead = 0
	if r.ch != nil {
		r.lastRead = r.ch.MinIndex()
	}
	r.needsAlign = false
	r.changes = 0
	r.seenCh = r.ch
	r.seenRate = 0
	r.seenCounter = 0
	if r.ch != nil {
		r.seenRate = r.ch.SampleRate()
		r.seenCounter = r.ch.Counter()
	}
}

// ResetCounters zeroes the received and processed statistics.
func (r *Reader) ResetCounters() {
	r.processed = 0
	r.received = 0
}

// Start aligns the cursor to t on the next Update: samples stamped after t
// become new, older ones are skipped.
func (r *Reader) Start(t time.Duration) {
	r.startTime = t
	r.needsAlign = true
}

// StartTime returns the time passed to the last Start.
func (r *Reader) StartTime() time.Duration { return r.startTime }

// Update records the samples the channel gained since the last call and
// detects channel changes.
func (r *Reader) Update() {
	r.detectChanges()
	if r.ch == nil {
		return
	}

	if r.needsAlign {
		r.align()
		r.needsAlign = false
	}

	if r.changes&ChangeReset != 0 {
		r.lastRead = r.ch.MinIndex()
	}

	r.received += uint64(r.ch.NumNewSamples())
}

func (r *Reader) align() {
	counter := r.ch.Counter()
	rate := r.ch.SampleRate()
	if rate <= 0 {
		r.lastRead = counter
		return
	}

	newest := r.ch.LastSampleTime()
	n := int64(math.Floor((newest-r.startTime).Seconds()*rate + indexEpsilon))
	if n < 0 {
		n = 0
	}
	if n > int64(r.ch.NumSamples()) {
		n = int64(r.ch.NumSamples())
	}
	r.lastRead = counter - n
}

func (r *Reader) detectChanges() {
	r.changes = 0
	if r.ch != r.seenCh {
		r.changes |= ChangeReference
	}
	if r.ch != nil {
		if r.ch.SampleRate() != r.seenRate {
			r.changes |= ChangeSampleRate
		}
		if r.ch == r.seenCh && r.ch.Counter() < r.seenCounter {
			r.changes |= ChangeReset
		}
		r.seenRate = r.ch.SampleRate()
		r.seenCounter = r.ch.Counter()
	}
	r.seenCh = r.ch
}

// HasChanged reports whether the last Update raised any of the given flags.
func (r *Reader) HasChanged(kind Change) bool { return r.changes&kind != 0 }

// NumNewSamples returns how many unconsumed samples are still retained.
func (r *Reader) NumNewSamples() int {
	if r.ch == nil {
		return 0
	}

	n := r.ch.Counter() - r.lastRead
	if n <= 0 {
		return 0
	}
	if n > int64(r.ch.NumSamples()) {
		return r.ch.NumSamples()
	}
	return int(n)
}

// SampleIndex returns the channel index of the i-th new sample.
func (r *Reader) SampleIndex(i int) int64 {
	if r.ch == nil {
		return InvalidIndex
	}
	return r.ch.Counter() - int64(r.NumNewSamples()) + int64(i)
}

// Sample returns the i-th new sample, 0 being the oldest.
func (r *Reader) Sample(i int) float64 {
	if r.ch == nil {
		return 0
	}
	return r.ch.Sample(r.SampleIndex(i))
}

// Oldest returns the oldest new sample.
func (r *Reader) Oldest() float64 { return r.Sample(0) }

// Newest returns the newest new sample.
func (r *Reader) Newest() float64 { return r.Sample(r.NumNewSamples() - 1) }

// PopOldest consumes and returns the oldest new sample.
func (r *Reader) PopOldest() float64 {
	if r.NumNewSamples() == 0 {
		return 0
	}
	v := r.Oldest()
	r.Advance(1)
	return v
}

// OldestSampleTime returns the timestamp of the oldest new sample.
func (r *Reader) OldestSampleTime() time.Duration {
	if r.ch == nil {
		return 0
	}
	return r.ch.SampleTime(r.SampleIndex(0))
}

// Advance consumes n new samples.
func (r *Reader) Advance(n int) {
	if n <= 0 {
		return
	}
	if avail := r.NumNewSamples(); n > avail {
		n = avail
	}
	r.lastRead = r.SampleIndex(n)
	r.processed += uint64(n)
}

// Flush consumes every new sample without reading it.
func (r *Reader) Flush() {
	if r.ch == nil {
		return
	}
	r.processed += uint64(r.NumNewSamples())
	r.lastRead = r.ch.Counter()
}

// NumProcessed returns how many samples were consumed since the last
// counter reset.
func (r *Reader) NumProcessed() uint64 { return r.processed }

// NumReceived returns how many samples the channel produced while the
// reader was updated.
func (r *Reader) NumReceived() uint64 { return r.received }

// SetEpochLength sets the epoch window length in samples.
func (r *Reader) SetEpochLength(n int) {
	if n < 0 {
		n = 0
	}
	r.epochLength = n
}

// EpochLength returns the epoch window length.
func (r *Reader) EpochLength() int { return r.epochLength }

// SetEpochShift sets how many samples consecutive epochs are apart. Zero
// means non-overlapping epochs.
func (r *Reader) SetEpochShift(n int) {
	if n < 0 {
		n = 0
	}
	r.epochShift = n
}

// EpochShift returns the effective shift between epochs.
func (r *Reader) EpochShift() int {
	if r.epochShift == 0 {
		return r.epochLength
	}
	return r.epochShift
}

// SetEpochZeroPadding controls whether epochs reaching before the retained
// history are filled with zeros.
func (r *Reader) SetEpochZeroPadding(enabled bool) { r.epochPadding = enabled }

// NumEpochs returns how many complete new epochs are available.
func (r *Reader) NumEpochs() int {
	shift := r.EpochShift()
	if shift <= 0 {
		return 0
	}
	return r.NumNewSamples() / shift
}

// Epoch returns the i-th new epoch. It ends at the last sample of its shift
// block.
func (r *Reader) Epoch(i int) *Epoch {
	e := NewEpoch(r.ch, r.epochLength)
	e.SetZeroPadding(r.epochPadding)
	e.SetPosition(r.SampleIndex((i+1)*r.EpochShift() - 1))
	return e
}

// PopOldestEpoch consumes one epoch shift.
func (r *Reader) PopOldestEpoch() {
	r.Advance(r.EpochShift())
}

// ClearNewEpochs consumes every complete epoch, leaving a partial block.
func (r *Reader) ClearNewEpochs() {
	r.Advance(r.NumEpochs() * r.EpochShift())
}
