package channel

import (
	"math"
	"time"

	"github.com/rs/xid"

	"github.com/cwbudde/algo-dspgraph/dsp/core"
)

// InvalidIndex is returned by index lookups that do not resolve to a sample.
const InvalidIndex int64 = -1

// ActivityTimeout is how long a channel counts as active after it last
// received samples.
const ActivityTimeout = 2 * time.Second

// indexEpsilon absorbs float error when converting a time back to an index.
const indexEpsilon = 1e-6

// Channel is a bounded, append-only series of samples with metadata.
// Samples are stored in a ring when the capacity is positive. A capacity of
// zero keeps the whole history.
type Channel struct {
	id         xid.ID
	name       string
	sourceName string
	unit       string
	color      string

	rate        float64
	independent bool

	data       []float64
	base       int64
	capacity   int
	numSamples int
	counter    int64
	numNew     int

	startTime    time.Duration
	elapsed      time.Duration
	lastActivity time.Duration
	active       bool

	minValue float64
	maxValue float64
}

// New returns an empty channel with the given sample rate and capacity. A
// rate of zero marks the channel as independent (event driven).
func New(name string, rate float64, capacity int) *Channel {
	c := &Channel{
		id:          xid.New(),
		name:        name,
		rate:        math.Max(rate, 0),
		independent: rate <= 0,
	}
	c.SetCapacity(capacity)
	c.resetBounds()
	return c
}

// ID returns the unique identity of the channel.
func (c *Channel) ID() xid.ID { return c.id }

// Name returns the display name.
func (c *Channel) Name() string { return c.name }

// SetName sets the display name.
func (c *Channel) SetName(name string) { c.name = name }

// SourceName returns the name of the channel this one was derived from.
func (c *Channel) SourceName() string { return c.sourceName }

// SetSourceName records the name of the channel this one was derived from.
func (c *Channel) SetSourceName(name string) { c.sourceName = name }

// Unit returns the physical unit label.
func (c *Channel) Unit() string { return c.unit }

// SetUnit sets the physical unit label.
func (c *Channel) SetUnit(unit string) { c.unit = unit }

// Color returns the display color.
func (c *Channel) Color() string { return c.color }

// SetColor sets the display color.
func (c *Channel) SetColor(color string) { c.color = color }

// SampleRate returns the rate in Hz, or 0 for an independent channel.
func (c *Channel) SampleRate() float64 { return c.rate }

// SetSampleRate changes the nominal rate. Negative rates are stored as 0.
func (c *Channel) SetSampleRate(rate float64) { c.rate = math.Max(rate, 0) }

// IsIndependent reports whether the channel is event driven rather than
// synced to a clock.
func (c *Channel) IsIndependent() bool { return c.independent }

// SetIndependent sets the independence flag.
func (c *Channel) SetIndependent(independent bool) { c.independent = independent }

// Capacity returns the number of retained samples, 0 meaning unbounded.
func (c *Channel) Capacity() int { return c.capacity }

// SetCapacity changes the retention, keeping the newest samples that fit.
func (c *Channel) SetCapacity(capacity int) {
	if capacity < 0 {
		capacity = 0
	}

	keep := c.numSamples
	if capacity > 0 && keep > capacity {
		keep = capacity
	}

	old := make([]float64, keep)
	for i := range old {
		old[i] = c.Sample(c.counter - int64(keep) + int64(i))
	}

	c.capacity = capacity
	c.base = c.counter - int64(keep)
	if capacity > 0 {
		c.data = make([]float64, capacity)
	} else {
		c.data = make([]float64, keep)
	}

	c.numSamples = keep
	for i, v := range old {
		c.data[c.slot(c.counter-int64(keep)+int64(i))] = v
	}
}

func (c *Channel) slot(index int64) int64 {
	if c.capacity > 0 {
		return index % int64(c.capacity)
	}
	return index - c.base
}

// NumSamples returns the number of retained samples.
func (c *Channel) NumSamples() int { return c.numSamples }

// Counter returns the index the next added sample will get, which is also
// the total number of samples ever added.
func (c *Channel) Counter() int64 { return c.counter }

// NumNewSamples returns the number of samples added since BeginAddSamples.
func (c *Channel) NumNewSamples() int { return c.numNew }

// MinIndex returns the oldest retained index.
func (c *Channel) MinIndex() int64 { return c.counter - int64(c.numSamples) }

// MaxIndex returns the newest index, or -1 if nothing was added yet.
func (c *Channel) MaxIndex() int64 { return c.counter - 1 }

// IsValid reports whether index is retained.
func (c *Channel) IsValid(index int64) bool {
	return c.numSamples > 0 && index >= c.MinIndex() && index <= c.MaxIndex()
}

// BeginAddSamples starts a new frame of additions.
func (c *Channel) BeginAddSamples() { c.numNew = 0 }

// Add appends one sample.
func (c *Channel) Add(value float64) {
	if c.capacity > 0 {
		c.data[c.slot(c.counter)] = value
		if c.numSamples < c.capacity {
			c.numSamples++
		}
	} else {
		c.data = append(c.data, value)
		c.numSamples++
	}

	c.counter++
	c.numNew++

	if value < c.minValue {
		c.minValue = value
	}
	if value > c.maxValue {
		c.maxValue = value
	}
}

// AddSamples appends values in order.
func (c *Channel) AddSamples(values ...float64) {
	for _, v := range values {
		c.Add(v)
	}
}

// RemoveLast drops the newest sample. It is a no-op on an empty channel.
func (c *Channel) RemoveLast() {
	if c.numSamples == 0 {
		return
	}

	c.counter--
	c.numSamples--
	if c.numNew > 0 {
		c.numNew--
	}
	if c.capacity == 0 {
		c.data = c.data[:len(c.data)-1]
	}
}

// Sample returns the value at index, or 0 if index is not retained.
func (c *Channel) Sample(index int64) float64 {
	if !c.IsValid(index) {
		return 0
	}
	return c.data[c.slot(index)]
}

// Last returns the newest value, or 0 for an empty channel.
func (c *Channel) Last() float64 {
	return c.Sample(c.MaxIndex())
}

// CopyRange copies the retained samples from index on into dst and returns
// how many were copied.
func (c *Channel) CopyRange(dst []float64, index int64) int {
	n := 0
	for i := index; i <= c.MaxIndex() && n < len(dst); i++ {
		if !c.IsValid(i) {
			continue
		}
		dst[n] = c.data[c.slot(i)]
		n++
	}
	return n
}

// Clear drops all retained samples. The counter keeps its value, so readers
// see no new samples.
func (c *Channel) Clear() {
	c.numSamples = 0
	c.numNew = 0
	c.base = c.counter
	if c.capacity == 0 {
		c.data = c.data[:0]
	}
	c.resetBounds()
}

// Reset clears the samples and rewinds the counter and timing to zero.
func (c *Channel) Reset() {
	c.Clear()
	c.counter = 0
	c.base = 0
	c.elapsed = 0
	c.lastActivity = 0
	c.active = false
}

// MinValue returns the smallest value added since the last clear.
func (c *Channel) MinValue() float64 {
	if c.numSamples == 0 {
		return 0
	}
	return c.minValue
}

// MaxValue returns the largest value added since the last clear.
func (c *Channel) MaxValue() float64 {
	if c.numSamples == 0 {
		return 0
	}
	return c.maxValue
}

func (c *Channel) resetBounds() {
	c.minValue = math.Inf(1)
	c.maxValue = math.Inf(-1)
}

// StartTime returns the time origin of sample index 0.
func (c *Channel) StartTime() time.Duration { return c.startTime }

// SetStartTime sets the time origin.
func (c *Channel) SetStartTime(t time.Duration) { c.startTime = t }

// SampleTime returns the timestamp of index. Independent channels have no
// sample clock and report the start time.
func (c *Channel) SampleTime(index int64) time.Duration {
	if c.rate <= 0 {
		return c.startTime
	}
	return c.startTime + core.Duration(float64(index+1)/c.rate)
}

// LastSampleTime returns the timestamp of the newest sample, or the start
// time if the channel is empty.
func (c *Channel) LastSampleTime() time.Duration {
	if c.rate <= 0 {
		return c.startTime
	}
	return c.startTime + core.Duration(float64(c.counter)/c.rate)
}

// FindIndexByTime returns the newest index whose timestamp is not later than
// t. Times before the first sample and past the next unseen sample yield
// InvalidIndex. A result equal to Counter names a sample not produced yet.
func (c *Channel) FindIndexByTime(t time.Duration) int64 {
	if c.rate <= 0 {
		return InvalidIndex
	}

	pos := (t-c.startTime).Seconds()*c.rate - 1
	index := int64(math.Floor(pos + indexEpsilon))
	if index < 0 || index > c.counter {
		return InvalidIndex
	}
	return index
}

// Elapsed returns the graph time the channel was last updated at.
func (c *Channel) Elapsed() time.Duration { return c.elapsed }

// SetElapsed stamps the channel with the current graph time and records
// activity if samples were added in this frame.
func (c *Channel) SetElapsed(now time.Duration) {
	c.elapsed = now
	if c.numNew > 0 {
		c.lastActivity = now
		c.active = true
	}
}

// IsActive reports whether samples arrived within ActivityTimeout of the
// last elapsed stamp.
func (c *Channel) IsActive() bool {
	return c.active && c.elapsed-c.lastActivity < ActivityTimeout
}

