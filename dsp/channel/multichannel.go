package channel

import (
	"errors"
	"fmt"
	"math"
)

// ErrRateMismatch is returned when the channels of a MultiChannel disagree on
// their sample rate.
var ErrRateMismatch = errors.New("channel: sample rates differ")

// Independence classifies how the channels of a MultiChannel are clocked.
type Independence int

const (
	// AllSynced means every channel has a fixed rate.
	AllSynced Independence = iota
	// AllIndependent means every channel is event driven.
	AllIndependent
	// Mixed means both kinds are present.
	Mixed
)

// MultiChannel is an ordered group of channels that represent parallel
// elements. It does not own the channels it references.
type MultiChannel struct {
	channels []*Channel
}

// NewMultiChannel returns a group holding channels in order.
func NewMultiChannel(channels ...*Channel) *MultiChannel {
	m := &MultiChannel{}
	m.Add(channels...)
	return m
}

// Len returns the number of channels.
func (m *MultiChannel) Len() int {
	if m == nil {
		return 0
	}
	return len(m.channels)
}

// At returns the i-th channel.
func (m *MultiChannel) At(i int) *Channel { return m.channels[i] }

// Channels returns the channels in order. The slice must not be modified.
func (m *MultiChannel) Channels() []*Channel {
	if m == nil {
		return nil
	}
	return m.channels
}

// Add appends channels. Nil entries are ignored.
func (m *MultiChannel) Add(channels ...*Channel) {
	for _, c := range channels {
		if c != nil {
			m.channels = append(m.channels, c)
		}
	}
}

// Clear removes all references.
func (m *MultiChannel) Clear() { m.channels = nil }

// Reset resets every channel.
func (m *MultiChannel) Reset() {
	for _, c := range m.Channels() {
		c.Reset()
	}
}

// SampleRate returns the rate of the first channel, or 0 for an empty group.
func (m *MultiChannel) SampleRate() float64 {
	if m.Len() == 0 {
		return 0
	}
	return m.channels[0].SampleRate()
}

// MinValue returns the smallest observed value across the group.
func (m *MultiChannel) MinValue() float64 {
	if m.Len() == 0 {
		return 0
	}
	v := math.Inf(1)
	for _, c := range m.channels {
		v = math.Min(v, c.MinValue())
	}
	return v
}

// MaxValue returns the largest observed value across the group.
func (m *MultiChannel) MaxValue() float64 {
	if m.Len() == 0 {
		return 0
	}
	v := math.Inf(-1)
	for _, c := range m.channels {
		v = math.Max(v, c.MaxValue())
	}
	return v
}

// Validate checks that every channel runs at the same rate.
func (m *MultiChannel) Validate() error {
	rate := m.SampleRate()
	for i, c := range m.Channels() {
		if c.SampleRate() != rate {
			return fmt.Errorf("%w: channel %d (%s) runs at %g Hz, want %g Hz",
				ErrRateMismatch, i, c.Name(), c.SampleRate(), rate)
		}
	}
	return nil
}

// Independence reports whether the group is synced, independent or mixed.
// An empty group counts as synced.
func (m *MultiChannel) Independence() Independence {
	var synced, independent int
	for _, c := range m.Channels() {
		if c.IsIndependent() {
			independent++
		} else {
			synced++
		}
	}

	switch {
	case synced > 0 && independent > 0:
		return Mixed
	case independent > 0:
		return AllIndependent
	default:
		return AllSynced
	}
}
