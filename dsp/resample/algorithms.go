package resample

import (
	"github.com/cwbudde/algo-dspgraph/dsp/channel"
	"github.com/cwbudde/algo-dspgraph/dsp/clock"
)

// state is what an algorithm sees during one update.
type state struct {
	in     *channel.Reader
	out    *channel.Channel
	clock  *clock.Generator
	kernel *channel.Epoch
}

// run dispatches one update of algorithm a.
func run(a Algorithm, s state) {
	switch a {
	case Forward:
		forward(s)
	case OutputLast:
		outputLast(s)
	case NearestNeighbor:
		nearestNeighbor(s)
	case LinearInterpolate:
		linearInterpolate(s)
	case Boxcar:
		boxcar(s)
	}
}

func forward(s state) {
	n := s.in.NumNewSamples()
	for i := range n {
		s.out.Add(s.in.Sample(i))
	}
	s.in.Advance(n)
}

// outputLast repeats the newest input value once per tick. The reader is
// drained regardless of how many values were emitted.
func outputLast(s state) {
	last := s.in.Channel().Last()
	for range s.clock.NumNewTicks() {
		s.out.Add(last)
	}
	s.clock.ClearNewTicks()
	s.in.Flush()
}

// nearestNeighbor stops at the first tick whose sample is not observed yet.
// Ticks whose sample is no longer retained are dropped without output. Ticks
// before the first input sample emit 0.
func nearestNeighbor(s state) {
	ch := s.in.Channel()
	for {
		tick, ok := s.clock.Peek()
		if !ok {
			break
		}

		index := ch.FindIndexByTime(tick.Time)
		if index == channel.InvalidIndex && tick.Time >= ch.SampleTime(0) {
			break
		}
		if index != channel.InvalidIndex && index > ch.MaxIndex() {
			break
		}
		if index != channel.InvalidIndex && index < ch.MinIndex() {
			s.clock.PopOldestTick()
			continue
		}

		s.out.Add(ch.Sample(index))
		s.clock.PopOldestTick()
	}
	s.in.Flush()
}

// linearInterpolate produces nothing. Ticks and input are discarded so that
// neither queue grows.
func linearInterpolate(s state) {
	s.clock.ClearNewTicks()
	s.in.Flush()
}

// boxcar emits the mean of a window of kernel length ending at each tick's
// sample. A tick whose sample is unavailable is dropped.
func boxcar(s state) {
	ch := s.in.Channel()
	length := s.kernel.Length()
	for {
		tick, ok := s.clock.PopOldestTick()
		if !ok {
			break
		}

		index := ch.FindIndexByTime(tick.Time)
		if !ch.IsValid(index) {
			continue
		}

		s.kernel.SetPosition(index)
		s.out.Add(s.kernel.Sum() / float64(length))
	}
	s.in.Flush()
}
