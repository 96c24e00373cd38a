package testutil

import "github.com/cwbudde/algo-dspgraph/dsp/channel"

// History returns every retained sample of ch, oldest first.
func History(ch *channel.Channel) []float64 {
	out := make([]float64, ch.NumSamples())
	ch.CopyRange(out, ch.MinIndex())
	return out
}

// Feed opens a new frame on ch and appends values, the way a producer does
// during its update.
func Feed(ch *channel.Channel, values ...float64) {
	ch.BeginAddSamples()
	ch.AddSamples(values...)
}
