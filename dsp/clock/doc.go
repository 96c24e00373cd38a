// Package clock provides the tick generator that paces clock-driven
// processors.
//
// A Generator emits ticks at a target frequency. Tick i is stamped
// start + (i+1)/frequency, the same convention channels use for their
// samples, so the i-th output sample of a processor shares the timestamp
// of the tick that produced it.
//
// Three disciplines decide when ticks become available:
//
//	FreeRunning  ticks follow the elapsed time passed to Update
//	Synced       ticks follow the newest sample of a reference channel
//	SyncedAhead  like Synced, plus one lead tick past the newest sample
package clock
