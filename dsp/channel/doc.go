// Package channel implements the time-series buffers that carry samples
// between processors.
//
// A Channel has exactly one producer, which appends samples during its own
// update, and any number of consumers. Each consumer holds a Reader that
// tracks which samples it already consumed. An Epoch is a read-only window
// over the history of a Channel with aggregate operations, and a
// MultiChannel groups channels that represent parallel elements such as the
// electrodes of one device.
//
// Sample indices are global and monotonic: the first sample ever added has
// index 0. A Channel retains at most Capacity samples, so only indices in
// [MinIndex, MaxIndex] are readable. Older indices are gone for good and
// reads of them yield 0.
//
// Sample i of a channel with rate r that started at t0 is stamped
// t0 + (i+1)/r, that is, a sample is dated at the end of its period.
package channel
