// Package statistics computes one statistic per epoch of its input, such as
// the mean or the RMS over the last second.
//
// The interval is given either as a sample count or as a duration that is
// converted with the input rate. In EpochOff mode the window slides by one
// sample and the output keeps the input rate. In EpochOn mode epochs do
// not overlap and the output rate drops by the interval length. EpochCustom
// uses an explicit shift.
package statistics
