// Package filter runs second-order IIR sections over channels.
//
// A [Section] implements Direct Form II Transposed processing for one biquad
// defined by [Coefficients]. [Design] derives coefficients for the common
// RBJ responses from a corner frequency, a quality factor and the input
// sample rate. [Processor] applies a section to every new sample of its
// input channel, sample by sample, so its output runs at the input rate.
package filter
