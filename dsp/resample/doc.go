// Package resample converts a channel to a target sample rate.
//
// At every ReInit a Resampler classifies the conversion from the input
// and target rates, picks an algorithm and wires its clock:
//
//	type                     realtime          good quality       clock
//	no resampling            Forward           Forward            none
//	independent input        OutputLast        OutputLast         free-running
//	upsample (int or frac)   NearestNeighbor   LinearInterpolate  synced(-ahead)
//	downsample (int or frac) NearestNeighbor   Boxcar             synced(-ahead)
//
// Manual mode honors an explicitly chosen algorithm. NearestNeighbor runs
// on a synced-ahead clock; LinearInterpolate and Boxcar on a synced one.
//
// LinearInterpolate is selectable and reports its delay and epoch sizes,
// but it produces no samples yet: its ticks are discarded and the processor
// carries an ErrAlgorithmNotImplemented warning.
package resample
