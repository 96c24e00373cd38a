// Package signal produces deterministic test waveforms into channels. A
// Source stands in for device acquisition: it appends samples at its rate,
// paced by a free-running clock.
package signal
