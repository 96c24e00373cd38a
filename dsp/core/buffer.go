package core

// EnsureLen returns buf resized to n, allocating only when its capacity is
// too small. Contents are not preserved across a reallocation.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}
