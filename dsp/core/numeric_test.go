package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{name: "inside", value: 0.5, min: 0, max: 1, expected: 0.5},
		{name: "below", value: -1, min: 0, max: 1, expected: 0},
		{name: "above", value: 2, min: 0, max: 1, expected: 1},
		{name: "swapped", value: 2, min: 1, max: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Clamp(tt.value, tt.min, tt.max))
		})
	}
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, int64(3), ClampInt(3, 0, 10))
	assert.Equal(t, int64(0), ClampInt(-4, 0, 10))
	assert.Equal(t, int64(10), ClampInt(40, 10, 0))
}

func TestNearlyEqual(t *testing.T) {
	assert.True(t, NearlyEqual(1.0, 1.0+1e-13, 1e-12))
	assert.False(t, NearlyEqual(1.0, 1.1, 1e-3))
	assert.True(t, NearlyEqual(0, 0, 0))
}

func TestIsInteger(t *testing.T) {
	assert.True(t, IsInteger(3.0000001, 1e-5))
	assert.True(t, IsInteger(2.9999999, 1e-5))
	assert.False(t, IsInteger(2.5, 1e-5))
}

func TestDurationConversions(t *testing.T) {
	require.Equal(t, 10*time.Millisecond, Period(100))
	assert.Equal(t, time.Duration(0), Period(0))
	assert.Equal(t, 1500*time.Millisecond, Duration(1.5))
	assert.Equal(t, time.Duration(0), Duration(-0.0))
	assert.InDelta(t, 0.25, Seconds(250*time.Millisecond), 1e-12)
}

func TestEngineConfig(t *testing.T) {
	cfg := ApplyEngineOptions()
	assert.Equal(t, DefaultEngineConfig(), cfg)

	cfg = ApplyEngineOptions(WithFrameRate(20), WithBufferDuration(2*time.Second), WithFrameRate(-1), nil)
	assert.Equal(t, 20.0, cfg.FrameRate)
	assert.Equal(t, 50*time.Millisecond, cfg.FrameDuration())
	assert.Equal(t, 201, cfg.Capacity(100))
	assert.Equal(t, 16, cfg.Capacity(0))
	assert.Equal(t, 16, cfg.Capacity(1))
}

func TestEnsureLen(t *testing.T) {
	buf := make([]float64, 2, 8)
	out := EnsureLen(buf, 6)
	require.Len(t, out, 6)
	assert.Equal(t, 8, cap(out))
	assert.Len(t, EnsureLen(buf, 0), 0)
	assert.Len(t, EnsureLen(nil, 3), 3)
}
