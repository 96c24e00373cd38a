package graph

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParamsGetters(t *testing.T) {
	t.Parallel()

	num, str := parseParams(map[string]any{
		"rate":   100,
		"gain":   0.5,
		"on":     true,
		"off":    false,
		"name":   "x",
		"nested": map[string]any{"a": 1},
	})
	num["nan"] = math.NaN()
	p := Params{Num: num, Str: str}

	assert.Equal(t, 100.0, p.GetNum("rate", 0))
	assert.Equal(t, 0.5, p.GetNum("gain", 0))
	assert.Equal(t, 7.0, p.GetNum("nan", 7))
	assert.Equal(t, 3.0, p.GetNum("missing", 3))
	assert.Equal(t, 100, p.GetInt("rate", 0))
	assert.True(t, p.GetBool("on", false))
	assert.False(t, p.GetBool("off", true))
	assert.Equal(t, 500*time.Millisecond, p.GetDuration("gain", 0))
	assert.Equal(t, "x", p.GetStr("name", ""))
	assert.Equal(t, "d", p.GetStr("missing", "d"))
	assert.NotContains(t, num, "nested")

	var empty Params
	assert.Equal(t, 1.0, empty.GetNum("any", 1))
	assert.Equal(t, "d", empty.GetStr("any", "d"))
}
