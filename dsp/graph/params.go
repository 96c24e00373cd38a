package graph

import (
	"math"
	"time"

	"github.com/cwbudde/algo-dspgraph/dsp/core"
)

// Params holds the parsed parameters of one node description.
type Params struct {
	Name string
	Type string
	Num  map[string]float64
	Str  map[string]string
}

// GetNum returns a numeric parameter, or def if it is missing or not
// finite.
func (p Params) GetNum(key string, def float64) float64 {
	if p.Num == nil {
		return def
	}

	v, ok := p.Num[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}

	return v
}

// GetInt returns a numeric parameter truncated towards zero.
func (p Params) GetInt(key string, def int) int {
	return int(p.GetNum(key, float64(def)))
}

// GetBool treats any non-zero number as true.
func (p Params) GetBool(key string, def bool) bool {
	d := 0.0
	if def {
		d = 1
	}
	return p.GetNum(key, d) != 0
}

// GetDuration reads a parameter given in seconds.
func (p Params) GetDuration(key string, def time.Duration) time.Duration {
	return core.Duration(p.GetNum(key, core.Seconds(def)))
}

// GetStr returns a string parameter, or def if it is missing or empty.
func (p Params) GetStr(key, def string) string {
	if v := p.Str[key]; v != "" {
		return v
	}
	return def
}

// parseParams splits raw values into numeric and string parameters.
// Booleans become 0 or 1. Other types are dropped.
func parseParams(raw map[string]any) (map[string]float64, map[string]string) {
	num := map[string]float64{}
	str := map[string]string{}

	for k, v := range raw {
		switch t := v.(type) {
		case float64:
			num[k] = t
		case float32:
			num[k] = float64(t)
		case int:
			num[k] = float64(t)
		case int64:
			num[k] = float64(t)
		case uint64:
			num[k] = float64(t)
		case string:
			str[k] = t
		case bool:
			if t {
				num[k] = 1
			} else {
				num[k] = 0
			}
		}
	}

	return num, str
}
