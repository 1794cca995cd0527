package indicators

import (
	"math"
	"sort"

	"github.com/coinsight/coinsight/internal/domain"
)

// Levels holds the nearest support and resistance relative to the last close
type Levels struct {
	Support       float64
	Resistance    float64
	HasSupport    bool
	HasResistance bool
}

// SupportResistance finds local extrema using a symmetric ±2 bar window,
// sorts candidates by absolute distance to the last close, and returns the
// nearest level on each side. Series too short to form a window yield no levels.
func SupportResistance(candles []domain.Candle) Levels {
	var levels Levels
	if len(candles) < 5 {
		return levels
	}

	last := candles[len(candles)-1].Close

	var supports, resistances []float64
	for i := 2; i < len(candles)-2; i++ {
		low := candles[i].Low
		if low < candles[i-1].Low && low < candles[i-2].Low &&
			low < candles[i+1].Low && low < candles[i+2].Low {
			supports = append(supports, low)
		}
		high := candles[i].High
		if high > candles[i-1].High && high > candles[i-2].High &&
			high > candles[i+1].High && high > candles[i+2].High {
			resistances = append(resistances, high)
		}
	}

	sort.Slice(supports, func(i, j int) bool {
		return math.Abs(supports[i]-last) < math.Abs(supports[j]-last)
	})
	sort.Slice(resistances, func(i, j int) bool {
		return math.Abs(resistances[i]-last) < math.Abs(resistances[j]-last)
	})

	for _, s := range supports {
		if s <= last {
			levels.Support = s
			levels.HasSupport = true
			break
		}
	}
	for _, r := range resistances {
		if r >= last {
			levels.Resistance = r
			levels.HasResistance = true
			break
		}
	}
	return levels
}
