package indicators

import (
	"math"

	"github.com/coinsight/coinsight/internal/domain"
)

// PatternScan is the result of candle-pattern detection: a small score
// delta plus human-readable pattern names.
type PatternScan struct {
	Delta    float64
	Patterns []string
}

// PriceActionPatterns inspects the tail of the candle series for a hammer
// (lower shadow more than twice the body) among the last 3 candles and for
// 3-candle same-direction momentum.
func PriceActionPatterns(candles []domain.Candle) PatternScan {
	var scan PatternScan
	if len(candles) < 3 {
		return scan
	}

	tail := candles[len(candles)-3:]

	for _, c := range tail {
		body := math.Abs(c.Close - c.Open)
		lowerShadow := math.Min(c.Open, c.Close) - c.Low
		if body > 0 && lowerShadow > 2*body {
			scan.Delta += 5
			scan.Patterns = append(scan.Patterns, "hammer: buyers defending the low")
			break
		}
	}

	allUp := true
	allDown := true
	for _, c := range tail {
		if c.Close <= c.Open {
			allUp = false
		}
		if c.Close >= c.Open {
			allDown = false
		}
	}
	if allUp {
		scan.Delta += 5
		scan.Patterns = append(scan.Patterns, "three consecutive bullish candles")
	}
	if allDown {
		scan.Delta -= 5
		scan.Patterns = append(scan.Patterns, "three consecutive bearish candles")
	}

	return scan
}
