// Package indicators provides the stateless numeric functions the factor
// scorers are built on. Every function is pure and total: degenerate input
// degrades to a documented neutral default instead of panicking.
package indicators

import (
	"math"

	"github.com/coinsight/coinsight/internal/domain"
)

// RSI computes the Relative Strength Index over the closing price series.
// Fewer than period+1 points returns the neutral 50.
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50
	}

	var gains, losses []float64
	for i := 1; i < len(prices); i++ {
		diff := prices[i] - prices[i-1]
		if diff > 0 {
			gains = append(gains, diff)
			losses = append(losses, 0)
		} else {
			gains = append(gains, 0)
			losses = append(losses, -diff)
		}
	}

	avgGain := mean(gains[len(gains)-period:])
	avgLoss := mean(losses[len(losses)-period:])

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// SMA is the mean of the last period values. With insufficient data it
// returns the last available value, or 0 for an empty series.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		return prices[len(prices)-1]
	}
	return mean(prices[len(prices)-period:])
}

// EMA seeds from the first raw price, not an initial SMA, and applies
// the standard recurrence. Downstream thresholds assume this seeding.
func EMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	multiplier := 2.0 / float64(period+1)
	ema := prices[0]
	for _, price := range prices[1:] {
		ema = (price-ema)*multiplier + ema
	}
	return ema
}

// MACDResult carries the MACD line, signal, histogram and the histogram
// recomputed over the series minus its last point.
type MACDResult struct {
	Line          float64
	Signal        float64
	Histogram     float64
	PrevHistogram float64
}

// MACD computes EMA(12)-EMA(26). The signal is the EMA(9) of the
// single-element series [line], which under the seeding rule above is the
// line itself, so the histogram is zero by construction. The scorers only
// consume the sign and direction of the histogram pair.
func MACD(prices []float64) MACDResult {
	line := EMA(prices, 12) - EMA(prices, 26)
	signal := EMA([]float64{line}, 9)
	hist := line - signal

	prev := hist
	if len(prices) > 1 {
		trimmed := prices[:len(prices)-1]
		prevLine := EMA(trimmed, 12) - EMA(trimmed, 26)
		prev = prevLine - EMA([]float64{prevLine}, 9)
	}

	return MACDResult{Line: line, Signal: signal, Histogram: hist, PrevHistogram: prev}
}

// Bands holds Bollinger band levels
type Bands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// BollingerBands returns SMA(period) ± mult standard deviations, using the
// population stddev of the last period values.
func BollingerBands(prices []float64, period int, mult float64) Bands {
	middle := SMA(prices, period)
	window := prices
	if len(prices) > period {
		window = prices[len(prices)-period:]
	}
	std := stddev(window)
	return Bands{
		Upper:  middle + mult*std,
		Middle: middle,
		Lower:  middle - mult*std,
	}
}

// TypicalPrice is (high+low+close)/3 of one candle
func TypicalPrice(high, low, close float64) float64 {
	return (high + low + close) / 3
}

// VWAP is the volume-weighted average price over the entire supplied
// history (unwindowed). Zero cumulative volume returns 0.
func VWAP(candles []domain.Candle) float64 {
	var pv, vol float64
	for _, c := range candles {
		tp := TypicalPrice(c.High, c.Low, c.Close)
		pv += tp * c.Volume
		vol += c.Volume
	}
	if vol == 0 {
		return 0
	}
	return pv / vol
}

// Volatility is the population stddev of percentage returns between
// consecutive prices, in percent.
func Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		returns = append(returns, (prices[i]-prices[i-1])/prices[i-1]*100)
	}
	return stddev(returns)
}

// VolumeTrend compares the mean of the last 5 volumes against the mean of
// the preceding 5, as a relative delta. Fewer than 10 points returns 0.
func VolumeTrend(volumes []float64) float64 {
	if len(volumes) < 10 {
		return 0
	}
	recent := mean(volumes[len(volumes)-5:])
	prior := mean(volumes[len(volumes)-10 : len(volumes)-5])
	if prior == 0 {
		return 0
	}
	return (recent - prior) / prior
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var variance float64
	for _, v := range values {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}
