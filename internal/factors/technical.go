package factors

import (
	"fmt"
	"math"

	"github.com/coinsight/coinsight/internal/domain"
	"github.com/coinsight/coinsight/internal/indicators"
)

// Blend weights per timeframe: short 0.2, medium 0.3, long 0.5. Missing
// timeframes renormalize over the ones present.
var timeframeWeights = map[domain.Timeframe]float64{
	domain.Timeframe1m: 0.2,
	domain.Timeframe1h: 0.3,
	domain.Timeframe1d: 0.5,
}

// Fixed evaluation order keeps the reasoning output deterministic.
var timeframeOrder = []domain.Timeframe{
	domain.Timeframe1m,
	domain.Timeframe1h,
	domain.Timeframe1d,
}

const (
	levelProximityPct   = 3.0  // percent distance counted as "near" a level
	volTrendThreshold   = 0.10 // relative delta
	highVolatilityPct   = 20.0
	lowVolatilityPct    = 10.0
)

// Technical blends per-timeframe technical scores into one factor score.
// At least one timeframe with candle data is required.
func Technical(details map[domain.Timeframe]*domain.CoinDetails) domain.FactorScore {
	card := newScorecard()
	card.score = 0

	var totalWeight float64
	scored := 0
	for _, tf := range timeframeOrder {
		d := details[tf]
		if d == nil || len(d.Candles) == 0 {
			continue
		}
		weight := timeframeWeights[tf]
		tfScore := scoreTimeframe(d, card, tf)
		card.score += tfScore * weight
		totalWeight += weight
		scored++
	}

	if scored == 0 {
		return insufficientData("no candle data for any timeframe")
	}

	card.score /= totalWeight
	card.reasons = append([]string{fmt.Sprintf("blended across %d timeframe(s)", scored)}, card.reasons...)
	return card.result()
}

// TimeframeScore returns the unblended technical score of a single
// timeframe series. The analyzer maps these to per-horizon opportunity
// potentials.
func TimeframeScore(d *domain.CoinDetails, tf domain.Timeframe) float64 {
	if d == nil || len(d.Candles) == 0 {
		return insufficientDataScore
	}
	return scoreTimeframe(d, newScorecard(), tf)
}

// scoreTimeframe applies the per-timeframe rule set and returns the
// unblended 0-100 score; explanatory fragments go onto the shared card
// prefixed with the timeframe.
func scoreTimeframe(d *domain.CoinDetails, card *scorecard, tf domain.Timeframe) float64 {
	closes := d.Closes()
	volumes := d.VolumeSeries()
	price := closes[len(closes)-1]
	score := 50.0

	note := func(delta float64, text string) {
		score += delta
		card.reasons = append(card.reasons, fmt.Sprintf("%s: %s", tf, text))
	}

	rsi := indicators.RSI(closes, 14)
	if rsi < 30 {
		note(15, fmt.Sprintf("RSI %.1f oversold", rsi))
		card.signal(fmt.Sprintf("%s: oversold (RSI %.1f)", tf, rsi))
	} else if rsi > 70 {
		note(-15, fmt.Sprintf("RSI %.1f overbought", rsi))
		card.warn(fmt.Sprintf("%s: overbought (RSI %.1f)", tf, rsi))
	}

	sma20 := indicators.SMA(closes, 20)
	sma50 := indicators.SMA(closes, 50)
	if price > sma20 && price > sma50 {
		note(10, "price above SMA20 and SMA50, bullish structure")
	} else if price < sma20 && price < sma50 {
		note(-10, "price below SMA20 and SMA50, bearish structure")
	}

	macd := indicators.MACD(closes)
	if macd.Histogram > 0 && macd.Histogram > macd.PrevHistogram {
		note(8, "MACD histogram positive and rising")
	} else if macd.Histogram < 0 && macd.Histogram < macd.PrevHistogram {
		note(-8, "MACD histogram negative and falling")
	}

	bands := indicators.BollingerBands(closes, 20, 2)
	if price > bands.Upper {
		note(-5, "price above upper Bollinger band")
	} else if price < bands.Lower {
		note(5, "price below lower Bollinger band")
	}

	if vwap := indicators.VWAP(d.Candles); vwap > 0 {
		if price > vwap {
			note(5, "trading above VWAP")
		} else {
			note(-5, "trading below VWAP")
		}
	}

	levels := indicators.SupportResistance(d.Candles)
	if levels.HasSupport && price > 0 {
		if math.Abs(price-levels.Support)/price*100 < levelProximityPct {
			note(5, fmt.Sprintf("near support %.6g", levels.Support))
			card.signal(fmt.Sprintf("%s: near support", tf))
		}
	}
	if levels.HasResistance && price > 0 {
		if math.Abs(levels.Resistance-price)/price*100 < levelProximityPct {
			note(-3, fmt.Sprintf("near resistance %.6g", levels.Resistance))
		}
	}

	if trend := indicators.VolumeTrend(volumes); trend > volTrendThreshold {
		note(8, fmt.Sprintf("volume trending up %.0f%%", trend*100))
	} else if trend < -volTrendThreshold {
		note(-5, fmt.Sprintf("volume trending down %.0f%%", -trend*100))
	}

	vol := indicators.Volatility(closes)
	if vol > highVolatilityPct {
		note(-5, fmt.Sprintf("high volatility %.1f%%", vol))
		card.warn(fmt.Sprintf("%s: high volatility", tf))
	} else if vol < lowVolatilityPct {
		card.reasons = append(card.reasons, fmt.Sprintf("%s: volatility calm at %.1f%%", tf, vol))
	}

	scan := indicators.PriceActionPatterns(d.Candles)
	score += scan.Delta
	for _, p := range scan.Patterns {
		card.signal(fmt.Sprintf("%s: %s", tf, p))
	}

	return domain.Clamp(score)
}
