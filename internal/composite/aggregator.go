package composite

import (
	"math"

	"github.com/coinsight/coinsight/internal/domain"
)

// Suspicion short-circuit thresholds shared by aggregator and recommender
const (
	suspicionCriticalScore = 90.0
	suspicionHighScore     = 70.0
)

// RiskVerdict is the aggregated risk classification with its confidence
type RiskVerdict struct {
	Level      domain.RiskRating `json:"level"`
	Confidence float64           `json:"confidence"` // percent, in [70,95]
	Composite  float64           `json:"composite"`  // blended 0-100 safety score
}

// Aggregator combines factor scores and the suspicious-pattern score into
// a 5-level risk classification.
type Aggregator struct {
	strategy Strategy
}

// NewAggregator builds an aggregator for the given weight strategy
func NewAggregator(strategy Strategy) *Aggregator {
	return &Aggregator{strategy: strategy}
}

// Aggregate classifies risk. A suspicion score at or above 90 forces
// very-high risk at 95% confidence; at or above 70, high risk at 85%.
func (a *Aggregator) Aggregate(factors domain.FactorSet, suspicious domain.SuspiciousPatternReport) RiskVerdict {
	if suspicious.RiskScore >= suspicionCriticalScore {
		return RiskVerdict{Level: domain.RiskVeryHigh, Confidence: 95, Composite: 0}
	}
	if suspicious.RiskScore >= suspicionHighScore {
		return RiskVerdict{Level: domain.RiskHigh, Confidence: 85, Composite: 100 - suspicious.RiskScore}
	}

	w := a.strategy.Risk
	composite := factors.Technical.Score*w.Technical +
		factors.Sentiment.Score*w.Sentiment +
		factors.Liquidity.Score*w.Liquidity +
		factors.Fundamental.Score*w.Fundamental +
		factors.Concentration.Score*w.Concentration +
		(100-suspicious.RiskScore)*w.SuspiciousInverted

	return RiskVerdict{
		Level:      riskBand(composite),
		Confidence: confidence(factors, suspicious),
		Composite:  domain.Clamp(composite),
	}
}

func riskBand(composite float64) domain.RiskRating {
	switch {
	case composite >= 80:
		return domain.RiskVeryLow
	case composite >= 65:
		return domain.RiskLow
	case composite >= 50:
		return domain.RiskMedium
	case composite >= 35:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}

// confidence maps the dispersion of the three most reactive inputs to a
// confidence percentage: the more the technical, liquidity and inverted
// suspicion scores disagree, the less certain the classification.
func confidence(factors domain.FactorSet, suspicious domain.SuspiciousPatternReport) float64 {
	samples := []float64{
		factors.Technical.Score,
		factors.Liquidity.Score,
		100 - suspicious.RiskScore,
	}
	var mean float64
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))

	var variance float64
	for _, s := range samples {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(samples))

	conf := 95 - math.Sqrt(variance)*0.5
	if conf < 70 {
		conf = 70
	}
	if conf > 95 {
		conf = 95
	}
	return conf
}
