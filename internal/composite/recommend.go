package composite

import (
	"github.com/coinsight/coinsight/internal/domain"
)

// Warning banners prefixed to the summary when a rug-pull override fires
const (
	criticalOverrideBanner = "WARNING: critical rug-pull risk detected, recommendation overridden"
	highOverrideBanner     = "WARNING: high rug-pull risk detected, recommendation downgraded"
)

// Verdict is the final synthesized recommendation
type Verdict struct {
	Recommendation  domain.Recommendation `json:"recommendation"`
	RiskLevel       domain.RiskRating     `json:"risk_level"`
	Confidence      float64               `json:"confidence"`
	Composite       float64               `json:"composite"`
	OverrideWarning string                `json:"override_warning,omitempty"`
}

// Recommender maps the blended scores to a 5-class recommendation and
// applies rug-pull overrides last.
type Recommender struct {
	strategy   Strategy
	aggregator *Aggregator
}

// NewRecommender builds a recommender for the given weight strategy
func NewRecommender(strategy Strategy) *Recommender {
	return &Recommender{strategy: strategy, aggregator: NewAggregator(strategy)}
}

// Recommend synthesizes the final verdict: suspicion short-circuits, then
// the weighted blend, then rug-pull overrides.
func (r *Recommender) Recommend(factors domain.FactorSet, suspicious domain.SuspiciousPatternReport, rug domain.RugPullAssessment) Verdict {
	risk := r.aggregator.Aggregate(factors, suspicious)

	var rec domain.Recommendation
	var composite float64

	switch {
	case suspicious.RiskScore >= suspicionCriticalScore:
		rec = domain.StrongSell
	case suspicious.RiskScore >= suspicionHighScore:
		rec = domain.Sell
	default:
		w := r.strategy.Recommendation
		composite = factors.Technical.Score*w.Technical +
			factors.Sentiment.Score*w.Sentiment +
			factors.Liquidity.Score*w.Liquidity +
			factors.Fundamental.Score*w.Fundamental +
			factors.Concentration.Score*w.Concentration +
			(100-suspicious.RiskScore)*w.SuspiciousInverted
		rec = recommendationBand(composite)
	}

	verdict := Verdict{
		Recommendation: rec,
		RiskLevel:      risk.Level,
		Confidence:     risk.Confidence,
		Composite:      domain.Clamp(composite),
	}

	// Rug-pull overrides run last and win over everything above
	switch rug.RiskLevel {
	case domain.RugRiskCritical:
		verdict.Recommendation = domain.StrongSell
		if verdict.Confidence > 90 {
			verdict.Confidence = 90
		}
		verdict.OverrideWarning = criticalOverrideBanner
	case domain.RugRiskHigh:
		if verdict.Recommendation != domain.StrongSell {
			verdict.Recommendation = domain.Sell
		}
		if verdict.Confidence > 80 {
			verdict.Confidence = 80
		}
		verdict.OverrideWarning = highOverrideBanner
	}

	return verdict
}

func recommendationBand(composite float64) domain.Recommendation {
	switch {
	case composite >= 75:
		return domain.StrongBuy
	case composite >= 60:
		return domain.Buy
	case composite >= 45:
		return domain.Hold
	case composite >= 30:
		return domain.Sell
	default:
		return domain.StrongSell
	}
}
