package composite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinsight/coinsight/internal/domain"
)

func factorSet(tech, fund, sent, liq, conc float64) domain.FactorSet {
	return domain.FactorSet{
		Technical:     domain.FactorScore{Score: tech},
		Fundamental:   domain.FactorScore{Score: fund},
		Sentiment:     domain.FactorScore{Score: sent},
		Liquidity:     domain.FactorScore{Score: liq},
		Concentration: domain.FactorScore{Score: conc},
	}
}

func TestStrategies_Validate(t *testing.T) {
	require.NoError(t, BaselineStrategy().Validate())
	require.NoError(t, EnrichedStrategy().Validate())

	bad := BaselineStrategy()
	bad.Risk.Technical = 0.5
	assert.Error(t, bad.Validate())

	unnamed := BaselineStrategy()
	unnamed.Name = ""
	assert.Error(t, unnamed.Validate())
}

func TestAggregator_SuspicionShortCircuits(t *testing.T) {
	agg := NewAggregator(BaselineStrategy())
	factors := factorSet(90, 90, 90, 90, 90)

	verdict := agg.Aggregate(factors, domain.SuspiciousPatternReport{RiskScore: 95})
	assert.Equal(t, domain.RiskVeryHigh, verdict.Level)
	assert.Equal(t, 95.0, verdict.Confidence)

	verdict = agg.Aggregate(factors, domain.SuspiciousPatternReport{RiskScore: 75})
	assert.Equal(t, domain.RiskHigh, verdict.Level)
	assert.Equal(t, 85.0, verdict.Confidence)
}

func TestAggregator_Bands(t *testing.T) {
	agg := NewAggregator(BaselineStrategy())

	// Uniform factor scores make the blend transparent
	verdict := agg.Aggregate(factorSet(90, 90, 90, 90, 90), domain.SuspiciousPatternReport{RiskScore: 0})
	assert.Equal(t, domain.RiskVeryLow, verdict.Level)
	assert.InDelta(t, 93.5, verdict.Composite, 0.01)

	verdict = agg.Aggregate(factorSet(50, 50, 50, 50, 50), domain.SuspiciousPatternReport{RiskScore: 0})
	assert.Equal(t, domain.RiskLow, verdict.Level)
	assert.InDelta(t, 67.5, verdict.Composite, 0.01)

	verdict = agg.Aggregate(factorSet(20, 20, 20, 20, 20), domain.SuspiciousPatternReport{RiskScore: 50})
	assert.InDelta(t, 30.5, verdict.Composite, 0.01)
	assert.Equal(t, domain.RiskVeryHigh, verdict.Level)
}

func TestAggregator_ConfidenceBounds(t *testing.T) {
	agg := NewAggregator(BaselineStrategy())

	// Perfect agreement: max confidence
	verdict := agg.Aggregate(factorSet(60, 60, 60, 60, 60), domain.SuspiciousPatternReport{RiskScore: 40})
	assert.Equal(t, 95.0, verdict.Confidence)

	// Extreme disagreement: floor at 70
	verdict = agg.Aggregate(factorSet(100, 50, 50, 0, 50), domain.SuspiciousPatternReport{RiskScore: 0})
	assert.GreaterOrEqual(t, verdict.Confidence, 70.0)
	assert.LessOrEqual(t, verdict.Confidence, 95.0)
}

func TestRecommender_Bands(t *testing.T) {
	rec := NewRecommender(BaselineStrategy())
	noRug := domain.RugPullAssessment{RiskLevel: domain.RugRiskLow}

	verdict := rec.Recommend(factorSet(90, 90, 90, 90, 90), domain.SuspiciousPatternReport{}, noRug)
	assert.Equal(t, domain.StrongBuy, verdict.Recommendation) // 0.70*90 + 0.30*100 = 93

	verdict = rec.Recommend(factorSet(50, 50, 50, 50, 50), domain.SuspiciousPatternReport{RiskScore: 30}, noRug)
	// 0.70*50 + 0.30*70 = 56 -> hold
	assert.Equal(t, domain.Hold, verdict.Recommendation)

	verdict = rec.Recommend(factorSet(15, 15, 15, 15, 15), domain.SuspiciousPatternReport{RiskScore: 60}, noRug)
	// 0.70*15 + 0.30*40 = 22.5 -> strong sell
	assert.Equal(t, domain.StrongSell, verdict.Recommendation)
}

func TestRecommender_SuspicionShortCircuits(t *testing.T) {
	rec := NewRecommender(BaselineStrategy())
	noRug := domain.RugPullAssessment{RiskLevel: domain.RugRiskLow}
	bullish := factorSet(95, 95, 95, 95, 95)

	verdict := rec.Recommend(bullish, domain.SuspiciousPatternReport{RiskScore: 92}, noRug)
	assert.Equal(t, domain.StrongSell, verdict.Recommendation)

	verdict = rec.Recommend(bullish, domain.SuspiciousPatternReport{RiskScore: 72}, noRug)
	assert.Equal(t, domain.Sell, verdict.Recommendation)
}

func TestRecommender_CriticalRugOverridesBuy(t *testing.T) {
	rec := NewRecommender(BaselineStrategy())
	bullish := factorSet(85, 85, 85, 85, 85) // composite blend lands in buy territory

	baseline := rec.Recommend(bullish, domain.SuspiciousPatternReport{}, domain.RugPullAssessment{RiskLevel: domain.RugRiskLow})
	require.Contains(t, []domain.Recommendation{domain.Buy, domain.StrongBuy}, baseline.Recommendation)

	overridden := rec.Recommend(bullish, domain.SuspiciousPatternReport{}, domain.RugPullAssessment{RiskLevel: domain.RugRiskCritical})
	assert.Equal(t, domain.StrongSell, overridden.Recommendation)
	assert.LessOrEqual(t, overridden.Confidence, 90.0)
	assert.NotEmpty(t, overridden.OverrideWarning)
}

func TestRecommender_HighRugDowngrades(t *testing.T) {
	rec := NewRecommender(BaselineStrategy())
	bullish := factorSet(85, 85, 85, 85, 85)

	verdict := rec.Recommend(bullish, domain.SuspiciousPatternReport{}, domain.RugPullAssessment{RiskLevel: domain.RugRiskHigh})
	assert.Equal(t, domain.Sell, verdict.Recommendation)
	assert.LessOrEqual(t, verdict.Confidence, 80.0)
	assert.NotEmpty(t, verdict.OverrideWarning)
}

func TestSummary_FixedOrder(t *testing.T) {
	coin := domain.CoinSnapshot{
		Name: "Moon Token", Symbol: "MOON",
		CurrentPrice: 0.0042, MarketCap: 1_200_000, Volume24h: 98_000,
	}
	verdict := Verdict{
		Recommendation: domain.Hold,
		RiskLevel:      domain.RiskMedium,
		Confidence:     82,
	}

	summary := Summary(coin, verdict)
	lines := strings.Split(summary, "\n")
	require.GreaterOrEqual(t, len(lines), 7)
	assert.Equal(t, "Moon Token (MOON)", lines[0])
	assert.Contains(t, lines[1], "medium")
	assert.Contains(t, lines[2], "82%")
	assert.Contains(t, summary, riskDescriptions[domain.RiskMedium])
	assert.Contains(t, summary, recommendationDescriptions[domain.Hold])
}

func TestSummary_OverrideBanner(t *testing.T) {
	verdict := Verdict{
		Recommendation:  domain.StrongSell,
		RiskLevel:       domain.RiskVeryHigh,
		Confidence:      90,
		OverrideWarning: criticalOverrideBanner,
	}
	summary := Summary(domain.CoinSnapshot{Name: "X", Symbol: "X"}, verdict)
	assert.True(t, strings.HasPrefix(summary, "WARNING:"))
}
