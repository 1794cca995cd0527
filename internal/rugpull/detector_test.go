package rugpull

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinsight/coinsight/internal/domain"
)

func detailsFrom(prices, volumes []float64) *domain.CoinDetails {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d := &domain.CoinDetails{}
	for i, p := range prices {
		open := p
		if i > 0 {
			open = prices[i-1]
		}
		vol := 0.0
		if i < len(volumes) {
			vol = volumes[i]
		}
		ts := base.Add(time.Duration(i) * time.Minute)
		d.Candles = append(d.Candles, domain.Candle{
			Time: ts, Open: open, High: maxOf(open, p), Low: minOf(open, p), Close: p, Volume: vol,
		})
		d.Volumes = append(d.Volumes, domain.VolumePoint{Time: ts, Volume: vol})
	}
	return d
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minOf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func hasPattern(patterns []string, substr string) bool {
	for _, p := range patterns {
		if strings.Contains(p, substr) {
			return true
		}
	}
	return false
}

func TestDetector_DeadCoinFixedPoint(t *testing.T) {
	// 30 bars dropping from an ATH of 1.00 to 0.05, last 5 volumes zero
	prices := make([]float64, 30)
	volumes := make([]float64, 30)
	for i := range prices {
		prices[i] = 1.0 - float64(i)*(0.95/29.0)
		volumes[i] = 100
	}
	prices[29] = 0.05
	for i := 25; i < 30; i++ {
		volumes[i] = 0
	}

	assessment := NewDetector().Assess(detailsFrom(prices, volumes), nil)

	assert.Equal(t, domain.RugRiskCritical, assessment.RiskLevel)
	assert.Equal(t, 100.0, assessment.OverallRisk)
	require.Len(t, assessment.Indicators, 1)
	assert.Equal(t, "Rug Pull", assessment.Indicators[0].Name)
}

func TestDetector_DeadCoinFlatlined(t *testing.T) {
	// 75% drop then six flat bars; volume still present
	prices := []float64{1.0, 0.8, 0.5, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25, 0.25}
	volumes := repeat(50, len(prices))

	assessment := NewDetector().Assess(detailsFrom(prices, volumes), nil)
	assert.Equal(t, domain.RugRiskCritical, assessment.RiskLevel)
	assert.Equal(t, 100.0, assessment.OverallRisk)
}

func TestDetector_PumpDumpCycle(t *testing.T) {
	// +20/+15/+20 pump (cum 55) then -15/-10/-10 dump (cum -35)
	prices := []float64{1.0, 1.2, 1.38, 1.656, 1.4076, 1.26684, 1.140156}
	volumes := repeat(1000, len(prices))

	assessment := NewDetector().Assess(detailsFrom(prices, volumes), nil)

	assert.Equal(t, domain.RugRiskCritical, assessment.RiskLevel)
	assert.Equal(t, 80.0, assessment.OverallRisk)
	require.NotEmpty(t, assessment.Indicators)
	assert.Equal(t, "Pump and Dump Cycle", assessment.Indicators[0].Name)
	require.NotNil(t, assessment.EstimatedMinutes, "active dump should carry a time estimate")
	assert.Greater(t, *assessment.EstimatedMinutes, 0.0)
}

func TestDetector_StandaloneDump(t *testing.T) {
	prices := []float64{1.0, 1.0, 1.0, 0.65} // single -35% bar
	volumes := repeat(1000, len(prices))

	assessment := NewDetector().Assess(detailsFrom(prices, volumes), nil)
	assert.Equal(t, 60.0, assessment.OverallRisk)
	assert.Equal(t, domain.RugRiskHigh, assessment.RiskLevel)
	assert.Equal(t, suggestedActions[domain.RugRiskHigh], assessment.SuggestedAction)
}

func TestDetector_VolumeSpikeCollapse(t *testing.T) {
	prices := []float64{1.00, 1.01, 1.00, 1.02, 1.01, 1.00, 1.01, 1.00, 1.02, 1.01, 1.00, 1.01}
	volumes := []float64{100, 100, 100, 100, 100, 5000, 10, 5, 5, 5, 5, 5}

	assessment := NewDetector().Assess(detailsFrom(prices, volumes), nil)
	assert.Equal(t, 70.0, assessment.OverallRisk)
	assert.Equal(t, domain.RugRiskCritical, assessment.RiskLevel)
	require.NotEmpty(t, assessment.Indicators)
	assert.Equal(t, "Volume Spike and Collapse", assessment.Indicators[0].Name)
}

func TestDetector_ConcentrationOnly(t *testing.T) {
	prices := []float64{1.00, 1.01, 1.00, 1.02, 1.01, 1.00}
	volumes := repeat(1000, len(prices))
	holders := &domain.HoldersSnapshot{
		Holders: []domain.HolderRecord{
			{Percentage: 40, Rank: 1}, {Percentage: 20, Rank: 2}, {Percentage: 15, Rank: 3},
			{Percentage: 10, Rank: 4}, {Percentage: 8, Rank: 5},
		},
		TotalHolders: 40,
	}

	assessment := NewDetector().Assess(detailsFrom(prices, volumes), holders)
	// top5 = 93% -> extreme concentration, weight 70
	assert.Equal(t, 70.0, assessment.OverallRisk)
	assert.Equal(t, domain.RugRiskCritical, assessment.RiskLevel)
}

func TestDetector_QuietCoin(t *testing.T) {
	prices := []float64{1.00, 1.01, 1.005, 1.012, 1.008, 1.015, 1.01, 1.02}
	volumes := repeat(1000, len(prices))

	assessment := NewDetector().Assess(detailsFrom(prices, volumes), nil)
	assert.Equal(t, 0.0, assessment.OverallRisk)
	assert.Equal(t, domain.RugRiskLow, assessment.RiskLevel)
	assert.Nil(t, assessment.EstimatedMinutes)
}

func TestPatternDetector_DeadCoinShortCircuit(t *testing.T) {
	prices := make([]float64, 30)
	volumes := make([]float64, 30)
	for i := range prices {
		prices[i] = 1.0 - float64(i)*(0.95/29.0)
	}

	report := NewPatternDetector().Detect(detailsFrom(prices, volumes), nil)
	assert.Equal(t, 100.0, report.RiskScore)
	require.Len(t, report.Patterns, 1)
}

func TestPatternDetector_ExtremePumpWithWhale(t *testing.T) {
	// Six consecutive doublings: +600% cumulative pump
	prices := []float64{1, 2, 4, 8, 16, 32, 64}
	volumes := repeat(1000, len(prices))
	holders := &domain.HoldersSnapshot{
		Holders:      []domain.HolderRecord{{Percentage: 95, Rank: 1}},
		TotalHolders: 12,
	}

	report := NewPatternDetector().Detect(detailsFrom(prices, volumes), holders)
	assert.Equal(t, 100.0, report.RiskScore) // 60 + 80, capped
	assert.True(t, hasPattern(report.Patterns, "extreme pump"))
	assert.True(t, hasPattern(report.Patterns, "top holder"))
}

func TestPatternDetector_RugInProgress(t *testing.T) {
	// +150% pump then a -25% bar with a >90% top holder
	prices := []float64{1.0, 1.5, 2.25, 3.375, 2.53125}
	volumes := repeat(1000, len(prices))
	holders := &domain.HoldersSnapshot{
		Holders:      []domain.HolderRecord{{Percentage: 92, Rank: 1}},
		TotalHolders: 30,
	}

	report := NewPatternDetector().Detect(detailsFrom(prices, volumes), holders)
	assert.True(t, hasPattern(report.Patterns, "rug pull in progress"))
	assert.Equal(t, 100.0, report.RiskScore) // 80 + 90, capped
}

func TestPatternDetector_VolumeFlags(t *testing.T) {
	prices := []float64{1.00, 1.01, 1.00, 1.02, 1.01, 1.02}

	zero := []float64{1000, 1000, 1000, 1000, 1000, 0}
	report := NewPatternDetector().Detect(detailsFrom(prices, zero), nil)
	assert.Equal(t, 70.0, report.RiskScore)
	assert.True(t, hasPattern(report.Patterns, "zero volume"))

	thin := []float64{1000, 1000, 1000, 1000, 1000, 20}
	report = NewPatternDetector().Detect(detailsFrom(prices, thin), nil)
	assert.Equal(t, 40.0, report.RiskScore)
	assert.True(t, hasPattern(report.Patterns, "recent average"))
}

func TestScanPumpDump_PhaseAccounting(t *testing.T) {
	res := scanPumpDump([]float64{20, 15, 20, -15, -10, -10})
	assert.True(t, res.cycleFired)
	assert.InDelta(t, 55.0, res.maxCumPump, 0.01)
	assert.InDelta(t, -35.0, res.minCumDump, 0.01)
	assert.True(t, res.inDump)

	res = scanPumpDump([]float64{2, 3, -1, 4})
	assert.False(t, res.cycleFired)
	assert.Zero(t, res.maxCumPump)
	assert.Zero(t, res.minCumDump)
}
