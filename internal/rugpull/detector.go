package rugpull

import (
	"fmt"

	"github.com/coinsight/coinsight/internal/domain"
	"github.com/coinsight/coinsight/internal/indicators"
)

// Check weights for the rug-pull risk accumulation
const (
	weightPumpDumpCycle   = 80.0
	weightStandalonePump  = 40.0
	weightStandaloneDump  = 60.0
	weightHighVolatility  = 30.0
	weightVolumeCollapse  = 70.0
	weightVolumeGone      = 60.0
	weightTop5Extreme     = 70.0
	weightTop5High        = 40.0
	standalonePumpPct     = 100.0
	standaloneDumpPct     = -30.0
	highVolatilityPct     = 50.0
	volumeSpikeRatio      = 5.0
	volumeCollapseTrend   = -0.7
	top5ExtremePct        = 90.0
	top5HighPct           = 70.0
)

// Suggested actions keyed by risk band
var suggestedActions = map[domain.RugRiskLevel]string{
	domain.RugRiskCritical: "Exit immediately: rug-pull indicators at critical levels",
	domain.RugRiskHigh:     "Exit position soon: high rug-pull risk",
	domain.RugRiskMedium:   "Reduce exposure and keep tight stops",
	domain.RugRiskLow:      "No immediate action required, keep monitoring",
}

// Detector computes the rug-pull assessment for one analysis pass.
// It holds no per-call state and is safe for concurrent use.
type Detector struct{}

// NewDetector returns a rug-pull detector
func NewDetector() *Detector {
	return &Detector{}
}

// Assess first checks whether trading has died outright; otherwise it
// accumulates risk from independent pump/dump, volatility, volume and
// concentration checks, capped at 100.
func (d *Detector) Assess(details *domain.CoinDetails, holders *domain.HoldersSnapshot) domain.RugPullAssessment {
	prices := details.Closes()
	volumes := details.VolumeSeries()
	stats := computeStats(prices, volumes)

	if stats.isDead() {
		return domain.RugPullAssessment{
			OverallRisk: 100,
			RiskLevel:   domain.RugRiskCritical,
			Description: "trading has effectively died after a collapse",
			Indicators: []domain.RugIndicator{{
				Name:        "Rug Pull",
				Severity:    "critical",
				Description: fmt.Sprintf("price %.1f%% below all-time high with no remaining volume", stats.dropFromATH),
				Value:       stats.dropFromATH,
			}},
			SuggestedAction: suggestedActions[domain.RugRiskCritical],
		}
	}

	var risk float64
	var found []domain.RugIndicator
	record := func(weight float64, name, severity, desc string, value float64) {
		risk += weight
		found = append(found, domain.RugIndicator{
			Name: name, Severity: severity, Description: desc, Value: value,
		})
	}

	pd := scanPumpDump(stats.changes)
	if pd.cycleFired {
		record(weightPumpDumpCycle, "Pump and Dump Cycle", "critical",
			fmt.Sprintf("pump of %.0f%% answered by dump of %.0f%%", pd.maxCumPump, pd.minCumDump),
			pd.maxCumPump)
	} else if pd.maxCumPump > standalonePumpPct {
		record(weightStandalonePump, "Unsustained Pump", "medium",
			fmt.Sprintf("cumulative pump of %.0f%% without distribution yet", pd.maxCumPump),
			pd.maxCumPump)
	} else if pd.minCumDump < standaloneDumpPct {
		record(weightStandaloneDump, "Major Dump", "high",
			fmt.Sprintf("cumulative dump of %.0f%%", pd.minCumDump),
			pd.minCumDump)
	}

	if vol := indicators.Volatility(prices); vol > highVolatilityPct {
		record(weightHighVolatility, "Extreme Volatility", "medium",
			fmt.Sprintf("per-bar volatility at %.1f%%", vol), vol)
	}

	if stats.fullAvgVol > 0 && stats.maxVol > stats.fullAvgVol*volumeSpikeRatio &&
		stats.volumeTrend < volumeCollapseTrend {
		record(weightVolumeCollapse, "Volume Spike and Collapse", "high",
			fmt.Sprintf("volume spiked to %.0fx average then fell %.0f%%",
				stats.maxVol/stats.fullAvgVol, -stats.volumeTrend*100),
			stats.volumeTrend*100)
	} else if stats.recentAvgVol == 0 && len(volumes) > 0 {
		record(weightVolumeGone, "Volume Disappeared", "high",
			"no trading volume in recent bars", 0)
	}

	if holders != nil && len(holders.Holders) > 0 {
		top5 := holders.TopPercentage(5)
		if top5 > top5ExtremePct {
			record(weightTop5Extreme, "Extreme Holder Concentration", "critical",
				fmt.Sprintf("top 5 holders control %.1f%% of supply", top5), top5)
		} else if top5 > top5HighPct {
			record(weightTop5High, "High Holder Concentration", "high",
				fmt.Sprintf("top 5 holders control %.1f%% of supply", top5), top5)
		}
	}

	risk = domain.Clamp(risk)
	level := riskBand(risk)

	assessment := domain.RugPullAssessment{
		OverallRisk:     risk,
		RiskLevel:       level,
		Description:     bandDescription(level, len(found)),
		Indicators:      found,
		SuggestedAction: suggestedActions[level],
	}

	// When risk is high and the series ends inside an active dump, project
	// how long the current per-bar decline needs to reach a 95% collapse.
	if risk >= 70 && pd.inDump && stats.lastChangePct < dumpContinuePct {
		remaining := 95.0 - stats.dropFromATH
		if remaining > 0 {
			minutes := remaining / -stats.lastChangePct
			assessment.EstimatedMinutes = &minutes
		}
	}

	return assessment
}

func riskBand(risk float64) domain.RugRiskLevel {
	switch {
	case risk >= 70:
		return domain.RugRiskCritical
	case risk >= 50:
		return domain.RugRiskHigh
	case risk >= 30:
		return domain.RugRiskMedium
	default:
		return domain.RugRiskLow
	}
}

func bandDescription(level domain.RugRiskLevel, indicatorCount int) string {
	switch level {
	case domain.RugRiskCritical:
		return fmt.Sprintf("critical rug-pull risk across %d indicator(s)", indicatorCount)
	case domain.RugRiskHigh:
		return fmt.Sprintf("high rug-pull risk across %d indicator(s)", indicatorCount)
	case domain.RugRiskMedium:
		return fmt.Sprintf("moderate rug-pull risk across %d indicator(s)", indicatorCount)
	default:
		return "no significant rug-pull indicators"
	}
}
