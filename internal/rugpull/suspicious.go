package rugpull

import (
	"fmt"

	"github.com/coinsight/coinsight/internal/domain"
)

// Pattern weights for the suspicious-activity scan
const (
	weightDeadCoin        = 100.0
	weightExtremePump     = 60.0
	weightLargePump       = 40.0
	weightMajorDump       = 50.0
	weightZeroVolume      = 70.0
	weightThinVolume      = 40.0
	weightTopHolderHuge   = 80.0
	weightTopHolderMajor  = 60.0
	weightRugInProgress   = 90.0
	extremePumpPct        = 500.0
	largePumpPct          = 200.0
	majorDumpPct          = -30.0
	thinVolumeRatio       = 0.10
	topHolderHugePct      = 90.0
	topHolderMajorPct     = 50.0
	rugProgressPumpPct    = 100.0
	rugProgressDumpPct    = -20.0
)

// PatternDetector flags pump/dump, volume collapse and concentration red
// flags independently of the rug-pull detector.
type PatternDetector struct{}

// NewPatternDetector returns a suspicious-pattern detector
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{}
}

// Detect accumulates pattern weights into a 0-100 suspicion score
func (p *PatternDetector) Detect(details *domain.CoinDetails, holders *domain.HoldersSnapshot) domain.SuspiciousPatternReport {
	prices := details.Closes()
	volumes := details.VolumeSeries()
	stats := computeStats(prices, volumes)

	if stats.isDead() {
		return domain.SuspiciousPatternReport{
			Patterns:  []string{"trading has died: price collapsed and volume vanished"},
			RiskScore: weightDeadCoin,
		}
	}

	var score float64
	var patterns []string
	flag := func(weight float64, pattern string) {
		score += weight
		patterns = append(patterns, pattern)
	}

	pd := scanPumpDump(stats.changes)
	if pd.maxCumPump > extremePumpPct {
		flag(weightExtremePump, fmt.Sprintf("extreme pump: +%.0f%% cumulative", pd.maxCumPump))
	} else if pd.maxCumPump > largePumpPct {
		flag(weightLargePump, fmt.Sprintf("large pump: +%.0f%% cumulative", pd.maxCumPump))
	}

	if pd.minCumDump < majorDumpPct {
		flag(weightMajorDump, fmt.Sprintf("major dump: %.0f%% cumulative", pd.minCumDump))
	}

	recentAvg := recentVolumeAverage(volumes)
	if len(volumes) > 0 && stats.latestVol == 0 {
		flag(weightZeroVolume, "latest bar has zero volume")
	} else if recentAvg > 0 && stats.latestVol < recentAvg*thinVolumeRatio {
		flag(weightThinVolume, fmt.Sprintf("latest volume below %.0f%% of recent average", thinVolumeRatio*100))
	}

	extremeHolder := false
	if holders != nil && len(holders.Holders) > 0 {
		top := holders.Holders[0].Percentage
		if top > topHolderHugePct {
			extremeHolder = true
			flag(weightTopHolderHuge, fmt.Sprintf("top holder controls %.1f%% of supply", top))
		} else if top > topHolderMajorPct {
			flag(weightTopHolderMajor, fmt.Sprintf("top holder controls %.1f%% of supply", top))
		}
	}

	if extremeHolder && pd.maxCumPump > rugProgressPumpPct && pd.minCumDump < rugProgressDumpPct {
		flag(weightRugInProgress, "rug pull in progress: concentrated holder, pump peaked, distribution underway")
	}

	return domain.SuspiciousPatternReport{
		Patterns:  patterns,
		RiskScore: domain.Clamp(score),
	}
}

// recentVolumeAverage is the mean of the last 10 volume points
func recentVolumeAverage(volumes []float64) float64 {
	if len(volumes) == 0 {
		return 0
	}
	window := volumes
	if len(volumes) > 10 {
		window = volumes[len(volumes)-10:]
	}
	var sum float64
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}
