package factors

import (
	"fmt"

	"github.com/coinsight/coinsight/internal/domain"
)

// The enriched intelligence payload, when present, supersedes the baseline
// computation for the corresponding factor. These adapters convert intel
// sections to FactorScores; the analyzer falls back to the baseline scorer
// whenever a section is absent.

// FromTechnicalIntel adapts externally computed technical levels
func FromTechnicalIntel(intel *domain.TechnicalIntel) domain.FactorScore {
	signals := append([]string(nil), intel.Signals...)
	if intel.EntryPrice > 0 {
		signals = append(signals, fmt.Sprintf("suggested entry %.6g, exit %.6g, stop %.6g",
			intel.EntryPrice, intel.ExitPrice, intel.StopLoss))
	}
	return domain.FactorScore{
		Score:     domain.Clamp(intel.Score),
		Reasoning: "externally computed technical levels",
		Signals:   signals,
	}
}

// FromSentimentIntel adapts market-psychology sentiment metrics
func FromSentimentIntel(intel *domain.SentimentIntel) domain.FactorScore {
	reasoning := "externally computed market psychology"
	if intel.Psychology != "" {
		reasoning = fmt.Sprintf("market psychology: %s", intel.Psychology)
	}
	return domain.FactorScore{
		Score:     domain.Clamp(intel.Score),
		Reasoning: reasoning,
		Signals:   append([]string(nil), intel.Signals...),
	}
}

// FromHolderIntel adapts holder-behavior risk scoring. The intel reports
// risk (higher is worse), so the concentration score is its inverse.
func FromHolderIntel(intel *domain.HolderIntel) domain.FactorScore {
	return domain.FactorScore{
		Score:     domain.Clamp(100 - intel.RiskScore),
		Reasoning: "externally computed holder behavior risk",
		Signals:   append([]string(nil), intel.Signals...),
	}
}
