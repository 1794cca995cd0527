// Package factors implements the five independent factor scorers. Each
// scorer starts at a base of 50, applies its ordered additive rules, and
// clamps the result to [0,100]. Scorers are pure: they never mutate their
// inputs and hold no state between calls.
package factors

import (
	"strings"

	"github.com/coinsight/coinsight/internal/domain"
)

// insufficientDataScore is returned by scorers whose inputs are too sparse
// to evaluate. Below neutral so missing data reads as mild caution.
const insufficientDataScore = 40.0

// scorecard accumulates additive rule results for one factor
type scorecard struct {
	score    float64
	reasons  []string
	signals  []string
	warnings []string
	risks    []string
}

func newScorecard() *scorecard {
	return &scorecard{score: 50}
}

func (s *scorecard) add(delta float64, reason string) {
	s.score += delta
	if reason != "" {
		s.reasons = append(s.reasons, reason)
	}
}

func (s *scorecard) signal(text string) {
	s.signals = append(s.signals, text)
}

func (s *scorecard) warn(text string) {
	s.warnings = append(s.warnings, text)
}

func (s *scorecard) risk(text string) {
	s.risks = append(s.risks, text)
}

func (s *scorecard) result() domain.FactorScore {
	return domain.FactorScore{
		Score:     domain.Clamp(s.score),
		Reasoning: strings.Join(s.reasons, "; "),
		Signals:   s.signals,
		Warnings:  s.warnings,
		Risks:     s.risks,
	}
}

func insufficientData(explanation string) domain.FactorScore {
	return domain.FactorScore{
		Score:     insufficientDataScore,
		Reasoning: "insufficient data",
		Warnings:  []string{explanation},
	}
}
