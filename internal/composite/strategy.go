// Package composite blends the factor scores and the suspicion score into
// the risk classification and final recommendation.
package composite

import (
	"fmt"
	"math"
)

// WeightTable allocates blend weight across the five factors plus the
// inverted suspicious-pattern score.
type WeightTable struct {
	Technical          float64 `yaml:"technical"`
	Sentiment          float64 `yaml:"sentiment"`
	Liquidity          float64 `yaml:"liquidity"`
	Fundamental        float64 `yaml:"fundamental"`
	Concentration      float64 `yaml:"concentration"`
	SuspiciousInverted float64 `yaml:"suspicious_inverted"`
}

// Sum returns the total allocation of the table
func (w WeightTable) Sum() float64 {
	return w.Technical + w.Sentiment + w.Liquidity + w.Fundamental + w.Concentration + w.SuspiciousInverted
}

const weightSumTolerance = 0.001

// Validate rejects tables that do not allocate exactly 100%
func (w WeightTable) Validate() error {
	if sum := w.Sum(); math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights sum to %.3f, expected 1.000", sum)
	}
	return nil
}

// Strategy is a named pair of weight tables: one for risk classification,
// one for the recommendation blend. The baseline and enriched variants are
// kept as separate named strategies because their outputs are not
// numerically equivalent.
type Strategy struct {
	Name           string      `yaml:"name"`
	Risk           WeightTable `yaml:"risk"`
	Recommendation WeightTable `yaml:"recommendation"`
}

// Validate checks both tables of the strategy
func (s Strategy) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("strategy name is required")
	}
	if err := s.Risk.Validate(); err != nil {
		return fmt.Errorf("strategy %s risk table: %w", s.Name, err)
	}
	if err := s.Recommendation.Validate(); err != nil {
		return fmt.Errorf("strategy %s recommendation table: %w", s.Name, err)
	}
	return nil
}

// BaselineStrategy is used when no enrichment payload is available
func BaselineStrategy() Strategy {
	return Strategy{
		Name: "baseline",
		Risk: WeightTable{
			Technical: 0.25, Sentiment: 0.15, Liquidity: 0.15,
			Fundamental: 0.05, Concentration: 0.05, SuspiciousInverted: 0.35,
		},
		Recommendation: WeightTable{
			Technical: 0.30, Sentiment: 0.15, Liquidity: 0.15,
			Fundamental: 0.05, Concentration: 0.05, SuspiciousInverted: 0.30,
		},
	}
}

// EnrichedStrategy shifts weight toward the externally supplied sentiment
// and holder intelligence when an enrichment payload superseded the
// baseline factors.
func EnrichedStrategy() Strategy {
	return Strategy{
		Name: "enriched",
		Risk: WeightTable{
			Technical: 0.20, Sentiment: 0.20, Liquidity: 0.15,
			Fundamental: 0.05, Concentration: 0.05, SuspiciousInverted: 0.35,
		},
		Recommendation: WeightTable{
			Technical: 0.25, Sentiment: 0.20, Liquidity: 0.15,
			Fundamental: 0.05, Concentration: 0.05, SuspiciousInverted: 0.30,
		},
	}
}
