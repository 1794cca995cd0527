package domain

import "time"

// Recommendation is the 5-class trading recommendation
type Recommendation string

const (
	StrongBuy  Recommendation = "strong_buy"
	Buy        Recommendation = "buy"
	Hold       Recommendation = "hold"
	Sell       Recommendation = "sell"
	StrongSell Recommendation = "strong_sell"
)

// RiskRating is the 5-level composite risk classification
type RiskRating string

const (
	RiskVeryLow  RiskRating = "very_low"
	RiskLow      RiskRating = "low"
	RiskMedium   RiskRating = "medium"
	RiskHigh     RiskRating = "high"
	RiskVeryHigh RiskRating = "very_high"
)

// RugRiskLevel bands the continuous rug-pull risk score
type RugRiskLevel string

const (
	RugRiskLow      RugRiskLevel = "low"
	RugRiskMedium   RugRiskLevel = "medium"
	RugRiskHigh     RugRiskLevel = "high"
	RugRiskCritical RugRiskLevel = "critical"
)

// FactorScore is the output of one factor scorer. Scores are clamped to
// [0,100]; a FactorScore is never mutated after creation.
type FactorScore struct {
	Score     float64  `json:"score"`
	Reasoning string   `json:"reasoning"`
	Signals   []string `json:"signals,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
	Risks     []string `json:"risks,omitempty"`
}

// FactorSet groups the five independent factor scores
type FactorSet struct {
	Technical     FactorScore `json:"technical"`
	Fundamental   FactorScore `json:"fundamental"`
	Sentiment     FactorScore `json:"sentiment"`
	Liquidity     FactorScore `json:"liquidity"`
	Concentration FactorScore `json:"concentration"`
}

// RugIndicator is one categorized finding of the rug-pull detector
type RugIndicator struct {
	Name        string  `json:"name"`
	Severity    string  `json:"severity"` // "low", "medium", "high", "critical"
	Description string  `json:"description"`
	Value       float64 `json:"value"`
}

// RugPullAssessment is the rug-pull detector's full output
type RugPullAssessment struct {
	OverallRisk     float64        `json:"overall_risk"` // 0-100
	RiskLevel       RugRiskLevel   `json:"risk_level"`
	Description     string         `json:"description"`
	Indicators      []RugIndicator `json:"indicators"`
	SuggestedAction string         `json:"suggested_action"`
	// EstimatedMinutes is set only when an active dump suggests a time horizon
	EstimatedMinutes *float64 `json:"estimated_minutes_to_rug_pull,omitempty"`
}

// SuspiciousPatternReport lists detected manipulation patterns with a 0-100 score
type SuspiciousPatternReport struct {
	Patterns  []string `json:"patterns"`
	RiskScore float64  `json:"risk_score"`
}

// Potentials describes trading-opportunity potential per horizon
type Potentials struct {
	ShortTerm string `json:"short_term"`
	MidTerm   string `json:"mid_term"`
	LongTerm  string `json:"long_term"`
}

// AnalysisResult is the full aggregate emitted by one analysis pass.
// It is a pure function of its inputs and the injected clock.
type AnalysisResult struct {
	RunID          string                  `json:"run_id"`
	Snapshot       CoinSnapshot            `json:"snapshot"`
	Recommendation Recommendation          `json:"recommendation"`
	RiskLevel      RiskRating              `json:"risk_level"`
	Confidence     float64                 `json:"confidence"` // percent
	Summary        string                  `json:"summary"`
	RugPull        RugPullAssessment       `json:"rug_pull"`
	Factors        FactorSet               `json:"factors"`
	Suspicious     SuspiciousPatternReport `json:"suspicious_patterns"`
	Potentials     Potentials              `json:"potentials"`
	Warnings       []string                `json:"warnings,omitempty"`
	Opportunities  []string                `json:"opportunities,omitempty"`
	GeneratedAt    time.Time               `json:"generated_at"`
}

// Clamp bounds a score to [0,100]
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
