package domain

// Enrichment is the optional pre-computed intelligence payload. When a
// section is present it supersedes the baseline computation for the
// corresponding factor; absent sections fall back to baseline silently.
type Enrichment struct {
	Technical *TechnicalIntel `json:"technical,omitempty"`
	Sentiment *SentimentIntel `json:"sentiment,omitempty"`
	Holders   *HolderIntel    `json:"holders,omitempty"`
}

// TechnicalIntel carries externally computed entry/exit levels and a score
type TechnicalIntel struct {
	Score      float64  `json:"score"` // 0-100
	EntryPrice float64  `json:"entry_price"`
	ExitPrice  float64  `json:"exit_price"`
	StopLoss   float64  `json:"stop_loss"`
	Signals    []string `json:"signals,omitempty"`
}

// SentimentIntel carries market-psychology sentiment metrics
type SentimentIntel struct {
	Score      float64  `json:"score"` // 0-100
	Psychology string   `json:"psychology"`
	Signals    []string `json:"signals,omitempty"`
}

// HolderIntel carries holder-behavior risk scoring
type HolderIntel struct {
	RiskScore float64  `json:"risk_score"` // 0-100, higher is riskier
	Signals   []string `json:"signals,omitempty"`
}
