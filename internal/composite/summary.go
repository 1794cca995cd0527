package composite

import (
	"fmt"
	"strings"

	"github.com/coinsight/coinsight/internal/domain"
)

var riskDescriptions = map[domain.RiskRating]string{
	domain.RiskVeryLow:  "Risk is very low: fundamentals, liquidity and trading activity all look healthy.",
	domain.RiskLow:      "Risk is low: no significant red flags, though new positions still warrant stops.",
	domain.RiskMedium:   "Risk is moderate: mixed signals suggest position sizing with care.",
	domain.RiskHigh:     "Risk is high: several warning signs are present, exposure should be limited.",
	domain.RiskVeryHigh: "Risk is very high: strong indications of manipulation or collapse.",
}

var recommendationDescriptions = map[domain.Recommendation]string{
	domain.StrongBuy:  "Indicators align strongly to the upside across timeframes.",
	domain.Buy:        "Indicators lean positive; accumulation looks reasonable.",
	domain.Hold:       "Signals are mixed; waiting for confirmation is prudent.",
	domain.Sell:       "Indicators lean negative; reducing exposure is advised.",
	domain.StrongSell: "Indicators point firmly down; exiting the position is advised.",
}

// Summary renders the fixed-order human-readable report block. An override
// warning, when present, is prefixed as a banner line.
func Summary(coin domain.CoinSnapshot, verdict Verdict) string {
	var b strings.Builder

	if verdict.OverrideWarning != "" {
		fmt.Fprintf(&b, "%s\n\n", verdict.OverrideWarning)
	}

	fmt.Fprintf(&b, "%s (%s)\n", coin.Name, coin.Symbol)
	fmt.Fprintf(&b, "Risk level: %s\n", verdict.RiskLevel)
	fmt.Fprintf(&b, "Confidence: %.0f%%\n", verdict.Confidence)
	fmt.Fprintf(&b, "Price: %.8g\n", coin.CurrentPrice)
	fmt.Fprintf(&b, "Market cap: %.8g\n", coin.MarketCap)
	fmt.Fprintf(&b, "24h volume: %.8g\n", coin.Volume24h)
	fmt.Fprintf(&b, "%s\n", riskDescriptions[verdict.RiskLevel])
	fmt.Fprintf(&b, "Recommendation: %s. %s", verdict.Recommendation, recommendationDescriptions[verdict.Recommendation])

	return b.String()
}
