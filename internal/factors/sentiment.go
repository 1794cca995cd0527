package factors

import (
	"fmt"
	"strings"

	"github.com/coinsight/coinsight/internal/domain"
)

// SentimentInputs feeds the sentiment scorer. MarketSentiment is the
// optional prediction-market average for the symbol on a 0..1 scale.
type SentimentInputs struct {
	Coin            domain.CoinSnapshot
	MarketSentiment *float64
}

// Sentiment buckets the 24h change into seven bands and nudges the score
// for external prediction-market sentiment and a non-anonymous creator.
func Sentiment(in SentimentInputs) domain.FactorScore {
	card := newScorecard()
	change := in.Coin.Change24h

	switch {
	case change > 50:
		card.add(25, fmt.Sprintf("explosive 24h gain of %.1f%%", change))
		card.signal("strong bullish momentum")
	case change > 20:
		card.add(15, fmt.Sprintf("strong 24h gain of %.1f%%", change))
		card.signal("bullish momentum")
	case change > 5:
		card.add(8, fmt.Sprintf("modest 24h gain of %.1f%%", change))
	case change >= -5:
		card.add(0, "24h price roughly flat")
	case change >= -20:
		card.add(-8, fmt.Sprintf("modest 24h decline of %.1f%%", change))
	case change >= -50:
		card.add(-15, fmt.Sprintf("heavy 24h decline of %.1f%%", change))
		card.warn("bearish momentum")
	default:
		card.add(-25, fmt.Sprintf("collapse of %.1f%% in 24h", change))
		card.risk("severe bearish momentum")
	}

	if in.MarketSentiment != nil {
		avg := *in.MarketSentiment
		switch {
		case avg >= 0.6:
			card.add(10, fmt.Sprintf("prediction markets lean positive (%.2f)", avg))
		case avg <= 0.4:
			card.add(-10, fmt.Sprintf("prediction markets lean negative (%.2f)", avg))
		default:
			card.reasons = append(card.reasons, "prediction markets neutral")
		}
	}

	creator := strings.TrimSpace(in.Coin.Creator)
	if creator != "" && !strings.EqualFold(creator, "anonymous") {
		card.add(5, "named creator")
	}

	return card.result()
}
