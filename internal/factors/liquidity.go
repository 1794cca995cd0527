package factors

import (
	"fmt"

	"github.com/coinsight/coinsight/internal/domain"
)

// Liquidity scores pool depth in base currency, the fraction of supply
// pooled, and trading volume relative to pool depth. A coin with no pool
// data at all returns the fixed insufficient-data score.
func Liquidity(coin domain.CoinSnapshot) domain.FactorScore {
	poolValue := coin.PoolBaseAmount
	if poolValue <= 0 && coin.PoolCoinAmount <= 0 {
		return insufficientData("no pool liquidity figures available")
	}

	card := newScorecard()

	switch {
	case poolValue < 1_000:
		card.add(-30, fmt.Sprintf("very low pool depth (%.0f)", poolValue))
		card.risk("very low liquidity: pool nearly empty")
	case poolValue < 10_000:
		card.add(-20, fmt.Sprintf("low pool depth (%.0f)", poolValue))
		card.warn("low liquidity")
	case poolValue < 50_000:
		card.add(-5, fmt.Sprintf("moderate pool depth (%.0f)", poolValue))
	case poolValue < 250_000:
		card.add(10, fmt.Sprintf("solid pool depth (%.0f)", poolValue))
	default:
		card.add(15, fmt.Sprintf("good pool depth (%.0f)", poolValue))
		card.signal("deep liquidity pool")
	}

	if coin.CirculatingSupply > 0 && coin.PoolCoinAmount > 0 {
		pooled := coin.PoolCoinAmount / coin.CirculatingSupply
		if pooled < 0.01 {
			card.add(-10, fmt.Sprintf("only %.2f%% of supply pooled", pooled*100))
			card.warn("pool backs a tiny share of supply")
		} else if pooled > 0.5 {
			card.add(-10, fmt.Sprintf("%.0f%% of supply sits in the pool", pooled*100))
			card.warn("most of supply pooled")
		}
	}

	if poolValue > 0 {
		ratio := coin.Volume24h / poolValue
		if ratio > 50 {
			card.add(-10, fmt.Sprintf("24h volume is %.0fx pool depth", ratio))
			card.warn("volume far exceeds pool depth, exits will slip")
		} else if ratio < 0.01 {
			card.add(-10, fmt.Sprintf("24h volume is %.4fx pool depth", ratio))
			card.warn("trading nearly dead relative to pool")
		}
	}

	return card.result()
}
