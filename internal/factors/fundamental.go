package factors

import (
	"fmt"
	"time"

	"github.com/coinsight/coinsight/internal/domain"
)

// FundamentalInputs feeds the fundamental scorer. Now is the injected
// clock reading used for coin age; callers must not pass the zero value.
type FundamentalInputs struct {
	Coin  domain.CoinSnapshot
	Peers []domain.PeerRank
	Now   time.Time
}

// Fundamental scores coin age, peer ranking, trading volume relative to
// market cap, exchange listing and supply distribution.
func Fundamental(in FundamentalInputs) domain.FactorScore {
	card := newScorecard()
	coin := in.Coin

	age := in.Now.Sub(coin.CreatedAt)
	switch {
	case age < 24*time.Hour:
		card.add(-30, "created less than a day ago")
		card.risk("new coin: less than 1 day old")
	case age < 7*24*time.Hour:
		card.add(-20, fmt.Sprintf("only %d day(s) old", int(age.Hours()/24)))
		card.warn("new coin: less than a week old")
	case age < 30*24*time.Hour:
		card.add(-10, "less than a month old")
		card.warn("young coin: less than a month old")
	default:
		card.add(5, "established trading history")
	}

	if rank := domain.RankOf(in.Peers, coin.Symbol); rank > 0 {
		switch {
		case rank <= 10:
			card.add(20, fmt.Sprintf("top-10 market cap among peers (rank %d)", rank))
			card.signal("top-10 peer market cap")
		case rank <= 50:
			card.add(10, fmt.Sprintf("top-50 market cap among peers (rank %d)", rank))
		default:
			card.add(-5, fmt.Sprintf("low peer market cap rank (%d)", rank))
		}
	} else {
		card.warn("no peer ranking available")
	}

	if coin.MarketCap > 0 {
		ratio := coin.Volume24h / coin.MarketCap
		if ratio > 0.1 {
			card.add(10, fmt.Sprintf("healthy volume/market-cap ratio %.3f", ratio))
		} else if ratio < 0.01 {
			card.add(-15, fmt.Sprintf("volume/market-cap ratio %.4f", ratio))
			card.warn("low trading volume relative to market cap")
		}
	} else {
		card.warn("market cap unavailable, volume ratio skipped")
	}

	if coin.Listed {
		card.add(5, "listed on an exchange")
	}

	if coin.InitialSupply > 0 {
		if coin.CirculatingSupply == coin.InitialSupply {
			card.add(5, "full initial supply in circulation")
		} else {
			undistributed := (coin.InitialSupply - coin.CirculatingSupply) / coin.InitialSupply
			if undistributed > 0 {
				card.add(-undistributed*10, fmt.Sprintf("%.0f%% of initial supply undistributed", undistributed*100))
			}
		}
	}

	return card.result()
}
