package factors

import (
	"fmt"

	"github.com/coinsight/coinsight/internal/domain"
)

// Concentration scores how widely the supply is distributed: top-1 holder
// share, top-5 cumulative share, and total holder count.
func Concentration(holders *domain.HoldersSnapshot) domain.FactorScore {
	if holders == nil || len(holders.Holders) == 0 {
		return insufficientData("no holder distribution available")
	}

	card := newScorecard()

	top1 := holders.Holders[0].Percentage
	switch {
	case top1 > 80:
		card.add(-40, fmt.Sprintf("top holder controls %.1f%% of supply", top1))
		card.risk(fmt.Sprintf("extreme concentration: top holder owns %.1f%%", top1))
	case top1 > 50:
		card.add(-25, fmt.Sprintf("top holder controls %.1f%% of supply", top1))
		card.risk("majority holder can dump the market")
	case top1 > 20:
		card.add(-10, fmt.Sprintf("top holder controls %.1f%% of supply", top1))
		card.warn("significant single-holder share")
	default:
		card.add(10, "no dominant single holder")
	}

	top5 := holders.TopPercentage(5)
	switch {
	case top5 > 95:
		card.add(-25, fmt.Sprintf("top 5 holders control %.1f%%", top5))
		card.risk("extreme concentration in top 5 holders")
	case top5 > 80:
		card.add(-15, fmt.Sprintf("top 5 holders control %.1f%%", top5))
		card.warn("heavy concentration in top 5 holders")
	case top5 > 50:
		card.add(-5, fmt.Sprintf("top 5 holders control %.1f%%", top5))
	default:
		card.add(5, "top 5 holders hold a minority of supply")
	}

	total := holders.TotalHolders
	switch {
	case total < 10:
		card.add(-20, fmt.Sprintf("only %d holders", total))
		card.risk("very few total holders")
	case total < 50:
		card.add(-10, fmt.Sprintf("only %d holders", total))
		card.warn("small holder base")
	case total > 10_000:
		card.add(15, fmt.Sprintf("%d holders", total))
		card.signal("large distributed holder base")
	case total > 1_000:
		card.add(10, fmt.Sprintf("%d holders", total))
	}

	return card.result()
}
