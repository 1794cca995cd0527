package provider

import (
	"context"

	"github.com/coinsight/coinsight/internal/domain"
)

// MarketDataProvider is the upstream data contract the analyzer consumes.
// CoinDetails and Holders are required inputs; the rest are optional and
// callers degrade gracefully when they fail.
type MarketDataProvider interface {
	CoinDetails(ctx context.Context, symbol string, tf domain.Timeframe) (*domain.CoinDetails, error)
	Holders(ctx context.Context, symbol string) (*domain.HoldersSnapshot, error)
	PeerRanks(ctx context.Context) ([]domain.PeerRank, error)
	MarketSentiment(ctx context.Context) (*float64, error)
	Enrichment(ctx context.Context, symbol string) (*domain.Enrichment, error)
}
