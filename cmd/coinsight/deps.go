package main

import (
	"github.com/rs/zerolog/log"

	"github.com/coinsight/coinsight/internal/analyzer"
	"github.com/coinsight/coinsight/internal/cache"
	"github.com/coinsight/coinsight/internal/composite"
	"github.com/coinsight/coinsight/internal/config"
	"github.com/coinsight/coinsight/internal/provider"
	"github.com/coinsight/coinsight/internal/telemetry"
)

// buildEngine assembles the provider stack (HTTP client, optional Redis
// cache) and the analysis engine from configuration.
func buildEngine(cfg *config.Config, metrics *telemetry.MetricsRegistry) (*analyzer.Engine, func(), error) {
	client := provider.NewClient(cfg.Provider, log.Logger)
	if metrics != nil {
		client.SetRetryObserver(metrics.ObserveFetch)
	}

	var data provider.MarketDataProvider = client
	cleanup := func() {}

	if cfg.Redis.Addr != "" {
		cached, err := cache.New(cfg.Redis, client, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running uncached")
		} else {
			data = cached
			cleanup = func() { cached.Close() }
			if metrics != nil {
				cached.SetHitObserver(metrics.ObserveCache)
			}
		}
	}

	baseline := composite.BaselineStrategy()
	enriched := composite.EnrichedStrategy()
	if cfg.WeightsFile != "" {
		var err error
		baseline, enriched, err = config.LoadStrategies(cfg.WeightsFile)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		log.Info().Str("file", cfg.WeightsFile).Msg("loaded weight strategies")
	}

	opts := []analyzer.Option{
		analyzer.WithLogger(log.Logger),
		analyzer.WithStrategies(baseline, enriched),
	}
	if metrics != nil {
		opts = append(opts, analyzer.WithMetrics(metrics))
	}
	return analyzer.NewEngine(data, opts...), cleanup, nil
}
