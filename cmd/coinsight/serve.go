package main

import (
	"context"
	"math"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coinsight/coinsight/internal/analyzer"
	"github.com/coinsight/coinsight/internal/config"
	"github.com/coinsight/coinsight/internal/httpapi"
	"github.com/coinsight/coinsight/internal/provider"
	"github.com/coinsight/coinsight/internal/store"
	"github.com/coinsight/coinsight/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic scan loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			metrics := telemetry.NewMetricsRegistry()

			engine, cleanup, err := buildEngine(cfg, metrics)
			if err != nil {
				return err
			}
			defer cleanup()

			var watchlist store.WatchlistRepo
			if cfg.Postgres.DSN != "" {
				watchlist, err = store.Open(cfg.Postgres.DSN)
				if err != nil {
					log.Warn().Err(err).Msg("watchlist store unavailable, using static symbol list")
				} else {
					defer watchlist.Close()
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := httpapi.NewServer(cfg.Server, engine, watchlist, metrics, log.Logger)
			serverErr := make(chan error, 1)
			go func() { serverErr <- srv.Start() }()

			loop := &scanLoop{
				engine:    engine,
				watchlist: watchlist,
				cfg:       cfg.Scan,
				metrics:   metrics,
			}
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				loop.run(ctx)
			}()

			if cfg.Provider.WebSocketURL != "" {
				stream := provider.NewPriceStream(
					cfg.Provider.WebSocketURL, cfg.Provider.APIToken,
					loop.symbols(ctx), log.Logger)
				wg.Add(2)
				go func() {
					defer wg.Done()
					stream.Run(ctx)
				}()
				go func() {
					defer wg.Done()
					loop.watchStream(ctx, stream.Updates())
				}()
			}

			select {
			case <-ctx.Done():
				log.Info().Msg("shutting down")
			case err := <-serverErr:
				if err != nil {
					stop()
					wg.Wait()
					return err
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("http shutdown failed")
			}
			wg.Wait()
			return nil
		},
	}
}

// scanLoop analyzes every watched symbol each interval and re-analyzes
// immediately when the live stream reports a large move.
type scanLoop struct {
	engine    *analyzer.Engine
	watchlist store.WatchlistRepo
	cfg       config.ScanConfig
	metrics   *telemetry.MetricsRegistry
}

// symbols resolves the scan set: the watchlist store when configured,
// otherwise the static list from config.
func (l *scanLoop) symbols(ctx context.Context) []string {
	if l.watchlist != nil {
		entries, err := l.watchlist.List(ctx)
		if err == nil {
			out := make([]string, len(entries))
			for i, e := range entries {
				out[i] = e.Symbol
			}
			return out
		}
		log.Warn().Err(err).Msg("watchlist read failed, using static symbol list")
	}
	return l.cfg.Symbols
}

func (l *scanLoop) run(ctx context.Context) {
	l.scanAll(ctx)

	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.scanAll(ctx)
		}
	}
}

func (l *scanLoop) scanAll(ctx context.Context) {
	for _, symbol := range l.symbols(ctx) {
		if ctx.Err() != nil {
			return
		}
		l.analyzeOne(ctx, symbol)
	}
}

func (l *scanLoop) analyzeOne(ctx context.Context, symbol string) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.AnalysisTimeout)
	defer cancel()

	result, err := l.engine.Analyze(ctx, symbol)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("scan analysis failed")
		return
	}
	log.Info().Str("symbol", symbol).Msg("\n" + result.Summary)
}

func (l *scanLoop) watchStream(ctx context.Context, updates <-chan provider.PriceUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			l.metrics.StreamUpdates.Inc()
			if math.Abs(upd.ChangePct) < l.cfg.MoveThresholdPct {
				continue
			}
			log.Warn().
				Str("symbol", upd.Symbol).
				Float64("change_pct", upd.ChangePct).
				Msg("large live move, re-analyzing")
			l.metrics.StreamReanalyses.Inc()
			l.analyzeOne(ctx, upd.Symbol)
		}
	}
}
