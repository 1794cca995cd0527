// Package analyzer orchestrates one analysis pass: concurrent data
// fetches, factor scoring, rug-pull detection, and verdict synthesis.
package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coinsight/coinsight/internal/composite"
	"github.com/coinsight/coinsight/internal/domain"
	"github.com/coinsight/coinsight/internal/factors"
	"github.com/coinsight/coinsight/internal/provider"
	"github.com/coinsight/coinsight/internal/rugpull"
	"github.com/coinsight/coinsight/internal/telemetry"
)

// timeframes fetched for every analysis, longest last
var analysisTimeframes = []domain.Timeframe{
	domain.Timeframe1m,
	domain.Timeframe1h,
	domain.Timeframe1d,
}

// Engine runs full coin analyses. Instances hold no per-call state and
// are safe for concurrent use across symbols.
type Engine struct {
	provider provider.MarketDataProvider
	detector *rugpull.Detector
	patterns *rugpull.PatternDetector
	baseline composite.Strategy
	enriched composite.Strategy
	now      func() time.Time
	newID    func() string
	log      zerolog.Logger
	metrics  *telemetry.MetricsRegistry
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock injects the time source, used to freeze coin-age math in tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator injects the run-ID source.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithStrategies overrides the built-in weight strategies.
func WithStrategies(baseline, enriched composite.Strategy) Option {
	return func(e *Engine) {
		e.baseline = baseline
		e.enriched = enriched
	}
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics attaches the telemetry registry.
func WithMetrics(m *telemetry.MetricsRegistry) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine builds an analysis engine over the given data provider.
func NewEngine(p provider.MarketDataProvider, opts ...Option) *Engine {
	e := &Engine{
		provider: p,
		detector: rugpull.NewDetector(),
		patterns: rugpull.NewPatternDetector(),
		baseline: composite.BaselineStrategy(),
		enriched: composite.EnrichedStrategy(),
		now:      time.Now,
		newID:    uuid.NewString,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fetchSet is the joined working set of one analysis call. It is local
// to the call and never shared across analyses.
type fetchSet struct {
	details    map[domain.Timeframe]*domain.CoinDetails
	holders    *domain.HoldersSnapshot
	peers      []domain.PeerRank
	sentiment  *float64
	enrichment *domain.Enrichment
}

// Analyze runs one full analysis pass for symbol. Required fetches join
// fail-fast; optional inputs degrade to nil on error.
func (e *Engine) Analyze(ctx context.Context, symbol string) (*domain.AnalysisResult, error) {
	var timer *telemetry.AnalysisTimer
	if e.metrics != nil {
		timer = e.metrics.StartAnalysis(symbol)
	}

	set, err := e.fetchAll(ctx, symbol)
	if err != nil {
		if timer != nil {
			timer.Stop("fetch_error")
		}
		if e.metrics != nil {
			e.metrics.AnalysisErrors.WithLabelValues("fetch").Inc()
		}
		return nil, err
	}

	result := e.score(symbol, set)

	if timer != nil {
		timer.Stop("success")
	}
	if e.metrics != nil {
		e.metrics.RecordVerdict(
			string(result.Recommendation),
			string(result.RiskLevel),
			string(result.RugPull.RiskLevel),
		)
	}
	return result, nil
}

// fetchAll issues every fetch concurrently and joins them. The first
// required-fetch error cancels the remaining ones.
func (e *Engine) fetchAll(ctx context.Context, symbol string) (*fetchSet, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	set := &fetchSet{details: make(map[domain.Timeframe]*domain.CoinDetails, len(analysisTimeframes))}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	for _, tf := range analysisTimeframes {
		wg.Add(1)
		go func(tf domain.Timeframe) {
			defer wg.Done()
			d, err := e.provider.CoinDetails(ctx, symbol, tf)
			if err != nil {
				fail(err)
				return
			}
			mu.Lock()
			set.details[tf] = d
			mu.Unlock()
		}(tf)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		h, err := e.provider.Holders(ctx, symbol)
		if err != nil {
			fail(err)
			return
		}
		mu.Lock()
		set.holders = h
		mu.Unlock()
	}()

	// Optional inputs: errors degrade to nil, never fail the pass.
	wg.Add(1)
	go func() {
		defer wg.Done()
		peers, err := e.provider.PeerRanks(ctx)
		if err != nil {
			e.log.Debug().Err(err).Str("symbol", symbol).Msg("peer ranks unavailable")
			return
		}
		mu.Lock()
		set.peers = peers
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s, err := e.provider.MarketSentiment(ctx)
		if err != nil {
			e.log.Debug().Err(err).Msg("market sentiment unavailable")
			return
		}
		mu.Lock()
		set.sentiment = s
		mu.Unlock()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		enr, err := e.provider.Enrichment(ctx, symbol)
		if err != nil {
			e.log.Debug().Err(err).Str("symbol", symbol).Msg("enrichment unavailable, using baseline")
			return
		}
		mu.Lock()
		set.enrichment = enr
		mu.Unlock()
	}()

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return set, nil
}

// score is the synchronous, pure scoring pipeline over a joined fetch set.
func (e *Engine) score(symbol string, set *fetchSet) *domain.AnalysisResult {
	primary := primarySeries(set.details)
	coin := primary.Coin

	fs := domain.FactorSet{
		Technical: factors.Technical(set.details),
		Fundamental: factors.Fundamental(factors.FundamentalInputs{
			Coin:  coin,
			Peers: set.peers,
			Now:   e.now(),
		}),
		Sentiment: factors.Sentiment(factors.SentimentInputs{
			Coin:            coin,
			MarketSentiment: set.sentiment,
		}),
		Liquidity:     factors.Liquidity(coin),
		Concentration: factors.Concentration(set.holders),
	}

	strategy := e.baseline
	if enr := set.enrichment; enr != nil {
		if enr.Technical != nil {
			fs.Technical = factors.FromTechnicalIntel(enr.Technical)
		}
		if enr.Sentiment != nil {
			fs.Sentiment = factors.FromSentimentIntel(enr.Sentiment)
		}
		if enr.Holders != nil {
			fs.Concentration = factors.FromHolderIntel(enr.Holders)
		}
		if enr.Technical != nil || enr.Sentiment != nil || enr.Holders != nil {
			strategy = e.enriched
		}
	}

	rug := e.detector.Assess(primary, set.holders)
	suspicious := e.patterns.Detect(primary, set.holders)

	verdict := composite.NewRecommender(strategy).Recommend(fs, suspicious, rug)

	result := &domain.AnalysisResult{
		RunID:          e.newID(),
		Snapshot:       coin,
		Recommendation: verdict.Recommendation,
		RiskLevel:      verdict.RiskLevel,
		Confidence:     verdict.Confidence,
		Summary:        composite.Summary(coin, verdict),
		RugPull:        rug,
		Factors:        fs,
		Suspicious:     suspicious,
		Potentials:     potentials(set.details),
		GeneratedAt:    e.now(),
	}
	result.Warnings, result.Opportunities = collectNotes(fs, rug, suspicious)

	e.log.Info().
		Str("symbol", symbol).
		Str("recommendation", string(verdict.Recommendation)).
		Str("risk", string(verdict.RiskLevel)).
		Float64("confidence", verdict.Confidence).
		Str("rug_level", string(rug.RiskLevel)).
		Msg("analysis complete")

	return result
}

// primarySeries picks the series rug-pull detection and snapshot fields
// read from: the longest timeframe with candles.
func primarySeries(details map[domain.Timeframe]*domain.CoinDetails) *domain.CoinDetails {
	for i := len(analysisTimeframes) - 1; i >= 0; i-- {
		if d := details[analysisTimeframes[i]]; d != nil && len(d.Candles) > 0 {
			return d
		}
	}
	// All series empty; fall back to any non-nil entry for the snapshot.
	for _, tf := range analysisTimeframes {
		if d := details[tf]; d != nil {
			return d
		}
	}
	return &domain.CoinDetails{}
}

// potentialLabel maps a technical score to an opportunity label.
func potentialLabel(score float64) string {
	switch {
	case score >= 65:
		return "high"
	case score >= 50:
		return "moderate"
	case score >= 35:
		return "limited"
	default:
		return "poor"
	}
}

func potentials(details map[domain.Timeframe]*domain.CoinDetails) domain.Potentials {
	return domain.Potentials{
		ShortTerm: potentialLabel(factors.TimeframeScore(details[domain.Timeframe1m], domain.Timeframe1m)),
		MidTerm:   potentialLabel(factors.TimeframeScore(details[domain.Timeframe1h], domain.Timeframe1h)),
		LongTerm:  potentialLabel(factors.TimeframeScore(details[domain.Timeframe1d], domain.Timeframe1d)),
	}
}

// collectNotes aggregates factor warnings/risks, high-severity rug
// indicators and detected patterns into the result's warning list, and
// factor signals into the opportunity list.
func collectNotes(fs domain.FactorSet, rug domain.RugPullAssessment, suspicious domain.SuspiciousPatternReport) (warnings, opportunities []string) {
	for _, f := range []domain.FactorScore{fs.Technical, fs.Fundamental, fs.Sentiment, fs.Liquidity, fs.Concentration} {
		warnings = append(warnings, f.Warnings...)
		warnings = append(warnings, f.Risks...)
		opportunities = append(opportunities, f.Signals...)
	}
	for _, ind := range rug.Indicators {
		if ind.Severity == "high" || ind.Severity == "critical" {
			warnings = append(warnings, ind.Description)
		}
	}
	warnings = append(warnings, suspicious.Patterns...)
	return warnings, opportunities
}
