package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinsight/coinsight/internal/config"
	"github.com/coinsight/coinsight/internal/domain"
	"github.com/coinsight/coinsight/internal/provider"
	"github.com/coinsight/coinsight/internal/store"
	"github.com/coinsight/coinsight/internal/telemetry"
)

type stubAnalyzer struct {
	result *domain.AnalysisResult
	err    error
	symbol string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, symbol string) (*domain.AnalysisResult, error) {
	s.symbol = symbol
	return s.result, s.err
}

type stubWatchlist struct {
	entries   []store.WatchlistEntry
	listErr   error
	removeErr error
}

func (s *stubWatchlist) List(ctx context.Context) ([]store.WatchlistEntry, error) {
	return s.entries, s.listErr
}

func (s *stubWatchlist) Add(ctx context.Context, symbol string) (*store.WatchlistEntry, error) {
	return &store.WatchlistEntry{Symbol: symbol, AddedAt: time.Now()}, nil
}

func (s *stubWatchlist) Remove(ctx context.Context, symbol string) error {
	return s.removeErr
}

func (s *stubWatchlist) Close() error { return nil }

func newTestServer(analyzer Analyzer, watchlist store.WatchlistRepo) *Server {
	return NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, analyzer, watchlist, telemetry.NewMetricsRegistry(), zerolog.Nop())
}

func TestHandleAnalyze(t *testing.T) {
	analyzer := &stubAnalyzer{result: &domain.AnalysisResult{
		RunID:          "run-1",
		Snapshot:       domain.CoinSnapshot{Symbol: "MEME"},
		Recommendation: domain.Hold,
		RiskLevel:      domain.RiskMedium,
		Confidence:     82,
	}}
	srv := newTestServer(analyzer, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/analyze/meme", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MEME", analyzer.symbol)

	var out domain.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, domain.Hold, out.Recommendation)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHandleAnalyze_UnknownSymbol(t *testing.T) {
	analyzer := &stubAnalyzer{err: &provider.ProviderError{
		Provider: "coinsight-api", Type: provider.ErrTypeHTTP,
		StatusCode: http.StatusNotFound, Err: errors.New("no such coin"),
	}}
	srv := newTestServer(analyzer, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/analyze/NOPE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAnalyze_UpstreamFailure(t *testing.T) {
	analyzer := &stubAnalyzer{err: errors.New("fetch exhausted retries")}
	srv := newTestServer(analyzer, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/analyze/MEME", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWatchlistEndpoints(t *testing.T) {
	wl := &stubWatchlist{entries: []store.WatchlistEntry{{Symbol: "DOGE"}}}
	srv := newTestServer(&stubAnalyzer{}, wl)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/watchlist", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []store.WatchlistEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "DOGE", entries[0].Symbol)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/v1/watchlist/MEME", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("DELETE", "/v1/watchlist/MEME", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	wl.removeErr = sql.ErrNoRows
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("DELETE", "/v1/watchlist/GONE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatchlist_NotConfigured(t *testing.T) {
	srv := newTestServer(&stubAnalyzer{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/v1/watchlist", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(&stubAnalyzer{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
