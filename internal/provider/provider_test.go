package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinsight/coinsight/internal/config"
	"github.com/coinsight/coinsight/internal/domain"
)

func testRetryPolicy() config.RetryConfig {
	return config.RetryConfig{
		MaxRetries:     3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
		BackoffFactor:  2.0,
		AttemptTimeout: time.Second,
	}
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(config.ProviderConfig{
		BaseURL:        serverURL,
		APIToken:       "test-token",
		RequestTimeout: time.Second,
		RateLimitRPS:   1000,
		Retry:          testRetryPolicy(),
	}, zerolog.Nop())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Holders(context.Background(), "MEME")
	require.Error(t, err)

	// The surfaced error is the final upstream failure, never a breaker
	// state error, and every attempt reaches the wire even past the
	// breaker's consecutive-failure threshold.
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ErrTypeHTTP, pe.Type)
	assert.Equal(t, http.StatusInternalServerError, pe.StatusCode)

	// MaxRetries=3 means exactly four attempts reach the server
	assert.Equal(t, int64(4), atomic.LoadInt64(&hits))
}

func TestClient_BreakerOpensAfterRepeatedExhaustion(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	// Each exhausted fetch counts as one breaker failure; three in a row
	// trip it, and each still surfaces the upstream HTTP error.
	for i := 0; i < 3; i++ {
		_, err := c.Holders(context.Background(), "MEME")
		var pe *ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, ErrTypeHTTP, pe.Type)
	}
	assert.Equal(t, int64(12), atomic.LoadInt64(&hits))

	// Open breaker fails fast: no retries, no wire traffic
	_, err := c.Holders(context.Background(), "MEME")
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ErrTypeCircuit, pe.Type)
	assert.False(t, Retryable(err))
	assert.Equal(t, int64(12), atomic.LoadInt64(&hits))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.CoinDetails(context.Background(), "NOPE", domain.Timeframe1h)
	require.Error(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
}

func TestClient_RecoversAfterTransientFailures(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt64(&hits, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"holders":[{"address":"abc","quantity":100,"percentage":12.5,"rank":1}],"total_holders":42}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	snap, err := c.Holders(context.Background(), "MEME")
	require.NoError(t, err)
	require.Len(t, snap.Holders, 1)
	assert.Equal(t, 42, snap.TotalHolders)
	assert.Equal(t, 12.5, snap.Holders[0].Percentage)
	assert.Equal(t, int64(3), atomic.LoadInt64(&hits))
}

func TestClient_RetryObserverSeesEveryAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var attempts []int
	c.SetRetryObserver(func(op string, attempt int, err error) {
		assert.Equal(t, "peer_ranks", op)
		attempts = append(attempts, attempt)
	})

	_, err := c.PeerRanks(context.Background())
	require.Error(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, attempts)
}

func TestClient_MarketSentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/market/sentiment", r.URL.Path)
		w.Write([]byte(`{"value":0.72}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	v, err := c.MarketSentiment(context.Background())
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.InDelta(t, 0.72, *v, 1e-9)
}

func TestFetch_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pol := config.RetryConfig{
		MaxRetries:    5,
		InitialDelay:  time.Hour, // cancellation must cut the wait short
		MaxDelay:      time.Hour,
		BackoffFactor: 2.0,
	}

	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := Fetch(ctx, zerolog.Nop(), pol, "op", nil, func(ctx context.Context) (int, error) {
		calls++
		return 0, &ProviderError{Provider: "test", Type: ErrTypeTransport, Err: errors.New("boom")}
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestBackoffDelay_GrowsAndCaps(t *testing.T) {
	pol := config.RetryConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}
	assert.Equal(t, 100*time.Millisecond, backoffDelay(pol, 1))
	assert.Equal(t, 200*time.Millisecond, backoffDelay(pol, 2))
	assert.Equal(t, 400*time.Millisecond, backoffDelay(pol, 3))
	assert.Equal(t, 800*time.Millisecond, backoffDelay(pol, 4))
	assert.Equal(t, time.Second, backoffDelay(pol, 5))
	assert.Equal(t, time.Second, backoffDelay(pol, 10))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(&ProviderError{Type: ErrTypeTransport}))
	assert.False(t, Retryable(&ProviderError{Type: ErrTypeCircuit}))
	assert.True(t, Retryable(&ProviderError{Type: ErrTypeHTTP, StatusCode: 503}))
	assert.False(t, Retryable(&ProviderError{Type: ErrTypeHTTP, StatusCode: 404}))
	assert.False(t, Retryable(&ProviderError{Type: ErrTypeDecode}))
	assert.False(t, Retryable(errors.New("plain")))
}
