package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	cb "github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/coinsight/coinsight/internal/config"
	"github.com/coinsight/coinsight/internal/domain"
)

const providerName = "coinsight-api"

// Client is the HTTP implementation of MarketDataProvider. Every call is
// rate limited, circuit protected, and retried per the configured policy.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	retry      config.RetryConfig
	limiter    *rate.Limiter
	breaker    *cb.CircuitBreaker
	log        zerolog.Logger
	observer   RetryObserver
}

// NewClient builds a provider client from configuration. Zero-valued
// fields fall back to sensible defaults.
func NewClient(cfg config.ProviderConfig, log zerolog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RateLimitRPS
	if rps == 0 {
		rps = 5.0
	}

	breaker := cb.NewCircuitBreaker(cb.Settings{
		Name:     providerName,
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts cb.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}
			if counts.Requests >= 20 {
				failureRate := float64(counts.TotalFailures) / float64(counts.Requests)
				return failureRate > 0.05
			}
			return false
		},
		OnStateChange: func(name string, from, to cb.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		baseURL: cfg.BaseURL,
		token:   cfg.APIToken,
		retry:   cfg.Retry,
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		breaker: breaker,
		log:     log.With().Str("component", "provider").Logger(),
	}
}

// SetRetryObserver installs a per-attempt hook, used for retry metrics.
func (c *Client) SetRetryObserver(obs RetryObserver) {
	c.observer = obs
}

// CoinDetails fetches the coin snapshot plus candle and volume series for
// one timeframe.
func (c *Client) CoinDetails(ctx context.Context, symbol string, tf domain.Timeframe) (*domain.CoinDetails, error) {
	path := fmt.Sprintf("/v1/coins/%s?timeframe=%s", url.PathEscape(symbol), url.QueryEscape(string(tf)))
	return fetchJSON[*domain.CoinDetails](ctx, c, "coin_details", path)
}

// Holders fetches the coin's holder distribution.
func (c *Client) Holders(ctx context.Context, symbol string) (*domain.HoldersSnapshot, error) {
	path := fmt.Sprintf("/v1/coins/%s/holders", url.PathEscape(symbol))
	return fetchJSON[*domain.HoldersSnapshot](ctx, c, "holders", path)
}

// PeerRanks fetches the market-cap ranking of the tracked coin universe.
func (c *Client) PeerRanks(ctx context.Context) ([]domain.PeerRank, error) {
	return fetchJSON[[]domain.PeerRank](ctx, c, "peer_ranks", "/v1/coins/ranks")
}

// MarketSentiment fetches the market-wide sentiment gauge in [0,1].
func (c *Client) MarketSentiment(ctx context.Context) (*float64, error) {
	out, err := fetchJSON[sentimentResponse](ctx, c, "market_sentiment", "/v1/market/sentiment")
	if err != nil {
		return nil, err
	}
	return &out.Value, nil
}

// Enrichment fetches the optional pre-computed intelligence payload.
func (c *Client) Enrichment(ctx context.Context, symbol string) (*domain.Enrichment, error) {
	path := fmt.Sprintf("/v1/coins/%s/intel", url.PathEscape(symbol))
	return fetchJSON[*domain.Enrichment](ctx, c, "enrichment", path)
}

type sentimentResponse struct {
	Value float64 `json:"value"`
}

// fetchJSON is the shared request path. The breaker guards one logical
// fetch and the retry burst runs inside it, so every retry reaches the
// wire and an exhausted fetch counts as a single breaker failure carrying
// the last upstream error. An open breaker fails fast before any attempt.
func fetchJSON[T any](ctx context.Context, c *Client, op, path string) (T, error) {
	var zero T
	out, err := c.breaker.Execute(func() (any, error) {
		return Fetch(ctx, c.log, c.retry, op, c.observer, func(ctx context.Context) (T, error) {
			var zero T
			if err := c.limiter.Wait(ctx); err != nil {
				return zero, &ProviderError{Provider: providerName, Type: ErrTypeRateLimit, Err: err}
			}
			return doGet[T](ctx, c, path)
		})
	})
	if err != nil {
		if err == cb.ErrOpenState || err == cb.ErrTooManyRequests {
			return zero, &ProviderError{Provider: providerName, Type: ErrTypeCircuit, Err: err}
		}
		return zero, err
	}
	return out.(T), nil
}

func doGet[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return zero, &ProviderError{Provider: providerName, Type: ErrTypeTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, &ProviderError{Provider: providerName, Type: ErrTypeTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return zero, &ProviderError{
			Provider:   providerName,
			Type:       ErrTypeHTTP,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, &ProviderError{Provider: providerName, Type: ErrTypeTransport, Err: err}
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, &ProviderError{Provider: providerName, Type: ErrTypeDecode, Err: err}
	}
	return out, nil
}
