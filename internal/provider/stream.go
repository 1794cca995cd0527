package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// PriceUpdate is a single live ticker message from the provider stream.
type PriceUpdate struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	ChangePct float64   `json:"change_pct"` // percent move since previous tick
	Time      time.Time `json:"time"`
}

// PriceStream maintains a websocket subscription to the provider's live
// ticker feed and fans updates out on a channel. It reconnects with a
// fixed pause until the context is cancelled.
type PriceStream struct {
	url      string
	token    string
	log      zerolog.Logger
	updates  chan PriceUpdate
	mu       sync.Mutex
	conn     *websocket.Conn
	symbols  []string
	redialIn time.Duration
}

// NewPriceStream builds a stream for the given symbols. Run must be
// called to start delivery.
func NewPriceStream(wsURL, token string, symbols []string, log zerolog.Logger) *PriceStream {
	return &PriceStream{
		url:      wsURL,
		token:    token,
		log:      log.With().Str("component", "price_stream").Logger(),
		updates:  make(chan PriceUpdate, 64),
		symbols:  symbols,
		redialIn: 5 * time.Second,
	}
}

// Updates returns the delivery channel. It is closed when Run returns.
func (s *PriceStream) Updates() <-chan PriceUpdate {
	return s.updates
}

// Run connects, subscribes, and pumps updates until ctx is cancelled.
// Connection failures trigger a redial after a fixed pause.
func (s *PriceStream) Run(ctx context.Context) {
	defer close(s.updates)
	for {
		if err := s.connectAndPump(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn().Err(err).Dur("redial_in", s.redialIn).Msg("stream disconnected, redialing")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.redialIn):
		}
	}
}

func (s *PriceStream) connectAndPump(ctx context.Context) error {
	header := map[string][]string{}
	if s.token != "" {
		header["Authorization"] = []string{"Bearer " + s.token}
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer conn.Close()

	sub := map[string]any{
		"event":   "subscribe",
		"channel": "ticker",
		"symbols": s.symbols,
	}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.log.Info().Strs("symbols", s.symbols).Msg("ticker subscription established")

	// Close the socket when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var upd PriceUpdate
		if err := json.Unmarshal(raw, &upd); err != nil {
			s.log.Debug().Err(err).Msg("skipping unparseable stream message")
			continue
		}
		if upd.Symbol == "" {
			continue
		}
		select {
		case s.updates <- upd:
		default:
			s.log.Debug().Str("symbol", upd.Symbol).Msg("stream consumer slow, dropping update")
		}
	}
}
