package domain

import "time"

// Timeframe identifies the candle interval of a data series
type Timeframe string

const (
	Timeframe1m Timeframe = "1m"
	Timeframe1h Timeframe = "1h"
	Timeframe1d Timeframe = "1d"
)

// Candle is a single OHLCV bar, ordered ascending by time
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// VolumePoint is a single volume observation, aligned 1:1 with candles
type VolumePoint struct {
	Time   time.Time `json:"time"`
	Volume float64   `json:"volume"`
}

// CoinSnapshot holds the identity and market state of a coin at fetch time
type CoinSnapshot struct {
	Symbol            string    `json:"symbol"`
	Name              string    `json:"name"`
	CurrentPrice      float64   `json:"current_price"`
	MarketCap         float64   `json:"market_cap"`
	Volume24h         float64   `json:"volume_24h"`
	Change24h         float64   `json:"change_24h"` // percent
	CirculatingSupply float64   `json:"circulating_supply"`
	InitialSupply     float64   `json:"initial_supply"`
	TotalSupply       float64   `json:"total_supply"`
	PoolCoinAmount    float64   `json:"pool_coin_amount"`
	PoolBaseAmount    float64   `json:"pool_base_amount"` // pool value in base currency
	Creator           string    `json:"creator"`
	CreatedAt         time.Time `json:"created_at"`
	Listed            bool      `json:"listed"`
}

// CoinDetails bundles a snapshot with its candle and volume series for one timeframe
type CoinDetails struct {
	Coin    CoinSnapshot  `json:"coin"`
	Candles []Candle      `json:"candlestick_data"`
	Volumes []VolumePoint `json:"volume_data"`
}

// Closes extracts the closing price series from the candle data
func (d *CoinDetails) Closes() []float64 {
	closes := make([]float64, len(d.Candles))
	for i, c := range d.Candles {
		closes[i] = c.Close
	}
	return closes
}

// VolumeSeries extracts the raw volume series
func (d *CoinDetails) VolumeSeries() []float64 {
	vols := make([]float64, len(d.Volumes))
	for i, v := range d.Volumes {
		vols[i] = v.Volume
	}
	return vols
}

// HolderRecord is one entry of a coin's holder distribution
type HolderRecord struct {
	Address    string  `json:"address"`
	Quantity   float64 `json:"quantity"`
	Percentage float64 `json:"percentage"` // percent of supply
	Rank       int     `json:"rank"`
}

// HoldersSnapshot is the ordered holder distribution plus total holder count
type HoldersSnapshot struct {
	Holders      []HolderRecord `json:"holders"`
	TotalHolders int            `json:"total_holders"`
}

// TopPercentage returns the cumulative supply percentage held by the top n holders
func (h *HoldersSnapshot) TopPercentage(n int) float64 {
	if n > len(h.Holders) {
		n = len(h.Holders)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += h.Holders[i].Percentage
	}
	return sum
}

// PeerRank is one entry of a market-cap peer ranking snapshot
type PeerRank struct {
	Symbol    string  `json:"symbol"`
	MarketCap float64 `json:"market_cap"`
	Rank      int     `json:"rank"`
}

// RankOf returns the market-cap rank of symbol within peers, or 0 if absent
func RankOf(peers []PeerRank, symbol string) int {
	for _, p := range peers {
		if p.Symbol == symbol {
			return p.Rank
		}
	}
	return 0
}
