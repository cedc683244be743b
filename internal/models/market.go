package models

import (
	"time"
)

// EODBar represents a single day's price data. Series are ordered most
// recent first throughout the pipeline.
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// RealTimeQuote holds a live snapshot from the real-time price source.
// LastTrade may be zero during auction phases; BestBid is the fallback
// level in that case.
type RealTimeQuote struct {
	Symbol    string    `json:"symbol"`
	LastTrade float64   `json:"last_trade"`
	BestBid   float64   `json:"best_bid"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// PriceSource identifies which resolution strategy produced a price.
type PriceSource string

const (
	PriceSourceEOD  PriceSource = "eod"  // last close from recent history
	PriceSourceLive PriceSource = "live" // real-time last trade
	PriceSourceBid  PriceSource = "bid"  // real-time best bid
)

// ResolvedPrice is the outcome of the price fallback chain, carrying the
// as-of time so stale and live prices remain distinguishable downstream.
type ResolvedPrice struct {
	Price  float64     `json:"price"`
	Source PriceSource `json:"source"`
	AsOf   time.Time   `json:"as_of"`
}

// ReturnPoint is one (date, percentage return) observation.
type ReturnPoint struct {
	Date   time.Time `json:"date"`
	Return float64   `json:"return"`
}

// ReturnSeries is an ordered sequence of daily percentage returns derived
// from a close series, most recent first. Immutable once computed for a
// given fetch.
type ReturnSeries []ReturnPoint

// CachedSeries is the storage record for one instrument's bounded history
// window.
type CachedSeries struct {
	Symbol    string    `json:"symbol" badgerhold:"key"`
	Bars      []EODBar  `json:"bars"`
	UpdatedAt time.Time `json:"updated_at"`
}
