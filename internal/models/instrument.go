// Package models defines data structures for Factor-AI
package models

// MarketSegment identifies which board an instrument trades on. Each segment
// maps to a distinct symbol suffix convention at the data provider.
type MarketSegment string

const (
	SegmentListed MarketSegment = "TW"  // main board, ".TW" suffix
	SegmentOTC    MarketSegment = "TWO" // over-the-counter board, ".TWO" suffix
)

// Instrument is one entry of the scan universe. Symbol is the
// exchange-qualified code (base code + market suffix, e.g. "2330.TW") and is
// the join key for all per-instrument data.
type Instrument struct {
	Symbol  string        `json:"symbol"`
	Name    string        `json:"name"`
	Segment MarketSegment `json:"segment"`
}

// Code returns the bare instrument code without the market suffix.
func (i Instrument) Code() string {
	for idx := 0; idx < len(i.Symbol); idx++ {
		if i.Symbol[idx] == '.' {
			return i.Symbol[:idx]
		}
	}
	return i.Symbol
}

// Symbol represents one entry of a provider exchange symbol list. Field
// names follow the provider payload.
type Symbol struct {
	Code     string `json:"Code"`
	Name     string `json:"Name"`
	Exchange string `json:"Exchange"`
	Type     string `json:"Type"`
}
