package alch

import (
	"osrs-alching/pkg/catalog"
	"osrs-alching/pkg/osrs"
)

const (
	// DefaultNatureRunePrice is used until a live nature rune price has been seen
	DefaultNatureRunePrice = 85

	// CastsPerMinute is the High Alchemy cast rate (one cast every 3 ticks)
	CastsPerMinute = 20

	// HourlyCastCap is the number of casts that fit in an hour
	HourlyCastCap = CastsPerMinute * 60

	// LimitWindowCap is the number of casts that fit in one 4 hour buy-limit window
	LimitWindowCap = HourlyCastCap * 4
)

// Trend compares the latest buy price against the 1h average
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// EnrichedItem is a catalog item with its prices and derived profit metrics.
// Recomputed from scratch on every enrichment pass.
type EnrichedItem struct {
	catalog.Item

	BuyPrice       int `json:"buyPrice"`
	RecentBuyPrice int `json:"recentBuyPrice"`

	Profit          int `json:"profit"`
	ProfitPerMinute int `json:"profitPerMinute"`
	ProfitPerHour   int `json:"profitPerHour"`
	ProfitPerLimit  int `json:"profitPerLimit"`
}

// Priced reports whether a live buy price was available. When false the
// buy price and every profit figure should be shown as unavailable, not 0.
func (e EnrichedItem) Priced() bool {
	return e.BuyPrice > 0
}

// PriceDelta is the latest buy price minus the 1h average buy price
func (e EnrichedItem) PriceDelta() int {
	return e.BuyPrice - e.RecentBuyPrice
}

// Trend reports whether the latest price sits above, below or at the 1h average
func (e EnrichedItem) Trend() Trend {
	switch d := e.PriceDelta(); {
	case d > 0:
		return TrendUp
	case d < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}

// Enrich joins items with both price snapshots. It is pure: one output per
// input item, same order, nothing dropped. Nil maps are treated as empty.
func Enrich(items []catalog.Item, latest map[int]osrs.PriceInfo, recent map[int]osrs.BulkPriceDataPoint, natureRunePrice int) []EnrichedItem {
	out := make([]EnrichedItem, len(items))

	for i, item := range items {
		buyPrice := valueOrZero(latest[item.ID].High)
		recentBuyPrice := valueOrZero(recent[item.ID].AvgHighPrice)

		profit := 0
		if buyPrice > 0 {
			profit = item.HighAlch - buyPrice - natureRunePrice
		}

		out[i] = EnrichedItem{
			Item:            item,
			BuyPrice:        buyPrice,
			RecentBuyPrice:  recentBuyPrice,
			Profit:          profit,
			ProfitPerMinute: profit * CastsPerMinute,
			ProfitPerHour:   profit * min(item.Limit, HourlyCastCap),
			ProfitPerLimit:  profit * min(item.Limit, LimitWindowCap),
		}
	}

	return out
}

// Unpriced returns the placeholder set: every item with all price fields zeroed.
func Unpriced(items []catalog.Item) []EnrichedItem {
	return Enrich(items, nil, nil, 0)
}

// CountPriced returns how many items carry a live buy price
func CountPriced(items []EnrichedItem) int {
	n := 0
	for _, item := range items {
		if item.Priced() {
			n++
		}
	}
	return n
}

func valueOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
