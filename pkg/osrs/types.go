package osrs

import "time"

// NatureRuneID is the item id of the nature rune, consumed by every High Alchemy cast
const NatureRuneID = 561

// LatestPricesResponse matches the RuneScape Wiki /latest response structure
type LatestPricesResponse struct {
	Data map[string]PriceInfo `json:"data"`
}

/*

The OSRS trading API data is counterintuitive to normal trading:

`high` = insta_buy_price = what you pay to buy an item right now
`low`  = insta_sell_price = what you receive selling an item right now

An alcher buys at `high` and converts the item to coins, so `high` is the
buy price used throughout this module.

*/

// PriceInfo is a single item entry from /latest. Every field may be absent.
type PriceInfo struct {
	High     *int `json:"high"`
	HighTime *int `json:"highTime"`
	Low      *int `json:"low"`
	LowTime  *int `json:"lowTime"`
}

// ItemMapping represents the item metadata from the mapping API
type ItemMapping struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Examine  string `json:"examine"`
	Members  bool   `json:"members"`
	BuyLimit int    `json:"limit"`
	Value    int    `json:"value"`
	HighAlch int    `json:"highalch"`
	LowAlch  int    `json:"lowalch"`
	Icon     string `json:"icon"`
}

// BulkPriceDataPoint is a single item's entry from /1h.
type BulkPriceDataPoint struct {
	AvgHighPrice    *int `json:"avgHighPrice"`
	HighPriceVolume *int `json:"highPriceVolume"`
	AvgLowPrice     *int `json:"avgLowPrice"`
	LowPriceVolume  *int `json:"lowPriceVolume"`
}

// BulkPriceResponse is the /1h response.
// The data map is keyed by item ID (as string).
type BulkPriceResponse struct {
	Data      map[string]BulkPriceDataPoint `json:"data"`
	Timestamp int64                         `json:"timestamp"`
}

// PriceSnapshot is the result of one successful fetch of both price feeds.
// Absent prices stay nil; nothing here is defaulted to zero.
type PriceSnapshot struct {
	Latest          map[int]PriceInfo
	Recent          map[int]BulkPriceDataPoint
	NatureRunePrice *int
	RecentTimestamp int64
	FetchedAt       time.Time
}
