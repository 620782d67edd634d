package view

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"osrs-alching/pkg/alch"
)

// Project filters and sorts items for display. The input slice is not modified.
//
// Members-only items are kept only when showMembers is set. Sorting is stable:
// strings use a locale collator, integers compare numerically, and anything
// else (booleans, unknown keys) compares equal so the input order survives.
func Project(items []alch.EnrichedItem, showMembers bool, spec SortSpec) []alch.EnrichedItem {
	out := make([]alch.EnrichedItem, 0, len(items))
	for _, item := range items {
		if showMembers || !item.Members {
			out = append(out, item)
		}
	}

	// collators are not safe for concurrent use, so one per call
	col := collate.New(language.English)

	sort.SliceStable(out, func(i, j int) bool {
		c := compare(col, value(out[i], spec.Key), value(out[j], spec.Key))
		if spec.Direction == Desc {
			return c > 0
		}
		return c < 0
	})

	return out
}

func compare(col *collate.Collator, a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return col.CompareString(av, bv)
		}
	case int:
		if bv, ok := b.(int); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	return 0
}

func value(item alch.EnrichedItem, key SortKey) any {
	switch key {
	case KeyID:
		return item.ID
	case KeyName:
		return item.Name
	case KeyBuyPrice:
		return item.BuyPrice
	case KeyRecentBuyPrice:
		return item.RecentBuyPrice
	case KeyHighAlch:
		return item.HighAlch
	case KeyProfit:
		return item.Profit
	case KeyLimit:
		return item.Limit
	case KeyMembers:
		return item.Members
	case KeyProfitPerMinute:
		return item.ProfitPerMinute
	case KeyProfitPerHour:
		return item.ProfitPerHour
	case KeyProfitPerLimit:
		return item.ProfitPerLimit
	default:
		return nil
	}
}
