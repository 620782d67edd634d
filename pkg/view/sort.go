package view

import (
	"fmt"
	"strings"
)

// Direction is the sort order of a column
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Flip returns the opposite direction
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// ParseDirection accepts "asc" or "desc" in any case
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q: must be asc or desc", s)
	}
}

// SortKey names a sortable column of an enriched item
type SortKey string

const (
	KeyID              SortKey = "id"
	KeyName            SortKey = "name"
	KeyBuyPrice        SortKey = "buyPrice"
	KeyRecentBuyPrice  SortKey = "recentBuyPrice"
	KeyHighAlch        SortKey = "highAlch"
	KeyProfit          SortKey = "profit"
	KeyLimit           SortKey = "limit"
	KeyMembers         SortKey = "members"
	KeyProfitPerMinute SortKey = "profitPerMinute"
	KeyProfitPerHour   SortKey = "profitPerHour"
	KeyProfitPerLimit  SortKey = "profitPerLimit"
)

// Keys lists every known sort key in display order
var Keys = []SortKey{
	KeyName,
	KeyBuyPrice,
	KeyRecentBuyPrice,
	KeyHighAlch,
	KeyProfit,
	KeyLimit,
	KeyMembers,
	KeyProfitPerMinute,
	KeyProfitPerHour,
	KeyProfitPerLimit,
	KeyID,
}

// ParseSortKey matches a key case-insensitively, also accepting snake_case spellings
// such as "profit_per_hour".
func ParseSortKey(s string) (SortKey, error) {
	norm := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	for _, key := range Keys {
		if strings.ToLower(string(key)) == norm {
			return key, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// SortSpec is the active sort column and direction
type SortSpec struct {
	Key       SortKey   `yaml:"key" json:"key"`
	Direction Direction `yaml:"direction" json:"direction"`
}

// DefaultSort is the initial ordering: most profitable first
var DefaultSort = SortSpec{Key: KeyProfit, Direction: Desc}

// DefaultDirections is the direction a column takes when it is newly selected.
// Columns missing from Columns use Fallback.
type DefaultDirections struct {
	Columns  map[SortKey]Direction
	Fallback Direction
}

// AscendingDefaults selects every new column ascending.
func AscendingDefaults() DefaultDirections {
	return DefaultDirections{Columns: map[SortKey]Direction{}, Fallback: Asc}
}

// DescendingDefaults selects every new column descending.
func DescendingDefaults() DefaultDirections {
	return DefaultDirections{Columns: map[SortKey]Direction{}, Fallback: Desc}
}

// With returns a copy with one column overridden
func (d DefaultDirections) With(key SortKey, dir Direction) DefaultDirections {
	cols := make(map[SortKey]Direction, len(d.Columns)+1)
	for k, v := range d.Columns {
		cols[k] = v
	}
	cols[key] = dir
	return DefaultDirections{Columns: cols, Fallback: d.Fallback}
}

// For returns the default direction for key
func (d DefaultDirections) For(key SortKey) Direction {
	if dir, ok := d.Columns[key]; ok {
		return dir
	}
	if d.Fallback == "" {
		return Asc
	}
	return d.Fallback
}

// Toggle applies a click on a column header: the active column flips
// direction, any other column starts at its default direction.
func Toggle(current SortSpec, key SortKey, defaults DefaultDirections) SortSpec {
	if current.Key == key {
		return SortSpec{Key: key, Direction: current.Direction.Flip()}
	}
	return SortSpec{Key: key, Direction: defaults.For(key)}
}
