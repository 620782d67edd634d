package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osrs-alching/pkg/alch"
	"osrs-alching/pkg/catalog"
)

func item(id int, name string, profit int, members bool) alch.EnrichedItem {
	return alch.EnrichedItem{
		Item:   catalog.Item{ID: id, Name: name, HighAlch: 100, Limit: 100, Members: members},
		Profit: profit,
	}
}

func ids(items []alch.EnrichedItem) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestProjectSortsByProfitDescending(t *testing.T) {
	items := []alch.EnrichedItem{
		item(1, "A", -5, false),
		item(2, "B", 10, false),
	}

	out := Project(items, false, SortSpec{Key: KeyProfit, Direction: Desc})
	assert.Equal(t, []int{2, 1}, ids(out))

	out = Project(items, false, SortSpec{Key: KeyProfit, Direction: Asc})
	assert.Equal(t, []int{1, 2}, ids(out))
}

func TestProjectDoesNotModifyInput(t *testing.T) {
	items := []alch.EnrichedItem{item(1, "A", 1, false), item(2, "B", 2, true)}

	_ = Project(items, false, SortSpec{Key: KeyProfit, Direction: Desc})
	assert.Equal(t, []int{1, 2}, ids(items))
}

func TestProjectMembersFilter(t *testing.T) {
	items := []alch.EnrichedItem{
		item(1, "Free", 1, false),
		item(2, "Members", 2, true),
		item(3, "Free too", 3, false),
	}
	spec := SortSpec{Key: KeyID, Direction: Asc}

	hidden := Project(items, false, spec)
	assert.Equal(t, []int{1, 3}, ids(hidden))

	shown := Project(items, true, spec)
	assert.Equal(t, []int{1, 2, 3}, ids(shown))

	// toggling off and on again yields the same view
	assert.Equal(t, shown, Project(items, true, spec))
	assert.Equal(t, hidden, Project(items, false, spec))
}

func TestProjectStableForTies(t *testing.T) {
	items := []alch.EnrichedItem{
		item(5, "E", 10, false),
		item(3, "C", 10, false),
		item(9, "I", 20, false),
		item(1, "A", 10, false),
	}

	out := Project(items, false, SortSpec{Key: KeyProfit, Direction: Desc})
	assert.Equal(t, []int{9, 5, 3, 1}, ids(out))

	out = Project(items, false, SortSpec{Key: KeyProfit, Direction: Asc})
	assert.Equal(t, []int{5, 3, 1, 9}, ids(out))
}

func TestProjectIsIdempotent(t *testing.T) {
	items := []alch.EnrichedItem{
		item(1, "Rune platebody", 300, false),
		item(2, "Dragon battleaxe", -20, true),
		item(3, "Adamant platebody", 300, false),
	}
	spec := SortSpec{Key: KeyProfit, Direction: Desc}

	once := Project(items, true, spec)
	twice := Project(once, true, spec)
	assert.Equal(t, once, twice)
}

func TestProjectStringsUseCollation(t *testing.T) {
	items := []alch.EnrichedItem{
		item(1, "battlestaff", 0, false),
		item(2, "Air battlestaff", 0, false),
		item(3, "Zamorak robe", 0, false),
		item(4, "adamant platebody", 0, false),
	}

	out := Project(items, false, SortSpec{Key: KeyName, Direction: Asc})
	require.Len(t, out, 4)
	assert.Equal(t, []int{4, 2, 1, 3}, ids(out), "case must not split lower and upper case names")

	out = Project(items, false, SortSpec{Key: KeyName, Direction: Desc})
	assert.Equal(t, []int{3, 1, 2, 4}, ids(out))
}

func TestProjectBooleanAndUnknownKeysKeepOrder(t *testing.T) {
	items := []alch.EnrichedItem{
		item(1, "A", 3, true),
		item(2, "B", 1, false),
		item(3, "C", 2, true),
	}

	for _, spec := range []SortSpec{
		{Key: KeyMembers, Direction: Asc},
		{Key: KeyMembers, Direction: Desc},
		{Key: SortKey("weight"), Direction: Desc},
	} {
		out := Project(items, true, spec)
		assert.Equal(t, []int{1, 2, 3}, ids(out), "spec %+v", spec)
	}
}

func TestProjectNumericColumns(t *testing.T) {
	a := item(1, "A", 0, false)
	a.ProfitPerHour = 500
	a.BuyPrice = 10
	b := item(2, "B", 0, false)
	b.ProfitPerHour = 1000
	b.BuyPrice = 5

	out := Project([]alch.EnrichedItem{a, b}, false, SortSpec{Key: KeyProfitPerHour, Direction: Desc})
	assert.Equal(t, []int{2, 1}, ids(out))

	out = Project([]alch.EnrichedItem{a, b}, false, SortSpec{Key: KeyBuyPrice, Direction: Asc})
	assert.Equal(t, []int{2, 1}, ids(out))
}
