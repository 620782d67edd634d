package discord

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osrs-alching/pkg/alch"
	"osrs-alching/pkg/catalog"
	"osrs-alching/pkg/refresh"
	"osrs-alching/pkg/view"
)

type fakeCalculator struct {
	outcome     refresh.Outcome
	refreshes   int
	sortKeys    []view.SortKey
	showMembers []bool
	state       refresh.ViewState
}

func (f *fakeCalculator) Refresh(ctx context.Context) refresh.Outcome {
	f.refreshes++
	if f.outcome == refresh.OutcomeFailed {
		f.state.Error = refresh.AdvisoryMessage
	}
	return f.outcome
}

func (f *fakeCalculator) SetSortKey(key view.SortKey) {
	f.sortKeys = append(f.sortKeys, key)
	f.state.Sort = view.Toggle(f.state.Sort, key, view.AscendingDefaults())
}

func (f *fakeCalculator) SetShowMembers(show bool) {
	f.showMembers = append(f.showMembers, show)
	f.state.ShowMembers = show
}

func (f *fakeCalculator) View() refresh.ViewState {
	return f.state
}

func newFake(n int) *fakeCalculator {
	items := make([]alch.EnrichedItem, n)
	for i := range items {
		items[i] = alch.EnrichedItem{
			Item:     catalog.Item{ID: i + 1, Name: "Item", HighAlch: 100, Limit: 10},
			BuyPrice: 50,
			Profit:   15,
		}
	}
	return &fakeCalculator{
		outcome: refresh.OutcomeSuccess,
		state: refresh.ViewState{
			Items:           items,
			Sort:            view.DefaultSort,
			NatureRunePrice: 85,
			TotalItems:      n,
			PricedItems:     n,
		},
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		content string
		ok      bool
		want    Command
	}{
		{"!alch", true, Command{Name: "top"}},
		{"!alch top 5", true, Command{Name: "top", Args: []string{"5"}}},
		{"  !ALCH   Sort   profit_per_hour ", true, Command{Name: "sort", Args: []string{"profit_per_hour"}}},
		{"!alch members on", true, Command{Name: "members", Args: []string{"on"}}},
		{"!osrs status", false, Command{}},
		{"hello !alch", false, Command{}},
		{"", false, Command{}},
	}

	for _, tt := range tests {
		cmd, ok := ParseCommand(tt.content)
		assert.Equal(t, tt.ok, ok, tt.content)
		if tt.ok {
			assert.Equal(t, tt.want.Name, cmd.Name, tt.content)
			assert.Equal(t, len(tt.want.Args), len(cmd.Args), tt.content)
			for i := range tt.want.Args {
				assert.Equal(t, tt.want.Args[i], cmd.Args[i], tt.content)
			}
		}
	}
}

func TestHandleTop(t *testing.T) {
	calc := newFake(30)
	h := NewHandler(calc)

	resp := h.Handle(context.Background(), Command{Name: "top"})
	assert.True(t, resp.Table)
	assert.Contains(t, resp.Body, "10. Item")
	assert.NotContains(t, resp.Body, "11. Item")

	resp = h.Handle(context.Background(), Command{Name: "top", Args: []string{"3"}})
	assert.Contains(t, resp.Body, "3. Item")
	assert.NotContains(t, resp.Body, "4. Item")

	resp = h.Handle(context.Background(), Command{Name: "top", Args: []string{"100"}})
	assert.Contains(t, resp.Body, "25. Item")
	assert.NotContains(t, resp.Body, "26. Item")

	resp = h.Handle(context.Background(), Command{Name: "top", Args: []string{"-1"}})
	assert.False(t, resp.Table)
	assert.Equal(t, colorWarn, resp.Color)
}

func TestHandleRefresh(t *testing.T) {
	calc := newFake(2)
	h := NewHandler(calc)

	resp := h.Handle(context.Background(), Command{Name: "refresh"})
	assert.Equal(t, 1, calc.refreshes)
	assert.Contains(t, resp.Body, "Priced 2 of 2 items")
	assert.Equal(t, colorOK, resp.Color)

	calc.outcome = refresh.OutcomeFailed
	resp = h.Handle(context.Background(), Command{Name: "refresh"})
	assert.Equal(t, refresh.AdvisoryMessage, resp.Body)
	assert.Equal(t, colorFailure, resp.Color)

	calc.outcome = refresh.OutcomeSkipped
	resp = h.Handle(context.Background(), Command{Name: "refresh"})
	assert.Contains(t, resp.Body, "already running")
}

func TestHandleSort(t *testing.T) {
	calc := newFake(1)
	h := NewHandler(calc)

	resp := h.Handle(context.Background(), Command{Name: "sort", Args: []string{"profit_per_hour"}})
	require.Equal(t, []view.SortKey{view.KeyProfitPerHour}, calc.sortKeys)
	assert.Contains(t, resp.Body, "profitPerHour ↑")

	resp = h.Handle(context.Background(), Command{Name: "sort", Args: []string{"weight"}})
	assert.Equal(t, colorWarn, resp.Color)
	assert.Contains(t, resp.Body, "Columns:")
	assert.Len(t, calc.sortKeys, 1)

	resp = h.Handle(context.Background(), Command{Name: "sort"})
	assert.Equal(t, colorWarn, resp.Color)
}

func TestHandleMembers(t *testing.T) {
	calc := newFake(1)
	h := NewHandler(calc)

	resp := h.Handle(context.Background(), Command{Name: "members", Args: []string{"on"}})
	assert.Contains(t, resp.Body, "now shown")

	resp = h.Handle(context.Background(), Command{Name: "members", Args: []string{"OFF"}})
	assert.Contains(t, resp.Body, "now hidden")

	resp = h.Handle(context.Background(), Command{Name: "members", Args: []string{"maybe"}})
	assert.Equal(t, colorWarn, resp.Color)

	assert.Equal(t, []bool{true, false}, calc.showMembers)
}

func TestHandleStatusHelpUnknown(t *testing.T) {
	calc := newFake(1)
	calc.state.Error = refresh.AdvisoryMessage
	h := NewHandler(calc)

	resp := h.Handle(context.Background(), Command{Name: "status"})
	assert.Contains(t, resp.Body, "Nature rune: 85 gp")
	assert.Contains(t, resp.Body, "Last refresh: never")
	assert.Contains(t, resp.Body, refresh.AdvisoryMessage)

	resp = h.Handle(context.Background(), Command{Name: "help"})
	for _, cmd := range []string{"top", "refresh", "sort", "members", "status", "help", "ping"} {
		assert.True(t, strings.Contains(resp.Body, CommandPrefix+" "+cmd), cmd)
	}

	resp = h.Handle(context.Background(), Command{Name: "dance"})
	assert.Contains(t, resp.Body, "Unknown command: `dance`")
}

func TestStatusReportsCommandActivity(t *testing.T) {
	h := NewHandler(newFake(1))

	resp := h.Handle(context.Background(), Command{Name: "status"})
	assert.Contains(t, resp.Body, "Commands handled: 1")
	assert.Contains(t, resp.Body, "Previous command: never")

	h.Handle(context.Background(), Command{Name: "ping"})
	h.Handle(context.Background(), Command{Name: "dance"})

	resp = h.Handle(context.Background(), Command{Name: "status"})
	assert.Contains(t, resp.Body, "Commands handled: 4")
	assert.Contains(t, resp.Body, "Previous command: 0s ago")
	assert.Equal(t, int64(4), h.CommandsHandled())
}
