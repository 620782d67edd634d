package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osrs-alching/pkg/catalog"
	"osrs-alching/pkg/osrs"
	"osrs-alching/pkg/view"
)

func intPtr(v int) *int { return &v }

type fakeFetcher struct {
	mu       sync.Mutex
	snapshot *osrs.PriceSnapshot
	err      error
	calls    int
	// when set, FetchPrices blocks until release is closed
	started chan struct{}
	release chan struct{}
}

func (f *fakeFetcher) FetchPrices(ctx context.Context) (*osrs.PriceSnapshot, error) {
	f.mu.Lock()
	f.calls++
	started, release := f.started, f.release
	snapshot, err := f.snapshot, f.err
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return snapshot, err
}

func (f *fakeFetcher) set(snapshot *osrs.PriceSnapshot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot, f.err = snapshot, err
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Item{
		{ID: 2, Name: "Cannonball", HighAlch: 50, Limit: 9000, Members: true},
		{ID: 1127, Name: "Rune platebody", HighAlch: 39000, Limit: 70},
		{ID: 1319, Name: "Rune 2h sword", HighAlch: 38400, Limit: 70},
	})
	require.NoError(t, err)
	return cat
}

func snapshot(natureRune *int) *osrs.PriceSnapshot {
	return &osrs.PriceSnapshot{
		Latest: map[int]osrs.PriceInfo{
			2:    {High: intPtr(30)},
			1127: {High: intPtr(38000)},
			1319: {High: intPtr(38500)},
		},
		Recent: map[int]osrs.BulkPriceDataPoint{
			2: {AvgHighPrice: intPtr(29)},
		},
		NatureRunePrice: natureRune,
		FetchedAt:       time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewShowsUnpricedItems(t *testing.T) {
	o := New(testCatalog(t), &fakeFetcher{}, DefaultOptions(), nil)

	vs := o.View()
	assert.False(t, vs.Loading)
	assert.Empty(t, vs.Error)
	assert.Equal(t, 85, vs.NatureRunePrice)
	assert.Equal(t, view.DefaultSort, vs.Sort)
	assert.Equal(t, 3, vs.TotalItems)
	assert.Zero(t, vs.PricedItems)
	require.Len(t, vs.Items, 2, "members items hidden by default")
	for _, item := range vs.Items {
		assert.False(t, item.Priced())
	}
}

func TestRefreshSuccess(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(snapshot(intPtr(5)), nil)

	opts := DefaultOptions()
	opts.ShowMembers = true
	o := New(testCatalog(t), fetcher, opts, nil)

	assert.Equal(t, OutcomeSuccess, o.Refresh(context.Background()))

	vs := o.View()
	assert.False(t, vs.Loading)
	assert.Empty(t, vs.Error)
	assert.Equal(t, 5, vs.NatureRunePrice)
	assert.Equal(t, 3, vs.PricedItems)
	assert.Equal(t, OutcomeSuccess, vs.LastOutcome)
	assert.False(t, vs.LastRefresh.IsZero())
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), vs.PricesFetchedAt)

	// profit desc: platebody 995, cannonball 15, 2h -105
	require.Len(t, vs.Items, 3)
	assert.Equal(t, 1127, vs.Items[0].ID)
	assert.Equal(t, 995, vs.Items[0].Profit)
	assert.Equal(t, 2, vs.Items[1].ID)
	assert.Equal(t, 15, vs.Items[1].Profit)
	assert.Equal(t, 18000, vs.Items[1].ProfitPerHour)
	assert.Equal(t, 1319, vs.Items[2].ID)
}

func TestRefreshWithoutNatureRuneKeepsPrevious(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(snapshot(intPtr(90)), nil)
	o := New(testCatalog(t), fetcher, DefaultOptions(), nil)
	require.Equal(t, OutcomeSuccess, o.Refresh(context.Background()))

	fetcher.set(snapshot(nil), nil)
	require.Equal(t, OutcomeSuccess, o.Refresh(context.Background()))

	assert.Equal(t, 90, o.NatureRunePrice())
	vs := o.View()
	assert.Equal(t, 39000-38000-90, vs.Items[0].Profit)
}

func TestRefreshFailureKeepsNatureRunePrice(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(snapshot(intPtr(92)), nil)

	o := New(testCatalog(t), fetcher, DefaultOptions(), nil)
	require.Equal(t, OutcomeSuccess, o.Refresh(context.Background()))

	fetcher.set(nil, &osrs.FetchError{Kind: osrs.KindHTTPStatus, Endpoint: "/1h", StatusCode: 500})
	assert.Equal(t, OutcomeFailed, o.Refresh(context.Background()))

	vs := o.View()
	assert.False(t, vs.Loading)
	assert.Equal(t, AdvisoryMessage, vs.Error)
	assert.Equal(t, 92, vs.NatureRunePrice)
	assert.Zero(t, vs.PricedItems)
	assert.True(t, vs.PricesFetchedAt.IsZero())
	assert.Equal(t, OutcomeFailed, vs.LastOutcome)
	for _, item := range vs.Items {
		assert.Zero(t, item.BuyPrice)
		assert.Zero(t, item.Profit)
		assert.Zero(t, item.ProfitPerLimit)
	}

	// next success clears the advisory
	fetcher.set(snapshot(nil), nil)
	assert.Equal(t, OutcomeSuccess, o.Refresh(context.Background()))
	assert.Empty(t, o.View().Error)
	assert.Equal(t, 92, o.NatureRunePrice())
}

func TestRefreshFailureAnyCauseGivesSameMessage(t *testing.T) {
	for _, err := range []error{
		&osrs.FetchError{Kind: osrs.KindNetwork, Endpoint: "/latest", Err: errors.New("connection refused")},
		&osrs.FetchError{Kind: osrs.KindParse, Endpoint: "/latest", Err: errors.New("unexpected EOF")},
		context.DeadlineExceeded,
	} {
		fetcher := &fakeFetcher{}
		fetcher.set(nil, err)
		o := New(testCatalog(t), fetcher, DefaultOptions(), nil)

		assert.Equal(t, OutcomeFailed, o.Refresh(context.Background()))
		assert.Equal(t, AdvisoryMessage, o.View().Error)
	}
}

func TestRefreshWhileLoadingIsSkipped(t *testing.T) {
	fetcher := &fakeFetcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	fetcher.set(snapshot(intPtr(5)), nil)
	o := New(testCatalog(t), fetcher, DefaultOptions(), nil)

	done := make(chan Outcome)
	go func() { done <- o.Refresh(context.Background()) }()

	<-fetcher.started
	assert.True(t, o.Loading())
	assert.True(t, o.View().Loading)

	assert.Equal(t, OutcomeSkipped, o.Refresh(context.Background()))

	close(fetcher.release)
	assert.Equal(t, OutcomeSuccess, <-done)
	assert.False(t, o.Loading())

	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	assert.Equal(t, 1, fetcher.calls)
}

func TestViewChangesDuringLoadingApply(t *testing.T) {
	fetcher := &fakeFetcher{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	fetcher.set(snapshot(intPtr(5)), nil)
	o := New(testCatalog(t), fetcher, DefaultOptions(), nil)

	done := make(chan Outcome)
	go func() { done <- o.Refresh(context.Background()) }()
	<-fetcher.started

	o.SetShowMembers(true)
	o.SetSortKey(view.KeyName)

	close(fetcher.release)
	<-done

	vs := o.View()
	assert.True(t, vs.ShowMembers)
	assert.Equal(t, view.SortSpec{Key: view.KeyName, Direction: view.Asc}, vs.Sort)
	require.Len(t, vs.Items, 3)
	assert.Equal(t, "Cannonball", vs.Items[0].Name)
}

func TestSetSortKeyToggles(t *testing.T) {
	o := New(testCatalog(t), &fakeFetcher{}, DefaultOptions(), nil)

	o.SetSortKey(view.KeyProfit)
	assert.Equal(t, view.SortSpec{Key: view.KeyProfit, Direction: view.Asc}, o.View().Sort)

	o.SetSortKey(view.KeyName)
	assert.Equal(t, view.SortSpec{Key: view.KeyName, Direction: view.Asc}, o.View().Sort)

	o.SetSortKey(view.KeyName)
	assert.Equal(t, view.SortSpec{Key: view.KeyName, Direction: view.Desc}, o.View().Sort)

	names := []string{}
	for _, item := range o.View().Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Rune platebody", "Rune 2h sword"}, names)
}

func TestDescendingDefaultsForNewColumns(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultDirections = view.DescendingDefaults()
	o := New(testCatalog(t), &fakeFetcher{}, opts, nil)

	o.SetSortKey(view.KeyProfitPerHour)
	assert.Equal(t, view.SortSpec{Key: view.KeyProfitPerHour, Direction: view.Desc}, o.View().Sort)
}

func TestSetSortAndMembersNotify(t *testing.T) {
	o := New(testCatalog(t), &fakeFetcher{}, DefaultOptions(), nil)

	var seen []ViewState
	o.Subscribe(func(vs ViewState) { seen = append(seen, vs) })

	o.SetShowMembers(true)
	o.SetShowMembers(true) // unchanged, no notification
	o.SetSort(view.SortSpec{Key: view.KeyID, Direction: view.Asc})

	require.Len(t, seen, 2)
	assert.True(t, seen[0].ShowMembers)
	assert.Len(t, seen[0].Items, 3)
	assert.Equal(t, []int{2, 1127, 1319}, []int{seen[1].Items[0].ID, seen[1].Items[1].ID, seen[1].Items[2].ID})
}

func TestSubscribeSeesLoadingTransitions(t *testing.T) {
	fetcher := &fakeFetcher{}
	fetcher.set(snapshot(intPtr(5)), nil)
	o := New(testCatalog(t), fetcher, DefaultOptions(), nil)

	var loading []bool
	o.Subscribe(func(vs ViewState) { loading = append(loading, vs.Loading) })

	o.Refresh(context.Background())
	assert.Equal(t, []bool{true, false}, loading)
}

func TestViewReturnsCopy(t *testing.T) {
	o := New(testCatalog(t), &fakeFetcher{}, DefaultOptions(), nil)

	vs := o.View()
	vs.Items[0].Name = "changed"
	assert.NotEqual(t, "changed", o.View().Items[0].Name)
}
