package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"osrs-alching/pkg/alch"
	"osrs-alching/pkg/catalog"
	"osrs-alching/pkg/logging"
	"osrs-alching/pkg/osrs"
	"osrs-alching/pkg/view"
)

// AdvisoryMessage is shown to users whenever a refresh fails, whatever the cause.
const AdvisoryMessage = "Unable to fetch live prices from prices.runescape.wiki. Prices are shown as unavailable; try refreshing again later."

// State is the orchestrator's position in the refresh cycle
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
)

// Outcome is the result of a Refresh call
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
	// OutcomeSkipped means another refresh was already in flight
	OutcomeSkipped Outcome = "skipped"
)

// Options configures the initial view and nature rune price
type Options struct {
	NatureRunePrice   int
	Sort              view.SortSpec
	DefaultDirections view.DefaultDirections
	ShowMembers       bool
}

// DefaultOptions mirrors the calculator's first render: profit descending, members hidden.
func DefaultOptions() Options {
	return Options{
		NatureRunePrice:   alch.DefaultNatureRunePrice,
		Sort:              view.DefaultSort,
		DefaultDirections: view.AscendingDefaults(),
	}
}

// ViewState is a read-only copy of everything the presentation layer needs
type ViewState struct {
	Items           []alch.EnrichedItem
	Sort            view.SortSpec
	ShowMembers     bool
	Loading         bool
	Error           string
	NatureRunePrice int
	LastRefresh     time.Time
	LastOutcome     Outcome
	PricesFetchedAt time.Time
	TotalItems      int
	PricedItems     int
}

// Orchestrator owns the enriched item set, the nature rune price and the
// view inputs. All mutation goes through its methods.
type Orchestrator struct {
	fetcher osrs.PriceFetcher
	items   []catalog.Item
	logger  *logging.Logger

	mu              sync.Mutex
	state           State
	enriched        []alch.EnrichedItem
	visible         []alch.EnrichedItem
	snapshot        *osrs.PriceSnapshot
	natureRunePrice int
	errMsg          string
	sort            view.SortSpec
	defaults        view.DefaultDirections
	showMembers     bool
	lastRefresh     time.Time
	lastOutcome     Outcome
	listeners       []func(ViewState)
}

// New creates an orchestrator showing the unpriced placeholder set. No fetch happens until Refresh.
func New(cat *catalog.Catalog, fetcher osrs.PriceFetcher, opts Options, logger *logging.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.NatureRunePrice <= 0 {
		opts.NatureRunePrice = alch.DefaultNatureRunePrice
	}
	if opts.Sort.Key == "" {
		opts.Sort = view.DefaultSort
	}
	if opts.Sort.Direction == "" {
		opts.Sort.Direction = opts.DefaultDirections.For(opts.Sort.Key)
	}

	o := &Orchestrator{
		fetcher:         fetcher,
		items:           cat.Items(),
		logger:          logger,
		state:           StateIdle,
		natureRunePrice: opts.NatureRunePrice,
		sort:            opts.Sort,
		defaults:        opts.DefaultDirections,
		showMembers:     opts.ShowMembers,
	}
	o.enriched = alch.Unpriced(o.items)
	o.reproject()
	return o
}

// Refresh fetches both price feeds and re-enriches the item set.
// Fetch failures never escape: they become OutcomeFailed with every item unpriced.
// A call made while another refresh is running returns OutcomeSkipped immediately.
func (o *Orchestrator) Refresh(ctx context.Context) Outcome {
	o.mu.Lock()
	if o.state == StateLoading {
		o.mu.Unlock()
		o.logger.WithComponent("refresh").Debug("refresh already in flight, ignoring trigger")
		return OutcomeSkipped
	}
	o.state = StateLoading
	o.notifyLocked()
	o.mu.Unlock()

	refreshID := uuid.NewString()
	start := time.Now()
	o.logger.RefreshStart(refreshID)

	snapshot, err := o.fetcher.FetchPrices(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastRefresh = time.Now().UTC()

	if err != nil {
		o.logger.RefreshFailed(refreshID, err, string(osrs.KindOf(err)), time.Since(start).Seconds())

		o.snapshot = nil
		o.errMsg = AdvisoryMessage
		o.enriched = alch.Unpriced(o.items)
		o.lastOutcome = OutcomeFailed
	} else {
		if snapshot.NatureRunePrice != nil {
			o.natureRunePrice = *snapshot.NatureRunePrice
		}
		o.snapshot = snapshot
		o.errMsg = ""
		o.enriched = alch.Enrich(o.items, snapshot.Latest, snapshot.Recent, o.natureRunePrice)
		o.lastOutcome = OutcomeSuccess

		o.logger.RefreshComplete(refreshID, time.Since(start).Seconds(), alch.CountPriced(o.enriched), o.natureRunePrice)
	}

	o.state = StateIdle
	o.reproject()
	o.notifyLocked()

	return o.lastOutcome
}

// SetSortKey applies a column header click
func (o *Orchestrator) SetSortKey(key view.SortKey) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sort = view.Toggle(o.sort, key, o.defaults)
	o.reproject()
	o.notifyLocked()
}

// SetSort replaces the sort spec outright
func (o *Orchestrator) SetSort(spec view.SortSpec) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sort = spec
	o.reproject()
	o.notifyLocked()
}

// SetShowMembers toggles visibility of members-only items
func (o *Orchestrator) SetShowMembers(show bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.showMembers == show {
		return
	}
	o.showMembers = show
	o.reproject()
	o.notifyLocked()
}

// Subscribe registers fn to receive the view after every change.
// fn runs with the orchestrator locked and must not call back into it.
func (o *Orchestrator) Subscribe(fn func(ViewState)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, fn)
}

// View returns a copy of the current view state
func (o *Orchestrator) View() ViewState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

// Loading reports whether a refresh is in flight
func (o *Orchestrator) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state == StateLoading
}

// NatureRunePrice returns the best known nature rune price
func (o *Orchestrator) NatureRunePrice() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.natureRunePrice
}

func (o *Orchestrator) reproject() {
	o.visible = view.Project(o.enriched, o.showMembers, o.sort)
}

func (o *Orchestrator) viewLocked() ViewState {
	items := make([]alch.EnrichedItem, len(o.visible))
	copy(items, o.visible)

	var fetchedAt time.Time
	if o.snapshot != nil {
		fetchedAt = o.snapshot.FetchedAt
	}

	return ViewState{
		Items:           items,
		Sort:            o.sort,
		ShowMembers:     o.showMembers,
		Loading:         o.state == StateLoading,
		Error:           o.errMsg,
		NatureRunePrice: o.natureRunePrice,
		LastRefresh:     o.lastRefresh,
		LastOutcome:     o.lastOutcome,
		PricesFetchedAt: fetchedAt,
		TotalItems:      len(o.enriched),
		PricedItems:     alch.CountPriced(o.enriched),
	}
}

func (o *Orchestrator) notifyLocked() {
	if len(o.listeners) == 0 {
		return
	}
	vs := o.viewLocked()
	for _, fn := range o.listeners {
		fn(vs)
	}
}
