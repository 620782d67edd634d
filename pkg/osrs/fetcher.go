package osrs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"osrs-alching/pkg/logging"
)

// PriceFetcher retrieves both price feeds in one operation.
type PriceFetcher interface {
	FetchPrices(ctx context.Context) (*PriceSnapshot, error)
}

// Fetcher pulls /latest and /1h together. Either one failing fails the whole fetch.
type Fetcher struct {
	client  *Client
	timeout time.Duration
	logger  *logging.Logger
}

// NewFetcher creates a Fetcher. A zero timeout means 30s.
func NewFetcher(client *Client, timeout time.Duration, logger *logging.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Fetcher{
		client:  client,
		timeout: timeout,
		logger:  logger,
	}
}

// FetchPrices issues both requests concurrently and returns a snapshot only if both succeed.
// It performs no retry and does not touch any shared state.
func (f *Fetcher) FetchPrices(ctx context.Context) (*PriceSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var (
		latest *LatestPricesResponse
		recent *BulkPriceResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		resp, err := f.client.GetLatestPrices(gctx)
		if err != nil {
			return err
		}
		latest = resp
		return nil
	})
	g.Go(func() error {
		resp, err := f.client.GetHourlyPrices(gctx)
		if err != nil {
			return err
		}
		recent = resp
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}

	snapshot := &PriceSnapshot{
		Latest:          f.latestByID(latest.Data),
		Recent:          f.recentByID(recent.Data),
		RecentTimestamp: recent.Timestamp,
		FetchedAt:       time.Now().UTC(),
	}

	if info, ok := snapshot.Latest[NatureRuneID]; ok && info.High != nil && *info.High != 0 {
		price := *info.High
		snapshot.NatureRunePrice = &price
	}

	f.logger.WithOSRS().WithFields(map[string]interface{}{
		"latest_items": len(snapshot.Latest),
		"recent_items": len(snapshot.Recent),
		"nature_rune":  snapshot.NatureRunePrice != nil,
	}).Debug("price snapshot fetched")

	return snapshot, nil
}

func (f *Fetcher) latestByID(data map[string]PriceInfo) map[int]PriceInfo {
	out := make(map[int]PriceInfo, len(data))
	for key, info := range data {
		id, err := strconv.Atoi(key)
		if err != nil {
			f.logger.WithOSRS().WithField("item_id", key).Debug("invalid item ID in /latest, skipping")
			continue
		}
		out[id] = info
	}
	return out
}

func (f *Fetcher) recentByID(data map[string]BulkPriceDataPoint) map[int]BulkPriceDataPoint {
	out := make(map[int]BulkPriceDataPoint, len(data))
	for key, point := range data {
		id, err := strconv.Atoi(key)
		if err != nil {
			f.logger.WithOSRS().WithField("item_id", key).Debug("invalid item ID in /1h, skipping")
			continue
		}
		out[id] = point
	}
	return out
}
