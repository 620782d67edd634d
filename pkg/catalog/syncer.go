package catalog

import (
	"context"
	"fmt"

	"osrs-alching/pkg/logging"
	"osrs-alching/pkg/osrs"
)

// MappingSource provides the item mapping list
type MappingSource interface {
	GetItemMapping(ctx context.Context) ([]osrs.ItemMapping, error)
}

// SyncerConfig configures catalog building
type SyncerConfig struct {
	// MinHighAlch drops items whose high alch value is below this
	MinHighAlch int
	// ExcludeMembers drops members-only items
	ExcludeMembers bool
}

// Syncer builds a catalog from the wiki's /mapping endpoint
type Syncer struct {
	source MappingSource
	config SyncerConfig
	logger *logging.Logger
}

// NewSyncer creates a new Syncer.
func NewSyncer(source MappingSource, config SyncerConfig, logger *logging.Logger) *Syncer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Syncer{source: source, config: config, logger: logger}
}

// Sync fetches item mappings and returns them as a validated catalog
func (s *Syncer) Sync(ctx context.Context) (*Catalog, error) {
	log := s.logger.WithComponent("catalog_syncer")
	log.Info("starting catalog sync")

	mappings, err := s.source.GetItemMapping(ctx)
	if err != nil {
		log.WithError(err).Error("failed to fetch item mappings")
		return nil, err
	}
	log.WithField("items_fetched", len(mappings)).Debug("fetched item mappings from API")

	all := FromMappings(mappings)
	items := make([]Item, 0, len(all))
	for _, item := range all {
		if item.HighAlch < s.config.MinHighAlch {
			continue
		}
		if s.config.ExcludeMembers && item.Members {
			continue
		}
		items = append(items, item)
	}

	cat, err := New(items)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"items_fetched": len(mappings),
		"items_kept":    cat.Len(),
	}).Info("catalog sync completed")

	return cat, nil
}
