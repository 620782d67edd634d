package refresh

import (
	"fmt"

	"osrs-alching/pkg/catalog"
	"osrs-alching/pkg/config"
	"osrs-alching/pkg/logging"
	"osrs-alching/pkg/osrs"
)

// NewFromConfig wires the catalog, API client, fetcher and orchestrator from configuration
func NewFromConfig(cfg *config.Config, logger *logging.Logger) (*Orchestrator, error) {
	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("loading item catalog: %w", err)
	}

	sortSpec, err := cfg.View.Sort()
	if err != nil {
		return nil, err
	}
	defaults, err := cfg.View.Defaults()
	if err != nil {
		return nil, err
	}

	client := osrs.NewClientWithOptions(cfg.OSRS.UserAgent, osrs.ClientOptions{
		BaseURL:           cfg.OSRS.BaseURL,
		Timeout:           cfg.OSRS.GetTimeout(),
		RequestsPerSecond: cfg.OSRS.GetRequestsPerSecond(),
		Logger:            logger,
	})
	fetcher := osrs.NewFetcher(client, cfg.OSRS.GetTimeout(), logger)

	source := "embedded"
	if cfg.Catalog.Path != "" {
		source = cfg.Catalog.Path
	}
	logger.WithComponent("refresh").WithField("catalog", source).WithField("items", cat.Len()).Info("Item catalog loaded")

	return New(cat, fetcher, Options{
		NatureRunePrice:   cfg.Alch.NatureRunePrice,
		Sort:              sortSpec,
		DefaultDirections: defaults,
		ShowMembers:       cfg.View.ShowMembers,
	}, logger), nil
}
