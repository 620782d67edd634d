package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"osrs-alching/pkg/catalog"
	"osrs-alching/pkg/config"
	"osrs-alching/pkg/logging"
	"osrs-alching/pkg/osrs"
)

const VERSION = "0.1.0"

var (
	configPath     = flag.String("config", "config.yml", "Path to the YAML configuration file")
	outPath        = flag.String("out", "pkg/catalog/items.json", "Where to write the catalog (- for stdout)")
	minHighAlch    = flag.Int("min-high-alch", 0, "Drop items whose high alch value is below this")
	excludeMembers = flag.Bool("f2p", false, "Keep only free-to-play items")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfigForCLI(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.SetOutput(os.Stderr)
	logger.WithComponent("catalog").WithField("version", VERSION).Info("starting catalog build")

	client := osrs.NewClientWithOptions(cfg.OSRS.UserAgent, osrs.ClientOptions{
		BaseURL: cfg.OSRS.BaseURL,
		Timeout: cfg.OSRS.GetTimeout(),
		Logger:  logger,
	})

	syncer := catalog.NewSyncer(client, catalog.SyncerConfig{
		MinHighAlch:    *minHighAlch,
		ExcludeMembers: *excludeMembers,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OSRS.GetTimeout()+5*time.Second)
	defer cancel()

	cat, err := syncer.Sync(ctx)
	if err != nil {
		logger.WithComponent("catalog").WithError(err).Fatal("catalog build failed")
	}

	if err := write(*outPath, cat); err != nil {
		logger.WithComponent("catalog").WithError(err).Fatal("failed to write catalog")
	}

	logger.WithComponent("catalog").WithFields(map[string]interface{}{
		"path":  *outPath,
		"items": cat.Len(),
	}).Info("catalog written")
}

func write(path string, cat *catalog.Catalog) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		w = file
	}
	return catalog.Write(w, cat.Items())
}
