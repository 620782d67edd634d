package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"osrs-alching/pkg/config"
	"osrs-alching/pkg/logging"
	"osrs-alching/pkg/refresh"
	"osrs-alching/pkg/report"
)

func main() {
	var (
		configPath = flag.String("config", "config.yml", "Path to the YAML configuration file")
		members    = flag.Bool("members", false, "Include members-only items")
		sortKey    = flag.String("sort", "", "Column to sort by (e.g. profit, profitPerHour, name)")
		sortDir    = flag.String("dir", "", "Sort direction: asc or desc")
		limit      = flag.Int("limit", -1, "Maximum rows to print (0 prints every row)")
		format     = flag.String("format", "", "Output format: terminal or markdown")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		fmt.Println("🔮 OSRS High Alchemy Calculator")
		fmt.Println("================================")
		fmt.Println()
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  ./alch -members -sort=profitPerHour")
		fmt.Println("  ./alch -sort=name -dir=asc -limit=0 -format=markdown")
		return
	}

	cfg, err := config.LoadConfigForCLI(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// -members overrides the config only when given
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "members" {
			cfg.View.ShowMembers = *members
		}
	})
	if *sortKey != "" {
		cfg.View.SortKey = *sortKey
	}
	if *sortDir != "" {
		cfg.View.SortDirection = *sortDir
	}
	if *limit >= 0 {
		cfg.Output.MaxRows = *limit
	}
	if *format != "" {
		cfg.Output.Format = *format
	}

	// stdout carries the table
	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.SetOutput(os.Stderr)

	outcome, err := run(cfg, logger)
	if err != nil {
		logger.WithComponent("main").WithError(err).Fatal("alch failed")
	}
	// exit 2 when live prices were unavailable
	if outcome == refresh.OutcomeFailed {
		os.Exit(2)
	}
}

func run(cfg *config.Config, logger *logging.Logger) (refresh.Outcome, error) {
	orch, err := refresh.NewFromConfig(cfg, logger)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.OSRS.GetTimeout()+5*time.Second)
	defer cancel()

	outcome := orch.Refresh(ctx)
	logger.WithComponent("main").WithField("outcome", outcome).Debug("Initial refresh finished")

	formatter := report.NewOutputFormatter(cfg.Output.MaxRows)
	vs := orch.View()

	switch strings.ToLower(cfg.Output.Format) {
	case "markdown", "md":
		fmt.Print(formatter.FormatForMarkdown(vs))
	case "terminal", "":
		if err := formatter.WriteTerminal(os.Stdout, vs); err != nil {
			return outcome, err
		}
	default:
		return outcome, fmt.Errorf("unknown output format %q: must be terminal or markdown", cfg.Output.Format)
	}

	return outcome, nil
}
