package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"osrs-alching/pkg/config"
	"osrs-alching/pkg/discord"
	"osrs-alching/pkg/logging"
	"osrs-alching/pkg/refresh"
)

const VERSION = "0.1.0"

func main() {
	configPath := flag.String("config", "config.yml", "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger.WithComponent("main").WithField("version", VERSION).Info("starting_osrs_alching_bot")

	orch, err := refresh.NewFromConfig(cfg, logger)
	if err != nil {
		logger.WithComponent("main").WithError(err).Fatal("Failed to set up calculator")
	}

	// a failed first refresh still leaves the bot usable with N/A prices
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.OSRS.GetTimeout()+5*time.Second)
	outcome := orch.Refresh(ctx)
	cancel()
	logger.WithOSRS().WithField("outcome", outcome).Info("Initial price refresh finished")

	discordBot, err := discord.NewBot(&cfg.Discord, orch, logger)
	if err != nil {
		logger.WithDiscord().WithError(err).Fatal("Failed to create Discord bot")
	}

	botCtx, botCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer botCancel()

	if err := discordBot.Start(botCtx); err != nil {
		logger.WithDiscord().WithError(err).Fatal("Failed to start Discord bot")
	}
	logger.WithDiscord().Info("Discord bot started successfully")

	if _, err := discordBot.SendMessage(discordBot.GetChannelID(), fmt.Sprintf("🔮 **osrs-alching v%s** has logged in. Type `%s help` for commands.", VERSION, discord.CommandPrefix)); err != nil {
		logger.WithDiscord().WithError(err).Warn("Failed to send startup message")
	}

	vs := orch.View()
	logger.WithComponent("main").WithFields(map[string]interface{}{
		"items":             vs.TotalItems,
		"priced_items":      vs.PricedItems,
		"nature_rune_price": vs.NatureRunePrice,
	}).Info("osrs-alching fully initialized")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.WithComponent("main").Info("Shutdown signal received, gracefully stopping...")

	if _, err := discordBot.SendMessage(discordBot.GetChannelID(), "💤 **osrs-alching** is logging out."); err != nil {
		logger.WithDiscord().WithError(err).Warn("Failed to send shutdown message")
	}

	// Give a moment for the message to send
	time.Sleep(2 * time.Second)

	if err := discordBot.Stop(); err != nil {
		logger.WithDiscord().WithError(err).Error("Error stopping Discord bot")
	}

	logger.WithComponent("main").Info("osrs-alching shutdown complete")
}
