package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"osrs-alching/pkg/config"
	"osrs-alching/pkg/logging"
	"osrs-alching/pkg/report"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Bot represents the Discord bot instance
type Bot struct {
	session   *discordgo.Session
	config    *config.DiscordConfig
	handler   *Handler
	logger    *logging.Logger
	channelID string
	mu        sync.RWMutex
	ready     bool
}

// NewBot creates a new Discord bot instance driving calc
func NewBot(cfg *config.DiscordConfig, calc Calculator, logger *logging.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:   session,
		config:    cfg,
		handler:   NewHandler(calc),
		logger:    logger,
		channelID: cfg.ChannelID,
	}

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onMessageCreate)

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return bot, nil
}

// Start opens the gateway connection and waits for the ready event
func (b *Bot) Start(ctx context.Context) error {
	b.logger.WithDiscord().Info("Starting Discord bot")

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.After(30 * time.Second)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("timeout waiting for Discord bot to be ready")
		case <-ticker.C:
			if b.IsReady() {
				b.logger.WithDiscord().Info("Discord bot is ready and connected")
				return nil
			}
		}
	}
}

// Stop stops the Discord bot
func (b *Bot) Stop() error {
	b.logger.WithDiscord().Info("Stopping Discord bot")
	return b.session.Close()
}

// SendMessage sends a message to a channel, splitting it when it is over Discord's limit
func (b *Bot) SendMessage(channelID, content string) (*discordgo.Message, error) {
	if content == "" {
		return nil, fmt.Errorf("message content cannot be empty")
	}

	if len(content) > report.DiscordMessageLimit {
		return b.sendChunks(channelID, report.NewChunker(1900).SplitWithParts(content))
	}

	message, err := b.session.ChannelMessageSend(channelID, content)
	if err != nil {
		b.logger.DiscordError("send_message", err)
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	b.logger.DiscordMessage(channelID, message.ID, len(content))
	return message, nil
}

// SendEmbed sends an embedded message to a channel
func (b *Bot) SendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	message, err := b.session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		b.logger.DiscordError("send_embed", err)
		return nil, fmt.Errorf("failed to send embed: %w", err)
	}

	b.logger.DiscordMessage(channelID, message.ID, len(embed.Description))
	return message, nil
}

// SendTable sends a rendered table as one or more code blocks
func (b *Bot) SendTable(channelID, title, table string) error {
	chunker := &report.Chunker{MaxLength: 1900, CodeBlock: true}
	chunks := chunker.Split(table)
	if len(chunks) == 0 {
		return nil
	}
	chunks[0] = "**" + title + "**\n" + chunks[0]

	_, err := b.sendChunks(channelID, chunks)
	return err
}

func (b *Bot) sendChunks(channelID string, chunks []string) (*discordgo.Message, error) {
	var firstMessage *discordgo.Message
	for i, chunk := range chunks {
		message, err := b.session.ChannelMessageSend(channelID, chunk)
		if err != nil {
			b.logger.DiscordError("send_chunk", err)
			return firstMessage, fmt.Errorf("failed to send message part %d: %w", i+1, err)
		}

		if i == 0 {
			firstMessage = message
		}

		b.logger.DiscordMessage(channelID, message.ID, len(chunk))

		if i < len(chunks)-1 {
			time.Sleep(100 * time.Millisecond)
		}
	}

	return firstMessage, nil
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	b.mu.Lock()
	b.ready = true
	b.mu.Unlock()

	b.logger.WithDiscord().WithFields(logrus.Fields{
		"bot_user_id": event.User.ID,
		"guild_count": len(event.Guilds),
	}).Info("Discord bot ready")

	if err := s.UpdateGameStatus(0, "🔮 "+CommandPrefix+" help"); err != nil {
		b.logger.WithDiscord().WithError(err).Warn("Failed to set bot status")
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	if m.ChannelID != b.channelID {
		return
	}

	cmd, ok := ParseCommand(m.Content)
	if !ok {
		return
	}

	// refresh can take seconds; keep the gateway event loop free
	go b.handleCommand(s, m, cmd)
}

func (b *Bot) handleCommand(s *discordgo.Session, m *discordgo.MessageCreate, cmd Command) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithDiscord().WithField("panic", r).Error("Command handler panic recovered")

			embed := &discordgo.MessageEmbed{
				Title:       "❌ Command Error",
				Description: "An unexpected error occurred while processing your command.",
				Color:       colorFailure,
				Timestamp:   time.Now().Format(time.RFC3339),
			}
			if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
				b.logger.WithDiscord().WithError(err).Error("Failed to send error embed")
			}
		}
	}()

	start := time.Now()
	log := b.logger.WithUserID(m.Author.ID).WithFields(logrus.Fields{
		"component": "discord",
		"command":   cmd.Name,
		"args":      cmd.Args,
	})
	log.Info("Processing bot command")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	resp := b.handler.Handle(ctx, cmd)

	var err error
	if resp.Table {
		err = b.SendTable(m.ChannelID, resp.Title, resp.Body)
	} else {
		_, err = b.SendEmbed(m.ChannelID, &discordgo.MessageEmbed{
			Title:       resp.Title,
			Description: report.Truncate(resp.Body, 4096),
			Color:       resp.Color,
			Timestamp:   time.Now().Format(time.RFC3339),
		})
	}
	if err != nil {
		log.WithError(err).Error("Failed to send command response")
	}

	log.WithFields(logrus.Fields{
		"processing_time": time.Since(start),
		"command_count":   b.handler.CommandsHandled(),
	}).Info("Bot command completed")
}

// IsReady returns whether the bot is ready to send messages
func (b *Bot) IsReady() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ready
}

// GetChannelID returns the configured channel ID
func (b *Bot) GetChannelID() string {
	return b.channelID
}
