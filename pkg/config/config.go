package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"osrs-alching/pkg/alch"
	"osrs-alching/pkg/view"
)

// DefaultUserAgent identifies the calculator to the RuneScape Wiki API
const DefaultUserAgent = "OSRS High Alchemy Calculator"

// Config holds the complete application configuration
type Config struct {
	OSRS    OSRSConfig    `yaml:"osrs"`
	Alch    AlchConfig    `yaml:"alch"`
	Catalog CatalogConfig `yaml:"catalog"`
	View    ViewConfig    `yaml:"view"`
	Output  OutputConfig  `yaml:"output"`
	Discord DiscordConfig `yaml:"discord"`
	Logging LoggingConfig `yaml:"logging"`
}

// OSRSConfig holds OSRS API configuration
type OSRSConfig struct {
	UserAgent         string  `yaml:"user_agent" env:"OSRS_API_USER_AGENT"`
	BaseURL           string  `yaml:"base_url" env:"OSRS_API_BASE_URL"`
	Timeout           string  `yaml:"timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// AlchConfig holds alchemy constants that may be tuned
type AlchConfig struct {
	NatureRunePrice int `yaml:"nature_rune_price" env:"NATURE_RUNE_PRICE"`
}

// CatalogConfig points at the static item catalog. Empty path uses the bundled one.
type CatalogConfig struct {
	Path string `yaml:"path" env:"CATALOG_PATH"`
}

// ViewConfig holds the initial table state and the per-column default directions
type ViewConfig struct {
	SortKey       string            `yaml:"sort_key"`
	SortDirection string            `yaml:"sort_direction"`
	ShowMembers   bool              `yaml:"show_members"`
	NewColumn     string            `yaml:"new_column_direction"`
	Columns       map[string]string `yaml:"column_directions,omitempty"`
}

// OutputConfig controls output formatting
type OutputConfig struct {
	MaxRows int    `yaml:"max_rows"`
	Format  string `yaml:"format"`
}

// DiscordConfig holds Discord bot configuration
type DiscordConfig struct {
	Token     string `yaml:"token" env:"DISCORD_TOKEN"`
	ChannelID string `yaml:"channel_id" env:"DISCORD_CHANNEL_ID"`
	GuildID   string `yaml:"guild_id,omitempty" env:"DISCORD_GUILD_ID"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

func defaults() *Config {
	return &Config{
		OSRS: OSRSConfig{
			UserAgent:         DefaultUserAgent,
			Timeout:           "30s",
			RequestsPerSecond: 2,
		},
		Alch: AlchConfig{
			NatureRunePrice: alch.DefaultNatureRunePrice,
		},
		View: ViewConfig{
			NewColumn: string(view.Asc),
		},
		Output: OutputConfig{
			MaxRows: 50,
			Format:  "terminal",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration for the Discord bot, which requires Discord credentials
func LoadConfig(configPath string) (*Config, error) {
	config, err := load(configPath)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := validateDiscord(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func load(configPath string) (*Config, error) {
	config := defaults()

	if configPath != "" {
		if err := loadYAMLFile(configPath, config); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := loadEnvironmentVariables(config); err != nil {
		return nil, err
	}

	return config, nil
}

// loadYAMLFile loads configuration from a YAML file
func loadYAMLFile(path string, config *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, config)
}

// loadEnvironmentVariables overrides config with environment variables
func loadEnvironmentVariables(config *Config) error {
	if userAgent := os.Getenv("OSRS_API_USER_AGENT"); userAgent != "" {
		config.OSRS.UserAgent = userAgent
	}
	if baseURL := os.Getenv("OSRS_API_BASE_URL"); baseURL != "" {
		config.OSRS.BaseURL = baseURL
	}
	if price := os.Getenv("NATURE_RUNE_PRICE"); price != "" {
		v, err := strconv.Atoi(price)
		if err != nil {
			return fmt.Errorf("invalid NATURE_RUNE_PRICE %q: %w", price, err)
		}
		config.Alch.NatureRunePrice = v
	}
	if path := os.Getenv("CATALOG_PATH"); path != "" {
		config.Catalog.Path = path
	}
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		config.Discord.Token = token
	}
	if channelID := os.Getenv("DISCORD_CHANNEL_ID"); channelID != "" {
		config.Discord.ChannelID = channelID
	}
	if guildID := os.Getenv("DISCORD_GUILD_ID"); guildID != "" {
		config.Discord.GuildID = guildID
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	return nil
}

// validateConfig ensures required configuration is present and well formed
func validateConfig(config *Config) error {
	if strings.TrimSpace(config.OSRS.UserAgent) == "" {
		return fmt.Errorf("a user agent string must be configured")
	}
	if config.Alch.NatureRunePrice <= 0 {
		return fmt.Errorf("nature rune price must be positive, got %d", config.Alch.NatureRunePrice)
	}
	if _, err := config.View.Sort(); err != nil {
		return err
	}
	if _, err := config.View.Defaults(); err != nil {
		return err
	}
	return nil
}

func validateDiscord(config *Config) error {
	if config.Discord.Token == "" {
		return fmt.Errorf("discord token is required (set DISCORD_TOKEN environment variable)")
	}
	if config.Discord.ChannelID == "" {
		return fmt.Errorf("discord channel ID is required (set DISCORD_CHANNEL_ID environment variable)")
	}
	return nil
}

// GetTimeout parses the API timeout, defaulting to 30s
func (c *OSRSConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil || duration <= 0 {
		return 30 * time.Second
	}
	return duration
}

// GetRequestsPerSecond returns the client-side request rate with bounds checking
func (c *OSRSConfig) GetRequestsPerSecond() float64 {
	if c.RequestsPerSecond <= 0 {
		return 2
	}
	if c.RequestsPerSecond > 10 {
		return 10
	}
	return c.RequestsPerSecond
}

// Sort returns the configured initial sort spec. A key without a direction
// starts in that column's default direction.
func (v *ViewConfig) Sort() (view.SortSpec, error) {
	if v.SortKey == "" && v.SortDirection == "" {
		return view.DefaultSort, nil
	}

	spec := view.DefaultSort
	if v.SortKey != "" {
		key, err := view.ParseSortKey(v.SortKey)
		if err != nil {
			return view.SortSpec{}, err
		}
		defaults, err := v.Defaults()
		if err != nil {
			return view.SortSpec{}, err
		}
		spec = view.SortSpec{Key: key, Direction: defaults.For(key)}
	}
	if v.SortDirection != "" {
		dir, err := view.ParseDirection(v.SortDirection)
		if err != nil {
			return view.SortSpec{}, err
		}
		spec.Direction = dir
	}
	return spec, nil
}

// Defaults builds the default direction table for newly selected columns
func (v *ViewConfig) Defaults() (view.DefaultDirections, error) {
	defaults := view.AscendingDefaults()

	if v.NewColumn != "" {
		dir, err := view.ParseDirection(v.NewColumn)
		if err != nil {
			return view.DefaultDirections{}, fmt.Errorf("new_column_direction: %w", err)
		}
		if dir == view.Desc {
			defaults = view.DescendingDefaults()
		}
	}

	for rawKey, rawDir := range v.Columns {
		key, err := view.ParseSortKey(rawKey)
		if err != nil {
			return view.DefaultDirections{}, fmt.Errorf("column_directions: %w", err)
		}
		dir, err := view.ParseDirection(rawDir)
		if err != nil {
			return view.DefaultDirections{}, fmt.Errorf("column_directions[%s]: %w", rawKey, err)
		}
		defaults = defaults.With(key, dir)
	}

	return defaults, nil
}
