package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.yaml.in/yaml/v3"
)

// DefaultPort is the port Plex is usually pointed at.
const DefaultPort = 32500

// Destination kinds.
const (
	KindDiscord = "discord"
	KindSlack   = "slack"
)

var (
	tokenPattern     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	serverURLPattern = regexp.MustCompile(`(?:/desktop|/web/index\.html)#!/server/[a-zA-Z0-9]+/?$`)
	discordPattern   = regexp.MustCompile(`^https://discord(?:app)?\.com/api/webhooks/([0-9]+)/([a-zA-Z0-9_-]+)$`)
	slackPattern     = regexp.MustCompile(`^https://hooks\.slack\.com/services/[a-zA-Z0-9_/-]+$`)
)

// Config represents the main application configuration
type Config struct {
	// Inbound webhook and link target
	Plex PlexConfig `yaml:"plex"`

	// Outbound chat webhooks
	Webhooks WebhooksConfig `yaml:"webhooks"`

	// Telegram bot destination
	Telegram TelegramConfig `yaml:"telegram"`

	// Free-text announcements
	Announce AnnounceConfig `yaml:"announce"`

	// HTTP listener
	Server ServerConfig `yaml:"server"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// PlexConfig holds the media server settings
type PlexConfig struct {
	ServerURL    string   `env:"PLEX_SERVER_URL"    yaml:"server_url"`    // Web app URL ending in #!/server/<id>
	WebhookToken string   `env:"PLEX_WEBHOOK_TOKEN" yaml:"webhook_token"` // Secret path segment
	Libraries    []string `env:"UPDATED_LIBRARIES"  yaml:"libraries"`     // Allow-list, empty allows all
}

// WebhooksConfig holds the outbound webhook destinations
type WebhooksConfig struct {
	URLs    []string         `env:"DISCORD_WEBHOOK_URLS" yaml:"urls"` // Discord or Slack webhook URLs
	Discord []DiscordWebhook `env:"-"                    yaml:"discord,omitempty"`

	// Legacy single-destination variables
	LegacyURL          string `env:"DISCORD_WEBHOOK_URL"   yaml:"-"`
	LegacyDiscordID    string `env:"DISCORD_WEBHOOK_ID"    yaml:"-"`
	LegacyDiscordToken string `env:"DISCORD_WEBHOOK_TOKEN" yaml:"-"`
}

// DiscordWebhook is a Discord webhook given as an id/token pair
type DiscordWebhook struct {
	ID    string `yaml:"id"`
	Token string `yaml:"token"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string  `env:"TELEGRAM_BOT_TOKEN" yaml:"bot_token"`
	ChatIDs  []int64 `env:"TELEGRAM_CHAT_IDS"  yaml:"chat_ids,omitempty"`
}

// Enabled reports whether a Telegram destination is configured
func (t TelegramConfig) Enabled() bool { return t.BotToken != "" }

// AnnounceConfig holds settings for free-text announcements
type AnnounceConfig struct {
	ThumbnailPath string `env:"ANNOUNCE_THUMBNAIL_PATH" yaml:"thumbnail_path,omitempty"` // Default image, optional
}

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Port         int   `env:"TCP_PORT_32500" yaml:"port"`
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" yaml:"max_body_bytes,omitempty"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `env:"LOG_LEVEL" yaml:"log_level"` // "debug", "info", "warn", "error"
}

// DestinationConfig is one resolved outbound webhook
type DestinationConfig struct {
	Kind  string // KindDiscord or KindSlack
	URL   string // Full URL (Slack, or Discord when given as URL)
	ID    string // Discord webhook ID
	Token string // Discord webhook token
}

// ConfigError reports an invalid configuration value
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Reason
}

// Default returns a Config with defaults applied
func Default() Config {
	return Config{
		Server: ServerConfig{Port: DefaultPort},
		App:    AppConfig{LogLevel: "info"},
	}
}

// Load loads configuration from an optional YAML file with environment variable overrides.
// A missing file is not an error, so the relay can be configured through the environment alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// normalize trims list entries and folds legacy variables into the lists
func (c *Config) normalize() {
	c.Plex.Libraries = trimList(c.Plex.Libraries)
	c.Plex.ServerURL = strings.TrimRight(strings.TrimSpace(c.Plex.ServerURL), "/")

	urls := c.Webhooks.URLs
	if len(trimList(urls)) == 0 && c.Webhooks.LegacyURL != "" {
		urls = []string{c.Webhooks.LegacyURL}
	}
	c.Webhooks.URLs = trimList(urls)

	if c.Webhooks.LegacyDiscordID != "" || c.Webhooks.LegacyDiscordToken != "" {
		c.Webhooks.Discord = append(c.Webhooks.Discord, DiscordWebhook{
			ID:    c.Webhooks.LegacyDiscordID,
			Token: c.Webhooks.LegacyDiscordToken,
		})
		c.Webhooks.LegacyDiscordID = ""
		c.Webhooks.LegacyDiscordToken = ""
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Plex.WebhookToken == "" {
		return &ConfigError{Field: "plex.webhook_token", Reason: "is required (PLEX_WEBHOOK_TOKEN)"}
	}
	if !tokenPattern.MatchString(c.Plex.WebhookToken) {
		return &ConfigError{Field: "plex.webhook_token", Reason: "may only contain letters, digits, '-' and '_'"}
	}

	if c.Plex.ServerURL == "" {
		return &ConfigError{Field: "plex.server_url", Reason: "is required (PLEX_SERVER_URL)"}
	}
	if err := validateURL("plex.server_url", c.Plex.ServerURL); err != nil {
		return err
	}
	if !serverURLPattern.MatchString(c.Plex.ServerURL) {
		return &ConfigError{Field: "plex.server_url", Reason: "must end in /web/index.html#!/server/<id> or /desktop#!/server/<id>"}
	}

	dests, err := c.Destinations()
	if err != nil {
		return err
	}
	if len(dests) == 0 && !c.Telegram.Enabled() {
		return &ConfigError{Field: "webhooks.urls", Reason: "at least one destination must be configured"}
	}
	if c.Telegram.Enabled() && len(c.Telegram.ChatIDs) == 0 {
		return &ConfigError{Field: "telegram.chat_ids", Reason: "is required when telegram.bot_token is set"}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Reason: fmt.Sprintf("%d is out of range", c.Server.Port)}
	}
	if c.Server.MaxBodyBytes < 0 {
		return &ConfigError{Field: "server.max_body_bytes", Reason: "must not be negative"}
	}

	switch strings.ToLower(c.App.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return &ConfigError{Field: "app.log_level", Reason: "app.log_level must be one of debug, info, warn, error"}
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}

	return nil
}

// Destinations resolves the configured webhook URLs and id/token pairs.
func (c *Config) Destinations() ([]DestinationConfig, error) {
	out := make([]DestinationConfig, 0, len(c.Webhooks.URLs)+len(c.Webhooks.Discord))
	for i, raw := range c.Webhooks.URLs {
		d, err := ParseDestination(raw)
		if err != nil {
			return nil, &ConfigError{Field: fmt.Sprintf("webhooks.urls[%d]", i), Reason: err.Error()}
		}
		out = append(out, d)
	}
	for i, wh := range c.Webhooks.Discord {
		if wh.ID == "" || wh.Token == "" {
			return nil, &ConfigError{Field: fmt.Sprintf("webhooks.discord[%d]", i), Reason: "id and token are required"}
		}
		out = append(out, DestinationConfig{Kind: KindDiscord, ID: wh.ID, Token: wh.Token})
	}
	return out, nil
}

// ParseDestination classifies a webhook URL as Discord or Slack.
func ParseDestination(raw string) (DestinationConfig, error) {
	if m := discordPattern.FindStringSubmatch(raw); m != nil {
		return DestinationConfig{Kind: KindDiscord, URL: raw, ID: m[1], Token: m[2]}, nil
	}
	if slackPattern.MatchString(raw) {
		return DestinationConfig{Kind: KindSlack, URL: raw}, nil
	}
	return DestinationConfig{}, fmt.Errorf("invalid webhook url: %s", redact(raw))
}

// validateURL checks that raw is an absolute http(s) URL with a host.
func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ConfigError{Field: field, Reason: fmt.Sprintf("invalid URL: %v", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ConfigError{Field: field, Reason: "must use http or https"}
	}
	if u.Host == "" {
		return &ConfigError{Field: field, Reason: "missing host"}
	}
	return nil
}

// redact keeps the scheme and host of a URL so secrets do not end up in logs.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "<redacted>"
	}
	return u.Scheme + "://" + u.Host + "/..."
}

func trimList(in []string) []string {
	out := in[:0:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
