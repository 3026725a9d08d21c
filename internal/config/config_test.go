package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testServerURL  = "https://app.plex.tv/desktop#!/server/9343ce14020b85edb29c9b0058b76c78aace83cf"
	testDiscordURL = "https://discord.com/api/webhooks/817154178161573942/LAlcPwYDSlOE-7xpxkkG_9Rgbl"
	testSlackURL   = "https://hooks.slack.com/services/T000/B000/XXXXXXXX"
)

type validateCase struct {
	name    string
	modify  func(*Config)
	wantErr string
}

// validConfig returns a minimal Config that passes Validate().
func validConfig() Config {
	cfg := Default()
	cfg.Plex = PlexConfig{ServerURL: testServerURL, WebhookToken: "secret-Token_1"}
	cfg.Webhooks = WebhooksConfig{URLs: []string{testDiscordURL}}
	return cfg
}

func TestValidate_CoreFields(t *testing.T) {
	t.Parallel()

	tests := []validateCase{
		{"valid", nil, ""},
		{"missing_token", func(c *Config) { c.Plex.WebhookToken = "" }, "plex.webhook_token: is required"},
		{"token_with_slash", func(c *Config) { c.Plex.WebhookToken = "a/b" }, "may only contain"},
		{"token_with_space", func(c *Config) { c.Plex.WebhookToken = "a b" }, "may only contain"},
		{"missing_server_url", func(c *Config) { c.Plex.ServerURL = "" }, "plex.server_url: is required"},
		{"server_url_ftp", func(c *Config) {
			c.Plex.ServerURL = "ftp://plex/web/index.html#!/server/abc"
		}, "must use http or https"},
		{"server_url_no_server_id", func(c *Config) {
			c.Plex.ServerURL = "https://plex.example.com/web/index.html"
		}, "must end in"},
		{"server_url_web_index", func(c *Config) {
			c.Plex.ServerURL = "https://example/web/index.html#!/server/ABC"
		}, ""},
		{"server_url_trailing_slash", func(c *Config) {
			c.Plex.ServerURL = testServerURL + "/"
		}, ""},
		{"invalid_log_level", func(c *Config) { c.App.LogLevel = "trace" }, "app.log_level must be one of"},
		{"warning_accepted", func(c *Config) { c.App.LogLevel = "warning" }, ""},
		{"port_too_high", func(c *Config) { c.Server.Port = 65536 }, "out of range"},
		{"port_zero", func(c *Config) { c.Server.Port = 0 }, "out of range"},
		{"port_negative", func(c *Config) { c.Server.Port = -1 }, "out of range"},
		{"port_max", func(c *Config) { c.Server.Port = 65535 }, ""},
		{"negative_body_limit", func(c *Config) { c.Server.MaxBodyBytes = -1 }, "must not be negative"},
	}

	runValidateTests(t, tests)
}

func TestValidate_Destinations(t *testing.T) {
	t.Parallel()

	tests := []validateCase{
		{"no_destinations", func(c *Config) { c.Webhooks.URLs = nil }, "at least one destination"},
		{"discordapp_host", func(c *Config) {
			c.Webhooks.URLs = []string{"https://discordapp.com/api/webhooks/1/abc"}
		}, ""},
		{"slack_only", func(c *Config) { c.Webhooks.URLs = []string{testSlackURL} }, ""},
		{"mixed", func(c *Config) { c.Webhooks.URLs = []string{testDiscordURL, testSlackURL} }, ""},
		{"unknown_host", func(c *Config) {
			c.Webhooks.URLs = []string{"https://example.com/hook"}
		}, "webhooks.urls[0]: invalid webhook url"},
		{"discord_http", func(c *Config) {
			c.Webhooks.URLs = []string{"http://discord.com/api/webhooks/1/abc"}
		}, "invalid webhook url"},
		{"discord_pair", func(c *Config) {
			c.Webhooks.URLs = nil
			c.Webhooks.Discord = []DiscordWebhook{{ID: "1", Token: "abc"}}
		}, ""},
		{"discord_pair_missing_token", func(c *Config) {
			c.Webhooks.Discord = []DiscordWebhook{{ID: "1"}}
		}, "id and token are required"},
		{"telegram_only", func(c *Config) {
			c.Webhooks.URLs = nil
			c.Telegram = TelegramConfig{BotToken: "123:abc", ChatIDs: []int64{42}}
		}, ""},
		{"telegram_missing_chats", func(c *Config) {
			c.Telegram = TelegramConfig{BotToken: "123:abc"}
		}, "telegram.chat_ids"},
	}

	runValidateTests(t, tests)
}

func runValidateTests(t *testing.T, tests []validateCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			if tt.modify != nil {
				tt.modify(&cfg)
			}
			cfg.normalize()
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr), "expected *ConfigError, got %T", err)
		})
	}
}

func TestValidateURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{"valid_http", "http://localhost:32400", ""},
		{"valid_https", "https://app.plex.tv/desktop", ""},
		{"ftp_scheme", "ftp://localhost", "must use http or https"},
		{"no_scheme", "localhost:32400", "must use http or https"},
		{"empty_string", "", "must use http or https"},
		{"missing_host", "http://", "missing host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateURL("test.url", tt.url)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseDestination(t *testing.T) {
	t.Parallel()

	d, err := ParseDestination(testDiscordURL)
	require.NoError(t, err)
	assert.Equal(t, KindDiscord, d.Kind)
	assert.Equal(t, "817154178161573942", d.ID)
	assert.Equal(t, "LAlcPwYDSlOE-7xpxkkG_9Rgbl", d.Token)

	d, err = ParseDestination(testSlackURL)
	require.NoError(t, err)
	assert.Equal(t, KindSlack, d.Kind)
	assert.Equal(t, testSlackURL, d.URL)

	_, err = ParseDestination("https://discord.com/api/webhooks/abc/secret-token")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-token", "token must not leak into errors")
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("libraries_trimmed", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Plex.Libraries = []string{" Movies", "", "TV Shows ", "  "}
		cfg.normalize()
		assert.Equal(t, []string{"Movies", "TV Shows"}, cfg.Plex.Libraries)
	})

	t.Run("legacy_url_used_when_list_empty", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Webhooks.URLs = []string{""}
		cfg.Webhooks.LegacyURL = testSlackURL
		cfg.normalize()
		assert.Equal(t, []string{testSlackURL}, cfg.Webhooks.URLs)
	})

	t.Run("legacy_url_ignored_when_list_set", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Webhooks.LegacyURL = testSlackURL
		cfg.normalize()
		assert.Equal(t, []string{testDiscordURL}, cfg.Webhooks.URLs)
	})

	t.Run("legacy_pair_appended", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Webhooks.LegacyDiscordID = "1"
		cfg.Webhooks.LegacyDiscordToken = "abc"
		cfg.normalize()
		assert.Equal(t, []DiscordWebhook{{ID: "1", Token: "abc"}}, cfg.Webhooks.Discord)
	})

	t.Run("server_url_slash_trimmed", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Plex.ServerURL = testServerURL + "/"
		cfg.normalize()
		assert.Equal(t, testServerURL, cfg.Plex.ServerURL)
	})
}

const minimalYAML = `
plex:
  server_url: "https://app.plex.tv/desktop#!/server/abc123"
  webhook_token: yaml-token
  libraries: [Movies]
webhooks:
  urls:
    - https://discord.com/api/webhooks/1/abc
`

func TestLoad_ValidMinimal(t *testing.T) {
	t.Parallel()
	path := writeTempYAML(t, minimalYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "yaml-token", cfg.Plex.WebhookToken)
	assert.Equal(t, []string{"Movies"}, cfg.Plex.Libraries)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.App.LogLevel)

	dests, err := cfg.Destinations()
	require.NoError(t, err)
	require.Len(t, dests, 1)
	assert.Equal(t, KindDiscord, dests[0].Kind)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid_yaml", func(t *testing.T) {
		t.Parallel()
		path := writeTempYAML(t, "{{invalid yaml}}")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})

	t.Run("path_is_directory", func(t *testing.T) {
		t.Parallel()
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("invalid_values", func(t *testing.T) {
		t.Parallel()
		path := writeTempYAML(t, strings.Replace(minimalYAML, "yaml-token", "bad/token", 1))
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "plex.webhook_token", cfgErr.Field)
	})
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("PLEX_WEBHOOK_TOKEN", "env-token")
	t.Setenv("PLEX_SERVER_URL", "https://example/web/index.html#!/server/ABC/")
	t.Setenv("DISCORD_WEBHOOK_URLS", testDiscordURL+","+testSlackURL)
	t.Setenv("UPDATED_LIBRARIES", "Movies, TV Shows")
	t.Setenv("TCP_PORT_32500", "8000")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_IDS", "1,2")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Plex.WebhookToken)
	assert.Equal(t, "https://example/web/index.html#!/server/ABC", cfg.Plex.ServerURL)
	assert.Equal(t, []string{"Movies", "TV Shows"}, cfg.Plex.Libraries)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, []int64{1, 2}, cfg.Telegram.ChatIDs)
	assert.Equal(t, "debug", cfg.App.LogLevel)

	dests, err := cfg.Destinations()
	require.NoError(t, err)
	require.Len(t, dests, 2)
	assert.Equal(t, KindDiscord, dests[0].Kind)
	assert.Equal(t, KindSlack, dests[1].Kind)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Setenv("PLEX_WEBHOOK_TOKEN", "env-token")
	t.Setenv("DISCORD_WEBHOOK_ID", "99")
	t.Setenv("DISCORD_WEBHOOK_TOKEN", "pair-token")

	cfg, err := Load(writeTempYAML(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Plex.WebhookToken)
	assert.Equal(t, []string{"Movies"}, cfg.Plex.Libraries, "unset env vars keep YAML values")

	dests, err := cfg.Destinations()
	require.NoError(t, err)
	require.Len(t, dests, 2)
	assert.Equal(t, DestinationConfig{Kind: KindDiscord, ID: "99", Token: "pair-token"}, dests[1])
}

func TestLoad_LegacySingleURL(t *testing.T) {
	t.Setenv("PLEX_WEBHOOK_TOKEN", "tok")
	t.Setenv("PLEX_SERVER_URL", testServerURL)
	t.Setenv("DISCORD_WEBHOOK_URL", testDiscordURL)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{testDiscordURL}, cfg.Webhooks.URLs)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DEBUG", ParseLevel("Debug").String())
	assert.Equal(t, "WARN", ParseLevel("warning").String())
	assert.Equal(t, "ERROR", ParseLevel("error").String())
	assert.Equal(t, "INFO", ParseLevel("nonsense").String())
}

// writeTempYAML creates a temporary YAML file and returns its path.
func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp yaml: %v", err)
	}
	return path
}
