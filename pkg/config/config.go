package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Slack   SlackConfig   `json:"slack"`
	Agent   AgentConfig   `json:"agent"`
	Worker  WorkerConfig  `json:"worker"`
	Hatebu  HatebuConfig  `json:"hatebu"`
	Logging LoggingConfig `json:"logging"`
}

type SlackConfig struct {
	BotToken      string `json:"bot_token" env:"SLACK_BOT_TOKEN"`
	FeedChannelID string `json:"feed_channel_id" env:"FEED_CHANNEL_ID"`
}

type AgentConfig struct {
	APIKey        string `json:"api_key" env:"ANTHROPIC_API_KEY"`
	Model         string `json:"model" env:"FEEDCLAW_AGENT_MODEL"`
	MaxTokens     int    `json:"max_tokens" env:"FEEDCLAW_AGENT_MAX_TOKENS"`
	MaxSearchUses int    `json:"max_search_uses" env:"FEEDCLAW_AGENT_MAX_SEARCH_USES"`
}

type WorkerConfig struct {
	PollingInterval int    `json:"polling_interval" env:"FEEDCLAW_POLLING_INTERVAL"`
	PollingSchedule string `json:"polling_schedule" env:"FEEDCLAW_POLLING_SCHEDULE"`
	MessageLimit    int    `json:"message_limit" env:"FEEDCLAW_MESSAGE_LIMIT"`
	PostDelayMs     int    `json:"post_delay_ms" env:"FEEDCLAW_POST_DELAY_MS"`
}

type HatebuConfig struct {
	Enabled bool `json:"enabled" env:"FEEDCLAW_HATEBU_ENABLED"`
}

type LoggingConfig struct {
	Level string `json:"level" env:"FEEDCLAW_LOG_LEVEL"`
	File  string `json:"file" env:"FEEDCLAW_LOG_FILE"`
}

func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Model:         "claude-sonnet-4-5",
			MaxTokens:     16384,
			MaxSearchUses: 8,
		},
		Worker: WorkerConfig{
			PollingInterval: 600,
			MessageLimit:    10,
			PostDelayMs:     1000,
		},
		Hatebu: HatebuConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// LoadConfig reads the JSON config at path (missing file is fine, defaults
// apply) and then applies environment variable overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Slack.BotToken == "" {
		return fmt.Errorf("slack bot token is required (SLACK_BOT_TOKEN)")
	}
	if c.Slack.FeedChannelID == "" {
		return fmt.Errorf("feed channel ID is required (FEED_CHANNEL_ID)")
	}
	if c.Worker.PollingInterval <= 0 {
		return fmt.Errorf("polling_interval must be positive, got %d", c.Worker.PollingInterval)
	}
	if c.Worker.MessageLimit <= 0 {
		return fmt.Errorf("message_limit must be positive, got %d", c.Worker.MessageLimit)
	}
	if c.Worker.PollingSchedule != "" && !gronx.New().IsValid(c.Worker.PollingSchedule) {
		return fmt.Errorf("polling_schedule is not a valid cron expression: %q", c.Worker.PollingSchedule)
	}
	if c.Agent.MaxSearchUses <= 0 {
		return fmt.Errorf("max_search_uses must be positive, got %d", c.Agent.MaxSearchUses)
	}
	return nil
}

func (c *Config) PollingIntervalDuration() time.Duration {
	return time.Duration(c.Worker.PollingInterval) * time.Second
}

func (c *Config) PostDelay() time.Duration {
	return time.Duration(c.Worker.PostDelayMs) * time.Millisecond
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
