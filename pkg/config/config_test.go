package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("FEED_CHANNEL_ID", "C0123456789")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Worker.PollingInterval != 600 {
		t.Errorf("polling_interval=%d want 600", cfg.Worker.PollingInterval)
	}
	if cfg.Worker.MessageLimit != 10 {
		t.Errorf("message_limit=%d want 10", cfg.Worker.MessageLimit)
	}
	if !cfg.Hatebu.Enabled {
		t.Error("hatebu should be enabled by default")
	}
	if cfg.Agent.MaxSearchUses != 8 {
		t.Errorf("max_search_uses=%d want 8", cfg.Agent.MaxSearchUses)
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `{
		"slack": {"bot_token": "xoxb-file", "feed_channel_id": "CFILE"},
		"worker": {"polling_interval": 300, "message_limit": 5}
	}`)

	t.Setenv("SLACK_BOT_TOKEN", "xoxb-env")
	t.Setenv("FEEDCLAW_MESSAGE_LIMIT", "25")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	// env wins over file
	if cfg.Slack.BotToken != "xoxb-env" {
		t.Errorf("bot_token=%q want xoxb-env", cfg.Slack.BotToken)
	}
	if cfg.Worker.MessageLimit != 25 {
		t.Errorf("message_limit=%d want 25", cfg.Worker.MessageLimit)
	}
	// file wins over default
	if cfg.Worker.PollingInterval != 300 {
		t.Errorf("polling_interval=%d want 300", cfg.Worker.PollingInterval)
	}
	if cfg.Slack.FeedChannelID != "CFILE" {
		t.Errorf("feed_channel_id=%q want CFILE", cfg.Slack.FeedChannelID)
	}
}

func TestLoadConfigMissingToken(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "")
	t.Setenv("FEED_CHANNEL_ID", "C0123456789")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing bot token")
	}
}

func TestLoadConfigInvalidSchedule(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("FEED_CHANNEL_ID", "C0123456789")
	t.Setenv("FEEDCLAW_POLLING_SCHEDULE", "not a cron")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{broken`)

	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("FEED_CHANNEL_ID", "C0123456789")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
