package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tknv/feedclaw/pkg/config"
	"github.com/tknv/feedclaw/pkg/enrich"
	"github.com/tknv/feedclaw/pkg/hatebu"
	"github.com/tknv/feedclaw/pkg/logger"
	"github.com/tknv/feedclaw/pkg/slackx"
	"github.com/tknv/feedclaw/pkg/urls"
	"github.com/tknv/feedclaw/pkg/worker"
)

var version = "0.1.0"

func main() {
	configPath := flag.String("config", "~/.feedclaw/config.json", "path to config file")
	oneShot := flag.Bool("once", false, "run a single batch pass and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("feedclaw %s\n", version)
		return
	}

	// Missing .env is fine, real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.File != "" {
		if err := logger.EnableFileLogging(cfg.Logging.File); err != nil {
			fmt.Fprintf(os.Stderr, "log file: %v\n", err)
			os.Exit(1)
		}
	}

	logger.InfoCF("main", "feedclaw starting", map[string]interface{}{
		"version":    version,
		"channel_id": cfg.Slack.FeedChannelID,
		"model":      cfg.Agent.Model,
	})

	channel := slackx.New(cfg.Slack.BotToken)
	resolver := urls.NewResolver(urls.NewHTTPDecoder())
	checker := urls.NewChecker()
	agent := enrich.NewAgent(cfg.Agent)

	var bookmarks worker.BookmarkClient
	if cfg.Hatebu.Enabled {
		bookmarks = hatebu.NewClient()
	}

	w := worker.New(cfg, channel, agent, resolver, checker, bookmarks)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *oneShot {
		result, err := w.ProcessPending(ctx, 0)
		if err != nil {
			logger.ErrorCF("main", "batch pass failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
		logger.InfoCF("main", "batch pass complete", map[string]interface{}{
			"batch_id":  result.BatchID,
			"processed": result.ProcessedCount,
			"success":   result.SuccessCount,
			"errors":    result.ErrorCount,
			"skipped":   result.SkippedCount,
		})
		return
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.ErrorCF("main", "worker stopped with error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	logger.InfoC("main", "feedclaw stopped")
}
