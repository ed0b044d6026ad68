package worker

import (
	"context"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/google/uuid"
	"github.com/slack-go/slack"

	"github.com/tknv/feedclaw/pkg/config"
	"github.com/tknv/feedclaw/pkg/enrich"
	"github.com/tknv/feedclaw/pkg/hatebu"
	"github.com/tknv/feedclaw/pkg/logger"
	"github.com/tknv/feedclaw/pkg/slackx"
	"github.com/tknv/feedclaw/pkg/urls"
)

// ChannelClient is the Slack surface the worker needs; *slackx.Client
// satisfies it.
type ChannelClient interface {
	FetchUnreplied(ctx context.Context, channelID string, limit int) ([]slackx.Message, error)
	PostReply(ctx context.Context, channelID, threadTS, text string, blocks []slack.Block) (string, error)
}

// URLResolver resolves aggregator URLs to their publisher form.
type URLResolver interface {
	Resolve(ctx context.Context, extracted urls.Extracted) urls.Extracted
}

// StatusChecker probes a URL before spending an enrichment on it.
type StatusChecker interface {
	Status(ctx context.Context, rawURL string) (status int, ok bool)
}

// BookmarkClient fetches social bookmark context for a URL.
type BookmarkClient interface {
	FetchEntry(ctx context.Context, rawURL string) (*hatebu.Entry, error)
}

// Result is the outcome of one batch pass. Counts partition the fetched
// candidates: processed = success + error + skipped + remaining when the
// pass times out.
type Result struct {
	BatchID        string
	ProcessedCount int
	SuccessCount   int
	ErrorCount     int
	SkippedCount   int
	TimedOut       bool
	RemainingCount int
}

type itemOutcome int

const (
	itemSuccess itemOutcome = iota
	itemSkipped
	itemFailed
)

// Worker runs the fetch-enrich-reply cycle against one channel.
type Worker struct {
	channel   ChannelClient
	enricher  enrich.Enricher
	resolver  URLResolver
	checker   StatusChecker  // nil disables the reachability probe
	bookmarks BookmarkClient // nil disables bookmark context

	channelID    string
	messageLimit int
	postDelay    time.Duration
	interval     time.Duration
	schedule     string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg *config.Config, channel ChannelClient, enricher enrich.Enricher, resolver URLResolver, checker StatusChecker, bookmarks BookmarkClient) *Worker {
	return &Worker{
		channel:      channel,
		enricher:     enricher,
		resolver:     resolver,
		checker:      checker,
		bookmarks:    bookmarks,
		channelID:    cfg.Slack.FeedChannelID,
		messageLimit: cfg.Worker.MessageLimit,
		postDelay:    cfg.PostDelay(),
		interval:     cfg.PollingIntervalDuration(),
		schedule:     cfg.Worker.PollingSchedule,
		now:          time.Now,
		sleep:        sleepCtx,
	}
}

// Run polls the channel until ctx is cancelled. Each pass gets the polling
// interval as its time budget so a slow batch cannot pile up behind the
// next tick.
func (w *Worker) Run(ctx context.Context) error {
	logger.InfoCF("worker", "polling loop started", map[string]interface{}{
		"channel_id": w.channelID,
		"interval":   w.interval.String(),
		"schedule":   w.schedule,
	})
	defer logger.InfoC("worker", "polling loop stopped")

	for {
		result, err := w.ProcessPending(ctx, w.interval)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.ErrorCF("worker", "batch pass failed", map[string]interface{}{
				"batch_id": result.BatchID,
				"error":    err.Error(),
			})
		} else {
			logger.InfoCF("worker", "batch pass complete", map[string]interface{}{
				"batch_id":  result.BatchID,
				"processed": result.ProcessedCount,
				"success":   result.SuccessCount,
				"errors":    result.ErrorCount,
				"skipped":   result.SkippedCount,
				"timed_out": result.TimedOut,
				"remaining": result.RemainingCount,
			})
		}

		if err := w.sleep(ctx, w.nextWait()); err != nil {
			return err
		}
	}
}

// nextWait is the fixed interval unless a cron schedule is configured, in
// which case the next tick wins.
func (w *Worker) nextWait() time.Duration {
	if w.schedule == "" {
		return w.interval
	}
	next, err := gronx.NextTick(w.schedule, false)
	if err != nil {
		logger.WarnCF("worker", "cron schedule evaluation failed, using interval", map[string]interface{}{
			"schedule": w.schedule,
			"error":    err.Error(),
		})
		return w.interval
	}
	wait := time.Until(next)
	if wait < 0 {
		wait = 0
	}
	return wait
}

// ProcessPending fetches unreplied messages and enriches them oldest first.
// The budget is checked only between items, so one slow item can overshoot
// it; budget <= 0 means unlimited.
func (w *Worker) ProcessPending(ctx context.Context, budget time.Duration) (Result, error) {
	result := Result{BatchID: uuid.NewString()}

	messages, err := w.channel.FetchUnreplied(ctx, w.channelID, w.messageLimit)
	if err != nil {
		return result, err
	}
	if len(messages) == 0 {
		return result, nil
	}

	start := w.now()
	for i, msg := range messages {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if budget > 0 && w.now().Sub(start) >= budget {
			result.TimedOut = true
			result.RemainingCount = len(messages) - i
			logger.WarnCF("worker", "batch budget exhausted", map[string]interface{}{
				"batch_id":  result.BatchID,
				"remaining": result.RemainingCount,
			})
			return result, nil
		}

		outcome, err := w.processItem(ctx, msg)
		if err != nil {
			return result, err
		}
		result.ProcessedCount++
		switch outcome {
		case itemSuccess:
			result.SuccessCount++
		case itemSkipped:
			result.SkippedCount++
		case itemFailed:
			result.ErrorCount++
		}
	}
	return result, nil
}

// processItem handles one message end to end. A non-nil error is returned
// only for context cancellation; everything else is folded into the
// outcome so the batch keeps going.
func (w *Worker) processItem(ctx context.Context, msg slackx.Message) (itemOutcome, error) {
	extracted := urls.Extract(msg.Text)
	if extracted.Empty() {
		logger.DebugCF("worker", "no URL in message, skipping", map[string]interface{}{
			"thread_ts": msg.TS,
		})
		return itemSkipped, nil
	}

	resolved := w.resolver.Resolve(ctx, extracted)

	if w.checker != nil {
		if status, ok := w.checker.Status(ctx, resolved.Primary); ok && urls.IsPermanentFailure(status) {
			logger.InfoCF("worker", "primary URL permanently unavailable, skipping", map[string]interface{}{
				"thread_ts": msg.TS,
				"url":       resolved.Primary,
				"status":    status,
			})
			return itemSkipped, nil
		}
	}

	var entry *hatebu.Entry
	if w.bookmarks != nil {
		entry, _ = w.bookmarks.FetchEntry(ctx, resolved.Primary)
	}

	content, err := w.enricher.Enrich(ctx, enrich.Request{
		PrimaryURL:    resolved.Primary,
		SecondaryURLs: resolved.Secondary,
		Bookmarks:     entry,
	})
	if err != nil {
		if ctx.Err() != nil {
			return itemFailed, ctx.Err()
		}
		logger.ErrorCF("worker", "enrichment failed", map[string]interface{}{
			"thread_ts": msg.TS,
			"urls":      strings.Join(resolved.All(), " "),
			"error":     err.Error(),
		})
		return itemFailed, nil
	}

	for i, part := range renderReply(content, entry) {
		if i > 0 {
			if err := w.sleep(ctx, w.postDelay); err != nil {
				return itemFailed, err
			}
		}
		if _, err := w.channel.PostReply(ctx, w.channelID, msg.TS, part.fallback, part.blocks); err != nil {
			if ctx.Err() != nil {
				return itemFailed, ctx.Err()
			}
			logger.ErrorCF("worker", "reply post failed", map[string]interface{}{
				"thread_ts": msg.TS,
				"part":      i,
				"error":     err.Error(),
			})
			return itemFailed, nil
		}
	}

	logger.InfoCF("worker", "message enriched", map[string]interface{}{
		"thread_ts": msg.TS,
		"url":       resolved.Primary,
	})
	return itemSuccess, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
