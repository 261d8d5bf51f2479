package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"StockRoaster/internal/notifier"
	"StockRoaster/internal/pipeline"
	"StockRoaster/internal/present"
)

// TextSender delivers a Telegram message to the configured chat.
type TextSender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// MailSender delivers one email.
type MailSender interface {
	Send(subject, htmlBody, textBody string) error
}

// Scheduler runs the roast digest: every watchlist symbol through the
// pipeline, one after another, delivered to Telegram and/or email.
// Nothing is stored between runs.
type Scheduler struct {
	Cron     *cron.Cron
	Roaster  notifier.Roaster
	Telegram TextSender // optional
	Email    MailSender // optional
	Symbols  []string
	Ctx      context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler. Overlapping digest runs are skipped.
func NewScheduler(ctx context.Context, roaster notifier.Roaster, symbols []string) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		Roaster: roaster,
		Symbols: symbols,
		Ctx:     ctx,
		now:     time.Now,
	}
}

// RegisterDigest schedules the digest with a six-field cron spec.
func (s *Scheduler) RegisterDigest(spec string) error {
	if _, err := s.Cron.AddFunc(spec, func() { s.RunDigestNow() }); err != nil {
		return fmt.Errorf("register digest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	slog.Info("scheduler started", "symbols", len(s.Symbols))
}

// Stop stops the cron scheduler and waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	slog.Info("scheduler stopped")
}

// RunDigestNow executes the digest immediately and returns its results.
func (s *Scheduler) RunDigestNow() []*pipeline.Result {
	ctx := s.Ctx
	slog.InfoContext(ctx, "running roast digest", "symbols", len(s.Symbols))

	results := make([]*pipeline.Result, 0, len(s.Symbols))
	failed := 0
	for _, sym := range s.Symbols {
		if ctx.Err() != nil {
			break
		}
		req, err := pipeline.ParseRequest(sym, "", "", "", "", s.Roaster.Defaults())
		if err != nil {
			slog.WarnContext(ctx, "digest symbol skipped", "symbol", sym, "error", err)
			continue
		}
		res := s.Roaster.Run(ctx, req)
		if !res.OK() {
			failed++
		}
		results = append(results, res)
	}

	s.deliver(ctx, results)
	slog.InfoContext(ctx, "roast digest done", "roasted", len(results)-failed, "failed", failed)
	return results
}

func (s *Scheduler) deliver(ctx context.Context, results []*pipeline.Result) {
	if len(results) == 0 {
		return
	}
	now := s.now()

	if s.Telegram != nil {
		var p present.TelegramPresenter
		s.trySend(ctx, notifier.FormatDigestHeader(now, len(results)))
		for _, res := range results {
			s.trySend(ctx, present.Render(p, res))
		}
	}

	if s.Email != nil {
		subject, body := notifier.FormatDigestEmail(now, results)
		if err := s.Email.Send(subject, body, ""); err != nil {
			slog.ErrorContext(ctx, "digest email failed", "error", err)
		}
	}
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := s.Telegram.SendWithRetry(ctx, text, 3); err != nil {
		slog.ErrorContext(ctx, "send notification failed", "error", err)
	}
}
