package scheduler

import (
	"context"
	"strings"
	"testing"
	"time"

	"StockRoaster/internal/collector"
	"StockRoaster/internal/model"
	"StockRoaster/internal/pipeline"
)

type fakeLLM struct{ calls int }

func (f *fakeLLM) Generate(context.Context, string) (string, error) {
	f.calls++
	return "Roast A\nRoast B", nil
}

type fakeTelegram struct{ sent []string }

func (f *fakeTelegram) SendWithRetry(_ context.Context, text string, _ int) error {
	f.sent = append(f.sent, text)
	return nil
}

type fakeMail struct {
	subject, body string
	calls         int
}

func (f *fakeMail) Send(subject, htmlBody, _ string) error {
	f.calls++
	f.subject, f.body = subject, htmlBody
	return nil
}

func newDigest(t *testing.T, symbols ...string) (*Scheduler, *collector.MockFetcher, *fakeLLM) {
	t.Helper()
	m := &collector.MockFetcher{Price: 100}
	llm := &fakeLLM{}
	svc := pipeline.New(collector.NewResolver(m), collector.NewSnapshotBuilder(m, m), llm, pipeline.DefaultDefaults)
	s := NewScheduler(context.Background(), svc, symbols)
	s.now = func() time.Time { return time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC) }
	return s, m, llm
}

func TestRunDigestNow_Sequential(t *testing.T) {
	s, m, llm := newDigest(t, "AAPL", "TCS.NS", "  ")
	tg, mail := &fakeTelegram{}, &fakeMail{}
	s.Telegram, s.Email = tg, mail

	results := s.RunDigestNow()
	if len(results) != 2 {
		t.Fatalf("expected 2 results (blank symbol skipped), got %d", len(results))
	}
	if strings.Join(m.HistoryCalls, ",") != "AAPL,TCS.NS" {
		t.Errorf("expected watchlist order, got %v", m.HistoryCalls)
	}
	if llm.calls != 2 {
		t.Errorf("expected 2 LLM calls, got %d", llm.calls)
	}
	if len(tg.sent) != 3 || !strings.Contains(tg.sent[0], "2025-06-03") {
		t.Errorf("expected header plus one message per symbol, got %v", tg.sent)
	}
	if mail.calls != 1 || mail.subject != "Roast digest 2025-06-03" || strings.Count(mail.body, "<section>") != 2 {
		t.Errorf("unexpected email %q %q", mail.subject, mail.body)
	}
}

func TestRunDigestNow_FailureDoesNotStopOthers(t *testing.T) {
	s, _, _ := newDigest(t, "Nonexistent Widgets", "AAPL")
	tg := &fakeTelegram{}
	s.Telegram = tg

	results := s.RunDigestNow()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].OK() || results[0].Err.Kind != model.KindSymbolNotFound {
		t.Errorf("expected SymbolNotFound first, got %+v", results[0].Err)
	}
	if !results[1].OK() {
		t.Errorf("expected AAPL to succeed, got %v", results[1].Err)
	}
	if !strings.HasPrefix(tg.sent[1], "⚠️") || strings.HasPrefix(tg.sent[2], "⚠️") {
		t.Errorf("unexpected messages %q", tg.sent)
	}
}

func TestRegisterDigest(t *testing.T) {
	s, _, _ := newDigest(t, "AAPL")
	if err := s.RegisterDigest("0 0 18 * * 1-5"); err != nil {
		t.Fatal(err)
	}
	if len(s.Cron.Entries()) != 1 {
		t.Errorf("expected one cron entry, got %d", len(s.Cron.Entries()))
	}
	if err := s.RegisterDigest("not a cron"); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}
