package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"StockRoaster/internal/collector"
	"StockRoaster/internal/config"
	"StockRoaster/internal/logger"
	"StockRoaster/internal/model"
	"StockRoaster/internal/notifier"
	"StockRoaster/internal/pipeline"
	"StockRoaster/internal/roast"
	"StockRoaster/internal/scheduler"
	"StockRoaster/internal/web"
)

func main() {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, TracingEnabled: cfg.Log.Tracing}); err != nil {
		slog.Error("init logger", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config validation", "error", err)
		os.Exit(1)
	}
	slog.Info("stock roaster starting", "config", cfgPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Market data
	opts := collector.ClientOptions{
		Proxy:              cfg.MarketData.Proxy,
		Timeout:            cfg.MarketData.HistoryTimeout + 5*time.Second,
		InsecureSkipVerify: cfg.MarketData.InsecureSkipVerify,
	}
	var fetcher collector.Fetcher
	switch cfg.MarketData.Provider {
	case "rest":
		fetcher = collector.NewRESTFetcher(cfg.MarketData.BaseURL, cfg.MarketData.APIKey, opts)
	default:
		fetcher = collector.NewYahooFetcher(opts)
	}
	slog.Info("market data source", "provider", fetcher.Name())

	resolver := collector.NewResolver(fetcher)
	resolver.Timeout = cfg.MarketData.LookupTimeout
	snapshots := collector.NewSnapshotBuilder(fetcher, fetcher)
	snapshots.HistoryTimeout = cfg.MarketData.HistoryTimeout
	snapshots.ProfileTimeout = cfg.MarketData.ProfileTimeout

	// LLM
	llm, err := roast.NewGeminiClient(ctx, roast.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Gemini.Timeout,
		BaseURL: cfg.Gemini.BaseURL,
	})
	if err != nil {
		slog.Error("init gemini client", "error", err)
		os.Exit(1)
	}
	slog.Info("llm ready", "model", llm.Model())

	// Validate already checked these parse.
	period, _ := model.ParsePeriod(cfg.Roast.Period)
	tone, _ := model.ParseTone(cfg.Roast.Tone)
	svc := pipeline.New(resolver, snapshots, llm, pipeline.Defaults{Period: period, Tone: tone, Lines: cfg.Roast.Lines})

	var wg sync.WaitGroup

	// Telegram
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.MarketData.Proxy)
		if cfg.Telegram.Polling {
			bot := notifier.NewRoastBot(svc)
			wg.Add(1)
			go func() {
				defer wg.Done()
				tn.StartPolling(ctx, bot.Handle)
			}()
			slog.Info("telegram polling started")
		}
	}

	// Digest
	if cfg.Digest.Enabled {
		sched := scheduler.NewScheduler(ctx, svc, cfg.Digest.Symbols)
		if cfg.TelegramEnabled() {
			sched.Telegram = tn
		}
		if cfg.EmailEnabled() {
			sched.Email = notifier.NewEmailSender(notifier.EmailConfig{
				SMTPServer: cfg.Email.Host,
				SMTPPort:   cfg.Email.Port,
				SMTPUser:   cfg.Email.Username,
				SMTPPass:   cfg.Email.Password,
				From:       cfg.Email.From,
				To:         cfg.Email.To,
			})
		}
		if err := sched.RegisterDigest(cfg.Digest.Cron); err != nil {
			slog.Error("register digest", "error", err)
			os.Exit(1)
		}
		sched.Start()
		defer sched.Stop()

		if os.Getenv("RUN_ON_START") == "true" {
			slog.Info("RUN_ON_START enabled, running digest now")
			go sched.RunDigestNow()
		}
	}

	// HTTP
	router := web.NewRouter(web.NewRoastHandler(svc), cfg.HTTP.AllowOrigins)
	if err := web.NewServer(cfg.HTTP.Addr, router).Run(ctx); err != nil {
		slog.Error("http server", "error", err)
		cancel()
	}

	slog.Info("shutdown signal received, stopping")
	wg.Wait()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := logger.Shutdown(shutdownCtx); err != nil {
		slog.Warn("flush traces", "error", err)
	}
	slog.Info("stock roaster stopped")
}
