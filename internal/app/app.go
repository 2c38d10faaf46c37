package app

import (
	"context"
	"fmt"
	"time"

	"hypermon/internal/config"
	"hypermon/internal/gateway/hyperliquid"
	"hypermon/internal/gateway/notifier"
	"hypermon/internal/logger"
	"hypermon/internal/monitor"
	"hypermon/internal/store/alertlog"
	livehttp "hypermon/internal/transport/http/live"

	"golang.org/x/sync/errgroup"
)

// App wires the exchange client, the poller and the delivery side
// together from a loaded configuration.
type App struct {
	cfg     *config.Config
	poller  *monitor.Poller
	http    *livehttp.Server
	journal *alertlog.Store
}

func New(cfg *config.Config) (*App, error) {
	logger.SetLevel(cfg.App.LogLevel)

	client, err := hyperliquid.NewClient(hyperliquid.Options{
		Testnet: cfg.Monitor.Testnet,
		BaseURL: cfg.Monitor.APIURL,
		Timeout: time.Duration(cfg.Monitor.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	var text notifier.TextNotifier
	if cfg.Notify.Telegram.Enabled {
		tg, err := notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("init telegram notifier: %w", err)
		}
		logger.Infof("telegram notifier ready, bot=%s", tg.BotUsername())
		text = tg
	} else {
		logger.Warnf("telegram disabled, alerts go to the log only")
		text = notifier.Log{}
	}

	var journal *alertlog.Store
	if cfg.Journal.Enabled {
		store, err := alertlog.New(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("open alert journal: %w", err)
		}
		journal = store
	}

	sink := newEventSink(cfg.Monitor.Address, text, journal)

	poller := monitor.NewPoller(monitor.Config{
		Address:   cfg.Monitor.Address,
		Interval:  time.Duration(cfg.Monitor.IntervalSeconds) * time.Second,
		FillLimit: cfg.Monitor.FillLimit,
	}, client, sink)

	a := &App{cfg: cfg, poller: poller, journal: journal}

	if cfg.App.HTTPAddr != "" {
		var reader livehttp.JournalReader
		if journal != nil {
			reader = journal
		}
		srv, err := livehttp.NewServer(livehttp.ServerConfig{
			Addr:    cfg.App.HTTPAddr,
			Status:  poller.StatusSnapshot,
			Journal: reader,
		})
		if err != nil {
			return nil, fmt.Errorf("init status api: %w", err)
		}
		a.http = srv
	}
	return a, nil
}

// Run blocks until ctx is cancelled or a component fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.poller.Run(ctx)
	})
	if a.http != nil {
		g.Go(func() error {
			logger.Infof("status api listening on %s", a.http.Addr())
			return a.http.Start(ctx)
		})
	}
	return g.Wait()
}

func (a *App) Close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			logger.Warnf("close alert journal: %v", err)
		}
	}
}
