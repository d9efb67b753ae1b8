// Command panelwatch runs the trading panel's polling core headless: it
// keeps the order book, positions and holdings views synchronized against
// the backend and logs bucket transitions as they apply.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/wealthocean/tradepanel/config"
	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/observability"
	"github.com/wealthocean/tradepanel/internal/orderbook"
	"github.com/wealthocean/tradepanel/internal/portfolio"
	"github.com/wealthocean/tradepanel/internal/rest"
	"github.com/wealthocean/tradepanel/internal/schema"
	"github.com/wealthocean/tradepanel/internal/session"
	"github.com/wealthocean/tradepanel/internal/telemetry"
)

const (
	defaultConfigPath = "config/panel.yaml"
	loggerPrefix      = "panelwatch "

	envUsername = "PANEL_USERNAME"
	envPassword = "PANEL_PASSWORD"

	probeTimeout             = 60 * time.Second
	probeInitialInterval     = 500 * time.Millisecond
	probeMaxInterval         = 10 * time.Second
	telemetryShutdownTimeout = 5 * time.Second
)

type flags struct {
	configPath string
	baseURL    string
	interval   time.Duration
	tokenFile  string
}

func main() {
	opts := parseFlags()
	ctx, cancel := newSignalContext()
	defer cancel()

	stdlog := log.New(os.Stdout, loggerPrefix, log.LstdFlags|log.Lmicroseconds)
	logger := observability.NewStdLogger(stdlog)

	settings, err := config.Load(opts.configPath)
	if err != nil {
		stdlog.Fatalf("load config: %v", err)
	}
	if opts.baseURL != "" {
		settings.BaseURL = opts.baseURL
	}
	if opts.interval > 0 {
		settings.PollInterval = opts.interval
	}
	if err := settings.Validate(); err != nil {
		stdlog.Fatalf("validate config: %v", err)
	}
	stdlog.Printf("configuration initialised: base_url=%s, poll_interval=%v",
		settings.BaseURL, settings.PollInterval)

	provider, shutdownTelemetry, err := telemetry.Init(ctx, settings.Telemetry)
	if err != nil {
		stdlog.Fatalf("initialize telemetry: %v", err)
	}
	metrics, err := telemetry.NewMetrics(provider)
	if err != nil {
		stdlog.Fatalf("initialize metrics: %v", err)
	}

	store, err := newSessionStore(opts.tokenFile)
	if err != nil {
		stdlog.Fatalf("open session store: %v", err)
	}

	client, err := rest.NewClient(settings.BaseURL, store,
		rest.WithTimeout(settings.HTTPTimeout),
		rest.WithRateLimit(settings.RequestsPerSecond),
		rest.WithLogger(logger))
	if err != nil {
		stdlog.Fatalf("build backend client: %v", err)
	}

	if err := waitForBackend(ctx, client, stdlog); err != nil {
		stdlog.Fatalf("backend unreachable: %v", err)
	}

	if err := ensureSession(ctx, client, store); err != nil {
		stdlog.Fatalf("establish session: %v", err)
	}
	stdlog.Print("session established")

	bookSync, err := orderbook.NewSynchronizer(client, store,
		orderbook.WithInterval(settings.PollInterval),
		orderbook.WithLogger(logger),
		orderbook.WithMetrics(metrics),
		orderbook.WithOnUpdate(func(book schema.OrderBook) {
			counts := book.Counts()
			stdlog.Printf("order book updated: pending=%d traded=%d rejected=%d cancelled=%d others=%d",
				counts[schema.StatusPending], counts[schema.StatusTraded],
				counts[schema.StatusRejected], counts[schema.StatusCancelled],
				counts[schema.StatusOther])
		}),
		orderbook.WithOnAuthExpired(func() {
			stdlog.Print("session rejected by backend, shutting down")
			cancel()
		}))
	if err != nil {
		stdlog.Fatalf("build order book synchronizer: %v", err)
	}

	positions, err := portfolio.NewPositionsView(client, func(book schema.PositionBook) {
		stdlog.Printf("positions updated: open=%d closed=%d", len(book.Open), len(book.Closed))
	}, portfolio.WithRefreshInterval(settings.PollInterval),
		portfolio.WithViewLogger(logger),
		portfolio.WithViewMetrics(metrics))
	if err != nil {
		stdlog.Fatalf("build positions view: %v", err)
	}

	holdings, err := portfolio.NewHoldingsView(client, func(report schema.HoldingsReport) {
		stdlog.Printf("holdings updated: holdings=%d accounts=%d", len(report.Holdings), len(report.Summary))
	}, portfolio.WithRefreshInterval(settings.PollInterval),
		portfolio.WithViewLogger(logger),
		portfolio.WithViewMetrics(metrics))
	if err != nil {
		stdlog.Fatalf("build holdings view: %v", err)
	}

	bookSync.Start()
	positions.Start()
	holdings.Start()
	bookSync.RefreshNow()
	positions.RefreshNow()
	holdings.RefreshNow()

	stdlog.Print("panelwatch started; awaiting shutdown signal")
	<-ctx.Done()
	stdlog.Print("shutdown signal received, initiating graceful shutdown")

	shutdownStart := time.Now()
	bookSync.Stop()
	positions.Stop()
	holdings.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer shutdownCancel()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		stdlog.Printf("shutdown telemetry: %v", err)
	}

	stdlog.Printf("shutdown completed in %v", time.Since(shutdownStart))
}

func parseFlags() flags {
	var opts flags
	flag.StringVar(&opts.configPath, "config", "",
		fmt.Sprintf("Path to panel configuration file (default: %s)", defaultConfigPath))
	flag.StringVar(&opts.baseURL, "base-url", "", "Backend base URL (overrides config)")
	flag.DurationVar(&opts.interval, "interval", 0, "Poll interval (overrides config)")
	flag.StringVar(&opts.tokenFile, "token-file", "", "Path to the persisted session token (default: in-memory)")
	flag.Parse()
	if opts.configPath == "" {
		opts.configPath = filepath.Clean(defaultConfigPath)
	}
	return opts
}

func newSignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newSessionStore(tokenFile string) (session.Store, error) {
	if tokenFile == "" {
		return session.NewMemoryStore(""), nil
	}
	return session.NewFileStore(tokenFile)
}

// waitForBackend probes the backend until it answers anything at all.
// Auth rejections count as reachable; only transport failures retry.
func waitForBackend(ctx context.Context, client *rest.Client, stdlog *log.Logger) error {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = probeInitialInterval
	policy.MaxInterval = probeMaxInterval

	for {
		_, err := client.Me(probeCtx)
		if err == nil || errs.CodeOf(err) != errs.CodeNetwork {
			return nil
		}
		wait := policy.NextBackOff()
		stdlog.Printf("backend not reachable, retrying in %v: %v", wait, err)
		select {
		case <-probeCtx.Done():
			return fmt.Errorf("probe backend: %w", probeCtx.Err())
		case <-time.After(wait):
		}
	}
}

// ensureSession logs in with the credentials from the environment, falling
// back to a token already present in the store.
func ensureSession(ctx context.Context, client *rest.Client, store session.Store) error {
	username := os.Getenv(envUsername)
	password := os.Getenv(envPassword)
	if username != "" && password != "" {
		_, err := client.Login(ctx, schema.Credentials{Username: username, Password: password})
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		return nil
	}
	if store.Token() == "" {
		return fmt.Errorf("no session token and no %s/%s credentials", envUsername, envPassword)
	}
	return nil
}
