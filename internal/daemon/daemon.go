package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/harun/groupsnap/internal/config"
	"github.com/harun/groupsnap/internal/dispatch"
	"github.com/harun/groupsnap/internal/logger"
	"github.com/harun/groupsnap/internal/metrics"
	"github.com/harun/groupsnap/internal/telegram"
	"github.com/harun/groupsnap/internal/tracing"
)

const serviceName = "groupsnap"

// Transport is the long-running receive loop the daemon drives
type Transport interface {
	Start() error
	OnShutdownRequested(fn func(reason string))
	RequestShutdown(reason string) error
}

// Daemon wires configuration, router and transport together
type Daemon struct {
	config  *config.Config
	logger  *logger.Logger
	router  *dispatch.Router
	metrics *metrics.Metrics
	bot     Transport

	lifecycle *LifecycleManager

	metricsMu     sync.Mutex
	metricsCancel context.CancelFunc
	wg            sync.WaitGroup

	startTime time.Time
	running   bool
	mu        sync.RWMutex
}

// Status represents daemon status
type Status struct {
	Running   bool
	Uptime    time.Duration
	StartTime time.Time
	Triggers  int
}

// New builds the router from cfg and connects the Telegram bot
func New(cfg *config.Config, log *logger.Logger, opts ...telegram.Option) (*Daemon, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	router, err := dispatch.NewFromConfig(cfg, dispatch.WithLogger(log.GetZerolog()))
	if err != nil {
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	m := metrics.NewMetrics()

	bot, err := telegram.New(cfg, router, log, append(opts, telegram.WithMetrics(m))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	tracing.InitOpenTelemetry(serviceName)

	return newDaemon(cfg, log, router, m, bot), nil
}

func newDaemon(cfg *config.Config, log *logger.Logger, router *dispatch.Router, m *metrics.Metrics, bot Transport) *Daemon {
	d := &Daemon{
		config:  cfg,
		logger:  log,
		router:  router,
		metrics: m,
		bot:     bot,
	}
	d.lifecycle = NewLifecycleManager(d, cfg.PIDFile)

	// The metrics listener goes down before the bot drains its last update
	bot.OnShutdownRequested(func(reason string) {
		d.logger.Info().Str("reason", reason).Msg("Bot shutdown requested, closing metrics server")
		d.stopMetrics()
	})

	return d
}

// Start starts the bot and, when enabled, the metrics endpoint
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is already running")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	d.logger.Info().
		Int("triggers", len(d.router.Triggers())).
		Int("allowed_groups", len(d.config.AllowedGroupIDs)).
		Msg("Bot booting up")

	if err := d.lifecycle.Start(); err != nil {
		d.setStopped()
		return fmt.Errorf("failed to start lifecycle manager: %w", err)
	}

	if d.config.Metrics.Enabled {
		ctx, cancel := context.WithCancel(context.Background())
		d.metricsMu.Lock()
		d.metricsCancel = cancel
		d.metricsMu.Unlock()
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.metrics.Serve(ctx, d.config.Metrics.Listen); err != nil {
				d.logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		d.logger.Info().Str("listen", d.config.Metrics.Listen).Msg("Metrics server started")
	}

	if err := d.bot.Start(); err != nil {
		d.stopMetrics()
		_ = d.lifecycle.Stop()
		d.setStopped()
		return fmt.Errorf("failed to start telegram bot: %w", err)
	}

	d.logger.Info().Msg("Bot is up and running")

	return nil
}

// Stop asks the transport to shut down and releases daemon resources
func (d *Daemon) Stop(reason string) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon is not running")
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info().Str("reason", reason).Msg("Stopping daemon")

	if err := d.bot.RequestShutdown(reason); err != nil {
		d.logger.Error().Err(err).Msg("Failed to stop telegram bot")
	}

	d.stopMetrics()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracing.ShutdownOpenTelemetry(ctx); err != nil {
		d.logger.Error().Err(err).Msg("Failed to flush traces")
	}

	if err := d.lifecycle.Stop(); err != nil {
		d.logger.Error().Err(err).Msg("Failed to stop lifecycle manager")
	}

	d.logger.Info().Msg("Daemon stopped")

	return nil
}

// stopMetrics is safe to call more than once
func (d *Daemon) stopMetrics() {
	d.metricsMu.Lock()
	cancel := d.metricsCancel
	d.metricsCancel = nil
	d.metricsMu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.wg.Wait()
}

func (d *Daemon) setStopped() {
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
}

// Status returns the daemon status
func (d *Daemon) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	status := Status{
		Running:  d.running,
		Triggers: len(d.router.Triggers()),
	}

	if d.running {
		status.Uptime = time.Since(d.startTime)
		status.StartTime = d.startTime
	}

	return status
}

// Wait blocks until SIGINT, SIGTERM or ctx cancellation, then stops the daemon
func (d *Daemon) Wait(ctx context.Context) error {
	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	reason := "context cancelled"
	select {
	case sig := <-sigChan:
		reason = sig.String()
		d.logger.Info().Str("signal", reason).Msg("Received signal")
	case <-ctx.Done():
	}

	return d.Stop(reason)
}

// Run starts the daemon and blocks until it is told to stop
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(); err != nil {
		return err
	}
	return d.Wait(ctx)
}

