package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the bot
type Metrics struct {
	registry *prometheus.Registry

	// Inbound
	UpdatesReceivedTotal prometheus.Counter

	// Router outcomes by action kind, "none" when nothing matched
	DispatchesTotal *prometheus.CounterVec

	// Outbound sends
	SendsTotal   *prometheus.CounterVec
	SendDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		UpdatesReceivedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "telegram_updates_received_total",
				Help: "Total number of Telegram updates received",
			},
		),
		DispatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dispatches_total",
				Help: "Total number of dispatched text messages by resulting action",
			},
			[]string{"action"},
		),
		SendsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telegram_sends_total",
				Help: "Total number of outbound sends by action and status",
			},
			[]string{"action", "status"},
		),
		SendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "telegram_send_duration_seconds",
				Help:    "Duration of outbound sends in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
	}

	// Register all metrics
	m.registerMetrics()

	return m
}

// registerMetrics registers all metrics with the registry
func (m *Metrics) registerMetrics() {
	m.registry.MustRegister(m.UpdatesReceivedTotal)
	m.registry.MustRegister(m.DispatchesTotal)
	m.registry.MustRegister(m.SendsTotal)
	m.registry.MustRegister(m.SendDuration)
}

// ObserveSend records the outcome of one outbound send
func (m *Metrics) ObserveSend(action string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SendsTotal.WithLabelValues(action, status).Inc()
	m.SendDuration.WithLabelValues(action).Observe(time.Since(started).Seconds())
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Serve exposes /metrics on addr until ctx is cancelled
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown metrics server: %w", err)
		}
		return nil
	}
}
