package daemon

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/harun/groupsnap/internal/config"
	"github.com/harun/groupsnap/internal/dispatch"
	"github.com/harun/groupsnap/internal/logger"
	"github.com/harun/groupsnap/internal/metrics"
	"github.com/harun/groupsnap/internal/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records lifecycle calls
type fakeTransport struct {
	mu       sync.Mutex
	started  int
	reasons  []string
	hooks    []func(reason string)
	startErr error
}

func (f *fakeTransport) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started++
	return nil
}

func (f *fakeTransport) OnShutdownRequested(fn func(reason string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks = append(f.hooks, fn)
}

func (f *fakeTransport) RequestShutdown(reason string) error {
	f.mu.Lock()
	f.reasons = append(f.reasons, reason)
	hooks := append([]func(string){}, f.hooks...)
	f.mu.Unlock()

	for _, hook := range hooks {
		hook(reason)
	}
	return nil
}

func (f *fakeTransport) shutdownReasons() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.reasons...)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.BotToken = "123456:test-token"
	cfg.AllowedGroupIDs = []int64{55}
	cfg.Triggers = []config.Trigger{{Text: "cat", ImageURL: "http://img/cat.png"}}
	return cfg
}

func createTestDaemon(t *testing.T, pidFile string) (*Daemon, *fakeTransport) {
	t.Helper()

	log, err := logger.New(logger.Config{Level: "info", Output: io.Discard})
	require.NoError(t, err)

	cfg := testConfig()
	cfg.PIDFile = pidFile

	router, err := dispatch.NewFromConfig(cfg)
	require.NoError(t, err)

	transport := &fakeTransport{}
	return newDaemon(cfg, log, router, metrics.NewMetrics(), transport), transport
}

func TestNew(t *testing.T) {
	log, err := logger.New(logger.Config{Level: "info", Output: io.Discard})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Snap","username":"snapbot"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	}))
	defer server.Close()

	t.Run("valid config", func(t *testing.T) {
		d, err := New(testConfig(), log, telegram.WithAPIEndpoint(server.URL+"/bot%s/%s"))
		require.NoError(t, err)
		assert.NotNil(t, d.router)
		assert.NotNil(t, d.metrics)
		assert.Equal(t, 3, d.Status().Triggers)
	})

	t.Run("nil config", func(t *testing.T) {
		d, err := New(nil, log)
		assert.Error(t, err)
		assert.Nil(t, d)
	})

	t.Run("trigger shadows built-in", func(t *testing.T) {
		cfg := testConfig()
		cfg.Triggers = append(cfg.Triggers, config.Trigger{Text: "#groupinfo", ImageURL: "http://img/x.png"})

		d, err := New(cfg, log, telegram.WithAPIEndpoint(server.URL+"/bot%s/%s"))
		assert.Error(t, err)
		assert.Nil(t, d)
		assert.Contains(t, err.Error(), "failed to build router")
	})
}

func TestDaemonStartStop(t *testing.T) {
	d, transport := createTestDaemon(t, "")

	require.NoError(t, d.Start())
	status := d.Status()
	assert.True(t, status.Running)
	assert.False(t, status.StartTime.IsZero())
	assert.Equal(t, 1, transport.started)

	err := d.Start()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already running")

	require.NoError(t, d.Stop("test"))
	assert.False(t, d.Status().Running)
	assert.Equal(t, []string{"test"}, transport.shutdownReasons())

	err = d.Stop("again")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not running")
}

func TestDaemonStartFailure(t *testing.T) {
	d, transport := createTestDaemon(t, "")
	transport.startErr = errors.New("boom")

	err := d.Start()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start telegram bot")
	assert.False(t, d.Status().Running)
}

func TestDaemonMetricsEndpoint(t *testing.T) {
	d, _ := createTestDaemon(t, "")
	d.config.Metrics.Enabled = true
	d.config.Metrics.Listen = "127.0.0.1:0"

	require.NoError(t, d.Start())
	require.NoError(t, d.Stop("test"))
	assert.Nil(t, d.metricsCancel)
}

func TestDaemonShutdownHookStopsMetrics(t *testing.T) {
	d, transport := createTestDaemon(t, "")
	d.config.Metrics.Enabled = true
	d.config.Metrics.Listen = "127.0.0.1:0"

	require.Len(t, transport.hooks, 1)
	require.NoError(t, d.Start())
	require.NotNil(t, d.metricsCancel)

	require.NoError(t, transport.RequestShutdown("kicked"))
	assert.Nil(t, d.metricsCancel)
	assert.True(t, d.Status().Running)

	require.NoError(t, d.Stop("test"))
	assert.Equal(t, []string{"kicked", "test"}, transport.shutdownReasons())
}

func TestDaemonWait(t *testing.T) {
	t.Run("context cancellation", func(t *testing.T) {
		d, transport := createTestDaemon(t, "")
		require.NoError(t, d.Start())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.NoError(t, d.Wait(ctx))
		assert.Equal(t, []string{"context cancelled"}, transport.shutdownReasons())
	})

	t.Run("sigterm", func(t *testing.T) {
		// Keep the default action from killing the test binary
		guard := make(chan os.Signal, 1)
		signal.Notify(guard, syscall.SIGTERM)
		defer signal.Stop(guard)

		d, transport := createTestDaemon(t, "")
		require.NoError(t, d.Start())

		done := make(chan error, 1)
		go func() {
			done <- d.Wait(context.Background())
		}()

		self, err := os.FindProcess(os.Getpid())
		require.NoError(t, err)

		var waitErr error
		assert.Eventually(t, func() bool {
			_ = self.Signal(syscall.SIGTERM)
			select {
			case waitErr = <-done:
				return true
			default:
				return false
			}
		}, 5*time.Second, 20*time.Millisecond)

		assert.NoError(t, waitErr)
		assert.Equal(t, []string{"terminated"}, transport.shutdownReasons())
	})
}

func TestDaemonRun(t *testing.T) {
	d, transport := createTestDaemon(t, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	assert.Eventually(t, func() bool { return d.Status().Running }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 1, transport.started)
}
