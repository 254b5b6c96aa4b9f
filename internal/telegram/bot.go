package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/groupsnap/internal/config"
	"github.com/harun/groupsnap/internal/dispatch"
	"github.com/harun/groupsnap/internal/logger"
	"github.com/harun/groupsnap/internal/metrics"
	"github.com/harun/groupsnap/internal/tracing"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Dispatcher selects the action for an inbound message
type Dispatcher interface {
	Dispatch(msg dispatch.IncomingMessage) (dispatch.OutboundAction, bool)
}

// botAPI is the subset of *tgbotapi.BotAPI the bot uses
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot receives Telegram updates, dispatches them and sends the results.
// A Bot runs once: after Stop the Bot API update channel is closed for good.
type Bot struct {
	api     botAPI
	self    tgbotapi.User
	config  *config.Config
	logger  zerolog.Logger
	router  Dispatcher
	metrics *metrics.Metrics

	// State
	mu            sync.Mutex
	running       bool
	stopped       bool
	updates       tgbotapi.UpdatesChannel
	stopCh        chan struct{}
	done          chan struct{}
	shutdownHooks []func(reason string)
}

// Option configures a Bot
type Option func(*botOptions)

type botOptions struct {
	apiEndpoint string
	metrics     *metrics.Metrics
}

// WithAPIEndpoint overrides the Bot API endpoint, e.g. for a local Bot API server
func WithAPIEndpoint(endpoint string) Option {
	return func(o *botOptions) {
		o.apiEndpoint = endpoint
	}
}

// WithMetrics records update and send metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *botOptions) {
		o.metrics = m
	}
}

// New creates a new Telegram bot instance
func New(cfg *config.Config, router Dispatcher, log *logger.Logger, opts ...Option) (*Bot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	if router == nil {
		return nil, fmt.Errorf("router is required")
	}

	options := &botOptions{}
	for _, opt := range opts {
		opt(options)
	}

	// Create bot API instance
	var api *tgbotapi.BotAPI
	var err error
	if options.apiEndpoint != "" {
		api, err = tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, options.apiEndpoint)
	} else {
		api, err = tgbotapi.NewBotAPI(cfg.BotToken)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot := newBot(api, cfg, router, log.GetZerolog(), options.metrics)
	bot.self = api.Self

	// Log bot info
	bot.logger.Info().
		Str("username", api.Self.UserName).
		Int64("id", api.Self.ID).
		Msg("Telegram bot authenticated")

	return bot, nil
}

func newBot(api botAPI, cfg *config.Config, router Dispatcher, log zerolog.Logger, m *metrics.Metrics) *Bot {
	return &Bot{
		api:     api,
		config:  cfg,
		router:  router,
		metrics: m,
		logger:  log.With().Str("component", "telegram").Logger(),
	}
}

// Start begins long polling and processes updates in the background
func (b *Bot) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return fmt.Errorf("bot is already running")
	}

	if b.stopped {
		return fmt.Errorf("bot has been stopped and cannot be restarted")
	}

	b.logger.Info().Msg("Starting Telegram bot")

	// Configure update settings
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.config.Polling.Timeout
	u.AllowedUpdates = []string{"message"}

	b.updates = b.api.GetUpdatesChan(u)
	b.stopCh = make(chan struct{})
	b.done = make(chan struct{})
	b.running = true

	go b.processUpdates(b.updates, b.stopCh, b.done)

	b.logger.Info().Msg("Telegram bot started")

	return nil
}

// OnShutdownRequested registers fn to run when RequestShutdown is called
func (b *Bot) OnShutdownRequested(fn func(reason string)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.shutdownHooks = append(b.shutdownHooks, fn)
}

// RequestShutdown notifies the shutdown hooks and stops the bot
func (b *Bot) RequestShutdown(reason string) error {
	b.mu.Lock()
	hooks := append([]func(string){}, b.shutdownHooks...)
	b.mu.Unlock()

	b.logger.Info().Str("reason", reason).Msg("Shutdown requested")

	for _, hook := range hooks {
		hook(reason)
	}

	return b.Stop()
}

// Stop stops receiving updates and waits for the update being
// dispatched, if any, to finish
func (b *Bot) Stop() error {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return fmt.Errorf("bot is not running")
	}

	b.logger.Info().Msg("Stopping Telegram bot")

	b.running = false
	b.stopped = true
	close(b.stopCh)
	done := b.done
	b.mu.Unlock()

	b.api.StopReceivingUpdates()
	<-done

	b.logger.Info().Msg("Telegram bot stopped")

	return nil
}

// processUpdates processes incoming updates one at a time
func (b *Bot) processUpdates(updates tgbotapi.UpdatesChannel, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			// Stop may have raced with the receive
			select {
			case <-stop:
				return
			default:
			}

			if err := b.handleUpdate(update); err != nil {
				b.logger.Error().
					Err(err).
					Int("update_id", update.UpdateID).
					Msg("Failed to handle update")
			}
		}
	}
}

// handleUpdate dispatches a single update and executes the resulting action
func (b *Bot) handleUpdate(update tgbotapi.Update) error {
	if b.metrics != nil {
		b.metrics.UpdatesReceivedTotal.Inc()
	}

	msg, ok := toIncomingMessage(update)
	if !ok {
		return nil
	}

	ctx, span := tracing.StartSpan(context.Background(), "telegram.update",
		attribute.Int("update_id", update.UpdateID),
		attribute.Int64("chat_id", msg.Chat.ID),
		attribute.String("chat_type", string(msg.Chat.Kind)),
	)
	defer span.End()

	ctx = tracing.WithChatID(tracing.NewUpdateContext(ctx, update.UpdateID), msg.Chat.ID)
	log := tracing.PropagateToLogger(ctx, b.logger)

	action, matched := b.router.Dispatch(msg)
	if !matched {
		if b.metrics != nil {
			b.metrics.DispatchesTotal.WithLabelValues("none").Inc()
		}
		span.SetAttributes(attribute.String("action", "none"))
		log.Debug().Str("text", msg.Text).Msg("No trigger matched")
		return nil
	}

	if b.metrics != nil {
		b.metrics.DispatchesTotal.WithLabelValues(string(action.Kind)).Inc()
	}
	span.SetAttributes(attribute.String("action", string(action.Kind)))

	log.Debug().
		Int("message_id", msg.MessageID).
		Str("text", msg.Text).
		Str("action", string(action.Kind)).
		Msg("Message dispatched")

	if err := b.send(log, action); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		return err
	}
	return nil
}

// IsRunning returns whether the bot is running
func (b *Bot) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}
