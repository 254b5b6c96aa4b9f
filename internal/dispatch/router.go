package dispatch

import (
	"fmt"

	"github.com/harun/groupsnap/internal/config"
	"github.com/rs/zerolog"
)

const (
	// PatternGroupID is the built-in command that reports the chat ID
	PatternGroupID = "/groupid"
	// PatternGroupInfo is the hashtag alias of PatternGroupID
	PatternGroupInfo = "#groupinfo"
)

// Handler turns a matched message into at most one action
type Handler func(msg IncomingMessage) (OutboundAction, bool)

// TriggerKind is the behavior bound to a pattern
type TriggerKind string

const (
	TriggerReportID  TriggerKind = "report_id"
	TriggerSendImage TriggerKind = "send_image"
	TriggerCustom    TriggerKind = "custom"
)

// Trigger describes a registered pattern
type Trigger struct {
	Pattern  string
	Kind     TriggerKind
	ImageURL string
}

// Router matches inbound text against registered triggers.
// Registration happens during construction only; Dispatch is safe for
// concurrent use afterwards.
type Router struct {
	allow    AllowList
	logger   zerolog.Logger
	handlers map[string]Handler
	triggers map[string]Trigger
	order    []string
}

// Option configures a Router
type Option func(*Router)

// WithLogger sets the router logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Router) {
		r.logger = logger.With().Str("module", "router").Logger()
	}
}

// NewRouter creates a router with the built-in informational triggers
func NewRouter(allow AllowList, opts ...Option) *Router {
	r := &Router{
		allow:    allow,
		logger:   zerolog.Nop(),
		handlers: make(map[string]Handler),
		triggers: make(map[string]Trigger),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.registerTrigger(Trigger{Pattern: PatternGroupID, Kind: TriggerReportID}, reportGroupID)
	r.registerTrigger(Trigger{Pattern: PatternGroupInfo, Kind: TriggerReportID}, reportGroupID)

	return r
}

// NewFromConfig creates a router with one image trigger per configured entry.
// Entries are registered in file order, so a duplicate text keeps the last URL.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Router, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	r := NewRouter(NewAllowList(cfg.AllowedGroupIDs), opts...)
	for _, t := range cfg.Triggers {
		if t.Text == PatternGroupID || t.Text == PatternGroupInfo {
			return nil, fmt.Errorf("trigger %q conflicts with a built-in command", t.Text)
		}
		r.RegisterImage(t.Text, t.ImageURL)
	}

	return r, nil
}

// Register binds a handler to an exact text pattern. Registering the same
// pattern again replaces the earlier handler.
func (r *Router) Register(pattern string, handler Handler) {
	r.registerTrigger(Trigger{Pattern: pattern, Kind: TriggerCustom}, handler)
}

// RegisterImage binds pattern to an image reply restricted to allowed groups
func (r *Router) RegisterImage(pattern, url string) {
	allow := r.allow
	handler := func(msg IncomingMessage) (OutboundAction, bool) {
		if !IsAuthorized(msg.Chat, allow) {
			return OutboundAction{}, false
		}
		return PhotoReply(msg.Chat, url, msg.ReplyTo), true
	}

	r.registerTrigger(Trigger{Pattern: pattern, Kind: TriggerSendImage, ImageURL: url}, handler)
}

func (r *Router) registerTrigger(trigger Trigger, handler Handler) {
	if prev, exists := r.triggers[trigger.Pattern]; exists {
		r.logger.Warn().
			Str("pattern", trigger.Pattern).
			Str("previous_url", prev.ImageURL).
			Str("url", trigger.ImageURL).
			Msg("Trigger shadows an earlier registration")
	} else {
		r.order = append(r.order, trigger.Pattern)
	}

	r.handlers[trigger.Pattern] = handler
	r.triggers[trigger.Pattern] = trigger

	r.logger.Debug().
		Str("pattern", trigger.Pattern).
		Str("kind", string(trigger.Kind)).
		Msg("Trigger registered")
}

// Dispatch returns the action for msg, if any. Text must equal a pattern exactly.
func (r *Router) Dispatch(msg IncomingMessage) (OutboundAction, bool) {
	handler, exists := r.handlers[msg.Text]
	if !exists {
		return OutboundAction{}, false
	}
	return handler(msg)
}

// Triggers returns the registered triggers in registration order
func (r *Router) Triggers() []Trigger {
	triggers := make([]Trigger, 0, len(r.order))
	for _, pattern := range r.order {
		triggers = append(triggers, r.triggers[pattern])
	}
	return triggers
}

// reportGroupID answers in any group-like chat, allowed or not
func reportGroupID(msg IncomingMessage) (OutboundAction, bool) {
	if !IsGroupLike(msg.Chat.Kind) {
		return OutboundAction{}, false
	}
	return TextReply(msg.Chat, fmt.Sprintf("Group ID: %d", msg.Chat.ID)), true
}
