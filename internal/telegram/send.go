package telegram

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/groupsnap/internal/dispatch"
	"github.com/rs/zerolog"
)

// send executes an outbound action. Failures are returned, never retried.
func (b *Bot) send(log zerolog.Logger, action dispatch.OutboundAction) error {
	c, err := chattable(action)
	if err != nil {
		return err
	}

	started := time.Now()
	_, err = b.api.Send(c)
	if b.metrics != nil {
		b.metrics.ObserveSend(string(action.Kind), started, err)
	}
	if err != nil {
		return fmt.Errorf("failed to send %s to chat %d: %w", action.Kind, action.Chat.ID, err)
	}

	event := log.Debug().
		Str("action", string(action.Kind))
	if id, ok := action.ReplyTo.Get(); ok {
		event = event.Int("reply_to", id)
	}
	event.Msg("Action sent")

	return nil
}

// chattable maps an action onto the Bot API request
func chattable(action dispatch.OutboundAction) (tgbotapi.Chattable, error) {
	switch action.Kind {
	case dispatch.ActionTextReply:
		return tgbotapi.NewMessage(action.Chat.ID, action.Text), nil

	case dispatch.ActionPhotoReply:
		photo := tgbotapi.NewPhoto(action.Chat.ID, tgbotapi.FileURL(action.PhotoURL))
		if id, ok := action.ReplyTo.Get(); ok {
			photo.ReplyToMessageID = id
			photo.AllowSendingWithoutReply = action.AllowSendingWithoutReply
		}
		return photo, nil

	default:
		return nil, fmt.Errorf("unknown action kind %q", action.Kind)
	}
}
