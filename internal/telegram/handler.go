package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/harun/groupsnap/internal/dispatch"
)

// toIncomingMessage extracts the router input from an update.
// Updates without a text message are skipped.
func toIncomingMessage(update tgbotapi.Update) (dispatch.IncomingMessage, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return dispatch.IncomingMessage{}, false
	}

	incoming := dispatch.IncomingMessage{
		MessageID: msg.MessageID,
		Text:      msg.Text,
		Chat: dispatch.Chat{
			ID:   msg.Chat.ID,
			Kind: dispatch.ChatKind(msg.Chat.Type),
		},
	}

	// Check for reply
	if msg.ReplyToMessage != nil {
		incoming.ReplyTo = dispatch.ReplyTo(msg.ReplyToMessage.MessageID)
	}

	return incoming, true
}
