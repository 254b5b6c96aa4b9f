package dispatch

// ReplyRef is an optional reference to a prior message.
// The zero value means no reference.
type ReplyRef struct {
	id      int
	present bool
}

// ReplyTo returns a reference to message id
func ReplyTo(id int) ReplyRef {
	return ReplyRef{id: id, present: true}
}

// Get returns the referenced message ID and whether it is present
func (r ReplyRef) Get() (int, bool) {
	return r.id, r.present
}

// IncomingMessage is a single inbound text message
type IncomingMessage struct {
	MessageID int
	Text      string
	Chat      Chat
	ReplyTo   ReplyRef
}

// ActionKind is the kind of outbound action
type ActionKind string

const (
	ActionTextReply  ActionKind = "text_reply"
	ActionPhotoReply ActionKind = "photo_reply"
)

// OutboundAction is the single send intent produced by a dispatch
type OutboundAction struct {
	Chat     Chat
	Kind     ActionKind
	Text     string
	PhotoURL string
	ReplyTo  ReplyRef

	// AllowSendingWithoutReply is passed through to the platform unchanged
	AllowSendingWithoutReply bool
}

// TextReply creates a text reply to chat
func TextReply(chat Chat, text string) OutboundAction {
	return OutboundAction{
		Chat: chat,
		Kind: ActionTextReply,
		Text: text,
	}
}
