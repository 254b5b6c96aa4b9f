package dispatch

// ChatKind is the Telegram chat type
type ChatKind string

const (
	ChatPrivate    ChatKind = "private"
	ChatGroup      ChatKind = "group"
	ChatSupergroup ChatKind = "supergroup"
	ChatChannel    ChatKind = "channel"
)

// Chat identifies the conversation a message came from
type Chat struct {
	ID   int64
	Kind ChatKind
}

// IsGroupLike reports whether kind is a group or supergroup
func IsGroupLike(kind ChatKind) bool {
	return kind == ChatGroup || kind == ChatSupergroup
}
