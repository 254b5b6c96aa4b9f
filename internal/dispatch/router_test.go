package dispatch

import (
	"bytes"
	"testing"

	"github.com/harun/groupsnap/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRouter(t *testing.T) *Router {
	cfg := &config.Config{
		BotToken:        "123456:test-token",
		AllowedGroupIDs: []int64{55},
		Triggers: []config.Trigger{
			{Text: "cat", ImageURL: "http://img/cat.png"},
		},
	}

	router, err := NewFromConfig(cfg)
	require.NoError(t, err)
	return router
}

func TestNewRouter(t *testing.T) {
	router := NewRouter(NewAllowList([]int64{1}))

	require.NotNil(t, router)
	assert.Len(t, router.handlers, 2)
	assert.Equal(t, []Trigger{
		{Pattern: PatternGroupID, Kind: TriggerReportID},
		{Pattern: PatternGroupInfo, Kind: TriggerReportID},
	}, router.Triggers())
}

func TestDispatch_GroupID(t *testing.T) {
	router := createTestRouter(t)

	t.Run("supergroup outside allow list", func(t *testing.T) {
		msg := IncomingMessage{Text: "/groupid", Chat: Chat{ID: -100123, Kind: ChatSupergroup}}

		action, ok := router.Dispatch(msg)
		require.True(t, ok)
		assert.Equal(t, ActionTextReply, action.Kind)
		assert.Equal(t, "Group ID: -100123", action.Text)
		assert.Equal(t, msg.Chat, action.Chat)
	})

	t.Run("groupinfo in group", func(t *testing.T) {
		action, ok := router.Dispatch(IncomingMessage{Text: "#groupinfo", Chat: Chat{ID: 7, Kind: ChatGroup}})
		require.True(t, ok)
		assert.Equal(t, "Group ID: 7", action.Text)
	})

	t.Run("private chat", func(t *testing.T) {
		_, ok := router.Dispatch(IncomingMessage{Text: "#groupinfo", Chat: Chat{ID: 7, Kind: ChatPrivate}})
		assert.False(t, ok)
	})

	t.Run("channel", func(t *testing.T) {
		_, ok := router.Dispatch(IncomingMessage{Text: "/groupid", Chat: Chat{ID: 7, Kind: ChatChannel}})
		assert.False(t, ok)
	})
}

func TestDispatch_Image(t *testing.T) {
	router := createTestRouter(t)
	group := Chat{ID: 55, Kind: ChatGroup}

	t.Run("plain reply", func(t *testing.T) {
		action, ok := router.Dispatch(IncomingMessage{Text: "cat", Chat: group})
		require.True(t, ok)
		assert.Equal(t, ActionPhotoReply, action.Kind)
		assert.Equal(t, "http://img/cat.png", action.PhotoURL)
		_, threaded := action.ReplyTo.Get()
		assert.False(t, threaded)
	})

	t.Run("threaded reply", func(t *testing.T) {
		action, ok := router.Dispatch(IncomingMessage{Text: "cat", Chat: group, ReplyTo: ReplyTo(42)})
		require.True(t, ok)
		id, threaded := action.ReplyTo.Get()
		assert.True(t, threaded)
		assert.Equal(t, 42, id)
	})

	t.Run("group not allowed", func(t *testing.T) {
		_, ok := router.Dispatch(IncomingMessage{Text: "cat", Chat: Chat{ID: 99, Kind: ChatGroup}})
		assert.False(t, ok)
	})

	t.Run("allowed id in private chat", func(t *testing.T) {
		_, ok := router.Dispatch(IncomingMessage{Text: "cat", Chat: Chat{ID: 55, Kind: ChatPrivate}})
		assert.False(t, ok)
	})
}

func TestDispatch_ExactMatch(t *testing.T) {
	router := createTestRouter(t)
	group := Chat{ID: 55, Kind: ChatGroup}

	for _, text := range []string{"Cat", "cat ", " cat", "a cat", "/groupid@bot", "/GROUPID", ""} {
		t.Run(text, func(t *testing.T) {
			_, ok := router.Dispatch(IncomingMessage{Text: text, Chat: group})
			assert.False(t, ok)
		})
	}
}

func TestDispatch_Idempotent(t *testing.T) {
	router := createTestRouter(t)
	msg := IncomingMessage{Text: "cat", Chat: Chat{ID: 55, Kind: ChatSupergroup}, ReplyTo: ReplyTo(42)}

	first, ok1 := router.Dispatch(msg)
	second, ok2 := router.Dispatch(msg)

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}

func TestNewFromConfig_DuplicateShadows(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{
		AllowedGroupIDs: []int64{55},
		Triggers: []config.Trigger{
			{Text: "cat", ImageURL: "http://img/first.png"},
			{Text: "dog", ImageURL: "http://img/dog.png"},
			{Text: "cat", ImageURL: "http://img/second.png"},
		},
	}

	router, err := NewFromConfig(cfg, WithLogger(zerolog.New(&buf)))
	require.NoError(t, err)

	action, ok := router.Dispatch(IncomingMessage{Text: "cat", Chat: Chat{ID: 55, Kind: ChatGroup}})
	require.True(t, ok)
	assert.Equal(t, "http://img/second.png", action.PhotoURL)

	triggers := router.Triggers()
	require.Len(t, triggers, 4)
	assert.Equal(t, "cat", triggers[2].Pattern)
	assert.Equal(t, "http://img/second.png", triggers[2].ImageURL)
	assert.Equal(t, "dog", triggers[3].Pattern)
	assert.Contains(t, buf.String(), "Trigger shadows an earlier registration")
}

func TestNewFromConfig_Errors(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		router, err := NewFromConfig(nil)
		assert.Error(t, err)
		assert.Nil(t, router)
	})

	t.Run("built-in conflict", func(t *testing.T) {
		cfg := &config.Config{
			AllowedGroupIDs: []int64{55},
			Triggers:        []config.Trigger{{Text: "/groupid", ImageURL: "http://img/x.png"}},
		}

		router, err := NewFromConfig(cfg)
		assert.Error(t, err)
		assert.Nil(t, router)
		assert.Contains(t, err.Error(), "built-in")
	})
}

func TestRegister_Custom(t *testing.T) {
	router := NewRouter(NewAllowList(nil))

	called := 0
	router.Register("ping", func(msg IncomingMessage) (OutboundAction, bool) {
		called++
		return TextReply(msg.Chat, "pong"), true
	})

	action, ok := router.Dispatch(IncomingMessage{Text: "ping", Chat: Chat{ID: 1, Kind: ChatPrivate}})
	require.True(t, ok)
	assert.Equal(t, "pong", action.Text)
	assert.Equal(t, 1, called)

	_, ok = router.Dispatch(IncomingMessage{Text: "pong"})
	assert.False(t, ok)
	assert.Equal(t, 1, called)
}
