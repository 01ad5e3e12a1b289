package bot

import (
	"testing"

	"github.com/go-relay-bot/internal/dispatch"
	"github.com/go-relay-bot/internal/infrastructure/telegram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text     string
		wantName string
		wantArgs []string
	}{
		{"/login 12345678", "login", []string{"12345678"}},
		{"/auth 555 1", "auth", []string{"555", "1"}},
		{"/stats", "stats", nil},
		{"/req  please   add x", "req", []string{"please", "add", "x"}},
		{"/LOGIN abc", "login", []string{"abc"}},
		{"/stats@relaybot", "stats", nil},
		{"hello there", "", nil},
		{"", "", nil},
		{"/", "", nil},
		{"/@relaybot", "", nil},
	}
	for _, tt := range tests {
		name, args := ParseCommand(tt.text)
		assert.Equal(t, tt.wantName, name, "text=%q", tt.text)
		if len(tt.wantArgs) == 0 {
			assert.Empty(t, args, "text=%q", tt.text)
		} else {
			assert.Equal(t, tt.wantArgs, args, "text=%q", tt.text)
		}
	}
}

func TestToEvent_SkipsUpdatesWithoutSender(t *testing.T) {
	_, ok := toEvent(telegram.Update{UpdateID: 1})
	assert.False(t, ok)

	_, ok = toEvent(telegram.Update{UpdateID: 2, Message: &telegram.Message{
		MessageID: 5,
		Chat:      telegram.Chat{ID: 42},
	}})
	assert.False(t, ok)
}

func TestToEvent_CommandMessage(t *testing.T) {
	ev, ok := toEvent(telegram.Update{UpdateID: 3, Message: &telegram.Message{
		MessageID: 5,
		From:      &telegram.User{ID: 42, Username: "bob"},
		Chat:      telegram.Chat{ID: 42},
		Text:      "/req need access",
	}})
	require.True(t, ok)
	assert.Equal(t, dispatch.Event{
		SenderID:  42,
		Username:  "bob",
		ChatID:    42,
		MessageID: 5,
		Text:      "/req need access",
		Command:   "req",
		Args:      []string{"need", "access"},
	}, ev)
}

func TestToEvent_ReplyCarriesSourceRef(t *testing.T) {
	ev, ok := toEvent(telegram.Update{UpdateID: 4, Message: &telegram.Message{
		MessageID: 9,
		From:      &telegram.User{ID: 1000},
		Chat:      telegram.Chat{ID: 1000},
		Text:      "/msg 42",
		ReplyToMessage: &telegram.Message{
			MessageID: 7,
			Chat:      telegram.Chat{ID: 1000},
		},
	}})
	require.True(t, ok)
	require.NotNil(t, ev.ReplyTo)
	assert.Equal(t, int64(1000), ev.ReplyTo.FromChatID)
	assert.Equal(t, 7, ev.ReplyTo.MessageID)
}
