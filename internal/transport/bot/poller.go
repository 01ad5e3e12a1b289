// Package bot is the inbound chat surface: it long-polls the transport for
// updates, classifies each one, and hands it to the dispatcher.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-relay-bot/internal/dispatch"
	"github.com/go-relay-bot/internal/infrastructure/telegram"
)

// pollBackoff is the pause after a failed getUpdates call before retrying.
const pollBackoff = 3 * time.Second

// Poller drives the update loop.
type Poller struct {
	client     *telegram.Client
	dispatcher *dispatch.Dispatcher
	timeoutSec int
	log        *slog.Logger
}

func NewPoller(client *telegram.Client, dispatcher *dispatch.Dispatcher, timeoutSec int, log *slog.Logger) *Poller {
	return &Poller{client: client, dispatcher: dispatcher, timeoutSec: timeoutSec, log: log}
}

// Run polls until ctx is cancelled. Each update is dispatched on its own
// goroutine so one user's slow store or transport path cannot stall another
// user's commands.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := p.client.GetUpdates(ctx, offset, p.timeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Warn("getUpdates failed", "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollBackoff):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			ev, ok := toEvent(u)
			if !ok {
				continue
			}
			go p.dispatcher.Handle(ctx, ev)
		}
	}
}

// toEvent converts a transport update into a dispatch event. Updates without
// a message or a sender (channel posts, service messages) are skipped.
func toEvent(u telegram.Update) (dispatch.Event, bool) {
	if u.Message == nil || u.Message.From == nil {
		return dispatch.Event{}, false
	}
	msg := u.Message
	name, args := ParseCommand(msg.Text)
	ev := dispatch.Event{
		SenderID:  msg.From.ID,
		Username:  msg.From.Username,
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
		Text:      msg.Text,
		Command:   name,
		Args:      args,
	}
	if msg.ReplyToMessage != nil {
		ev.ReplyTo = &dispatch.ReplyRef{
			FromChatID: msg.ReplyToMessage.Chat.ID,
			MessageID:  msg.ReplyToMessage.MessageID,
		}
	}
	return ev, true
}
