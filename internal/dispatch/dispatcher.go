package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-relay-bot/internal/application/authz"
	relayapp "github.com/go-relay-bot/internal/application/relay"
	"github.com/go-relay-bot/internal/domain"
	"github.com/go-relay-bot/internal/pkg/validate"
)

// command declares the contract a handler is invoked under: required role
// and argument count are checked before the handler runs, so handlers never
// see malformed input.
type command struct {
	minArgs      int
	maxArgs      int // -1 means unlimited
	operatorOnly bool
	usage        string
	handler      func(ctx context.Context, ev Event)
}

// Deps holds the dispatcher's collaborators.
type Deps struct {
	Auth       Authorizer
	Relay      Relayer
	Sender     Sender
	OperatorID int64
	Logger     *slog.Logger
}

// Dispatcher routes inbound events to the authorization and relay services
// through an explicit command table.
type Dispatcher struct {
	auth       Authorizer
	relay      Relayer
	sender     Sender
	operatorID int64
	log        *slog.Logger
	commands   map[string]command
}

func New(deps Deps) *Dispatcher {
	d := &Dispatcher{
		auth:       deps.Auth,
		relay:      deps.Relay,
		sender:     deps.Sender,
		operatorID: deps.OperatorID,
		log:        deps.Logger,
	}
	d.commands = map[string]command{
		"login": {minArgs: 1, maxArgs: 1,
			usage:   "❌ Invalid Usage! Use: /login (your_password)",
			handler: d.handleLogin},
		"auth": {minArgs: 2, maxArgs: 2, operatorOnly: true,
			usage:   "❌ Invalid Usage! Use: /auth (user_id) (time_in_minutes)",
			handler: d.handleGrant},
		"unauth": {minArgs: 1, maxArgs: 1, operatorOnly: true,
			usage:   "❌ Invalid Usage! Use: /unauth (user_id)",
			handler: d.handleRevoke},
		"stats": {minArgs: 0, maxArgs: 0, operatorOnly: true,
			handler: d.handleStats},
		"users": {minArgs: 0, maxArgs: 0, operatorOnly: true,
			handler: d.handleUsers},
		"req": {minArgs: 1, maxArgs: -1,
			usage:   "❌ Invalid Usage! Use: /req (request_text)",
			handler: d.handleRequest},
		"complain": {minArgs: 1, maxArgs: -1,
			usage:   "❌ Invalid Usage! Use: /complain (complaint_text)",
			handler: d.handleComplaint},
		"msg": {minArgs: 1, maxArgs: -1, operatorOnly: true,
			usage:   "❌ Invalid Usage! Use: /msg (user_id) (text), or reply to a message with /msg (user_id)",
			handler: d.handleDirectMessage},
	}
	return d
}

// Handle processes one inbound event. It never panics or returns an error:
// every failure ends as a reply, an operator notice, or a log line.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	if !ev.IsCommand() {
		if ev.SenderID == d.operatorID {
			return
		}
		if err := d.relay.ForwardToOperator(ctx, ev.ChatID, ev.MessageID); err != nil {
			d.log.Warn("auto-relay failed", "sender_id", ev.SenderID, "err", err)
		}
		return
	}

	cmd, known := d.commands[ev.Command]
	if !known {
		// Unrecognized commands from users are summarized for the operator,
		// not forwarded.
		if ev.SenderID != d.operatorID {
			if err := d.relay.CommandNotice(ctx, ev.SenderID, ev.Username, ev.Text); err != nil {
				d.log.Warn("command notice failed", "sender_id", ev.SenderID, "err", err)
			}
		}
		return
	}

	// Least-information policy: operator-only commands from anyone else are
	// dropped without a reply.
	if cmd.operatorOnly && ev.SenderID != d.operatorID {
		d.log.Info("ignored operator command from non-operator", "command", ev.Command, "sender_id", ev.SenderID)
		return
	}

	if len(ev.Args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(ev.Args) > cmd.maxArgs) {
		d.reply(ctx, ev.ChatID, cmd.usage)
		return
	}

	cmd.handler(ctx, ev)
}

func (d *Dispatcher) handleLogin(ctx context.Context, ev Event) {
	err := d.auth.Redeem(ctx, ev.SenderID, ev.Username, ev.Args[0])
	switch {
	case err == nil:
		d.reply(ctx, ev.ChatID, "✅ Login Successful!")
	case errors.Is(err, domain.ErrAlreadyAuthorized):
		d.reply(ctx, ev.ChatID, "✅ You are already logged in!")
	case errors.Is(err, domain.ErrInvalidCredential):
		d.reply(ctx, ev.ChatID, "❌ Invalid Password!")
	default:
		d.log.Error("login failed", "user_id", ev.SenderID, "err", err)
		d.reply(ctx, ev.ChatID, "❌ Something went wrong, try again later.")
	}
}

type grantInput struct {
	UserID     int64 `validate:"required"`
	TTLMinutes int   `validate:"required,gt=0"`
}

func (d *Dispatcher) handleGrant(ctx context.Context, ev Event) {
	userID, err1 := strconv.ParseInt(ev.Args[0], 10, 64)
	minutes, err2 := strconv.Atoi(ev.Args[1])
	if err1 != nil || err2 != nil {
		d.reply(ctx, ev.ChatID, "❌ Invalid user_id or time format!")
		return
	}
	if err := validate.Struct(grantInput{UserID: userID, TTLMinutes: minutes}); err != nil {
		d.reply(ctx, ev.ChatID, "❌ Invalid user_id or time format!")
		return
	}

	password, err := d.auth.Grant(ctx, userID, time.Duration(minutes)*time.Minute)
	if err != nil {
		d.log.Error("grant failed", "target_id", userID, "err", err)
		d.reply(ctx, ev.ChatID, "❌ Could not issue a password, try again later.")
		return
	}
	// The plaintext password goes to the operator only.
	d.reply(ctx, ev.ChatID, fmt.Sprintf("✅ Temporary Password: %s\nExpires in: %s",
		password, authz.FormatMinutes(minutes)))
}

func (d *Dispatcher) handleRevoke(ctx context.Context, ev Event) {
	userID, err := strconv.ParseInt(ev.Args[0], 10, 64)
	if err != nil {
		d.reply(ctx, ev.ChatID, "❌ Invalid user_id format!")
		return
	}
	if err := d.auth.Revoke(ctx, userID); err != nil {
		d.log.Error("revoke failed", "target_id", userID, "err", err)
		d.reply(ctx, ev.ChatID, "❌ Something went wrong, try again later.")
		return
	}
	d.reply(ctx, ev.ChatID, fmt.Sprintf("✅ User %d unauthorized!", userID))
}

func (d *Dispatcher) handleStats(ctx context.Context, ev Event) {
	stats, err := d.auth.Stats(ctx)
	if err != nil {
		d.log.Error("stats failed", "err", err)
		d.reply(ctx, ev.ChatID, "❌ Something went wrong, try again later.")
		return
	}
	d.reply(ctx, ev.ChatID, fmt.Sprintf("📊 Bot Stats\n\n👥 Authorized Users: %d\n⏱ Uptime: %s",
		stats.AuthorizedUsers, stats.Uptime.Truncate(time.Second)))
}

func (d *Dispatcher) handleUsers(ctx context.Context, ev Event) {
	users, err := d.auth.ListAuthorized(ctx)
	if err != nil {
		d.log.Error("list users failed", "err", err)
		d.reply(ctx, ev.ChatID, "❌ Something went wrong, try again later.")
		return
	}
	if len(users) == 0 {
		d.reply(ctx, ev.ChatID, "👥 No authorized users.")
		return
	}
	var b strings.Builder
	b.WriteString("👥 Authorized Users\n")
	for _, u := range users {
		name := u.Username
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(&b, "\n• %s (%d)", name, u.UserID)
	}
	d.reply(ctx, ev.ChatID, b.String())
}

func (d *Dispatcher) handleRequest(ctx context.Context, ev Event) {
	d.submit(ctx, ev, domain.RelayKindRequest, "✅ Your request has been successfully submitted!")
}

func (d *Dispatcher) handleComplaint(ctx context.Context, ev Event) {
	d.submit(ctx, ev, domain.RelayKindComplaint, "✅ Your complaint has been successfully submitted!")
}

func (d *Dispatcher) submit(ctx context.Context, ev Event, kind, ack string) {
	err := d.relay.Submit(ctx, ev.SenderID, ev.Username, kind, strings.Join(ev.Args, " "))
	switch {
	case err == nil:
		d.reply(ctx, ev.ChatID, ack)
	case errors.Is(err, domain.ErrUnauthorized):
		d.reply(ctx, ev.ChatID, relayapp.UnauthorizedNotice)
	default:
		d.log.Error("submission failed", "user_id", ev.SenderID, "kind", kind, "err", err)
		d.reply(ctx, ev.ChatID, "❌ Could not submit, try again later.")
	}
}

func (d *Dispatcher) handleDirectMessage(ctx context.Context, ev Event) {
	targetID, err := strconv.ParseInt(ev.Args[0], 10, 64)
	if err != nil {
		d.reply(ctx, ev.ChatID, "❌ Invalid user_id format!")
		return
	}

	if ev.ReplyTo != nil {
		err = d.relay.DirectCopy(ctx, targetID, ev.ReplyTo.FromChatID, ev.ReplyTo.MessageID)
	} else {
		if len(ev.Args) < 2 {
			d.reply(ctx, ev.ChatID, d.commands["msg"].usage)
			return
		}
		err = d.relay.DirectText(ctx, targetID, strings.Join(ev.Args[1:], " "))
	}
	if err != nil {
		// Delivery failures are reported back to the operator, never retried.
		d.reply(ctx, ev.ChatID, fmt.Sprintf("❌ Delivery failed: %v", err))
		return
	}
	d.reply(ctx, ev.ChatID, fmt.Sprintf("✅ Delivered to %d.", targetID))
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) {
	if err := d.sender.SendMessage(ctx, chatID, text); err != nil {
		d.log.Warn("reply failed", "chat_id", chatID, "err", err)
	}
}
