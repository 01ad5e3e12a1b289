package dispatch

import (
	"context"
	"time"

	"github.com/go-relay-bot/internal/application/authz"
	"github.com/go-relay-bot/internal/domain"
)

// Authorizer is the slice of the authorization service the dispatcher needs.
type Authorizer interface {
	Grant(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	Redeem(ctx context.Context, userID int64, username, password string) error
	Revoke(ctx context.Context, userID int64) error
	Stats(ctx context.Context) (authz.Stats, error)
	ListAuthorized(ctx context.Context) ([]domain.UserRecord, error)
}

// Relayer is the slice of the relay service the dispatcher needs.
type Relayer interface {
	Submit(ctx context.Context, userID int64, username, kind, text string) error
	DirectText(ctx context.Context, targetID int64, text string) error
	DirectCopy(ctx context.Context, targetID, fromChatID int64, messageID int) error
	ForwardToOperator(ctx context.Context, fromChatID int64, messageID int) error
	CommandNotice(ctx context.Context, senderID int64, username, raw string) error
}

// Sender sends plain replies back through the chat transport.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
