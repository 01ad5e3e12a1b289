package domain

import "time"

// Relay message kinds.
const (
	RelayKindRequest   = "request"
	RelayKindComplaint = "complaint"
)

// RelayMessage is an append-only log entry for a user request or complaint.
// PK: message_id (ULID). Rows are written for operator notification context
// and never updated or read back by the bot.
type RelayMessage struct {
	MessageID string    `json:"message_id" dynamodbav:"message_id"`
	UserID    int64     `json:"user_id" dynamodbav:"user_id"`
	Kind      string    `json:"kind" dynamodbav:"kind"` // "request" | "complaint"
	Body      string    `json:"body" dynamodbav:"body"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
}
