package domain

import "time"

// UserRecord is the persisted authorization state for a chat identity.
// A record is created on the first successful login; revocation flips
// Authorized to false but never deletes the record.
type UserRecord struct {
	UserID     int64      `json:"user_id" dynamodbav:"user_id"`
	Authorized bool       `json:"authorized" dynamodbav:"authorized"`
	Username   string     `json:"username,omitempty" dynamodbav:"username"`
	// ExpiresAt is reserved: the legacy schema wrote it as null on login and
	// nothing reads it. Kept so existing items round-trip unchanged.
	ExpiresAt *time.Time `json:"expires_at,omitempty" dynamodbav:"expires_at"`
	CreatedAt time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time  `json:"updated" dynamodbav:"updated_at"`
}
