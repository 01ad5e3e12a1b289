package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-relay-bot/internal/pkg/validate"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	LogLevel string

	BotToken  string `validate:"required"`
	// OperatorID is the single privileged chat identity. There is exactly one.
	OperatorID int64 `validate:"required"`

	// PollTimeoutSec is the long-poll timeout passed to getUpdates.
	PollTimeoutSec int

	OpsPort string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	RelayMessages string
}

// Load reads all configuration from environment variables. It fails when the
// bot token or operator identity is missing, since the process cannot do
// anything useful without them.
func Load() (*Config, error) {
	operatorID, err := getEnvInt64("OPERATOR_ID")
	if err != nil {
		return nil, fmt.Errorf("invalid OPERATOR_ID: %w", err)
	}

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BotToken:   os.Getenv("BOT_TOKEN"),
		OperatorID: operatorID,

		PollTimeoutSec: getEnvInt("POLL_TIMEOUT_SECONDS", 30),

		OpsPort: getEnv("OPS_PORT", "8080"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			RelayMessages: getEnv("DYNAMO_TABLE_RELAY_MESSAGES", "relay_messages"),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvInt64(key string) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}
