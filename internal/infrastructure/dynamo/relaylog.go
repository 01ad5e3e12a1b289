package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-relay-bot/internal/domain"
)

// RelayLogRepo appends relay messages. The table is write-only from the
// bot's point of view.
type RelayLogRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRelayLogRepo(client *dynamodb.Client, tableName string) *RelayLogRepo {
	return &RelayLogRepo{client: client, tableName: tableName}
}

func (r *RelayLogRepo) Insert(ctx context.Context, m *domain.RelayMessage) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal relay message: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
