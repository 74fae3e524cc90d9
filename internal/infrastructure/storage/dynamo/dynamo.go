// Package dynamo хранилище ключ-значение на DynamoDB
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/exp/slog"

	"timeline/internal/infrastructure/storage"
)

// API подмножество клиента DynamoDB, нужное хранилищу
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// item запись таблицы. TTL в секундах Unix для встроенного TTL DynamoDB,
// 0 означает без срока.
type item struct {
	PK    string `dynamodbav:"PK"`
	Value []byte `dynamodbav:"Value"`
	TTL   int64  `dynamodbav:"TTL,omitempty"`
}

type KV struct {
	client API
	table  string
	log    *slog.Logger
	now    func() time.Time
}

// NewClient создает клиента из стандартной цепочки конфигурации AWS
func NewClient(ctx context.Context) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func New(client API, table string, log *slog.Logger) *KV {
	return &KV{
		client: client,
		table:  table,
		log:    log.With("component", "dynamo_kv"),
		now:    time.Now,
	}
}

func (s *KV) key(k string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: k}}
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		s.log.Error("failed to get item", "error", err)
		return nil, fmt.Errorf("get item: %w", err)
	}
	if out.Item == nil {
		return nil, storage.ErrNotFound
	}

	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	// TTL DynamoDB удаляет записи с задержкой, поэтому срок проверяется здесь
	if it.TTL > 0 && s.now().Unix() >= it.TTL {
		return nil, storage.ErrNotFound
	}
	return it.Value, nil
}

func (s *KV) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	it := item{PK: key, Value: value}
	if ttl > 0 {
		it.TTL = s.now().Add(ttl).Unix()
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		s.log.Error("failed to put item", "error", err)
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (s *KV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.Get(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (s *KV) Delete(ctx context.Context, key string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(key),
	}); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}
