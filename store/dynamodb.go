package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/nameservice/coin"
	"github.com/jacentio/nameservice/internal/keys"
)

// PK represents a DynamoDB primary key.
type PK map[string]types.AttributeValue

// DynamoDBAPI is the subset of the DynamoDB client used by the store.
// *dynamodb.Client satisfies it.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoDB is a Store backed by a single DynamoDB table.
//
// The config record lives under pk "config" and name records under
// "nameresolver#<name>". Name records carry a version that is incremented on
// every write; UpdateRecord uses it as an optimistic lock.
type DynamoDB struct {
	client DynamoDBAPI
	config DynamoDBConfig
}

// NewDynamoDB creates a new DynamoDB store.
func NewDynamoDB(client DynamoDBAPI, config DynamoDBConfig) *DynamoDB {
	config.validate()
	return &DynamoDB{
		client: client,
		config: config,
	}
}

// configItem is the stored shape of the configuration record.
type configItem struct {
	PK                string     `dynamodbav:"pk"`
	RegistrationPrice *coin.Coin `dynamodbav:"registration_price,omitempty"`
	TransferPrice     *coin.Coin `dynamodbav:"transfer_price,omitempty"`
}

// recordItem is the stored shape of a name record with its bookkeeping fields.
type recordItem struct {
	PK        string `dynamodbav:"pk"`
	Owner     string `dynamodbav:"owner"`
	Version   int64  `dynamodbav:"version"`
	CreatedAt string `dynamodbav:"created_at"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func (r recordItem) record() NameRecord {
	return NameRecord{Owner: r.Owner}
}

// managedAttrs are maintained by the store and never taken from a NameRecord.
var managedAttrs = map[string]bool{
	"pk":         true,
	"version":    true,
	"created_at": true,
	"updated_at": true,
}

func (s *DynamoDB) key(k string) PK {
	return PK{"pk": &types.AttributeValueMemberS{Value: k}}
}

// LoadConfig returns the configuration record.
func (s *DynamoDB) LoadConfig(ctx context.Context) (Config, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.Table),
		Key:            s.key(keys.Config),
		ConsistentRead: aws.Bool(s.config.ConsistentRead),
	})
	if err != nil {
		return Config{}, fmt.Errorf("get config: %w", err)
	}
	if result.Item == nil {
		return Config{}, ErrConfigNotFound
	}

	var item configItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return Config{
		RegistrationPrice: item.RegistrationPrice,
		TransferPrice:     item.TransferPrice,
	}, nil
}

// CreateConfig writes the configuration record if it does not exist yet.
func (s *DynamoDB) CreateConfig(ctx context.Context, cfg Config) error {
	err := s.putConfig(ctx, cfg, aws.String("attribute_not_exists(pk)"))
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrConfigExists
	}
	return err
}

// SaveConfig overwrites the configuration record.
func (s *DynamoDB) SaveConfig(ctx context.Context, cfg Config) error {
	return s.putConfig(ctx, cfg, nil)
}

func (s *DynamoDB) putConfig(ctx context.Context, cfg Config, condition *string) error {
	item, err := attributevalue.MarshalMap(configItem{
		PK:                keys.Config,
		RegistrationPrice: cfg.RegistrationPrice,
		TransferPrice:     cfg.TransferPrice,
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.Table),
		Item:                item,
		ConditionExpression: condition,
	})
	if err != nil {
		return fmt.Errorf("put config: %w", err)
	}
	return nil
}

// LoadRecord returns the record for name, or ErrNotFound.
func (s *DynamoDB) LoadRecord(ctx context.Context, name string) (NameRecord, error) {
	item, err := s.getRecord(ctx, name, s.config.ConsistentRead)
	if err != nil {
		return NameRecord{}, err
	}
	if item == nil {
		return NameRecord{}, ErrNotFound
	}
	return item.record(), nil
}

// SaveRecord overwrites the record for name, creating it if needed.
func (s *DynamoDB) SaveRecord(ctx context.Context, name string, record NameRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)

	exprNames := map[string]string{
		"#updated_at": "updated_at",
		"#created_at": "created_at",
		"#version":    "version",
	}
	exprValues := map[string]types.AttributeValue{
		":now":  &types.AttributeValueMemberS{Value: now},
		":zero": &types.AttributeValueMemberN{Value: "0"},
		":one":  &types.AttributeValueMemberN{Value: "1"},
	}

	setClauses, err := recordSetClauses(record, exprNames, exprValues)
	if err != nil {
		return err
	}
	setClauses = append(setClauses,
		"#updated_at = :now",
		"#created_at = if_not_exists(#created_at, :now)",
		"#version = if_not_exists(#version, :zero) + :one",
	)

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.Table),
		Key:                       s.key(keys.Record(name)),
		UpdateExpression:          aws.String("SET " + strings.Join(setClauses, ", ")),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
	})
	if err != nil {
		return fmt.Errorf("save record %q: %w", name, err)
	}
	return nil
}

// UpdateRecord atomically applies fn to the record for name.
//
// The record is read consistently, fn computes the next value, and the write
// is conditioned on the record being unchanged: absent for a new record, or
// at the same version for an existing one. If another writer wins in between,
// the whole read-modify-write is repeated, so fn may run more than once and
// must not have side effects. After MaxUpdateAttempts lost races
// ErrConcurrentModification is returned.
func (s *DynamoDB) UpdateRecord(ctx context.Context, name string, fn UpdateFunc) error {
	for attempt := 0; attempt < s.config.MaxUpdateAttempts; attempt++ {
		current, err := s.getRecord(ctx, name, true)
		if err != nil {
			return err
		}

		var currentRecord *NameRecord
		if current != nil {
			rec := current.record()
			currentRecord = &rec
		}

		next, err := fn(currentRecord)
		if err != nil {
			return err
		}

		if current == nil {
			err = s.putNewRecord(ctx, name, next)
		} else {
			err = s.updateRecordVersion(ctx, name, next, current.Version)
		}
		if err == nil {
			return nil
		}

		var condErr *types.ConditionalCheckFailedException
		if !errors.As(err, &condErr) {
			return err
		}
	}
	return ErrConcurrentModification
}

// getRecord fetches the raw record item; it returns nil without error when absent.
func (s *DynamoDB) getRecord(ctx context.Context, name string, consistent bool) (*recordItem, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.Table),
		Key:            s.key(keys.Record(name)),
		ConsistentRead: aws.Bool(consistent),
	})
	if err != nil {
		return nil, fmt.Errorf("get record %q: %w", name, err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var item recordItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal record %q: %w", name, err)
	}
	return &item, nil
}

// putNewRecord creates a record at version 1, failing if one already exists.
func (s *DynamoDB) putNewRecord(ctx context.Context, name string, record NameRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)

	item, err := attributevalue.MarshalMap(recordItem{
		PK:        keys.Record(name),
		Owner:     record.Owner,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("marshal record %q: %w", name, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.config.Table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	if err != nil {
		return fmt.Errorf("create record %q: %w", name, err)
	}
	return nil
}

// updateRecordVersion rewrites an existing record if it is still at expectedVersion.
func (s *DynamoDB) updateRecordVersion(ctx context.Context, name string, record NameRecord, expectedVersion int64) error {
	now := time.Now().UTC().Format(time.RFC3339)

	exprNames := map[string]string{
		"#updated_at": "updated_at",
		"#version":    "version",
	}
	exprValues := map[string]types.AttributeValue{
		":updated_at":       &types.AttributeValueMemberS{Value: now},
		":one":              &types.AttributeValueMemberN{Value: "1"},
		":expected_version": &types.AttributeValueMemberN{Value: strconv.FormatInt(expectedVersion, 10)},
	}

	setClauses, err := recordSetClauses(record, exprNames, exprValues)
	if err != nil {
		return err
	}
	setClauses = append(setClauses, "#updated_at = :updated_at")

	// Items written outside the store may lack a version; treat them as version 0.
	condition := "#version = :expected_version"
	if expectedVersion == 0 {
		condition = "attribute_exists(pk) AND (attribute_not_exists(#version) OR " + condition + ")"
		exprValues[":zero"] = &types.AttributeValueMemberN{Value: "0"}
		setClauses = append(setClauses, "#version = if_not_exists(#version, :zero) + :one")
	} else {
		setClauses = append(setClauses, "#version = #version + :one")
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.Table),
		Key:                       s.key(keys.Record(name)),
		UpdateExpression:          aws.String("SET " + strings.Join(setClauses, ", ")),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
	})
	if err != nil {
		return fmt.Errorf("update record %q: %w", name, err)
	}
	return nil
}

// recordSetClauses adds one SET clause per NameRecord attribute, in a stable order.
func recordSetClauses(record NameRecord, exprNames map[string]string, exprValues map[string]types.AttributeValue) ([]string, error) {
	attrs, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}

	names := make([]string, 0, len(attrs))
	for k := range attrs {
		if managedAttrs[k] {
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)

	clauses := make([]string, 0, len(names))
	for i, k := range names {
		nameKey := fmt.Sprintf("#attr%d", i)
		valueKey := fmt.Sprintf(":val%d", i)
		exprNames[nameKey] = k
		exprValues[valueKey] = attrs[k]
		clauses = append(clauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}
	return clauses, nil
}

var _ Store = (*DynamoDB)(nil)
