//go:build e2e

// Package e2e contains end-to-end integration tests using real DynamoDB tables.
// Run with: go test -tags=e2e -v ./e2e/...
package e2e

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/nameservice/coin"
	"github.com/jacentio/nameservice/internal/logging"
	"github.com/jacentio/nameservice/registry"
	"github.com/jacentio/nameservice/store"
	"github.com/jacentio/nameservice/store/storetest"
)

// Table names are unique per test run to avoid conflicts.
const tablePrefix = "nameservice-e2e-test"

var (
	testID    string
	ddbClient *dynamodb.Client
)

// --- Test Setup & Teardown ---

func TestMain(m *testing.M) {
	testID = uuid.New().String()[:8]
	fmt.Printf("Test ID: %s\n", testID)

	// Uses AWS_PROFILE / AWS_REGION from the environment.
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		fmt.Printf("Failed to load AWS config: %v\n", err)
		os.Exit(1)
	}
	ddbClient = dynamodb.NewFromConfig(cfg)

	os.Exit(m.Run())
}

// newTable creates a fresh registry table and deletes it when t finishes.
func newTable(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	tableName := fmt.Sprintf("%s-%s-%s", tablePrefix, testID, uuid.New().String()[:8])

	_, err := ddbClient.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(tableName),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		t.Fatalf("create table %s: %v", tableName, err)
	}

	t.Cleanup(func() {
		_, err := ddbClient.DeleteTable(context.Background(), &dynamodb.DeleteTableInput{
			TableName: aws.String(tableName),
		})
		if err != nil {
			t.Logf("Warning: failed to delete table %s: %v", tableName, err)
		}
	})

	waiter := dynamodb.NewTableExistsWaiter(ddbClient)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	}, 2*time.Minute); err != nil {
		t.Fatalf("wait for table %s: %v", tableName, err)
	}

	return tableName
}

func newStore(t *testing.T) store.Store {
	cfg := store.DefaultDynamoDBConfig()
	cfg.Table = newTable(t)
	return store.NewDynamoDB(ddbClient, cfg)
}

// --- Store Tests ---

func TestDynamoDB_Contract(t *testing.T) {
	storetest.Run(t, newStore)
}

func TestDynamoDB_BookkeepingAttributes(t *testing.T) {
	ctx := context.Background()
	cfg := store.DefaultDynamoDBConfig()
	cfg.Table = newTable(t)
	s := store.NewDynamoDB(ddbClient, cfg)

	if err := s.UpdateRecord(ctx, "alice", func(*store.NameRecord) (store.NameRecord, error) {
		return store.NameRecord{Owner: "A"}, nil
	}); err != nil {
		t.Fatalf("UpdateRecord failed: %v", err)
	}

	out, err := ddbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(cfg.Table),
		Key:            map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: "nameresolver#alice"}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}

	if v, ok := out.Item["version"].(*types.AttributeValueMemberN); !ok || v.Value != "1" {
		t.Errorf("expected version 1, got %v", out.Item["version"])
	}
	if _, ok := out.Item["created_at"]; !ok {
		t.Error("expected created_at to be set")
	}
	if _, ok := out.Item["updated_at"]; !ok {
		t.Error("expected updated_at to be set")
	}
}

// --- Registry Tests ---

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New(newStore(t), logging.NewNop())

	registration := coin.New(100, "earth")
	transfer := coin.New(10, "earth")
	if err := r.Initialize(context.Background(), store.Config{
		RegistrationPrice: &registration,
		TransferPrice:     &transfer,
	}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return r
}

func TestRegistry_RegisterAndTransfer(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t)

	if err := r.Register(ctx, "alice", "A", coin.Coins{coin.New(100, "earth")}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err := r.Register(ctx, "alice", "B", coin.Coins{coin.New(100, "earth")})
	if !errors.Is(err, registry.ErrNameTaken) {
		t.Errorf("expected ErrNameTaken, got %v", err)
	}

	err = r.Transfer(ctx, "alice", "B", "C", coin.Coins{coin.New(10, "earth")})
	if !errors.Is(err, registry.ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}

	if err := r.Transfer(ctx, "alice", "A", "C", coin.Coins{coin.New(10, "earth")}); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	owner, found, err := r.ResolveRecord(ctx, "alice")
	if err != nil {
		t.Fatalf("ResolveRecord failed: %v", err)
	}
	if !found || owner != "C" {
		t.Errorf("expected owner C, got %q (found=%v)", owner, found)
	}
}

func TestRegistry_ConcurrentRegister(t *testing.T) {
	ctx := context.Background()
	r := newRegistry(t)

	const contenders = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		taken int
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := r.Register(ctx, "contested", fmt.Sprintf("owner-%d", i), coin.Coins{coin.New(100, "earth")})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, registry.ErrNameTaken):
				taken++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}
	if taken != contenders-1 {
		t.Errorf("expected %d ErrNameTaken, got %d", contenders-1, taken)
	}
}
