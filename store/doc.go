// Package store provides durable state for the name registry.
//
// State has two regions: a single configuration record holding the prices
// for registration and transfer, and a mapping from name to [NameRecord].
// Every backend implements the [Store] interface:
//
//	type Store interface {
//	    LoadConfig(ctx) (Config, error)
//	    CreateConfig(ctx, Config) error
//	    SaveConfig(ctx, Config) error
//	    LoadRecord(ctx, name) (NameRecord, error)
//	    SaveRecord(ctx, name, NameRecord) error
//	    UpdateRecord(ctx, name, UpdateFunc) error
//	}
//
// # Atomic Updates
//
// [Store.UpdateRecord] is an atomic read-modify-write on one name. The
// current record (nil when absent) is passed to the [UpdateFunc]; its result
// is persisted only if it returns a nil error, and its error is returned
// unchanged otherwise. Nothing else can modify the record between the read
// and the write.
//
// # Backends
//
//   - [Memory] - in-process map guarded by a mutex
//   - [DynamoDB] - single table, conditional writes with a version attribute
//   - the store/redis package - WATCH/MULTI transactions
//
// Use [DefaultDynamoDBConfig] for the DynamoDB backend:
//
//	cfg := store.DefaultDynamoDBConfig()
//	cfg.Table = "names-prod"
//	s := store.NewDynamoDB(client, cfg)
//
// # Errors
//
// The package defines backend-independent errors:
//
//   - [ErrNotFound] - no record exists for the name
//   - [ErrConfigNotFound] - configuration was never saved
//   - [ErrConcurrentModification] - optimistic update lost every retry
package store
