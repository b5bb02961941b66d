package store

// DynamoDBConfig holds configuration for the DynamoDB backend.
type DynamoDBConfig struct {
	// Table is the name of the registry table (hash key "pk", type S).
	// Default: "nameservice"
	Table string

	// MaxUpdateAttempts bounds how often UpdateRecord re-reads and retries
	// after losing a conditional write to another writer.
	// Default: 3
	// Max: 10
	MaxUpdateAttempts int

	// ConsistentRead enables strongly consistent reads.
	// UpdateRecord always reads consistently regardless of this setting.
	// Default: true
	ConsistentRead bool
}

// DefaultDynamoDBConfig returns sensible defaults.
func DefaultDynamoDBConfig() DynamoDBConfig {
	return DynamoDBConfig{
		Table:             "nameservice",
		MaxUpdateAttempts: 3,
		ConsistentRead:    true,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *DynamoDBConfig) validate() {
	if c.Table == "" {
		c.Table = "nameservice"
	}
	if c.MaxUpdateAttempts < 1 {
		c.MaxUpdateAttempts = 3
	}
	if c.MaxUpdateAttempts > 10 {
		c.MaxUpdateAttempts = 10
	}
}
