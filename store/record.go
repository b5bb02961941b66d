package store

import (
	"context"

	"github.com/jacentio/nameservice/coin"
)

// Config holds the prices charged by the registry.
// A nil price, or one with a zero amount, makes the operation free.
type Config struct {
	// RegistrationPrice is required to register a new name.
	RegistrationPrice *coin.Coin `json:"registration_price,omitempty"`

	// TransferPrice is required to transfer an existing name.
	TransferPrice *coin.Coin `json:"transfer_price,omitempty"`
}

// clone returns a deep copy so callers never share price pointers with the store.
func (c Config) clone() Config {
	out := Config{}
	if c.RegistrationPrice != nil {
		p := *c.RegistrationPrice
		out.RegistrationPrice = &p
	}
	if c.TransferPrice != nil {
		p := *c.TransferPrice
		out.TransferPrice = &p
	}
	return out
}

// NameRecord is the persisted ownership of a name.
type NameRecord struct {
	// Owner is the canonical identity of the current owner.
	Owner string `json:"owner" dynamodbav:"owner"`
}

// UpdateFunc transforms the current record of a name.
// current is nil when the name has no record.
type UpdateFunc func(current *NameRecord) (NameRecord, error)

// Store is the durable state backing the registry.
type Store interface {
	// LoadConfig returns the configuration, or ErrConfigNotFound.
	LoadConfig(ctx context.Context) (Config, error)

	// CreateConfig stores the configuration only if none exists yet;
	// otherwise it returns ErrConfigExists and leaves the stored one intact.
	CreateConfig(ctx context.Context, cfg Config) error

	// SaveConfig overwrites the configuration.
	SaveConfig(ctx context.Context, cfg Config) error

	// LoadRecord returns the record for name, or ErrNotFound.
	LoadRecord(ctx context.Context, name string) (NameRecord, error)

	// SaveRecord overwrites the record for name.
	SaveRecord(ctx context.Context, name string, record NameRecord) error

	// UpdateRecord atomically applies fn to the record for name.
	// The result of fn is written only when fn returns a nil error.
	UpdateRecord(ctx context.Context, name string, fn UpdateFunc) error
}
