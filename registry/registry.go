package registry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jacentio/nameservice/coin"
	"github.com/jacentio/nameservice/store"
)

// Registry runs register and transfer requests against a store.
//
// It keeps no state of its own: every call re-reads the configuration and
// the affected record, so it is safe to construct one per request or to
// share one across requests.
type Registry struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a Registry over s.
func New(s store.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:  s,
		logger: logger,
	}
}

// Initialize writes the registry configuration. It succeeds only once;
// later calls return ErrAlreadyInitialized and leave the prices unchanged.
func (r *Registry) Initialize(ctx context.Context, cfg store.Config) error {
	err := r.store.CreateConfig(ctx, cfg)
	if errors.Is(err, store.ErrConfigExists) {
		return r.reject("initialize", "", ErrAlreadyInitialized)
	}
	if err != nil {
		return storeErr("create config", err)
	}
	r.logger.Info("registry initialized",
		"registrationPrice", priceAttr(cfg.RegistrationPrice),
		"transferPrice", priceAttr(cfg.TransferPrice),
	)
	return nil
}

// Register assigns name to sender if it is valid, unclaimed and paid for.
func (r *Registry) Register(ctx context.Context, name, sender string, funds coin.Coins) error {
	// Names are only validated here; a registered name is valid for good.
	if err := ValidateName(name); err != nil {
		return r.reject("register", name, err)
	}

	cfg, err := r.store.LoadConfig(ctx)
	if err != nil {
		return storeErr("load config", err)
	}
	if err := coin.AssertSufficient(funds, cfg.RegistrationPrice); err != nil {
		return r.reject("register", name, err)
	}
	if sender == "" {
		return r.reject("register", name, ErrInvalidAddress)
	}

	err = r.store.UpdateRecord(ctx, name, func(current *store.NameRecord) (store.NameRecord, error) {
		if current != nil {
			return store.NameRecord{}, ErrNameTaken
		}
		return store.NameRecord{Owner: sender}, nil
	})
	if errors.Is(err, ErrNameTaken) {
		return r.reject("register", name, err)
	}
	if err != nil {
		return storeErr("register "+name, err)
	}

	r.logger.Info("name registered", "name", name, "owner", sender)
	return nil
}

// Transfer moves name from sender to recipient. The sender must own the name
// and attach enough funds to cover the transfer price.
func (r *Registry) Transfer(ctx context.Context, name, sender, recipient string, funds coin.Coins) error {
	cfg, err := r.store.LoadConfig(ctx)
	if err != nil {
		return storeErr("load config", err)
	}
	if err := coin.AssertSufficient(funds, cfg.TransferPrice); err != nil {
		return r.reject("transfer", name, err)
	}
	if sender == "" || recipient == "" {
		return r.reject("transfer", name, ErrInvalidAddress)
	}

	var previous string
	err = r.store.UpdateRecord(ctx, name, func(current *store.NameRecord) (store.NameRecord, error) {
		if current == nil {
			return store.NameRecord{}, ErrNameNotFound
		}
		if current.Owner != sender {
			return store.NameRecord{}, ErrNotOwner
		}
		previous = current.Owner
		next := *current
		next.Owner = recipient
		return next, nil
	})
	if errors.Is(err, ErrNameNotFound) || errors.Is(err, ErrNotOwner) {
		return r.reject("transfer", name, err)
	}
	if err != nil {
		return storeErr("transfer "+name, err)
	}

	r.logger.Info("name transferred", "name", name, "from", previous, "to", recipient)
	return nil
}

// ResolveRecord returns the owner of name. found is false, with a nil error,
// when the name is not registered.
func (r *Registry) ResolveRecord(ctx context.Context, name string) (owner string, found bool, err error) {
	rec, err := r.store.LoadRecord(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr("resolve "+name, err)
	}
	return rec.Owner, true, nil
}

// Config returns the registry configuration as stored.
func (r *Registry) Config(ctx context.Context) (store.Config, error) {
	cfg, err := r.store.LoadConfig(ctx)
	if err != nil {
		return store.Config{}, storeErr("load config", err)
	}
	return cfg, nil
}

// reject logs a rule failure and returns it unchanged.
func (r *Registry) reject(op, name string, err error) error {
	r.logger.Debug("request rejected", "op", op, "name", name, "error", err)
	return err
}

func priceAttr(c *coin.Coin) string {
	if c == nil || c.IsZero() {
		return "free"
	}
	return c.String()
}
