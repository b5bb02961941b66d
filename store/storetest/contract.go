// Package storetest provides a conformance suite for store.Store backends.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/jacentio/nameservice/coin"
	"github.com/jacentio/nameservice/store"
)

// Run verifies that the store returned by newStore behaves like a store.Store.
// newStore is called once per subtest and must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadConfig_BeforeSave", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.LoadConfig(ctx); !errors.Is(err, store.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("Config_RoundTrip", func(t *testing.T) {
		s := newStore(t)
		price := coin.New(100, "earth")
		cfg := store.Config{RegistrationPrice: &price}

		if err := s.SaveConfig(ctx, cfg); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		got, err := s.LoadConfig(ctx)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if got.RegistrationPrice == nil || *got.RegistrationPrice != price {
			t.Errorf("expected registration price %v, got %v", price, got.RegistrationPrice)
		}
		if got.TransferPrice != nil {
			t.Errorf("expected no transfer price, got %v", got.TransferPrice)
		}
	})

	t.Run("Config_Overwrite", func(t *testing.T) {
		s := newStore(t)
		first := coin.New(1, "earth")
		second := coin.New(2, "moon")

		if err := s.SaveConfig(ctx, store.Config{RegistrationPrice: &first}); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		if err := s.SaveConfig(ctx, store.Config{TransferPrice: &second}); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		got, err := s.LoadConfig(ctx)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if got.RegistrationPrice != nil {
			t.Errorf("expected registration price cleared, got %v", got.RegistrationPrice)
		}
		if got.TransferPrice == nil || *got.TransferPrice != second {
			t.Errorf("expected transfer price %v, got %v", second, got.TransferPrice)
		}
	})

	t.Run("CreateConfig_Once", func(t *testing.T) {
		s := newStore(t)
		first := coin.New(1, "earth")

		if err := s.CreateConfig(ctx, store.Config{RegistrationPrice: &first}); err != nil {
			t.Fatalf("CreateConfig failed: %v", err)
		}
		if err := s.CreateConfig(ctx, store.Config{}); !errors.Is(err, store.ErrConfigExists) {
			t.Fatalf("expected ErrConfigExists, got %v", err)
		}
		got, err := s.LoadConfig(ctx)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if got.RegistrationPrice == nil || *got.RegistrationPrice != first {
			t.Errorf("expected registration price %v to survive, got %v", first, got.RegistrationPrice)
		}
	})

	t.Run("CreateConfig_AfterSave", func(t *testing.T) {
		s := newStore(t)
		if err := s.SaveConfig(ctx, store.Config{}); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		if err := s.CreateConfig(ctx, store.Config{}); !errors.Is(err, store.ErrConfigExists) {
			t.Errorf("expected ErrConfigExists, got %v", err)
		}
	})

	t.Run("LoadRecord_Missing", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.LoadRecord(ctx, "ghost"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Record_RoundTrip", func(t *testing.T) {
		s := newStore(t)
		if err := s.SaveRecord(ctx, "alice", store.NameRecord{Owner: "addr-a"}); err != nil {
			t.Fatalf("SaveRecord failed: %v", err)
		}
		got, err := s.LoadRecord(ctx, "alice")
		if err != nil {
			t.Fatalf("LoadRecord failed: %v", err)
		}
		if got.Owner != "addr-a" {
			t.Errorf("expected owner 'addr-a', got %q", got.Owner)
		}
	})

	t.Run("Record_ConfigNameDoesNotClobberConfig", func(t *testing.T) {
		s := newStore(t)
		price := coin.New(5, "earth")
		if err := s.SaveConfig(ctx, store.Config{TransferPrice: &price}); err != nil {
			t.Fatalf("SaveConfig failed: %v", err)
		}
		if err := s.SaveRecord(ctx, "config", store.NameRecord{Owner: "addr-a"}); err != nil {
			t.Fatalf("SaveRecord failed: %v", err)
		}
		got, err := s.LoadConfig(ctx)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if got.TransferPrice == nil || *got.TransferPrice != price {
			t.Errorf("config was clobbered: %+v", got)
		}
	})

	t.Run("UpdateRecord_Absent", func(t *testing.T) {
		s := newStore(t)
		var sawNil bool
		err := s.UpdateRecord(ctx, "bob", func(current *store.NameRecord) (store.NameRecord, error) {
			sawNil = current == nil
			return store.NameRecord{Owner: "addr-b"}, nil
		})
		if err != nil {
			t.Fatalf("UpdateRecord failed: %v", err)
		}
		if !sawNil {
			t.Error("expected fn to receive nil for an absent record")
		}
		got, err := s.LoadRecord(ctx, "bob")
		if err != nil {
			t.Fatalf("LoadRecord failed: %v", err)
		}
		if got.Owner != "addr-b" {
			t.Errorf("expected owner 'addr-b', got %q", got.Owner)
		}
	})

	t.Run("UpdateRecord_Existing", func(t *testing.T) {
		s := newStore(t)
		if err := s.SaveRecord(ctx, "carol", store.NameRecord{Owner: "addr-c"}); err != nil {
			t.Fatalf("SaveRecord failed: %v", err)
		}
		err := s.UpdateRecord(ctx, "carol", func(current *store.NameRecord) (store.NameRecord, error) {
			if current == nil {
				return store.NameRecord{}, errors.New("expected existing record")
			}
			if current.Owner != "addr-c" {
				return store.NameRecord{}, errors.New("unexpected owner " + current.Owner)
			}
			return store.NameRecord{Owner: "addr-d"}, nil
		})
		if err != nil {
			t.Fatalf("UpdateRecord failed: %v", err)
		}
		got, err := s.LoadRecord(ctx, "carol")
		if err != nil {
			t.Fatalf("LoadRecord failed: %v", err)
		}
		if got.Owner != "addr-d" {
			t.Errorf("expected owner 'addr-d', got %q", got.Owner)
		}
	})

	t.Run("UpdateRecord_ErrorWritesNothing", func(t *testing.T) {
		s := newStore(t)
		errReject := errors.New("rejected")

		err := s.UpdateRecord(ctx, "dave", func(*store.NameRecord) (store.NameRecord, error) {
			return store.NameRecord{Owner: "addr-x"}, errReject
		})
		if !errors.Is(err, errReject) {
			t.Fatalf("expected fn error to propagate, got %v", err)
		}
		if _, err := s.LoadRecord(ctx, "dave"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected no record after failed update, got %v", err)
		}

		if err := s.SaveRecord(ctx, "dave", store.NameRecord{Owner: "addr-d"}); err != nil {
			t.Fatalf("SaveRecord failed: %v", err)
		}
		err = s.UpdateRecord(ctx, "dave", func(*store.NameRecord) (store.NameRecord, error) {
			return store.NameRecord{Owner: "addr-x"}, errReject
		})
		if !errors.Is(err, errReject) {
			t.Fatalf("expected fn error to propagate, got %v", err)
		}
		got, err := s.LoadRecord(ctx, "dave")
		if err != nil {
			t.Fatalf("LoadRecord failed: %v", err)
		}
		if got.Owner != "addr-d" {
			t.Errorf("expected owner unchanged 'addr-d', got %q", got.Owner)
		}
	})

	t.Run("UpdateRecord_Sequential", func(t *testing.T) {
		s := newStore(t)
		owners := []string{"addr-1", "addr-2", "addr-3"}
		for _, owner := range owners {
			owner := owner
			err := s.UpdateRecord(ctx, "eve", func(*store.NameRecord) (store.NameRecord, error) {
				return store.NameRecord{Owner: owner}, nil
			})
			if err != nil {
				t.Fatalf("UpdateRecord(%s) failed: %v", owner, err)
			}
		}
		got, err := s.LoadRecord(ctx, "eve")
		if err != nil {
			t.Fatalf("LoadRecord failed: %v", err)
		}
		if got.Owner != "addr-3" {
			t.Errorf("expected owner 'addr-3', got %q", got.Owner)
		}
	})
}
