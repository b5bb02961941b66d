// Package contract exposes the registry through JSON messages.
//
// It decodes instantiate, execute and query messages, dispatches them to a
// registry.Registry and encodes the responses. Errors keep their registry
// identity; use [Code] to obtain a stable string for clients.
package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jacentio/nameservice/coin"
	"github.com/jacentio/nameservice/registry"
	"github.com/jacentio/nameservice/store"
)

var (
	// ErrUnknownMessage is returned when a message sets no variant or more than one.
	ErrUnknownMessage = errors.New("nameservice: unknown message")

	// ErrMalformedMessage is returned when a message is not valid JSON for its type.
	ErrMalformedMessage = errors.New("nameservice: malformed message")
)

// Contract dispatches decoded messages to a registry.
type Contract struct {
	registry *registry.Registry
}

// New creates a Contract over r.
func New(r *registry.Registry) *Contract {
	return &Contract{registry: r}
}

// Instantiate writes the configuration. Only the first call succeeds.
func (c *Contract) Instantiate(ctx context.Context, msg InstantiateMsg) error {
	return c.registry.Initialize(ctx, store.Config{
		RegistrationPrice: msg.RegistrationPrice,
		TransferPrice:     msg.TransferPrice,
	})
}

// Execute runs a register or transfer on behalf of info.Sender.
func (c *Contract) Execute(ctx context.Context, info MessageInfo, msg ExecuteMsg) error {
	switch {
	case msg.Register != nil && msg.Transfer == nil:
		return c.registry.Register(ctx, msg.Register.Name, info.Sender, info.Funds)
	case msg.Transfer != nil && msg.Register == nil:
		return c.registry.Transfer(ctx, msg.Transfer.Name, info.Sender, msg.Transfer.To, info.Funds)
	default:
		return ErrUnknownMessage
	}
}

// Query answers a resolve_record or config query.
// The result is a ResolveRecordResponse or a ConfigResponse.
func (c *Contract) Query(ctx context.Context, msg QueryMsg) (any, error) {
	switch {
	case msg.ResolveRecord != nil && msg.Config == nil:
		owner, found, err := c.registry.ResolveRecord(ctx, msg.ResolveRecord.Name)
		if err != nil {
			return nil, err
		}
		resp := ResolveRecordResponse{}
		if found {
			resp.Address = &owner
		}
		return resp, nil
	case msg.Config != nil && msg.ResolveRecord == nil:
		cfg, err := c.registry.Config(ctx)
		if err != nil {
			return nil, err
		}
		return ConfigResponse{
			RegistrationPrice: cfg.RegistrationPrice,
			TransferPrice:     cfg.TransferPrice,
		}, nil
	default:
		return nil, ErrUnknownMessage
	}
}

// InstantiateJSON decodes and runs an instantiate message.
func (c *Contract) InstantiateJSON(ctx context.Context, data []byte) error {
	var msg InstantiateMsg
	if err := decode(data, &msg); err != nil {
		return err
	}
	return c.Instantiate(ctx, msg)
}

// ExecuteJSON decodes and runs an execute message.
func (c *Contract) ExecuteJSON(ctx context.Context, info MessageInfo, data []byte) error {
	var msg ExecuteMsg
	if err := decode(data, &msg); err != nil {
		return err
	}
	return c.Execute(ctx, info, msg)
}

// QueryJSON decodes a query message and returns the encoded response.
func (c *Contract) QueryJSON(ctx context.Context, data []byte) ([]byte, error) {
	var msg QueryMsg
	if err := decode(data, &msg); err != nil {
		return nil, err
	}
	resp, err := c.Query(ctx, msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}

// decode rejects unknown fields so a misspelled variant is not silently ignored.
func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	return nil
}

// Code maps an error to a stable identifier for clients.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, registry.ErrInvalidName):
		return "name_invalid"
	case errors.Is(err, coin.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, registry.ErrNameTaken):
		return "name_taken"
	case errors.Is(err, registry.ErrNameNotFound):
		return "name_not_found"
	case errors.Is(err, registry.ErrNotOwner):
		return "not_owner"
	case errors.Is(err, registry.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, registry.ErrAlreadyInitialized):
		return "already_initialized"
	case errors.Is(err, ErrUnknownMessage):
		return "unknown_message"
	case errors.Is(err, ErrMalformedMessage):
		return "malformed_message"
	case errors.Is(err, registry.ErrStoreFailure):
		return "store_failure"
	default:
		return "internal"
	}
}
