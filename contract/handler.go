package contract

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"

	"github.com/jacentio/nameservice/coin"
)

// Request is the envelope delivered by the invoking environment.
// Exactly one of Instantiate, Execute or Query must be set; Sender and Funds
// apply to Execute only.
type Request struct {
	Sender      string          `json:"sender,omitempty"`
	Funds       coin.Coins      `json:"funds,omitempty"`
	Instantiate json.RawMessage `json:"instantiate,omitempty"`
	Execute     json.RawMessage `json:"execute,omitempty"`
	Query       json.RawMessage `json:"query,omitempty"`
}

// Response carries either the result data or a rejected request's error.
type Response struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

var ack = json.RawMessage(`{}`)

// Handler serves Request envelopes, e.g. as an AWS Lambda handler.
type Handler struct {
	contract *Contract
	logger   *slog.Logger
}

// NewHandler creates a new envelope handler.
func NewHandler(c *Contract, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		contract: c,
		logger:   logger,
	}
}

// Handle dispatches one envelope.
//
// Rejected requests (bad name, insufficient funds, not owner, ...) are
// reported in the Response with a nil error. Store failures are returned as
// errors so the invoker treats them as failed invocations.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	logger := h.logger.With("requestID", requestID(ctx))

	var (
		data json.RawMessage
		err  error
	)
	switch {
	case req.Instantiate != nil && req.Execute == nil && req.Query == nil:
		err = h.contract.InstantiateJSON(ctx, req.Instantiate)
		data = ack
	case req.Execute != nil && req.Instantiate == nil && req.Query == nil:
		err = h.contract.ExecuteJSON(ctx, MessageInfo{Sender: req.Sender, Funds: req.Funds}, req.Execute)
		data = ack
	case req.Query != nil && req.Instantiate == nil && req.Execute == nil:
		data, err = h.contract.QueryJSON(ctx, req.Query)
	default:
		err = ErrUnknownMessage
	}

	if err == nil {
		return Response{Data: data}, nil
	}

	code := Code(err)
	if code == "store_failure" || code == "internal" {
		logger.Error("request failed", "code", code, "error", err)
		return Response{}, err
	}

	logger.Info("request rejected", "code", code, "error", err)
	return Response{Error: err.Error(), Code: code}, nil
}

// requestID prefers the Lambda request id and falls back to a fresh uuid.
func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
