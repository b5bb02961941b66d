// Package stream turns DynamoDB Streams records of the name table into
// ownership change events.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/nameservice/internal/keys"
)

// ChangeKind identifies what happened to a name.
type ChangeKind string

const (
	Registered  ChangeKind = "registered"
	Transferred ChangeKind = "transferred"
)

// Change is one ownership event.
type Change struct {
	Kind          ChangeKind
	Name          string
	PreviousOwner string // empty for Registered
	Owner         string
	Version       int64
}

// Sink receives ownership changes. Returning an error fails the batch so the
// stream redelivers it; sinks must tolerate duplicates.
type Sink interface {
	Publish(ctx context.Context, c Change) error
}

// LogSink writes every change to a logger.
type LogSink struct {
	Logger *slog.Logger
}

// Publish implements Sink.
func (s LogSink) Publish(ctx context.Context, c Change) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "ownership changed",
		"kind", c.Kind,
		"name", c.Name,
		"from", c.PreviousOwner,
		"to", c.Owner,
		"version", c.Version,
	)
	return nil
}

// Handler processes DynamoDB stream events for the name table.
type Handler struct {
	sink   Sink
	logger *slog.Logger
}

// NewHandler creates a new stream handler. A nil sink logs changes.
func NewHandler(sink Sink, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = LogSink{Logger: logger}
	}
	return &Handler{
		sink:   sink,
		logger: logger,
	}
}

// HandleOwnershipChanges publishes a Change for every registration and
// transfer in the batch.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleOwnershipChanges(ctx context.Context, event events.DynamoDBEvent) error {
	for i := range event.Records {
		record := &event.Records[i]
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record *events.DynamoDBEventRecord) error {
	change, ok := toChange(record)
	if !ok {
		return nil
	}
	if err := h.sink.Publish(ctx, change); err != nil {
		return fmt.Errorf("publish %s %s: %w", change.Kind, change.Name, err)
	}
	return nil
}

// toChange maps a stream record to a Change. ok is false for the config
// record, removals and modifications that kept the owner.
func toChange(record *events.DynamoDBEventRecord) (Change, bool) {
	name, ok := keys.NameFromRecord(getStringAttr(record.Change.Keys, "pk"))
	if !ok {
		return Change{}, false
	}

	change := Change{
		Name:    name,
		Owner:   getStringAttr(record.Change.NewImage, "owner"),
		Version: getNumberAttr(record.Change.NewImage, "version"),
	}

	switch record.EventName {
	case "INSERT":
		change.Kind = Registered
	case "MODIFY":
		change.PreviousOwner = getStringAttr(record.Change.OldImage, "owner")
		if change.PreviousOwner == change.Owner {
			return Change{}, false
		}
		change.Kind = Transferred
	default:
		// Names are never deleted.
		return Change{}, false
	}

	if change.Owner == "" {
		return Change{}, false
	}
	return change, true
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// getNumberAttr extracts a number attribute from a DynamoDB stream image.
func getNumberAttr(image map[string]events.DynamoDBAttributeValue, key string) int64 {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeNumber {
			n, _ := strconv.ParseInt(v.Number(), 10, 64)
			return n
		}
	}
	return 0
}
