// Package stream provides DynamoDB Streams handlers for relationship
// maintenance on out-of-band deletions.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/espalier/internal/idset"
	"github.com/jacentio/espalier/relation"
)

// Store is the adapter surface the handler needs: fetch referenced targets
// and persist their mutated linkage fields.
type Store interface {
	FindByIDs(ctx context.Context, docType string, ids []string, cond relation.Condition) ([]relation.Document, error)
	Save(ctx context.Context, doc relation.Document) error
}

// Handler processes DynamoDB stream events to unlink targets when a parent
// document is removed outside the association layer. For each array
// relationship declared by the removed document's type, the parent's
// identifier is removed from every target's inverse array field, or the
// target's to-one inverse field is unset.
type Handler struct {
	store    Store
	registry *relation.Registry
	logger   *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(s Store, registry *relation.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    s,
		registry: registry,
		logger:   logger,
	}
}

// HandleUnlink processes DynamoDB stream events, dereferencing the targets
// of every removed parent document. This function is designed to be used
// as an AWS Lambda handler.
func (h *Handler) HandleUnlink(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
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
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	image := record.Change.OldImage
	docType := getStringAttr(image, "doc_type")
	docID := getStringAttr(image, "id")
	if docType == "" || docID == "" {
		return nil
	}

	for _, decl := range h.registry.Declared(docType) {
		if decl.Kind != relation.ToManyArray || decl.InverseOf == "" {
			continue
		}
		if err := h.unlinkTargets(ctx, decl, docID, image); err != nil {
			return fmt.Errorf("unlink %s.%s: %w", decl.OwnerType, decl.Name, err)
		}
	}
	return nil
}

// unlinkTargets clears the inverse linkage on every target the removed
// parent referenced.
func (h *Handler) unlinkTargets(ctx context.Context, decl relation.Declaration, parentID string, image map[string]events.DynamoDBAttributeValue) error {
	ids := getStringListAttr(image, decl.Field)
	if len(ids) == 0 {
		return nil
	}

	inv, err := h.registry.Inverse(decl)
	if err != nil {
		return err
	}

	targets, err := h.store.FindByIDs(ctx, decl.TargetType, ids, nil)
	if err != nil {
		return fmt.Errorf("find targets: %w", err)
	}

	h.logger.Info("unlinking removed parent from targets",
		"parent", docRef(decl.OwnerType, parentID),
		"relationship", decl.Name,
		"targetCount", len(targets),
	)

	for _, target := range targets {
		switch inv.Kind {
		case relation.ToManyArray:
			relation.SetIDs(target, inv.Field, idset.Remove(relation.IDs(target, inv.Field), parentID))
		case relation.ToOne:
			target.Unset(inv.Field)
		}
		if err := h.store.Save(ctx, target); err != nil {
			h.logger.Warn("failed to save unlinked target",
				"target", docRef(target.DocumentType(), target.DocumentID()),
				"error", err,
			)
			// Continue - idempotent, will retry
		}
	}
	return nil
}

// docRef formats a type-qualified document reference for log output.
func docRef(docType, id string) string {
	return docType + "#" + id
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeString {
			return v.String()
		}
	}
	return ""
}

// getStringListAttr extracts a string list attribute from a DynamoDB
// stream image.
func getStringListAttr(image map[string]events.DynamoDBAttributeValue, key string) []string {
	if v, ok := image[key]; ok {
		if v.DataType() == events.DataTypeList {
			var result []string
			for _, item := range v.List() {
				if item.DataType() == events.DataTypeString {
					result = append(result, item.String())
				}
			}
			return result
		}
	}
	return nil
}
