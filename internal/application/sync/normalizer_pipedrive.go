package sync

import (
	"context"
	"strconv"
	"strings"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
	"go.uber.org/zap"
)

// PipedriveMeta is the meta block of a Pipedrive webhook body.
type PipedriveMeta struct {
	Action string `json:"action"`
	Object string `json:"object"`
}

// PipedriveEvent is the raw {meta, current, previous} body Pipedrive posts.
type PipedriveEvent struct {
	Meta     PipedriveMeta  `json:"meta"`
	Current  map[string]any `json:"current"`
	Previous map[string]any `json:"previous"`
}

// Normalizer converts each external system's raw payload shapes into
// contract-validated snapshots.
type Normalizer struct {
	registry *schema.Registry
	logger   *zap.Logger
}

// NewNormalizer creates a Normalizer
func NewNormalizer(registry *schema.Registry, logger *zap.Logger) *Normalizer {
	return &Normalizer{registry: registry, logger: logger}
}

// pipedriveKind maps Pipedrive's object discriminator to a local object kind.
// Kinds the engine does not act on return false.
func pipedriveKind(object string) (crm.ObjectKind, bool) {
	switch object {
	case "organization":
		return crm.ObjectKindCompany, true
	case "person":
		return crm.ObjectKindContact, true
	case "deal":
		return crm.ObjectKindDeal, true
	case "pipeline":
		return crm.ObjectKindPipeline, true
	case "stage":
		return crm.ObjectKindStage, true
	}
	return "", false
}

// PipedrivePair normalizes and validates a full Pipedrive webhook event.
// Events for object kinds the engine ignores ("note", "activity", ...)
// return (nil, nil) and the caller acknowledges them without processing.
func (n *Normalizer) PipedrivePair(ctx context.Context, event *PipedriveEvent) (*SnapshotPair, error) {
	kind, ok := pipedriveKind(event.Meta.Object)
	if !ok {
		n.logger.Info("ignoring pipedrive event for unhandled object kind",
			zap.String("object", event.Meta.Object),
			zap.String("action", event.Meta.Action),
		)
		return nil, nil
	}

	pair := &SnapshotPair{Kind: kind, System: schema.SystemPipedrive}
	var err error
	if pair.Current, err = n.pipedriveSnapshot(ctx, kind, event.Current); err != nil {
		return nil, err
	}
	if pair.Previous, err = n.pipedriveSnapshot(ctx, kind, event.Previous); err != nil {
		return nil, err
	}
	if !pair.Valid() {
		return nil, schema.NewValidationError([]string{"current"}, "one of current or previous is required")
	}
	return pair, nil
}

func (n *Normalizer) pipedriveSnapshot(ctx context.Context, kind crm.ObjectKind, raw map[string]any) (*Snapshot, error) {
	if raw == nil {
		return nil, nil
	}
	normalized := make(map[string]any, len(raw))
	for k, v := range raw {
		normalized[k] = collapsePrimary(v)
	}

	mergeIDs := n.extractMergeMarker(kind, normalized)

	obj, err := n.registry.ValidateObject(ctx, schema.SystemPipedrive, kind, normalized)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Object: obj, MergeIDs: mergeIDs}, nil
}

// collapsePrimary flattens Pipedrive's list-of-alternatives shapes to a
// single scalar: [{"value": ..., "primary": true}, ...] becomes the primary
// entry's value, and a one-element scalar list becomes its only element.
func collapsePrimary(v any) any {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return v
	}
	if m, ok := items[0].(map[string]any); ok {
		if _, hasValue := m["value"]; hasValue {
			for _, item := range items {
				if entry, ok := item.(map[string]any); ok {
					if primary, _ := entry["primary"].(bool); primary {
						return entry["value"]
					}
				}
			}
			return m["value"]
		}
	}
	if len(items) == 1 {
		return items[0]
	}
	return v
}

// extractMergeMarker looks for a comma-separated local-ID string in the
// hermes_id custom field. When found the raw value is replaced with the
// first (primary) ID so validation proceeds, and the full list is returned
// for merge reconciliation.
func (n *Normalizer) extractMergeMarker(kind crm.ObjectKind, raw map[string]any) []int64 {
	contract, ok := n.registry.Current().Contract(schema.SystemPipedrive, kind)
	if !ok {
		return nil
	}
	spec, ok := contract.Field(HermesIDField)
	if !ok {
		return nil
	}
	s, ok := raw[spec.Key].(string)
	if !ok || !strings.Contains(s, ",") {
		return nil
	}

	var ids []int64
	for _, part := range strings.Split(s, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			n.logger.Warn("unparseable merge marker entry",
				zap.String("field", spec.Key),
				zap.String("value", s),
			)
			return nil
		}
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return nil
	}
	raw[spec.Key] = ids[0]
	n.logger.Info("detected merged entity, using primary hermes id",
		zap.String("kind", string(kind)),
		zap.Int64("primary", ids[0]),
		zap.Int("merged", len(ids)),
	)
	return ids
}
