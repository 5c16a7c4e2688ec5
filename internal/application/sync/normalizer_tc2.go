package sync

import (
	"context"
	"strings"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
)

// TC2Event is one event inside a TC2 webhook body.
type TC2Event struct {
	Action  string         `json:"action"`
	Verb    string         `json:"verb"`
	Subject map[string]any `json:"subject"`
}

/// TC2Webhook is the body TC2 posts: a batch of events, each with a full
// subject snapshot.
type TC2Webhook struct {
	Events []TC2Event `json:"events"`
}

// SubjectModel returns the subject's model discriminator ("Client",
// "Invoice", ...).
func (e *TC2Event) SubjectModel() string {
	m, _ := e.Subject["model"].(string)
	return m
}

// TC2Client normalizes and validates a TC2 client subject. TC2 payloads nest
// admins and agency data and deliver custom values in an extra_attrs list;
// all of that is collapsed to the contract's shape before validation.
func (n *Normalizer) TC2Client(ctx context.Context, raw map[string]any) (*Snapshot, error) {
	normalized := make(map[string]any, len(raw))
	for k, v := range raw {
		normalized[k] = v
	}

	// The nested admin objects only matter for their IDs.
	for nested, flat := range map[string]string{
		"sales_person":     "sales_person_id",
		"associated_admin": "associated_admin_id",
		"bdr_person":       "bdr_person_id",
	} {
		if m, ok := normalized[nested].(map[string]any); ok {
			normalized[flat] = m["id"]
			delete(normalized, nested)
		}
	}

	if agency, ok := normalized["meta_agency"].(map[string]any); ok {
		agencyCopy := make(map[string]any, len(agency))
		for k, v := range agency {
			agencyCopy[k] = v
		}
		if country, ok := agencyCopy["country"].(string); ok {
			agencyCopy["country"] = tc2CountryCode(country)
		}
		normalized["meta_agency"] = agencyCopy
	}

	// extra_attrs: [{"machine_name": ..., "value": ...}] holds the custom
	// field values; hoist them to top-level keys so the contract's custom
	// specs (keyed by tc2 machine name) pick them up.
	if attrs, ok := normalized["extra_attrs"].([]any); ok {
		for _, item := range attrs {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			name, _ := m["machine_name"].(string)
			if name == "" {
				continue
			}
			if _, exists := normalized[name]; !exists {
				normalized[name] = m["value"]
			}
		}
		delete(normalized, "extra_attrs")
	}

	obj, err := n.registry.ValidateObject(ctx, schema.SystemTC2, crm.ObjectKindCompany, normalized)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Object: obj}, nil
}

// tc2CountryCode converts TC2's "United Kingdom (GB)" country strings to the
// bare code.
func tc2CountryCode(s string) string {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return s
	}
	return strings.Trim(parts[len(parts)-1], "()")
}
