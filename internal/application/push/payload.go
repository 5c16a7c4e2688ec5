package push

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hermes/backend/internal/domain/crm"
	"github.com/shopspring/decimal"
)

// customValuesFor collects the stored custom field values for one owner,
// keyed by definition ID.
func (p *Pusher) customValuesFor(ctx context.Context, owner crm.OwnerRef) (map[int64]string, error) {
	rows, err := p.customValues.FindByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(rows))
	for i := range rows {
		if _, dup := out[rows[i].CustomFieldID]; dup {
			continue
		}
		out[rows[i].CustomFieldID] = rows[i].Value
	}
	return out, nil
}

// outboundValue renders one stored value in the external system's wire form.
// Booleans go out as the "Yes" option Pipedrive's single-option fields use,
// cleared by an empty string.
func outboundValue(def *crm.CustomField, stored string) any {
	if def.FieldType == crm.FieldTypeBool {
		if stored == "true" {
			return "Yes"
		}
		return ""
	}
	return stored
}

// applyCustomPayload adds every Pipedrive-mapped custom field for one owner
// to the payload. Canonical-backed definitions read the entity attribute;
// the rest read their stored value row, absent rows clearing the remote
// field.
func (p *Pusher) applyCustomPayload(ctx context.Context, payload map[string]any, owner crm.OwnerRef, attr func(name string) (string, bool)) error {
	defs, err := p.customFields.FindByObjectType(ctx, owner.Kind)
	if err != nil {
		return err
	}
	stored, err := p.customValuesFor(ctx, owner)
	if err != nil {
		return err
	}
	for i := range defs {
		def := defs[i]
		if def.PDFieldID == "" {
			continue
		}
		if def.HermesFieldName != "" {
			if v, ok := attr(def.HermesFieldName); ok {
				payload[def.PDFieldID] = outboundValue(&def, v)
			}
			continue
		}
		payload[def.PDFieldID] = outboundValue(&def, stored[def.ID])
	}
	return nil
}

// companyAttr resolves a canonical-backed field name against a company.
func (p *Pusher) companyAttr(c *crm.Company) func(name string) (string, bool) {
	return func(name string) (string, bool) {
		switch name {
		case "hermes_id", "id":
			return strconv.FormatInt(c.ID, 10), true
		case "name":
			return c.Name, true
		case "status", "tc2_status":
			return string(c.Status), true
		case "price_plan":
			return string(c.PricePlan), true
		case "country":
			return c.Country, true
		case "website":
			return c.Website, true
		case "paid_invoice_count":
			return strconv.Itoa(c.PaidInvoiceCount), true
		case "estimated_income":
			return c.EstimatedIncome, true
		case "currency":
			return c.Currency, true
		case "has_booked_call":
			return strconv.FormatBool(c.HasBookedCall), true
		case "narc":
			return strconv.FormatBool(c.Narc), true
		case "tc2_cligency_url":
			return c.TC2CligencyURL(p.tc2BaseURL), true
		case "tc2_agency_id":
			if c.TC2AgencyID == nil {
				return "", true
			}
			return strconv.FormatInt(*c.TC2AgencyID, 10), true
		case "tc2_cligency_id":
			if c.TC2CligencyID == nil {
				return "", true
			}
			return strconv.FormatInt(*c.TC2CligencyID, 10), true
		}
		return "", false
	}
}

func (p *Pusher) contactAttr(c *crm.Contact) func(name string) (string, bool) {
	return func(name string) (string, bool) {
		switch name {
		case "hermes_id", "id":
			return strconv.FormatInt(c.ID, 10), true
		case "name":
			return c.Name(), true
		case "email":
			return c.Email, true
		case "phone":
			return c.Phone, true
		}
		return "", false
	}
}

func (p *Pusher) dealAttr(d *crm.Deal) func(name string) (string, bool) {
	return func(name string) (string, bool) {
		switch name {
		case "hermes_id", "id":
			return strconv.FormatInt(d.ID, 10), true
		case "name":
			return d.Name, true
		case "status":
			return string(d.Status), true
		}
		return "", false
	}
}

// payloadMatches reports whether the remote copy already carries every value
// the payload would write, in which case the push is skipped entirely.
func payloadMatches(remote, payload map[string]any) bool {
	for key, want := range payload {
		if compareString(remote[key]) != compareString(want) {
			return false
		}
	}
	return true
}

// compareString normalizes a wire value for comparison. Pipedrive returns
// some references as {"value": id} objects; those compare by their value.
func compareString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case decimal.Decimal:
		return t.String()
	case map[string]any:
		if inner, ok := t["value"]; ok {
			return compareString(inner)
		}
	}
	return fmt.Sprint(v)
}
