package sync

import (
	"strings"
	"time"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/shopspring/decimal"
)

// A projection is the flat map of canonical values a snapshot contributes to
// the local entity. Diffing two projections of the same shape tells the
// reconciler which columns an event actually changed, so an echoed webhook
// produces an empty diff and no writes.
type projection map[string]any

func diffProjections(previous, current projection) projection {
	changed := projection{}
	for key, cur := range current {
		prev, ok := previous[key]
		if !ok || !projectionValueEqual(prev, cur) {
			changed[key] = cur
		}
	}
	return changed
}

func projectionValueEqual(a, b any) bool {
	if ad, ok := a.(decimal.Decimal); ok {
		bd, ok := b.(decimal.Decimal)
		return ok && ad.Equal(bd)
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}

// pricePlanName strips the product prefix TC2 puts on plan names, so
// "agency-payg" stores as "payg".
func pricePlanName(s string) string {
	if i := strings.LastIndex(s, "-"); i >= 0 {
		return s[i+1:]
	}
	return s
}

// idOrNil flattens a pointer so projections stay directly comparable.
func idOrNil(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func companyProjectionPD(obj *schema.Object) projection {
	if obj == nil {
		return nil
	}
	return projection{
		"name":            obj.Str("name"),
		"country":         obj.Str("country"),
		"sales_person_id": idOrNil(relatedAdminID(obj, "admin")),
	}
}

func companyProjectionTC2(obj *schema.Object) projection {
	if obj == nil {
		return nil
	}
	p := projection{
		"status":            obj.Str("status"),
		"narc":              obj.Bool("narc"),
		"sales_person_id":   idOrNil(relatedAdminID(obj, "sales_person")),
		"support_person_id": idOrNil(relatedAdminID(obj, "support_person")),
		"bdr_person_id":     idOrNil(relatedAdminID(obj, "bdr_person")),
	}
	if agency := obj.Object("meta_agency"); agency != nil {
		p["name"] = agency.Str("name")
		p["country"] = agency.Str("country")
		p["website"] = agency.Str("website")
		p["price_plan"] = pricePlanName(agency.Str("price_plan"))
		p["paid_invoice_count"] = idOrNil(agency.Int("paid_invoice_count"))
	}
	return p
}

func contactProjection(obj *schema.Object) projection {
	if obj == nil {
		return nil
	}
	p := projection{
		"first_name": obj.Str("first_name"),
		"last_name":  obj.Str("last_name"),
		"email":      obj.Str("email"),
		"phone":      obj.Str("phone"),
		"country":    obj.Str("country"),
	}
	if company := relatedCompany(obj, "company"); company != nil {
		p["company_id"] = company.GetID()
	} else {
		p["company_id"] = nil
	}
	return p
}

func dealProjection(obj *schema.Object) projection {
	if obj == nil {
		return nil
	}
	p := projection{
		"name":     obj.Str("title"),
		"status":   obj.Str("status"),
		"amount":   obj.Decimal("value"),
		"currency": obj.Str("currency"),
		"admin_id": idOrNil(relatedAdminID(obj, "admin")),
	}
	if company := relatedCompany(obj, "company"); company != nil {
		p["company_id"] = company.GetID()
	} else {
		p["company_id"] = nil
	}
	if contact := relatedContact(obj, "contact"); contact != nil {
		p["contact_id"] = contact.GetID()
	} else {
		p["contact_id"] = nil
	}
	if pl, ok := obj.RelatedEntity("pipeline").(interface{ GetID() int64 }); ok {
		p["pipeline_id"] = pl.GetID()
	} else {
		p["pipeline_id"] = nil
	}
	if st, ok := obj.RelatedEntity("stage").(interface{ GetID() int64 }); ok {
		p["stage_id"] = st.GetID()
	} else {
		p["stage_id"] = nil
	}
	return p
}
