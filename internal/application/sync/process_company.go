package sync

import (
	"context"
	"errors"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
	"go.uber.org/zap"
)

func (r *Reconciler) processCompany(ctx context.Context, pair *SnapshotPair) (*Result, error) {
	res := &Result{Kind: crm.ObjectKindCompany, Action: ActionNoop}

	if pair.Current == nil {
		company, err := r.locateCompany(ctx, pair.System, pair.Previous.Object)
		if err != nil {
			return nil, err
		}
		if company == nil {
			// Already gone, a redelivered delete is a no-op.
			return res, nil
		}
		if err := r.deleteCustomValues(ctx, crm.OwnerRef{Kind: crm.ObjectKindCompany, ID: company.ID}); err != nil {
			return nil, err
		}
		if err := r.companies.Delete(ctx, company.ID); err != nil && !isNotFound(err) {
			return nil, err
		}
		res.Action = ActionDeleted
		res.EntityID = company.ID
		return res, nil
	}

	cur := pair.Current
	company, err := r.locateCompany(ctx, pair.System, cur.Object)
	if err != nil {
		return nil, err
	}
	created := company == nil
	if created {
		company = &crm.Company{}
	}

	curProj := companyProjection(pair.System, cur.Object)
	changed := curProj
	if !created && pair.Previous != nil {
		changed = diffProjections(companyProjection(pair.System, pair.Previous.Object), curProj)
	}

	dirty := applyCompanyProjection(company, changed)
	dirty = r.applyCompanyIdentity(pair.System, company, cur.Object) || dirty

	if created || dirty {
		if err := r.companies.Save(ctx, company); err != nil {
			if !created || !errors.Is(err, shared.ErrAlreadyExists) {
				return nil, err
			}
			// Lost a create race; re-fetch the winner and update it instead.
			existing, ferr := r.locateCompany(ctx, pair.System, cur.Object)
			if ferr != nil || existing == nil {
				return nil, err
			}
			applyCompanyProjection(existing, curProj)
			r.applyCompanyIdentity(pair.System, existing, cur.Object)
			if err := r.companies.Save(ctx, existing); err != nil {
				return nil, err
			}
			company = existing
			created = false
			r.logger.Info("company create raced, updated existing row",
				zap.Int64("company_id", company.ID))
		}
	}

	// Merging runs against the saved primary so a recreated survivor still
	// absorbs the other locals and inherits their dependents.
	if len(cur.MergeIDs) > 0 {
		if err := r.mergeCompanies(ctx, company.ID, cur.MergeIDs); err != nil {
			return nil, err
		}
	}

	owner := crm.OwnerRef{Kind: crm.ObjectKindCompany, ID: company.ID}
	cfChanged, cfValues, err := r.applyCustomValues(ctx, owner, cur.Object)
	if err != nil {
		return nil, err
	}
	res.ChangedCustomFields = cfChanged

	// Inherited fields flow down to the company's open deals, which then need
	// their Pipedrive mirrors refreshed.
	dealIDs, err := r.propagator.PropagateCompanyFields(ctx, company.ID, cfValues)
	if err != nil {
		return nil, err
	}
	for _, id := range dealIDs {
		res.push(crm.ObjectKindDeal, id, schema.SystemPipedrive)
	}

	res.EntityID = company.ID
	switch {
	case created:
		res.Action = ActionCreated
	case dirty || len(cfChanged) > 0 || len(cur.MergeIDs) > 0:
		res.Action = ActionUpdated
	}
	if res.Action != ActionNoop && !company.Narc {
		res.push(crm.ObjectKindCompany, company.ID, pair.System.Other())
	}
	return res, nil
}

// locateCompany finds the local company a snapshot refers to: the resolved
// hermes_id reference wins, then the system's own external identifier.
func (r *Reconciler) locateCompany(ctx context.Context, system schema.System, obj *schema.Object) (*crm.Company, error) {
	if c := relatedCompany(obj, HermesIDField); c != nil {
		return c, nil
	}
	id := obj.Int("id")
	if id == nil {
		return nil, nil
	}

	var company *crm.Company
	var err error
	if system == schema.SystemPipedrive {
		company, err = r.companies.FindByPDOrgID(ctx, *id)
	} else {
		company, err = r.companies.FindByTC2CligencyID(ctx, *id)
		if err != nil && isNotFound(err) {
			if agency := obj.Object("meta_agency"); agency != nil {
				if agencyID := agency.Int("id"); agencyID != nil {
					company, err = r.companies.FindByTC2AgencyID(ctx, *agencyID)
				}
			}
		}
	}
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return company, nil
}

func companyProjection(system schema.System, obj *schema.Object) projection {
	if system == schema.SystemPipedrive {
		return companyProjectionPD(obj)
	}
	return companyProjectionTC2(obj)
}

// applyCompanyProjection writes the changed canonical values onto the entity
// and reports whether anything actually moved.
func applyCompanyProjection(c *crm.Company, changed projection) bool {
	dirty := false
	for key, v := range changed {
		switch key {
		case "name":
			dirty = setStr(&c.Name, v) || dirty
		case "country":
			dirty = setStr(&c.Country, v) || dirty
		case "website":
			dirty = setStr(&c.Website, v) || dirty
		case "status":
			if s, ok := v.(string); ok && s != "" && c.Status != crm.CompanyStatus(s) {
				c.Status = crm.CompanyStatus(s)
				dirty = true
			}
		case "price_plan":
			if s, ok := v.(string); ok && s != "" && c.PricePlan != crm.PricePlan(s) {
				c.PricePlan = crm.PricePlan(s)
				dirty = true
			}
		case "paid_invoice_count":
			if n, ok := v.(int64); ok && c.PaidInvoiceCount != int(n) {
				c.PaidInvoiceCount = int(n)
				dirty = true
			}
		case "narc":
			if b, ok := v.(bool); ok && c.Narc != b {
				c.Narc = b
				dirty = true
			}
		case "sales_person_id":
			dirty = setOptID(&c.SalesPersonID, v) || dirty
		case "support_person_id":
			dirty = setOptID(&c.SupportPersonID, v) || dirty
		case "bdr_person_id":
			dirty = setOptID(&c.BDRPersonID, v) || dirty
		}
	}
	return dirty
}

// applyCompanyIdentity records the external identifier the snapshot arrived
// under. Identifiers are only ever set, never cleared.
func (r *Reconciler) applyCompanyIdentity(system schema.System, c *crm.Company, obj *schema.Object) bool {
	dirty := false
	if system == schema.SystemPipedrive {
		if id := obj.Int("id"); id != nil && (c.PDOrgID == nil || *c.PDOrgID != *id) {
			c.PDOrgID = id
			dirty = true
		}
		return dirty
	}
	if id := obj.Int("id"); id != nil && (c.TC2CligencyID == nil || *c.TC2CligencyID != *id) {
		c.TC2CligencyID = id
		dirty = true
	}
	if agency := obj.Object("meta_agency"); agency != nil {
		if id := agency.Int("id"); id != nil && (c.TC2AgencyID == nil || *c.TC2AgencyID != *id) {
			c.TC2AgencyID = id
			dirty = true
		}
	}
	return dirty
}

func setStr(dst *string, v any) bool {
	s, ok := v.(string)
	if !ok || *dst == s {
		return false
	}
	*dst = s
	return true
}

func setOptID(dst **int64, v any) bool {
	var next *int64
	if id, ok := v.(int64); ok {
		next = &id
	}
	cur := *dst
	if cur == nil && next == nil {
		return false
	}
	if cur != nil && next != nil && *cur == *next {
		return false
	}
	*dst = next
	return true
}
