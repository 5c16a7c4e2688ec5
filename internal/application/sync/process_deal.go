package sync

import (
	"context"
	"errors"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (r *Reconciler) processDeal(ctx context.Context, pair *SnapshotPair) (*Result, error) {
	res := &Result{Kind: crm.ObjectKindDeal, Action: ActionNoop}

	if pair.Current == nil {
		deal, err := r.locateDeal(ctx, pair.Previous.Object)
		if err != nil {
			return nil, err
		}
		if deal == nil {
			return res, nil
		}
		if err := r.deleteCustomValues(ctx, crm.OwnerRef{Kind: crm.ObjectKindDeal, ID: deal.ID}); err != nil {
			return nil, err
		}
		if err := r.deals.Delete(ctx, deal.ID); err != nil && !isNotFound(err) {
			return nil, err
		}
		res.Action = ActionDeleted
		res.EntityID = deal.ID
		return res, nil
	}

	cur := pair.Current
	deal, err := r.locateDeal(ctx, cur.Object)
	if err != nil {
		return nil, err
	}
	created := deal == nil
	if created {
		if relatedCompany(cur.Object, "company") == nil {
			r.logger.Warn("ignoring deal with no local company",
				zap.Int64p("pd_deal_id", cur.Object.Int("id")))
			return res, nil
		}
		deal = &crm.Deal{}
	}

	curProj := dealProjection(cur.Object)
	changed := curProj
	if !created && pair.Previous != nil {
		changed = diffProjections(dealProjection(pair.Previous.Object), curProj)
	}

	dirty := applyDealProjection(deal, changed)
	if id := cur.Object.Int("id"); id != nil && (deal.PDDealID == nil || *deal.PDDealID != *id) {
		deal.PDDealID = id
		dirty = true
	}

	if created || dirty {
		if err := r.deals.Save(ctx, deal); err != nil {
			if !created || !errors.Is(err, shared.ErrAlreadyExists) {
				return nil, err
			}
			existing, ferr := r.locateDeal(ctx, cur.Object)
			if ferr != nil || existing == nil {
				return nil, err
			}
			applyDealProjection(existing, curProj)
			existing.PDDealID = cur.Object.Int("id")
			if err := r.deals.Save(ctx, existing); err != nil {
				return nil, err
			}
			deal = existing
			created = false
		}
	}

	if len(cur.MergeIDs) > 0 {
		if err := r.mergeDeals(ctx, deal.ID, cur.MergeIDs); err != nil {
			return nil, err
		}
	}

	owner := crm.OwnerRef{Kind: crm.ObjectKindDeal, ID: deal.ID}
	cfChanged, _, err := r.applyCustomValues(ctx, owner, cur.Object)
	if err != nil {
		return nil, err
	}
	res.ChangedCustomFields = cfChanged

	res.EntityID = deal.ID
	switch {
	case created:
		res.Action = ActionCreated
	case dirty || len(cfChanged) > 0 || len(cur.MergeIDs) > 0:
		res.Action = ActionUpdated
	}
	return res, nil
}

func (r *Reconciler) locateDeal(ctx context.Context, obj *schema.Object) (*crm.Deal, error) {
	if d := relatedDeal(obj, HermesIDField); d != nil {
		return d, nil
	}
	id := obj.Int("id")
	if id == nil {
		return nil, nil
	}
	deal, err := r.deals.FindByPDDealID(ctx, *id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return deal, nil
}

func applyDealProjection(d *crm.Deal, changed projection) bool {
	dirty := false
	for key, v := range changed {
		switch key {
		case "name":
			dirty = setStr(&d.Name, v) || dirty
		case "status":
			if s, ok := v.(string); ok && s != "" && d.Status != crm.DealStatus(s) {
				d.Status = crm.DealStatus(s)
				dirty = true
			}
		case "amount":
			if a, ok := v.(decimal.Decimal); ok && !d.Amount.Equal(a) {
				d.Amount = a
				dirty = true
			}
		case "currency":
			dirty = setStr(&d.Currency, v) || dirty
		case "admin_id":
			dirty = setOptID(&d.AdminID, v) || dirty
		case "pipeline_id":
			dirty = setOptID(&d.PipelineID, v) || dirty
		case "stage_id":
			dirty = setOptID(&d.StageID, v) || dirty
		case "contact_id":
			dirty = setOptID(&d.ContactID, v) || dirty
		case "company_id":
			if id, ok := v.(int64); ok && d.CompanyID != id {
				d.CompanyID = id
				dirty = true
			}
		}
	}
	return dirty
}
