package sync

import (
	"context"

	"github.com/hermes/backend/internal/domain/crm"
	"go.uber.org/zap"
)

// Propagator copies changed company-level custom field values down onto the
// company's open deals, for every field that also exists at the deal level.
// Won, lost and deleted deals are never touched.
type Propagator struct {
	deals        crm.DealRepository
	customFields crm.CustomFieldRepository
	customValues crm.CustomFieldValueRepository
	logger       *zap.Logger
}

// NewPropagator creates a Propagator
func NewPropagator(
	deals crm.DealRepository,
	customFields crm.CustomFieldRepository,
	customValues crm.CustomFieldValueRepository,
	logger *zap.Logger,
) *Propagator {
	return &Propagator{
		deals:        deals,
		customFields: customFields,
		customValues: customValues,
		logger:       logger,
	}
}

// PropagateCompanyFields applies the changed company values (nil means
// cleared) to the company's open deals and returns the IDs of the deals that
// were touched, so they can be pushed out afterwards.
//
// A deal deleted between listing and writing is logged and skipped; the
// remaining deals still get their values.
func (p *Propagator) PropagateCompanyFields(ctx context.Context, companyID int64, changed map[string]*string) ([]int64, error) {
	if len(changed) == 0 {
		return nil, nil
	}

	dealDefs, err := p.customFields.FindByObjectType(ctx, crm.ObjectKindDeal)
	if err != nil {
		return nil, err
	}
	var inherited []crm.CustomField
	for i := range dealDefs {
		def := dealDefs[i]
		if def.MachineName == HermesIDField {
			continue
		}
		if _, ok := changed[def.MachineName]; ok {
			inherited = append(inherited, def)
		}
	}
	if len(inherited) == 0 {
		return nil, nil
	}

	deals, err := p.deals.FindOpenByCompanyID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var touched []int64
	for i := range deals {
		deal := deals[i]
		owner := crm.OwnerRef{Kind: crm.ObjectKindDeal, ID: deal.ID}
		ok := true
		for _, def := range inherited {
			if err := p.applyValue(ctx, def, owner, changed[def.MachineName]); err != nil {
				if isNotFound(err) {
					p.logger.Warn("deal vanished during field propagation, skipping",
						zap.Int64("deal_id", deal.ID),
						zap.Int64("company_id", companyID),
					)
					ok = false
					break
				}
				return touched, err
			}
		}
		if ok {
			touched = append(touched, deal.ID)
		}
	}
	return touched, nil
}

// applyValue upserts or clears a single (definition, owner) value row.
func (p *Propagator) applyValue(ctx context.Context, def crm.CustomField, owner crm.OwnerRef, value *string) error {
	rows, err := p.customValues.FindByFieldAndOwner(ctx, def.ID, owner)
	if err != nil {
		return err
	}

	if value == nil {
		for i := range rows {
			if err := p.customValues.Delete(ctx, rows[i].ID); err != nil && !isNotFound(err) {
				return err
			}
		}
		return nil
	}

	if len(rows) == 0 {
		row := crm.CustomFieldValue{CustomFieldID: def.ID, Value: *value}
		row.SetOwner(owner)
		return p.customValues.Save(ctx, &row)
	}

	keep := rows[0]
	for _, extra := range rows[1:] {
		if err := p.customValues.Delete(ctx, extra.ID); err != nil && !isNotFound(err) {
			return err
		}
	}
	if keep.Value != *value {
		keep.Value = *value
		return p.customValues.Save(ctx, &keep)
	}
	return nil
}
