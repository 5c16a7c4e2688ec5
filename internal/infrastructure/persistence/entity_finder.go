package persistence

import (
	"context"
	"fmt"

	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormEntityFinder resolves reference-field lookups for the schema layer.
// Lookup attributes are whitelisted per entity kind; anything else is a
// programming error in a field definition, not a query to run.
type GormEntityFinder struct {
	db *gorm.DB
}

// NewGormEntityFinder creates a new GormEntityFinder
func NewGormEntityFinder(db *gorm.DB) *GormEntityFinder {
	return &GormEntityFinder{db: db}
}

var finderAttrs = map[crm.ObjectKind]map[string]bool{
	crm.ObjectKindAdmin:    {"id": true, "tc2_admin_id": true, "pd_owner_id": true},
	crm.ObjectKindCompany:  {"id": true, "pd_org_id": true, "tc2_agency_id": true, "tc2_cligency_id": true},
	crm.ObjectKindContact:  {"id": true, "pd_person_id": true, "tc2_sr_id": true},
	crm.ObjectKindDeal:     {"id": true, "pd_deal_id": true},
	crm.ObjectKindPipeline: {"id": true, "pd_pipeline_id": true},
	crm.ObjectKindStage:    {"id": true, "pd_stage_id": true},
	crm.ObjectKindMeeting:  {"id": true},
}

// FindByAttr returns the entity of the given kind whose attr column equals
// value, or shared.ErrNotFound.
func (f *GormEntityFinder) FindByAttr(ctx context.Context, kind crm.ObjectKind, attr string, value any) (shared.Entity, error) {
	allowed, ok := finderAttrs[kind]
	if !ok {
		return nil, fmt.Errorf("no lookup support for object kind %q", kind)
	}
	if !allowed[attr] {
		return nil, fmt.Errorf("attribute %q is not a lookup attribute of %s", attr, kind)
	}

	q := f.db.WithContext(ctx).Where(attr+" = ?", value)
	switch kind {
	case crm.ObjectKindAdmin:
		var e crm.Admin
		if err := q.First(&e).Error; err != nil {
			return nil, translateError(err)
		}
		return &e, nil
	case crm.ObjectKindCompany:
		var e crm.Company
		if err := q.First(&e).Error; err != nil {
			return nil, translateError(err)
		}
		return &e, nil
	case crm.ObjectKindContact:
		var e crm.Contact
		if err := q.First(&e).Error; err != nil {
			return nil, translateError(err)
		}
		return &e, nil
	case crm.ObjectKindDeal:
		var e crm.Deal
		if err := q.First(&e).Error; err != nil {
			return nil, translateError(err)
		}
		return &e, nil
	case crm.ObjectKindPipeline:
		var e crm.Pipeline
		if err := q.First(&e).Error; err != nil {
			return nil, translateError(err)
		}
		return &e, nil
	case crm.ObjectKindStage:
		var e crm.Stage
		if err := q.First(&e).Error; err != nil {
			return nil, translateError(err)
		}
		return &e, nil
	case crm.ObjectKindMeeting:
		var e crm.Meeting
		if err := q.First(&e).Error; err != nil {
			return nil, translateError(err)
		}
		return &e, nil
	}
	return nil, fmt.Errorf("no lookup support for object kind %q", kind)
}
