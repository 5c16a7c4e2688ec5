package sync

import (
	"context"
	"fmt"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
	"go.uber.org/zap"
)

// Reconciler converts validated snapshot pairs into create/update/delete
// operations against the local store. It assumes no cross-request locking:
// every lookup is re-fetched and "row no longer exists" is absorbed wherever
// the error taxonomy allows it.
type Reconciler struct {
	companies    crm.CompanyRepository
	contacts     crm.ContactRepository
	deals        crm.DealRepository
	meetings     crm.MeetingRepository
	pipelines    crm.PipelineRepository
	stages       crm.StageRepository
	customFields crm.CustomFieldRepository
	customValues crm.CustomFieldValueRepository
	propagator   *Propagator
	logger       *zap.Logger
}

// ReconcilerParams collects the dependencies of a Reconciler.
type ReconcilerParams struct {
	Companies    crm.CompanyRepository
	Contacts     crm.ContactRepository
	Deals        crm.DealRepository
	Meetings     crm.MeetingRepository
	Pipelines    crm.PipelineRepository
	Stages       crm.StageRepository
	CustomFields crm.CustomFieldRepository
	CustomValues crm.CustomFieldValueRepository
	Propagator   *Propagator
	Logger       *zap.Logger
}

// NewReconciler creates a Reconciler
func NewReconciler(p ReconcilerParams) *Reconciler {
	return &Reconciler{
		companies:    p.Companies,
		contacts:     p.Contacts,
		deals:        p.Deals,
		meetings:     p.Meetings,
		pipelines:    p.Pipelines,
		stages:       p.Stages,
		customFields: p.CustomFields,
		customValues: p.CustomValues,
		propagator:   p.Propagator,
		logger:       p.Logger,
	}
}

// Process applies one snapshot pair to the local store and returns the
// outbound pushes the caller should dispatch after responding.
func (r *Reconciler) Process(ctx context.Context, pair *SnapshotPair) (*Result, error) {
	if !pair.Valid() {
		return nil, schema.NewValidationError([]string{"current"}, "one of current or previous is required")
	}
	switch pair.Kind {
	case crm.ObjectKindCompany:
		return r.processCompany(ctx, pair)
	case crm.ObjectKindContact:
		return r.processContact(ctx, pair)
	case crm.ObjectKindDeal:
		return r.processDeal(ctx, pair)
	case crm.ObjectKindPipeline:
		return r.processPipeline(ctx, pair)
	case crm.ObjectKindStage:
		return r.processStage(ctx, pair)
	}
	return nil, fmt.Errorf("no reconciliation for object kind %q", pair.Kind)
}

func relatedCompany(obj *schema.Object, alias string) *crm.Company {
	if c, ok := obj.RelatedEntity(alias).(*crm.Company); ok {
		return c
	}
	return nil
}

func relatedContact(obj *schema.Object, alias string) *crm.Contact {
	if c, ok := obj.RelatedEntity(alias).(*crm.Contact); ok {
		return c
	}
	return nil
}

func relatedDeal(obj *schema.Object, alias string) *crm.Deal {
	if d, ok := obj.RelatedEntity(alias).(*crm.Deal); ok {
		return d
	}
	return nil
}

func relatedAdminID(obj *schema.Object, alias string) *int64 {
	if a, ok := obj.RelatedEntity(alias).(*crm.Admin); ok {
		id := a.GetID()
		return &id
	}
	return nil
}
