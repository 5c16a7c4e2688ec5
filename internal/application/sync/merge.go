package sync

import (
	"context"

	"github.com/hermes/backend/internal/domain/crm"
	"go.uber.org/zap"
)

// Merge reconciliation: when an external merge collapses several entities
// into one, the local side re-points every dependent row at the surviving
// primary and then deletes the absorbed locals. Absorbed entities that are
// already gone are skipped, so redelivered merge events are no-ops.

func (r *Reconciler) mergeCompanies(ctx context.Context, primaryID int64, mergeIDs []int64) error {
	for _, id := range mergeIDs {
		if id == primaryID {
			continue
		}
		if _, err := r.companies.FindByID(ctx, id); err != nil {
			if isNotFound(err) {
				continue
			}
			return err
		}
		if _, err := r.contacts.ReassignCompany(ctx, id, primaryID); err != nil {
			return err
		}
		if _, err := r.deals.ReassignCompany(ctx, id, primaryID); err != nil {
			return err
		}
		if err := r.deleteCustomValues(ctx, crm.OwnerRef{Kind: crm.ObjectKindCompany, ID: id}); err != nil {
			return err
		}
		if err := r.companies.Delete(ctx, id); err != nil && !isNotFound(err) {
			return err
		}
		r.logger.Info("absorbed merged company",
			zap.Int64("absorbed_id", id),
			zap.Int64("primary_id", primaryID),
		)
	}
	return nil
}

func (r *Reconciler) mergeContacts(ctx context.Context, primaryID int64, mergeIDs []int64) error {
	for _, id := range mergeIDs {
		if id == primaryID {
			continue
		}
		if _, err := r.contacts.FindByID(ctx, id); err != nil {
			if isNotFound(err) {
				continue
			}
			return err
		}
		if _, err := r.deals.ReassignContact(ctx, id, primaryID); err != nil {
			return err
		}
		if _, err := r.meetings.ReassignContact(ctx, id, primaryID); err != nil {
			return err
		}
		if err := r.deleteCustomValues(ctx, crm.OwnerRef{Kind: crm.ObjectKindContact, ID: id}); err != nil {
			return err
		}
		if err := r.contacts.Delete(ctx, id); err != nil && !isNotFound(err) {
			return err
		}
		r.logger.Info("absorbed merged contact",
			zap.Int64("absorbed_id", id),
			zap.Int64("primary_id", primaryID),
		)
	}
	return nil
}

func (r *Reconciler) mergeDeals(ctx context.Context, primaryID int64, mergeIDs []int64) error {
	for _, id := range mergeIDs {
		if id == primaryID {
			continue
		}
		if _, err := r.deals.FindByID(ctx, id); err != nil {
			if isNotFound(err) {
				continue
			}
			return err
		}
		if _, err := r.meetings.ReassignDeal(ctx, id, primaryID); err != nil {
			return err
		}
		if err := r.deleteCustomValues(ctx, crm.OwnerRef{Kind: crm.ObjectKindDeal, ID: id}); err != nil {
			return err
		}
		if err := r.deals.Delete(ctx, id); err != nil && !isNotFound(err) {
			return err
		}
		r.logger.Info("absorbed merged deal",
			zap.Int64("absorbed_id", id),
			zap.Int64("primary_id", primaryID),
		)
	}
	return nil
}
