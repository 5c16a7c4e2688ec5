package sync

import (
	"context"
	"errors"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
	"go.uber.org/zap"
)

func (r *Reconciler) processContact(ctx context.Context, pair *SnapshotPair) (*Result, error) {
	res := &Result{Kind: crm.ObjectKindContact, Action: ActionNoop}

	if pair.Current == nil {
		contact, err := r.locateContact(ctx, pair.Previous.Object)
		if err != nil {
			return nil, err
		}
		if contact == nil {
			return res, nil
		}
		if err := r.deleteCustomValues(ctx, crm.OwnerRef{Kind: crm.ObjectKindContact, ID: contact.ID}); err != nil {
			return nil, err
		}
		if err := r.contacts.Delete(ctx, contact.ID); err != nil && !isNotFound(err) {
			return nil, err
		}
		res.Action = ActionDeleted
		res.EntityID = contact.ID
		return res, nil
	}

	cur := pair.Current
	contact, err := r.locateContact(ctx, cur.Object)
	if err != nil {
		return nil, err
	}
	created := contact == nil
	if created {
		if relatedCompany(cur.Object, "company") == nil {
			// A person with no known organisation has nothing to attach to.
			r.logger.Warn("ignoring contact with no local company",
				zap.Int64p("pd_person_id", cur.Object.Int("id")))
			return res, nil
		}
		contact = &crm.Contact{}
	}

	curProj := contactProjection(cur.Object)
	changed := curProj
	if !created && pair.Previous != nil {
		changed = diffProjections(contactProjection(pair.Previous.Object), curProj)
	}

	dirty := applyContactProjection(contact, changed)
	if id := cur.Object.Int("id"); id != nil && (contact.PDPersonID == nil || *contact.PDPersonID != *id) {
		contact.PDPersonID = id
		dirty = true
	}

	if created || dirty {
		if err := r.contacts.Save(ctx, contact); err != nil {
			if !created || !errors.Is(err, shared.ErrAlreadyExists) {
				return nil, err
			}
			existing, ferr := r.locateContact(ctx, cur.Object)
			if ferr != nil || existing == nil {
				return nil, err
			}
			applyContactProjection(existing, curProj)
			existing.PDPersonID = cur.Object.Int("id")
			if err := r.contacts.Save(ctx, existing); err != nil {
				return nil, err
			}
			contact = existing
			created = false
		}
	}

	if len(cur.MergeIDs) > 0 {
		if err := r.mergeContacts(ctx, contact.ID, cur.MergeIDs); err != nil {
			return nil, err
		}
	}

	owner := crm.OwnerRef{Kind: crm.ObjectKindContact, ID: contact.ID}
	cfChanged, _, err := r.applyCustomValues(ctx, owner, cur.Object)
	if err != nil {
		return nil, err
	}
	res.ChangedCustomFields = cfChanged

	res.EntityID = contact.ID
	switch {
	case created:
		res.Action = ActionCreated
	case dirty || len(cfChanged) > 0 || len(cur.MergeIDs) > 0:
		res.Action = ActionUpdated
	}
	return res, nil
}

func (r *Reconciler) locateContact(ctx context.Context, obj *schema.Object) (*crm.Contact, error) {
	if c := relatedContact(obj, HermesIDField); c != nil {
		return c, nil
	}
	id := obj.Int("id")
	if id == nil {
		return nil, nil
	}
	contact, err := r.contacts.FindByPDPersonID(ctx, *id)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return contact, nil
}

func applyContactProjection(c *crm.Contact, changed projection) bool {
	dirty := false
	for key, v := range changed {
		switch key {
		case "first_name":
			dirty = setStr(&c.FirstName, v) || dirty
		case "last_name":
			dirty = setStr(&c.LastName, v) || dirty
		case "email":
			dirty = setStr(&c.Email, v) || dirty
		case "phone":
			dirty = setStr(&c.Phone, v) || dirty
		case "country":
			dirty = setStr(&c.Country, v) || dirty
		case "company_id":
			// A vanished organisation reference keeps the current company.
			if id, ok := v.(int64); ok && c.CompanyID != id {
				c.CompanyID = id
				dirty = true
			}
		}
	}
	return dirty
}
