package sync

import (
	"context"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
	"go.uber.org/zap"
)

// TC2ClientSource fetches a full client payload from the TC2 API, used when
// an event's subject is not the client itself (invoice events carry only the
// client reference).
type TC2ClientSource interface {
	FetchClient(ctx context.Context, cligencyID int64) (map[string]any, error)
}

// TC2Processor orchestrates TC2 webhook events: client snapshots run through
// the reconciler, paid recipients are synced as contacts, and invoice events
// trigger a client re-fetch so invoice counts stay current.
type TC2Processor struct {
	normalizer *Normalizer
	reconciler *Reconciler
	companies  crm.CompanyRepository
	contacts   crm.ContactRepository
	tc2        TC2ClientSource
	logger     *zap.Logger
}

// NewTC2Processor creates a TC2Processor
func NewTC2Processor(
	normalizer *Normalizer,
	reconciler *Reconciler,
	companies crm.CompanyRepository,
	contacts crm.ContactRepository,
	tc2 TC2ClientSource,
	logger *zap.Logger,
) *TC2Processor {
	return &TC2Processor{
		normalizer: normalizer,
		reconciler: reconciler,
		companies:  companies,
		contacts:   contacts,
		tc2:        tc2,
		logger:     logger,
	}
}

// ProcessEvent handles one TC2 event. Events for subject models the engine
// does not act on return (nil, nil).
func (p *TC2Processor) ProcessEvent(ctx context.Context, event *TC2Event) (*Result, error) {
	switch event.SubjectModel() {
	case "Client":
		if event.Action == "delete" {
			return p.deleteClient(ctx, event.Subject)
		}
		return p.processClient(ctx, event.Subject)
	case "Invoice":
		return p.processInvoiceEvent(ctx, event)
	}
	p.logger.Info("ignoring tc2 event for unhandled subject model",
		zap.String("model", event.SubjectModel()),
		zap.String("action", event.Action),
	)
	return nil, nil
}

// processClient validates and reconciles a full client subject, then syncs
// its paid recipients as contacts.
func (p *TC2Processor) processClient(ctx context.Context, subject map[string]any) (*Result, error) {
	snapshot, err := p.normalizer.TC2Client(ctx, subject)
	if err != nil {
		return nil, err
	}
	pair := &SnapshotPair{
		Kind:    crm.ObjectKindCompany,
		System:  schema.SystemTC2,
		Current: snapshot,
	}
	res, err := p.reconciler.Process(ctx, pair)
	if err != nil {
		return nil, err
	}

	if snapshot.Object.Get("paid_recipients") != nil {
		touched, err := p.syncPaidRecipients(ctx, res.EntityID, snapshot.Object.List("paid_recipients"))
		if err != nil {
			return nil, err
		}
		narc := false
		if company, ferr := p.companies.FindByID(ctx, res.EntityID); ferr == nil {
			narc = company.Narc
		}
		if !narc {
			for _, id := range touched {
				res.push(crm.ObjectKindContact, id, schema.SystemPipedrive)
			}
		}
	}
	return res, nil
}

// deleteClient removes the local company for a deleted cligency. Subjects
// for deleted clients can be partial, so the snapshot is not validated.
func (p *TC2Processor) deleteClient(ctx context.Context, subject map[string]any) (*Result, error) {
	res := &Result{Kind: crm.ObjectKindCompany, Action: ActionNoop}
	id, ok := numberToInt64(subject["id"])
	if !ok {
		return res, nil
	}
	company, err := p.companies.FindByTC2CligencyID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return res, nil
		}
		return nil, err
	}
	if err := p.reconciler.deleteCustomValues(ctx, crm.OwnerRef{Kind: crm.ObjectKindCompany, ID: company.ID}); err != nil {
		return nil, err
	}
	if err := p.companies.Delete(ctx, company.ID); err != nil && !isNotFound(err) {
		return nil, err
	}
	res.Action = ActionDeleted
	res.EntityID = company.ID
	return res, nil
}

// processInvoiceEvent re-fetches the invoice's client from TC2 and processes
// the fresh snapshot, since the invoice subject itself carries stale client
// data.
func (p *TC2Processor) processInvoiceEvent(ctx context.Context, event *TC2Event) (*Result, error) {
	cligencyID, ok := invoiceCligencyID(event.Subject)
	if !ok {
		p.logger.Warn("invoice event without a client reference",
			zap.String("action", event.Action))
		return nil, nil
	}
	raw, err := p.tc2.FetchClient(ctx, cligencyID)
	if err != nil {
		return nil, err
	}
	return p.processClient(ctx, raw)
}

// syncPaidRecipients upserts a contact per paid recipient and prunes local
// recipient contacts that were dropped from the client. Returns the IDs of
// contacts that were created or changed.
func (p *TC2Processor) syncPaidRecipients(ctx context.Context, companyID int64, recipients []*schema.Object) ([]int64, error) {
	seen := make(map[int64]bool, len(recipients))
	var touched []int64

	for _, rec := range recipients {
		srID := rec.Int("id")
		if srID == nil {
			continue
		}
		seen[*srID] = true

		contact, err := p.contacts.FindByTC2SRID(ctx, *srID)
		created := false
		if err != nil {
			if !isNotFound(err) {
				return nil, err
			}
			contact = &crm.Contact{TC2SRID: srID, CompanyID: companyID}
			created = true
		}

		dirty := false
		if v := rec.Str("first_name"); contact.FirstName != v {
			contact.FirstName = v
			dirty = true
		}
		if v := rec.Str("last_name"); contact.LastName != v {
			contact.LastName = v
			dirty = true
		}
		if v := rec.Str("email"); v != "" && contact.Email != v {
			contact.Email = v
			dirty = true
		}
		if v := rec.Str("phone"); v != "" && contact.Phone != v {
			contact.Phone = v
			dirty = true
		}
		if contact.CompanyID != companyID {
			contact.CompanyID = companyID
			dirty = true
		}

		if created || dirty {
			if err := p.contacts.Save(ctx, contact); err != nil {
				return nil, err
			}
			touched = append(touched, contact.ID)
		}
	}

	existing, err := p.contacts.FindByCompanyID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		c := existing[i]
		if c.TC2SRID == nil || seen[*c.TC2SRID] {
			continue
		}
		if err := p.reconciler.deleteCustomValues(ctx, crm.OwnerRef{Kind: crm.ObjectKindContact, ID: c.ID}); err != nil {
			return nil, err
		}
		if err := p.contacts.Delete(ctx, c.ID); err != nil && !isNotFound(err) {
			return nil, err
		}
		p.logger.Info("removed contact no longer a paid recipient",
			zap.Int64("contact_id", c.ID),
			zap.Int64("company_id", companyID),
		)
	}
	return touched, nil
}

func invoiceCligencyID(subject map[string]any) (int64, bool) {
	if client, ok := subject["client"].(map[string]any); ok {
		if id, ok := numberToInt64(client["id"]); ok {
			return id, true
		}
	}
	return numberToInt64(subject["client_id"])
}

func numberToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
