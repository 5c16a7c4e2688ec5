package push

import (
	"context"
	"fmt"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/application/sync"
	"github.com/hermes/backend/internal/domain/crm"
	"go.uber.org/zap"
)

// Pusher mirrors local entities out to the external systems. Every push is
// idempotent: the remote copy is fetched first and the write is skipped when
// it already matches, so redelivered or re-enqueued requests cause no echo
// traffic.
type Pusher struct {
	companies    crm.CompanyRepository
	contacts     crm.ContactRepository
	deals        crm.DealRepository
	admins       crm.AdminRepository
	pipelines    crm.PipelineRepository
	stages       crm.StageRepository
	customFields crm.CustomFieldRepository
	customValues crm.CustomFieldValueRepository

	pd         PipedriveGateway
	tc2        TC2Gateway
	tc2BaseURL string
	logger     *zap.Logger
}

// PusherParams collects the dependencies of a Pusher.
type PusherParams struct {
	Companies    crm.CompanyRepository
	Contacts     crm.ContactRepository
	Deals        crm.DealRepository
	Admins       crm.AdminRepository
	Pipelines    crm.PipelineRepository
	Stages       crm.StageRepository
	CustomFields crm.CustomFieldRepository
	CustomValues crm.CustomFieldValueRepository
	Pipedrive    PipedriveGateway
	TC2          TC2Gateway
	TC2BaseURL   string
	Logger       *zap.Logger
}

// NewPusher creates a Pusher
func NewPusher(p PusherParams) *Pusher {
	return &Pusher{
		companies:    p.Companies,
		contacts:     p.Contacts,
		deals:        p.Deals,
		admins:       p.Admins,
		pipelines:    p.Pipelines,
		stages:       p.Stages,
		customFields: p.CustomFields,
		customValues: p.CustomValues,
		pd:           p.Pipedrive,
		tc2:          p.TC2,
		tc2BaseURL:   p.TC2BaseURL,
		logger:       p.Logger,
	}
}

// Push executes one push request. A request for an entity that no longer
// exists locally is logged and dropped, not retried.
func (p *Pusher) Push(ctx context.Context, req sync.PushRequest) error {
	switch {
	case req.Kind == crm.ObjectKindCompany && req.Target == schema.SystemPipedrive:
		return p.PushCompanyToPipedrive(ctx, req.ID)
	case req.Kind == crm.ObjectKindCompany && req.Target == schema.SystemTC2:
		return p.PushCompanyToTC2(ctx, req.ID)
	case req.Kind == crm.ObjectKindContact && req.Target == schema.SystemPipedrive:
		return p.PushContactToPipedrive(ctx, req.ID)
	case req.Kind == crm.ObjectKindDeal && req.Target == schema.SystemPipedrive:
		return p.PushDealToPipedrive(ctx, req.ID)
	}
	return fmt.Errorf("no push route for %s to %s", req.Kind, req.Target)
}

// PushCompanyToPipedrive mirrors a company as a Pipedrive organization,
// creating it when no organization is linked yet. A linked organization that
// has since been deleted remotely is recreated and relinked.
func (p *Pusher) PushCompanyToPipedrive(ctx context.Context, companyID int64) error {
	company, err := p.companies.FindByID(ctx, companyID)
	if err != nil {
		if isNotFound(err) {
			p.logger.Warn("push target company no longer exists", zap.Int64("company_id", companyID))
			return nil
		}
		return err
	}
	if company.Narc {
		p.logger.Info("not pushing narc company", zap.Int64("company_id", company.ID))
		return nil
	}

	payload := map[string]any{
		"name":            company.Name,
		"address_country": company.Country,
	}
	if ownerID, ok, err := p.pdOwnerID(ctx, company.SalesPersonID); err != nil {
		return err
	} else if ok {
		payload["owner_id"] = ownerID
	}
	owner := crm.OwnerRef{Kind: crm.ObjectKindCompany, ID: company.ID}
	if err := p.applyCustomPayload(ctx, payload, owner, p.companyAttr(company)); err != nil {
		return err
	}

	if company.PDOrgID == nil && company.TC2CligencyID != nil {
		// The org may already exist from a previous life of this row.
		if id, found, err := p.pd.SearchOrganizationByCligencyID(ctx, *company.TC2CligencyID); err != nil {
			return err
		} else if found {
			company.PDOrgID = &id
			if err := p.companies.Save(ctx, company); err != nil {
				return err
			}
			p.logger.Info("linked company to existing pipedrive organization",
				zap.Int64("company_id", company.ID),
				zap.Int64("pd_org_id", id),
			)
		}
	}

	if company.PDOrgID == nil {
		id, err := p.pd.CreateOrganization(ctx, payload)
		if err != nil {
			return err
		}
		company.PDOrgID = &id
		return p.companies.Save(ctx, company)
	}

	remote, err := p.pd.GetOrganization(ctx, *company.PDOrgID)
	if err != nil {
		if !isNotFound(err) {
			return err
		}
		p.logger.Warn("linked pipedrive organization is gone, recreating",
			zap.Int64("company_id", company.ID),
			zap.Int64("pd_org_id", *company.PDOrgID),
		)
		id, err := p.pd.CreateOrganization(ctx, payload)
		if err != nil {
			return err
		}
		company.PDOrgID = &id
		return p.companies.Save(ctx, company)
	}
	if payloadMatches(remote, payload) {
		p.logger.Debug("pipedrive organization already up to date", zap.Int64("company_id", company.ID))
		return nil
	}
	return p.pd.UpdateOrganization(ctx, *company.PDOrgID, payload)
}

// PushCompanyToTC2 mirrors a company's custom field values into the TC2
// cligency's extra attrs. Companies that never signed up have no cligency to
// write to.
func (p *Pusher) PushCompanyToTC2(ctx context.Context, companyID int64) error {
	company, err := p.companies.FindByID(ctx, companyID)
	if err != nil {
		if isNotFound(err) {
			p.logger.Warn("push target company no longer exists", zap.Int64("company_id", companyID))
			return nil
		}
		return err
	}
	if company.Narc {
		p.logger.Info("not pushing narc company", zap.Int64("company_id", company.ID))
		return nil
	}
	if !company.HasSignedUp() {
		p.logger.Debug("company has no cligency, nothing to push", zap.Int64("company_id", company.ID))
		return nil
	}

	attrs, err := p.tc2ExtraAttrs(ctx, company)
	if err != nil {
		return err
	}
	if len(attrs) == 0 {
		return nil
	}

	remote, err := p.tc2.GetCligency(ctx, *company.TC2CligencyID)
	if err != nil {
		if isNotFound(err) {
			p.logger.Warn("cligency is gone, dropping push",
				zap.Int64("company_id", company.ID),
				zap.Int64("tc2_cligency_id", *company.TC2CligencyID),
			)
			return nil
		}
		return err
	}
	if extraAttrsMatch(remote, attrs) {
		p.logger.Debug("cligency extra attrs already up to date", zap.Int64("company_id", company.ID))
		return nil
	}
	return p.tc2.UpdateCligency(ctx, *company.TC2CligencyID, map[string]any{"extra_attrs": attrs})
}

// PushContactToPipedrive mirrors a contact as a Pipedrive person. The
// owning organization is pushed first when it is not linked yet, since the
// person cannot exist without it.
func (p *Pusher) PushContactToPipedrive(ctx context.Context, contactID int64) error {
	contact, err := p.contacts.FindByID(ctx, contactID)
	if err != nil {
		if isNotFound(err) {
			p.logger.Warn("push target contact no longer exists", zap.Int64("contact_id", contactID))
			return nil
		}
		return err
	}
	company, err := p.companies.FindByID(ctx, contact.CompanyID)
	if err != nil {
		return err
	}
	if company.Narc {
		return nil
	}
	if company.PDOrgID == nil {
		if err := p.PushCompanyToPipedrive(ctx, company.ID); err != nil {
			return err
		}
		if company, err = p.companies.FindByID(ctx, company.ID); err != nil {
			return err
		}
		if company.PDOrgID == nil {
			return fmt.Errorf("company %d has no pipedrive organization after push", company.ID)
		}
	}

	payload := map[string]any{
		"name":   contact.Name(),
		"email":  contact.Email,
		"phone":  contact.Phone,
		"org_id": *company.PDOrgID,
	}
	owner := crm.OwnerRef{Kind: crm.ObjectKindContact, ID: contact.ID}
	if err := p.applyCustomPayload(ctx, payload, owner, p.contactAttr(contact)); err != nil {
		return err
	}

	if contact.PDPersonID == nil {
		id, err := p.pd.CreatePerson(ctx, payload)
		if err != nil {
			return err
		}
		contact.PDPersonID = &id
		return p.contacts.Save(ctx, contact)
	}

	remote, err := p.pd.GetPerson(ctx, *contact.PDPersonID)
	if err != nil {
		if !isNotFound(err) {
			return err
		}
		p.logger.Warn("linked pipedrive person is gone, recreating",
			zap.Int64("contact_id", contact.ID),
			zap.Int64("pd_person_id", *contact.PDPersonID),
		)
		id, err := p.pd.CreatePerson(ctx, payload)
		if err != nil {
			return err
		}
		contact.PDPersonID = &id
		return p.contacts.Save(ctx, contact)
	}
	if payloadMatches(remote, payload) {
		return nil
	}
	return p.pd.UpdatePerson(ctx, *contact.PDPersonID, payload)
}

// PushDealToPipedrive mirrors a deal, mainly to refresh inherited custom
// field values after company-level changes.
func (p *Pusher) PushDealToPipedrive(ctx context.Context, dealID int64) error {
	deal, err := p.deals.FindByID(ctx, dealID)
	if err != nil {
		if isNotFound(err) {
			p.logger.Warn("push target deal no longer exists", zap.Int64("deal_id", dealID))
			return nil
		}
		return err
	}
	company, err := p.companies.FindByID(ctx, deal.CompanyID)
	if err != nil {
		return err
	}
	if company.Narc || company.PDOrgID == nil {
		return nil
	}

	payload := map[string]any{
		"title":  deal.Name,
		"org_id": *company.PDOrgID,
	}
	if !deal.Amount.IsZero() {
		payload["value"] = deal.Amount.String()
	}
	if deal.Status != "" {
		payload["status"] = string(deal.Status)
	}
	if deal.ContactID != nil {
		if contact, err := p.contacts.FindByID(ctx, *deal.ContactID); err == nil && contact.PDPersonID != nil {
			payload["person_id"] = *contact.PDPersonID
		}
	}
	if ownerID, ok, err := p.pdOwnerID(ctx, deal.AdminID); err != nil {
		return err
	} else if ok {
		payload["user_id"] = ownerID
	}
	if deal.PipelineID != nil {
		if pl, err := p.pipelines.FindByID(ctx, *deal.PipelineID); err == nil {
			payload["pipeline_id"] = pl.PDPipelineID
		}
	}
	if deal.StageID != nil {
		if st, err := p.stages.FindByID(ctx, *deal.StageID); err == nil {
			payload["stage_id"] = st.PDStageID
		}
	}
	owner := crm.OwnerRef{Kind: crm.ObjectKindDeal, ID: deal.ID}
	if err := p.applyCustomPayload(ctx, payload, owner, p.dealAttr(deal)); err != nil {
		return err
	}

	if deal.PDDealID == nil {
		id, err := p.pd.CreateDeal(ctx, payload)
		if err != nil {
			return err
		}
		deal.PDDealID = &id
		return p.deals.Save(ctx, deal)
	}

	remote, err := p.pd.GetDeal(ctx, *deal.PDDealID)
	if err != nil {
		if !isNotFound(err) {
			return err
		}
		p.logger.Warn("linked pipedrive deal is gone, recreating",
			zap.Int64("deal_id", deal.ID),
			zap.Int64("pd_deal_id", *deal.PDDealID),
		)
		id, err := p.pd.CreateDeal(ctx, payload)
		if err != nil {
			return err
		}
		deal.PDDealID = &id
		return p.deals.Save(ctx, deal)
	}
	if payloadMatches(remote, payload) {
		return nil
	}
	return p.pd.UpdateDeal(ctx, *deal.PDDealID, payload)
}

// pdOwnerID maps a local admin ID to its Pipedrive user ID.
func (p *Pusher) pdOwnerID(ctx context.Context, adminID *int64) (int64, bool, error) {
	if adminID == nil {
		return 0, false, nil
	}
	admin, err := p.admins.FindByID(ctx, *adminID)
	if err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if admin.PDOwnerID == nil {
		return 0, false, nil
	}
	return *admin.PDOwnerID, true, nil
}

// tc2ExtraAttrs builds the extra_attrs list for a cligency update.
func (p *Pusher) tc2ExtraAttrs(ctx context.Context, company *crm.Company) ([]map[string]any, error) {
	defs, err := p.customFields.FindByObjectType(ctx, crm.ObjectKindCompany)
	if err != nil {
		return nil, err
	}
	owner := crm.OwnerRef{Kind: crm.ObjectKindCompany, ID: company.ID}
	stored, err := p.customValuesFor(ctx, owner)
	if err != nil {
		return nil, err
	}
	attr := p.companyAttr(company)

	var attrs []map[string]any
	for i := range defs {
		def := defs[i]
		if def.TC2MachineName == "" {
			continue
		}
		value := stored[def.ID]
		if def.HermesFieldName != "" {
			if v, ok := attr(def.HermesFieldName); ok {
				value = v
			}
		}
		attrs = append(attrs, map[string]any{
			"machine_name": def.TC2MachineName,
			"value":        value,
		})
	}
	return attrs, nil
}

// extraAttrsMatch compares a remote cligency's extra attrs to the outgoing
// list.
func extraAttrsMatch(remote map[string]any, attrs []map[string]any) bool {
	list, ok := remote["extra_attrs"].([]any)
	if !ok {
		return false
	}
	current := make(map[string]string, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			if name, _ := m["machine_name"].(string); name != "" {
				current[name] = compareString(m["value"])
			}
		}
	}
	for _, a := range attrs {
		name, _ := a["machine_name"].(string)
		if current[name] != compareString(a["value"]) {
			return false
		}
	}
	return true
}
