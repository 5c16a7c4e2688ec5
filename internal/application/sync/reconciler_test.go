package sync

import (
	"context"
	"testing"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reconcilerMocks struct {
	companies *MockCompanyRepository
	contacts  *MockContactRepository
	deals     *MockDealRepository
	meetings  *MockMeetingRepository
	pipelines *MockPipelineRepository
	stages    *MockStageRepository
	fields    *MockCustomFieldRepository
	values    *MockCustomFieldValueRepository
}

func newTestReconciler() (*Reconciler, *reconcilerMocks) {
	m := &reconcilerMocks{
		companies: new(MockCompanyRepository),
		contacts:  new(MockContactRepository),
		deals:     new(MockDealRepository),
		meetings:  new(MockMeetingRepository),
		pipelines: new(MockPipelineRepository),
		stages:    new(MockStageRepository),
		fields:    new(MockCustomFieldRepository),
		values:    new(MockCustomFieldValueRepository),
	}
	propagator := NewPropagator(m.deals, m.fields, m.values, zap.NewNop())
	r := NewReconciler(ReconcilerParams{
		Companies:    m.companies,
		Contacts:     m.contacts,
		Deals:        m.deals,
		Meetings:     m.meetings,
		Pipelines:    m.pipelines,
		Stages:       m.stages,
		CustomFields: m.fields,
		CustomValues: m.values,
		Propagator:   propagator,
		Logger:       zap.NewNop(),
	})
	return r, m
}

func pdOrgObject(id int64, name string, related map[string]shared.Entity) *schema.Object {
	if related == nil {
		related = map[string]shared.Entity{}
	}
	return &schema.Object{
		System: schema.SystemPipedrive,
		Kind:   crm.ObjectKindCompany,
		Fields: map[string]any{
			"id":      id,
			"name":    name,
			"country": "GB",
		},
		Related: related,
	}
}

func TestProcessCompanyEchoedUpdateIsNoop(t *testing.T) {
	r, m := newTestReconciler()

	pdOrgID := int64(500)
	company := &crm.Company{
		BaseEntity: shared.BaseEntity{ID: 12},
		PDOrgID:    &pdOrgID,
		Name:       "Julies Ltd",
		Country:    "GB",
	}
	m.companies.On("FindByPDOrgID", mock.Anything, int64(500)).Return(company, nil)
	m.fields.On("FindByObjectType", mock.Anything, crm.ObjectKindCompany).Return([]crm.CustomField{}, nil)

	pair := &SnapshotPair{
		Kind:     crm.ObjectKindCompany,
		System:   schema.SystemPipedrive,
		Previous: &Snapshot{Object: pdOrgObject(500, "Julies Ltd", nil)},
		Current:  &Snapshot{Object: pdOrgObject(500, "Julies Ltd", nil)},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	assert.Equal(t, ActionNoop, res.Action)
	assert.Empty(t, res.Pushes)
	m.companies.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProcessCompanyUpdateChangedField(t *testing.T) {
	r, m := newTestReconciler()

	pdOrgID := int64(500)
	company := &crm.Company{
		BaseEntity: shared.BaseEntity{ID: 12},
		PDOrgID:    &pdOrgID,
		Name:       "Julies Ltd",
		Country:    "GB",
	}
	m.companies.On("FindByPDOrgID", mock.Anything, int64(500)).Return(company, nil)
	m.companies.On("Save", mock.Anything, company).Return(nil)
	m.fields.On("FindByObjectType", mock.Anything, crm.ObjectKindCompany).Return([]crm.CustomField{}, nil)

	pair := &SnapshotPair{
		Kind:     crm.ObjectKindCompany,
		System:   schema.SystemPipedrive,
		Previous: &Snapshot{Object: pdOrgObject(500, "Julies Ltd", nil)},
		Current:  &Snapshot{Object: pdOrgObject(500, "Julies Ltd and Co", nil)},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	assert.Equal(t, ActionUpdated, res.Action)
	assert.Equal(t, "Julies Ltd and Co", company.Name)
	require.Len(t, res.Pushes, 1)
	assert.Equal(t, PushRequest{Kind: crm.ObjectKindCompany, ID: 12, Target: schema.SystemTC2}, res.Pushes[0])
}

func tc2ClientObject(cligencyID, agencyID int64, name string) *schema.Object {
	agency := &schema.Object{
		System: schema.SystemTC2,
		Kind:   crm.ObjectKindCompany,
		Fields: map[string]any{
			"id":                 agencyID,
			"name":               name,
			"country":            "GB",
			"website":            "https://example.com",
			"price_plan":         "agency-payg",
			"paid_invoice_count": int64(2),
		},
		Related: map[string]shared.Entity{},
	}
	return &schema.Object{
		System: schema.SystemTC2,
		Kind:   crm.ObjectKindCompany,
		Fields: map[string]any{
			"id":          cligencyID,
			"status":      "active",
			"narc":        false,
			"meta_agency": agency,
		},
		Related: map[string]shared.Entity{},
	}
}

func TestProcessCompanyCreateFromTC2(t *testing.T) {
	r, m := newTestReconciler()

	m.companies.On("FindByTC2CligencyID", mock.Anything, int64(400)).Return(nil, shared.ErrNotFound)
	m.companies.On("FindByTC2AgencyID", mock.Anything, int64(9000)).Return(nil, shared.ErrNotFound)
	m.companies.On("Save", mock.Anything, mock.AnythingOfType("*crm.Company")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*crm.Company).ID = 31
		}).Return(nil)
	m.fields.On("FindByObjectType", mock.Anything, crm.ObjectKindCompany).Return([]crm.CustomField{}, nil)

	pair := &SnapshotPair{
		Kind:    crm.ObjectKindCompany,
		System:  schema.SystemTC2,
		Current: &Snapshot{Object: tc2ClientObject(400, 9000, "MyTutors")},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	assert.Equal(t, ActionCreated, res.Action)
	assert.Equal(t, int64(31), res.EntityID)
	require.Len(t, res.Pushes, 1)
	assert.Equal(t, schema.SystemPipedrive, res.Pushes[0].Target)

	saved := m.companies.Calls[2].Arguments.Get(1).(*crm.Company)
	assert.Equal(t, "MyTutors", saved.Name)
	assert.Equal(t, crm.PricePlan("payg"), saved.PricePlan)
	assert.Equal(t, 2, saved.PaidInvoiceCount)
	require.NotNil(t, saved.TC2CligencyID)
	assert.Equal(t, int64(400), *saved.TC2CligencyID)
	require.NotNil(t, saved.TC2AgencyID)
	assert.Equal(t, int64(9000), *saved.TC2AgencyID)
}

func TestProcessCompanyCreateRaceFallsBackToUpdate(t *testing.T) {
	r, m := newTestReconciler()

	winner := &crm.Company{BaseEntity: shared.BaseEntity{ID: 77}, Name: "Old name"}
	m.companies.On("FindByTC2CligencyID", mock.Anything, int64(400)).Return(nil, shared.ErrNotFound).Once()
	m.companies.On("FindByTC2AgencyID", mock.Anything, int64(9000)).Return(nil, shared.ErrNotFound).Once()
	m.companies.On("Save", mock.Anything, mock.AnythingOfType("*crm.Company")).Return(shared.ErrAlreadyExists).Once()
	m.companies.On("FindByTC2CligencyID", mock.Anything, int64(400)).Return(winner, nil).Once()
	m.companies.On("Save", mock.Anything, winner).Return(nil).Once()
	m.fields.On("FindByObjectType", mock.Anything, crm.ObjectKindCompany).Return([]crm.CustomField{}, nil)

	pair := &SnapshotPair{
		Kind:    crm.ObjectKindCompany,
		System:  schema.SystemTC2,
		Current: &Snapshot{Object: tc2ClientObject(400, 9000, "MyTutors")},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	assert.Equal(t, ActionUpdated, res.Action)
	assert.Equal(t, int64(77), res.EntityID)
	assert.Equal(t, "MyTutors", winner.Name)
}

func TestProcessCompanyDeleteIdempotent(t *testing.T) {
	r, m := newTestReconciler()

	m.companies.On("FindByPDOrgID", mock.Anything, int64(500)).Return(nil, shared.ErrNotFound)

	pair := &SnapshotPair{
		Kind:     crm.ObjectKindCompany,
		System:   schema.SystemPipedrive,
		Previous: &Snapshot{Object: pdOrgObject(500, "Julies Ltd", nil)},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	assert.Equal(t, ActionNoop, res.Action)
	assert.Empty(t, res.Pushes)
	m.companies.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProcessCompanyDelete(t *testing.T) {
	r, m := newTestReconciler()

	pdOrgID := int64(500)
	company := &crm.Company{BaseEntity: shared.BaseEntity{ID: 12}, PDOrgID: &pdOrgID}
	m.companies.On("FindByPDOrgID", mock.Anything, int64(500)).Return(company, nil)
	m.values.On("FindByOwner", mock.Anything, crm.OwnerRef{Kind: crm.ObjectKindCompany, ID: 12}).
		Return([]crm.CustomFieldValue{}, nil)
	m.companies.On("Delete", mock.Anything, int64(12)).Return(nil)

	pair := &SnapshotPair{
		Kind:     crm.ObjectKindCompany,
		System:   schema.SystemPipedrive,
		Previous: &Snapshot{Object: pdOrgObject(500, "Julies Ltd", nil)},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	assert.Equal(t, ActionDeleted, res.Action)
	assert.Empty(t, res.Pushes)
}

func TestProcessCompanyFKValueStoresLookupAttribute(t *testing.T) {
	r, m := newTestReconciler()

	pdOrgID := int64(500)
	company := &crm.Company{
		BaseEntity: shared.BaseEntity{ID: 12},
		PDOrgID:    &pdOrgID,
		Name:       "Julies Ltd",
		Country:    "GB",
	}
	m.companies.On("FindByPDOrgID", mock.Anything, int64(500)).Return(company, nil)

	def := crm.CustomField{
		BaseEntity:       shared.BaseEntity{ID: 7},
		MachineName:      "support_person",
		LinkedObjectType: crm.ObjectKindCompany,
		FieldType:        crm.FieldTypeFK,
		FKObjectType:     crm.ObjectKindAdmin,
		FKLookupField:    "pd_owner_id",
		PDFieldID:        "supporthash",
	}
	m.fields.On("FindByObjectType", mock.Anything, crm.ObjectKindCompany).Return([]crm.CustomField{def}, nil)
	m.fields.On("FindByObjectType", mock.Anything, crm.ObjectKindDeal).Return([]crm.CustomField{}, nil)
	m.values.On("FindByFieldAndOwner", mock.Anything, int64(7), crm.OwnerRef{Kind: crm.ObjectKindCompany, ID: 12}).
		Return([]crm.CustomFieldValue{}, nil)

	var saved *crm.CustomFieldValue
	m.values.On("Save", mock.Anything, mock.AnythingOfType("*crm.CustomFieldValue")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*crm.CustomFieldValue) }).
		Return(nil)

	// Inbound carries the external identifier 999, which resolved to a local
	// admin; the row must keep 999 so outbound pushes round-trip.
	obj := pdOrgObject(500, "Julies Ltd", nil)
	obj.Fields["support_person"] = int64(999)
	obj.Related["support_person"] = &crm.Admin{BaseEntity: shared.BaseEntity{ID: 5}}

	pair := &SnapshotPair{
		Kind:    crm.ObjectKindCompany,
		System:  schema.SystemPipedrive,
		Current: &Snapshot{Object: obj},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, "999", saved.Value)
	assert.Equal(t, []string{"support_person"}, res.ChangedCustomFields)
}

func TestProcessCompanyMergeAbsorbsSecondaries(t *testing.T) {
	r, m := newTestReconciler()

	primary := &crm.Company{BaseEntity: shared.BaseEntity{ID: 12}, Name: "Primary Ltd", Country: "GB"}
	absorbed := &crm.Company{BaseEntity: shared.BaseEntity{ID: 34}}

	m.companies.On("FindByID", mock.Anything, int64(34)).Return(absorbed, nil)
	m.companies.On("Save", mock.Anything, primary).Return(nil)
	m.contacts.On("ReassignCompany", mock.Anything, int64(34), int64(12)).Return(int64(2), nil)
	m.deals.On("ReassignCompany", mock.Anything, int64(34), int64(12)).Return(int64(1), nil)
	m.values.On("FindByOwner", mock.Anything, crm.OwnerRef{Kind: crm.ObjectKindCompany, ID: 34}).
		Return([]crm.CustomFieldValue{}, nil)
	m.companies.On("Delete", mock.Anything, int64(34)).Return(nil)
	m.fields.On("FindByObjectType", mock.Anything, crm.ObjectKindCompany).Return([]crm.CustomField{}, nil)

	obj := pdOrgObject(500, "Primary Ltd", map[string]shared.Entity{HermesIDField: primary})
	pair := &SnapshotPair{
		Kind:    crm.ObjectKindCompany,
		System:  schema.SystemPipedrive,
		Current: &Snapshot{Object: obj, MergeIDs: []int64{12, 34}},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	// A merge is an update even when no canonical field moved.
	assert.Equal(t, ActionUpdated, res.Action)
	m.companies.AssertCalled(t, "Delete", mock.Anything, int64(34))
}

func TestProcessCompanyMergeRunsWhenPrimaryRecreated(t *testing.T) {
	r, m := newTestReconciler()

	// The marker's first local id was deleted out-of-band, so the primary has
	// to be created; the other absorbed locals must still be re-pointed.
	m.companies.On("FindByPDOrgID", mock.Anything, int64(500)).Return(nil, shared.ErrNotFound)
	m.companies.On("Save", mock.Anything, mock.AnythingOfType("*crm.Company")).
		Run(func(args mock.Arguments) { args.Get(1).(*crm.Company).ID = 12 }).
		Return(nil)
	absorbed := &crm.Company{BaseEntity: shared.BaseEntity{ID: 34}}
	m.companies.On("FindByID", mock.Anything, int64(34)).Return(absorbed, nil)
	m.contacts.On("ReassignCompany", mock.Anything, int64(34), int64(12)).Return(int64(1), nil)
	m.deals.On("ReassignCompany", mock.Anything, int64(34), int64(12)).Return(int64(0), nil)
	m.values.On("FindByOwner", mock.Anything, crm.OwnerRef{Kind: crm.ObjectKindCompany, ID: 34}).
		Return([]crm.CustomFieldValue{}, nil)
	m.companies.On("Delete", mock.Anything, int64(34)).Return(nil)
	m.fields.On("FindByObjectType", mock.Anything, crm.ObjectKindCompany).Return([]crm.CustomField{}, nil)

	pair := &SnapshotPair{
		Kind:    crm.ObjectKindCompany,
		System:  schema.SystemPipedrive,
		Current: &Snapshot{Object: pdOrgObject(500, "Primary Ltd", nil), MergeIDs: []int64{12, 34}},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	assert.Equal(t, ActionCreated, res.Action)
	m.contacts.AssertCalled(t, "ReassignCompany", mock.Anything, int64(34), int64(12))
	m.companies.AssertCalled(t, "Delete", mock.Anything, int64(34))
}

func TestProcessCompanyMergeRedeliveryTolerated(t *testing.T) {
	r, m := newTestReconciler()

	primary := &crm.Company{BaseEntity: shared.BaseEntity{ID: 12}, Name: "Primary Ltd", Country: "GB"}
	m.companies.On("Save", mock.Anything, primary).Return(nil)
	m.companies.On("FindByID", mock.Anything, int64(34)).Return(nil, shared.ErrNotFound)
	m.fields.On("FindByObjectType", mock.Anything, crm.ObjectKindCompany).Return([]crm.CustomField{}, nil)

	obj := pdOrgObject(500, "Primary Ltd", map[string]shared.Entity{HermesIDField: primary})
	pair := &SnapshotPair{
		Kind:    crm.ObjectKindCompany,
		System:  schema.SystemPipedrive,
		Current: &Snapshot{Object: obj, MergeIDs: []int64{12, 34}},
	}
	_, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	m.contacts.AssertNotCalled(t, "ReassignCompany", mock.Anything, mock.Anything, mock.Anything)
	m.companies.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProcessCompanyNarcNeverPushed(t *testing.T) {
	r, m := newTestReconciler()

	pdOrgID := int64(500)
	company := &crm.Company{
		BaseEntity: shared.BaseEntity{ID: 12},
		PDOrgID:    &pdOrgID,
		Name:       "Julies Ltd",
		Country:    "GB",
		Narc:       true,
	}
	m.companies.On("FindByPDOrgID", mock.Anything, int64(500)).Return(company, nil)
	m.companies.On("Save", mock.Anything, company).Return(nil)
	m.fields.On("FindByObjectType", mock.Anything, crm.ObjectKindCompany).Return([]crm.CustomField{}, nil)

	pair := &SnapshotPair{
		Kind:    crm.ObjectKindCompany,
		System:  schema.SystemPipedrive,
		Current: &Snapshot{Object: pdOrgObject(500, "Renamed Ltd", nil)},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	assert.Equal(t, ActionUpdated, res.Action)
	assert.Empty(t, res.Pushes)
}

func TestProcessPipelineUpsert(t *testing.T) {
	r, m := newTestReconciler()

	m.pipelines.On("FindByPDPipelineID", mock.Anything, int64(9)).Return(nil, shared.ErrNotFound)
	m.pipelines.On("Save", mock.Anything, mock.AnythingOfType("*crm.Pipeline")).Return(nil)

	pair := &SnapshotPair{
		Kind:   crm.ObjectKindPipeline,
		System: schema.SystemPipedrive,
		Current: &Snapshot{Object: &schema.Object{
			System:  schema.SystemPipedrive,
			Kind:    crm.ObjectKindPipeline,
			Fields:  map[string]any{"id": int64(9), "name": "Sales"},
			Related: map[string]shared.Entity{},
		}},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	assert.Equal(t, ActionCreated, res.Action)
	assert.Empty(t, res.Pushes)

	saved := m.pipelines.Calls[1].Arguments.Get(1).(*crm.Pipeline)
	assert.Equal(t, int64(9), saved.PDPipelineID)
	assert.Equal(t, "Sales", saved.Name)
}

func TestProcessContactCreateWithoutCompanyIgnored(t *testing.T) {
	r, m := newTestReconciler()

	m.contacts.On("FindByPDPersonID", mock.Anything, int64(700)).Return(nil, shared.ErrNotFound)

	pair := &SnapshotPair{
		Kind:   crm.ObjectKindContact,
		System: schema.SystemPipedrive,
		Current: &Snapshot{Object: &schema.Object{
			System: schema.SystemPipedrive,
			Kind:   crm.ObjectKindContact,
			Fields: map[string]any{
				"id":         int64(700),
				"first_name": "Brain",
				"last_name":  "Junes",
			},
			Related: map[string]shared.Entity{},
		}},
	}
	res, err := r.Process(context.Background(), pair)
	require.NoError(t, err)

	assert.Equal(t, ActionNoop, res.Action)
	m.contacts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
