package push

import (
	"context"

	"github.com/hermes/backend/internal/domain/crm"
	"github.com/stretchr/testify/mock"
)

// ============================================================================
// Mocks
// ============================================================================

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id int64) (*crm.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByPDOrgID(ctx context.Context, pdOrgID int64) (*crm.Company, error) {
	args := m.Called(ctx, pdOrgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByTC2AgencyID(ctx context.Context, tc2AgencyID int64) (*crm.Company, error) {
	args := m.Called(ctx, tc2AgencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByTC2CligencyID(ctx context.Context, tc2CligencyID int64) (*crm.Company, error) {
	args := m.Called(ctx, tc2CligencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Company), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, company *crm.Company) error {
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCompanyRepository) ExistsByPDOrgID(ctx context.Context, pdOrgID int64) (bool, error) {
	args := m.Called(ctx, pdOrgID)
	return args.Bool(0), args.Error(1)
}

type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) FindByID(ctx context.Context, id int64) (*crm.Contact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByPDPersonID(ctx context.Context, pdPersonID int64) (*crm.Contact, error) {
	args := m.Called(ctx, pdPersonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByTC2SRID(ctx context.Context, tc2SRID int64) (*crm.Contact, error) {
	args := m.Called(ctx, tc2SRID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Contact), args.Error(1)
}

func (m *MockContactRepository) FindByCompanyID(ctx context.Context, companyID int64) ([]crm.Contact, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Contact), args.Error(1)
}

func (m *MockContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	args := m.Called(ctx, contact)
	return args.Error(0)
}

func (m *MockContactRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContactRepository) ReassignCompany(ctx context.Context, fromCompanyID, toCompanyID int64) (int64, error) {
	args := m.Called(ctx, fromCompanyID, toCompanyID)
	return args.Get(0).(int64), args.Error(1)
}

type MockDealRepository struct {
	mock.Mock
}

func (m *MockDealRepository) FindByID(ctx context.Context, id int64) (*crm.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Deal), args.Error(1)
}

func (m *MockDealRepository) FindByPDDealID(ctx context.Context, pdDealID int64) (*crm.Deal, error) {
	args := m.Called(ctx, pdDealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Deal), args.Error(1)
}

func (m *MockDealRepository) FindOpenByCompanyID(ctx context.Context, companyID int64) ([]crm.Deal, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Deal), args.Error(1)
}

func (m *MockDealRepository) FindByCompanyID(ctx context.Context, companyID int64) ([]crm.Deal, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Deal), args.Error(1)
}

func (m *MockDealRepository) Save(ctx context.Context, deal *crm.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

func (m *MockDealRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDealRepository) ReassignCompany(ctx context.Context, fromCompanyID, toCompanyID int64) (int64, error) {
	args := m.Called(ctx, fromCompanyID, toCompanyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDealRepository) ReassignContact(ctx context.Context, fromContactID, toContactID int64) (int64, error) {
	args := m.Called(ctx, fromContactID, toContactID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) FindByID(ctx context.Context, id int64) (*crm.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Admin), args.Error(1)
}

func (m *MockAdminRepository) FindByTC2AdminID(ctx context.Context, tc2AdminID int64) (*crm.Admin, error) {
	args := m.Called(ctx, tc2AdminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Admin), args.Error(1)
}

func (m *MockAdminRepository) FindByPDOwnerID(ctx context.Context, pdOwnerID int64) (*crm.Admin, error) {
	args := m.Called(ctx, pdOwnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Admin), args.Error(1)
}

type MockPipelineRepository struct {
	mock.Mock
}

func (m *MockPipelineRepository) FindByID(ctx context.Context, id int64) (*crm.Pipeline, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Pipeline), args.Error(1)
}

func (m *MockPipelineRepository) FindByPDPipelineID(ctx context.Context, pdPipelineID int64) (*crm.Pipeline, error) {
	args := m.Called(ctx, pdPipelineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Pipeline), args.Error(1)
}

func (m *MockPipelineRepository) Save(ctx context.Context, pipeline *crm.Pipeline) error {
	args := m.Called(ctx, pipeline)
	return args.Error(0)
}

func (m *MockPipelineRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockStageRepository struct {
	mock.Mock
}

func (m *MockStageRepository) FindByID(ctx context.Context, id int64) (*crm.Stage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Stage), args.Error(1)
}

func (m *MockStageRepository) FindByPDStageID(ctx context.Context, pdStageID int64) (*crm.Stage, error) {
	args := m.Called(ctx, pdStageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Stage), args.Error(1)
}

func (m *MockStageRepository) Save(ctx context.Context, stage *crm.Stage) error {
	args := m.Called(ctx, stage)
	return args.Error(0)
}

func (m *MockStageRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCustomFieldRepository struct {
	mock.Mock
}

func (m *MockCustomFieldRepository) FindAll(ctx context.Context) ([]crm.CustomField, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.CustomField), args.Error(1)
}

func (m *MockCustomFieldRepository) FindByObjectType(ctx context.Context, kind crm.ObjectKind) ([]crm.CustomField, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.CustomField), args.Error(1)
}

func (m *MockCustomFieldRepository) Save(ctx context.Context, field *crm.CustomField) error {
	args := m.Called(ctx, field)
	return args.Error(0)
}

func (m *MockCustomFieldRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCustomFieldValueRepository struct {
	mock.Mock
}

func (m *MockCustomFieldValueRepository) FindByFieldAndOwner(ctx context.Context, customFieldID int64, owner crm.OwnerRef) ([]crm.CustomFieldValue, error) {
	args := m.Called(ctx, customFieldID, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.CustomFieldValue), args.Error(1)
}

func (m *MockCustomFieldValueRepository) FindByOwner(ctx context.Context, owner crm.OwnerRef) ([]crm.CustomFieldValue, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.CustomFieldValue), args.Error(1)
}

func (m *MockCustomFieldValueRepository) Save(ctx context.Context, value *crm.CustomFieldValue) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func (m *MockCustomFieldValueRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPipedriveGateway struct {
	mock.Mock
}

func (m *MockPipedriveGateway) GetOrganization(ctx context.Context, pdOrgID int64) (map[string]any, error) {
	args := m.Called(ctx, pdOrgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockPipedriveGateway) CreateOrganization(ctx context.Context, payload map[string]any) (int64, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPipedriveGateway) UpdateOrganization(ctx context.Context, pdOrgID int64, payload map[string]any) error {
	args := m.Called(ctx, pdOrgID, payload)
	return args.Error(0)
}

func (m *MockPipedriveGateway) SearchOrganizationByCligencyID(ctx context.Context, cligencyID int64) (int64, bool, error) {
	args := m.Called(ctx, cligencyID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockPipedriveGateway) GetPerson(ctx context.Context, pdPersonID int64) (map[string]any, error) {
	args := m.Called(ctx, pdPersonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockPipedriveGateway) CreatePerson(ctx context.Context, payload map[string]any) (int64, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPipedriveGateway) UpdatePerson(ctx context.Context, pdPersonID int64, payload map[string]any) error {
	args := m.Called(ctx, pdPersonID, payload)
	return args.Error(0)
}

func (m *MockPipedriveGateway) GetDeal(ctx context.Context, pdDealID int64) (map[string]any, error) {
	args := m.Called(ctx, pdDealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockPipedriveGateway) CreateDeal(ctx context.Context, payload map[string]any) (int64, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPipedriveGateway) UpdateDeal(ctx context.Context, pdDealID int64, payload map[string]any) error {
	args := m.Called(ctx, pdDealID, payload)
	return args.Error(0)
}

type MockTC2Gateway struct {
	mock.Mock
}

func (m *MockTC2Gateway) GetCligency(ctx context.Context, cligencyID int64) (map[string]any, error) {
	args := m.Called(ctx, cligencyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *MockTC2Gateway) UpdateCligency(ctx context.Context, cligencyID int64, payload map[string]any) error {
	args := m.Called(ctx, cligencyID, payload)
	return args.Error(0)
}
