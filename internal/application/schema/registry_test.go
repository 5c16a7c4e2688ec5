package schema

import (
	"context"
	"testing"

	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mocks
// =============================================================================

// MockCustomFieldRepository is a mock implementation of CustomFieldRepository
type MockCustomFieldRepository struct {
	mock.Mock
}

func (m *MockCustomFieldRepository) FindAll(ctx context.Context) ([]crm.CustomField, error) {
	args := m.Called(ctx)
	return args.Get(0).([]crm.CustomField), args.Error(1)
}

func (m *MockCustomFieldRepository) FindByObjectType(ctx context.Context, kind crm.ObjectKind) ([]crm.CustomField, error) {
	args := m.Called(ctx, kind)
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

// MockFinder is a mock implementation of Finder
type MockFinder struct {
	mock.Mock
}

func (m *MockFinder) FindByAttr(ctx context.Context, kind crm.ObjectKind, attr string, value any) (shared.Entity, error) {
	args := m.Called(ctx, kind, attr, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(shared.Entity), args.Error(1)
}

func newTestRegistry(t *testing.T, fields []crm.CustomField, finder Finder) *Registry {
	t.Helper()
	repo := new(MockCustomFieldRepository)
	repo.On("FindAll", mock.Anything).Return(fields, nil)
	if finder == nil {
		finder = new(MockFinder)
	}
	r := NewRegistry(repo, finder, zap.NewNop())
	require.NoError(t, r.Build(context.Background()))
	return r
}

// =============================================================================
// Tests
// =============================================================================

func TestRegistryBuildWithoutDefinitions(t *testing.T) {
	r := newTestRegistry(t, nil, nil)

	c, ok := r.Current().Contract(SystemPipedrive, crm.ObjectKindCompany)
	require.True(t, ok)
	assert.Empty(t, c.CustomFields())

	_, ok = r.Current().Contract(SystemTC2, crm.ObjectKindCompany)
	assert.True(t, ok)
}

func TestRegistryBuildCompilesCustomFields(t *testing.T) {
	fields := []crm.CustomField{
		{
			Name:             "Hermes ID",
			MachineName:      "hermes_id",
			LinkedObjectType: crm.ObjectKindCompany,
			FieldType:        crm.FieldTypeFK,
			PDFieldID:        "abc123hash",
			FKObjectType:     crm.ObjectKindCompany,
			FKLookupField:    "id",
			NullIfInvalid:    true,
		},
		{
			Name:             "Website",
			MachineName:      "website",
			LinkedObjectType: crm.ObjectKindCompany,
			FieldType:        crm.FieldTypeStr,
			TC2MachineName:   "website",
		},
		{
			Name:             "Signup Date",
			MachineName:      "signup_date",
			LinkedObjectType: crm.ObjectKindDeal,
			FieldType:        crm.FieldTypeDate,
			PDFieldID:        "datehash",
			TC2MachineName:   "signup_date",
		},
	}
	r := newTestRegistry(t, fields, nil)

	pdCompany, ok := r.Current().Contract(SystemPipedrive, crm.ObjectKindCompany)
	require.True(t, ok)
	spec, ok := pdCompany.Field("hermes_id")
	require.True(t, ok)
	assert.Equal(t, "abc123hash", spec.Key)
	assert.Equal(t, FieldFK, spec.Kind)
	assert.Equal(t, crm.ObjectKindCompany, spec.Target)
	assert.Equal(t, "id", spec.LookupAttr)
	assert.True(t, spec.NullIfInvalid)
	assert.True(t, spec.Custom)

	// The website field has no Pipedrive key, so only the TC2 contract
	// carries it.
	_, ok = pdCompany.Field("website")
	assert.False(t, ok)
	tc2Company, ok := r.Current().Contract(SystemTC2, crm.ObjectKindCompany)
	require.True(t, ok)
	_, ok = tc2Company.Field("website")
	assert.True(t, ok)

	// Deal-linked definitions never leak onto company contracts.
	_, ok = pdCompany.Field("signup_date")
	assert.False(t, ok)
	pdDeal, ok := r.Current().Contract(SystemPipedrive, crm.ObjectKindDeal)
	require.True(t, ok)
	dealSpec, ok := pdDeal.Field("signup_date")
	require.True(t, ok)
	assert.Equal(t, FieldDate, dealSpec.Kind)
}

func TestRegistryRebuildSwapsAtomically(t *testing.T) {
	repo := new(MockCustomFieldRepository)
	repo.On("FindAll", mock.Anything).Return([]crm.CustomField{}, nil).Once()
	repo.On("FindAll", mock.Anything).Return([]crm.CustomField{{
		Name:             "Source",
		MachineName:      "utm_source",
		LinkedObjectType: crm.ObjectKindCompany,
		FieldType:        crm.FieldTypeStr,
		PDFieldID:        "srchash",
	}}, nil).Once()

	r := NewRegistry(repo, new(MockFinder), zap.NewNop())
	require.NoError(t, r.Build(context.Background()))

	before := r.Current()
	c, _ := before.Contract(SystemPipedrive, crm.ObjectKindCompany)
	assert.Empty(t, c.CustomFields())

	require.NoError(t, r.Build(context.Background()))

	// The old set is untouched; the new set carries the definition.
	c, _ = before.Contract(SystemPipedrive, crm.ObjectKindCompany)
	assert.Empty(t, c.CustomFields())
	c, _ = r.Current().Contract(SystemPipedrive, crm.ObjectKindCompany)
	assert.Len(t, c.CustomFields(), 1)
}
