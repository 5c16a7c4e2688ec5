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

func hermesIDField(kind crm.ObjectKind, pdFieldID string) crm.CustomField {
	return crm.CustomField{
		Name:             "Hermes ID",
		MachineName:      HermesIDField,
		LinkedObjectType: kind,
		FieldType:        crm.FieldTypeFK,
		PDFieldID:        pdFieldID,
		FKObjectType:     kind,
		FKLookupField:    "id",
		NullIfInvalid:    true,
	}
}

func newTestNormalizer(t *testing.T, fields []crm.CustomField, finder schema.Finder) *Normalizer {
	t.Helper()
	repo := new(MockCustomFieldRepository)
	repo.On("FindAll", mock.Anything).Return(fields, nil)
	if finder == nil {
		finder = new(MockFinder)
	}
	registry := schema.NewRegistry(repo, finder, zap.NewNop())
	require.NoError(t, registry.Build(context.Background()))
	return NewNormalizer(registry, zap.NewNop())
}

func TestPipedrivePairIgnoresUnhandledKinds(t *testing.T) {
	n := newTestNormalizer(t, nil, nil)

	pair, err := n.PipedrivePair(context.Background(), &PipedriveEvent{
		Meta:    PipedriveMeta{Action: "updated", Object: "note"},
		Current: map[string]any{"id": float64(1)},
	})
	require.NoError(t, err)
	assert.Nil(t, pair)
}

func TestPipedrivePairBothEndsAbsent(t *testing.T) {
	n := newTestNormalizer(t, nil, nil)

	_, err := n.PipedrivePair(context.Background(), &PipedriveEvent{
		Meta: PipedriveMeta{Action: "updated", Object: "organization"},
	})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCollapsePrimary(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{
			name: "primary entry wins",
			in: []any{
				map[string]any{"value": "old@example.com", "primary": false},
				map[string]any{"value": "new@example.com", "primary": true},
			},
			want: "new@example.com",
		},
		{
			name: "no primary falls back to first",
			in: []any{
				map[string]any{"value": "only@example.com", "primary": false},
			},
			want: "only@example.com",
		},
		{
			name: "one element scalar list",
			in:   []any{"42"},
			want: "42",
		},
		{
			name: "scalar passthrough",
			in:   "plain",
			want: "plain",
		},
		{
			name: "empty list passthrough",
			in:   []any{},
			want: []any{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collapsePrimary(tt.in))
		})
	}
}

func TestExtractMergeMarker(t *testing.T) {
	company := &crm.Company{BaseEntity: shared.BaseEntity{ID: 12}, Name: "Primary Ltd"}
	finder := new(MockFinder)
	finder.On("FindByAttr", mock.Anything, crm.ObjectKindCompany, "id", int64(12)).Return(company, nil)
	n := newTestNormalizer(t, []crm.CustomField{hermesIDField(crm.ObjectKindCompany, "hid_hash")}, finder)

	pair, err := n.PipedrivePair(context.Background(), &PipedriveEvent{
		Meta: PipedriveMeta{Action: "updated", Object: "organization"},
		Current: map[string]any{
			"name":     "Primary Ltd",
			"hid_hash": "12, 34, 56",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, pair.Current)

	assert.Equal(t, []int64{12, 34, 56}, pair.Current.MergeIDs)
	// The primary ID replaced the marker, so the fk resolved normally.
	require.NotNil(t, pair.Current.Object.RelatedID(HermesIDField))
	assert.Equal(t, int64(12), *pair.Current.Object.RelatedID(HermesIDField))
}

func TestExtractMergeMarkerSingleIDIsNotAMerge(t *testing.T) {
	company := &crm.Company{BaseEntity: shared.BaseEntity{ID: 12}}
	finder := new(MockFinder)
	finder.On("FindByAttr", mock.Anything, crm.ObjectKindCompany, "id", int64(12)).Return(company, nil)
	n := newTestNormalizer(t, []crm.CustomField{hermesIDField(crm.ObjectKindCompany, "hid_hash")}, finder)

	pair, err := n.PipedrivePair(context.Background(), &PipedriveEvent{
		Meta: PipedriveMeta{Action: "updated", Object: "organization"},
		Current: map[string]any{
			"name":     "Primary Ltd",
			"hid_hash": "12",
		},
	})
	require.NoError(t, err)
	assert.Nil(t, pair.Current.MergeIDs)
}

func TestTC2ClientNormalization(t *testing.T) {
	admin := &crm.Admin{BaseEntity: shared.BaseEntity{ID: 3}}
	finder := new(MockFinder)
	finder.On("FindByAttr", mock.Anything, crm.ObjectKindAdmin, "tc2_admin_id", int64(88)).Return(admin, nil)
	n := newTestNormalizer(t, []crm.CustomField{{
		Name:             "Source",
		MachineName:      "utm_source",
		LinkedObjectType: crm.ObjectKindCompany,
		FieldType:        crm.FieldTypeStr,
		TC2MachineName:   "utm_source",
	}}, finder)

	snap, err := n.TC2Client(context.Background(), map[string]any{
		"id":     float64(400),
		"status": "active",
		"sales_person": map[string]any{
			"id":         float64(88),
			"first_name": "Sales",
		},
		"meta_agency": map[string]any{
			"id":      float64(9000),
			"name":    "MyTutors",
			"country": "United Kingdom (GB)",
		},
		"extra_attrs": []any{
			map[string]any{"machine_name": "utm_source", "value": "google"},
		},
		"paid_recipients": []any{
			map[string]any{"id": float64(77), "last_name": "Junes", "email": "b@example.com"},
		},
	})
	require.NoError(t, err)

	obj := snap.Object
	require.NotNil(t, obj.Int("id"))
	assert.Equal(t, int64(400), *obj.Int("id"))

	// Nested admin hoisted to its ID and resolved under the alias.
	require.NotNil(t, obj.RelatedID("sales_person"))
	assert.Equal(t, int64(3), *obj.RelatedID("sales_person"))

	agency := obj.Object("meta_agency")
	require.NotNil(t, agency)
	assert.Equal(t, "GB", agency.Str("country"))

	// extra_attrs hoisted to the custom field's machine name.
	assert.Equal(t, "google", obj.Str("utm_source"))

	recipients := obj.List("paid_recipients")
	require.Len(t, recipients, 1)
	assert.Equal(t, "Junes", recipients[0].Str("last_name"))
}

func TestTC2CountryCode(t *testing.T) {
	assert.Equal(t, "GB", tc2CountryCode("United Kingdom (GB)"))
	assert.Equal(t, "FR", tc2CountryCode("France (FR)"))
	assert.Equal(t, "", tc2CountryCode(""))
}
