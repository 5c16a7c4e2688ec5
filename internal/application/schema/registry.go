package schema

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/hermes/backend/internal/domain/crm"
	"go.uber.org/zap"
)

// contractKey identifies one compiled contract within a set.
type contractKey struct {
	system System
	kind   crm.ObjectKind
}

// ContractSet is one immutable compilation of every contract. Readers that
// picked up a set keep using it even if the registry swaps in a newer one.
type ContractSet struct {
	contracts map[contractKey]*Contract
}

// Contract returns the compiled contract for one (system, object kind).
func (s *ContractSet) Contract(system System, kind crm.ObjectKind) (*Contract, bool) {
	c, ok := s.contracts[contractKey{system, kind}]
	return c, ok
}

// Registry owns the current contract set. Build recompiles the whole set from
// the custom field definitions and swaps it atomically; it is invoked at
// process start and after every registry mutation, and is safe to re-invoke
// at any time.
type Registry struct {
	customFields crm.CustomFieldRepository
	finder       Finder
	vd           *validator.Validate
	logger       *zap.Logger
	current      atomic.Pointer[ContractSet]
}

// NewRegistry creates a Registry. Build must be called before the first
// validation; until then only the canonical contracts are available.
func NewRegistry(customFields crm.CustomFieldRepository, finder Finder, logger *zap.Logger) *Registry {
	r := &Registry{
		customFields: customFields,
		finder:       finder,
		vd:           validator.New(),
		logger:       logger,
	}
	r.current.Store(compile(nil))
	return r
}

// Build recompiles the contract set from the full current set of custom
// field definitions and swaps it in. Tolerates zero definitions.
func (r *Registry) Build(ctx context.Context) error {
	fields, err := r.customFields.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("loading custom fields: %w", err)
	}
	set := compile(fields)
	r.current.Store(set)
	r.logger.Info("schema contracts rebuilt",
		zap.Int("custom_fields", len(fields)),
		zap.Int("contracts", len(set.contracts)),
	)
	return nil
}

// Current returns the contract set in effect.
func (r *Registry) Current() *ContractSet {
	return r.current.Load()
}

// compile produces a full contract set: the canonical contracts per (system,
// kind) extended with one field spec per applicable custom field definition.
func compile(fields []crm.CustomField) *ContractSet {
	set := &ContractSet{contracts: make(map[contractKey]*Contract)}
	for key, base := range canonicalContracts() {
		var custom []FieldSpec
		for _, f := range fields {
			if f.LinkedObjectType != key.kind {
				continue
			}
			spec, ok := customFieldSpec(key.system, f)
			if !ok {
				continue
			}
			custom = append(custom, spec)
		}
		set.contracts[key] = base.withCustomFields(custom)
	}
	return set
}

// customFieldSpec converts one definition into a field spec for the given
// system. Definitions with no identifier for that system are skipped.
func customFieldSpec(system System, f crm.CustomField) (FieldSpec, bool) {
	var key string
	switch system {
	case SystemPipedrive:
		key = f.PDFieldID
	case SystemTC2:
		key = f.TC2MachineName
	}
	if key == "" {
		return FieldSpec{}, false
	}
	spec := FieldSpec{
		Name:   f.MachineName,
		Key:    key,
		Custom: true,
	}
	switch f.FieldType {
	case crm.FieldTypeInt:
		spec.Kind = FieldInt
	case crm.FieldTypeBool:
		spec.Kind = FieldBool
	case crm.FieldTypeDate:
		spec.Kind = FieldDate
	case crm.FieldTypeFK:
		spec.Kind = FieldFK
		spec.Target = f.FKObjectType
		spec.LookupAttr = f.FKLookupField
		spec.NullIfInvalid = f.NullIfInvalid
		spec.Alias = f.MachineName
	default:
		spec.Kind = FieldStr
	}
	return spec, true
}
