package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
)

// Finder looks up an entity by one attribute. The persistence layer provides
// the implementation; the resolver only cares about found / not found.
type Finder interface {
	// FindByAttr returns the entity of the given kind whose attr column equals
	// value, or shared.ErrNotFound.
	FindByAttr(ctx context.Context, kind crm.ObjectKind, attr string, value any) (shared.Entity, error)
}

func (s FieldSpec) alias() string {
	if s.Alias != "" {
		return s.Alias
	}
	return string(s.Target)
}

// resolveReference resolves one fk-typed field value against the store.
// A missing target is a client-visible validation failure unless the spec is
// marked null_if_invalid, in which case the alias resolves to nil.
func (r *Registry) resolveReference(ctx context.Context, spec FieldSpec, value int64) (shared.Entity, error) {
	entity, err := r.finder.FindByAttr(ctx, spec.Target, spec.LookupAttr, value)
	if err == nil {
		return entity, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("resolving %s %s=%d: %w", spec.Target, spec.LookupAttr, value, err)
	}
	if spec.NullIfInvalid {
		return nil, nil
	}
	return nil, NewValidationError(
		[]string{spec.Name},
		fmt.Sprintf("%s with %s %d does not exist", spec.Target.DisplayName(), spec.LookupAttr, value),
	)
}
