package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
)

// ValidateObject parses one raw payload against the current contract for
// (system, kind), coercing every declared field and resolving reference
// fields against the store. It returns a *ValidationError for client-visible
// failures and a plain error for store failures.
func (r *Registry) ValidateObject(ctx context.Context, system System, kind crm.ObjectKind, raw map[string]any) (*Object, error) {
	contract, ok := r.Current().Contract(system, kind)
	if !ok {
		return nil, fmt.Errorf("no contract compiled for %s %s", system, kind)
	}
	return r.validateAgainst(ctx, contract, raw)
}

func (r *Registry) validateAgainst(ctx context.Context, c *Contract, raw map[string]any) (*Object, error) {
	obj := &Object{
		System:  c.System,
		Kind:    c.Kind,
		Fields:  make(map[string]any, len(c.fields)),
		Related: make(map[string]shared.Entity),
	}
	verr := &ValidationError{}

	for _, spec := range c.fields {
		v, present := raw[spec.Key]
		if !present || v == nil {
			if spec.Required {
				verr.Details = append(verr.Details, FieldError{
					Loc:  []string{spec.Name},
					Msg:  "field required",
					Type: "value_error.missing",
				})
				continue
			}
			obj.Fields[spec.Name] = nil
			continue
		}

		coerced, err := r.coerceField(ctx, spec, v, obj)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				verr.Details = append(verr.Details, ve.Details...)
				continue
			}
			return nil, err
		}
		obj.Fields[spec.Name] = coerced
	}

	if len(verr.Details) > 0 {
		return nil, verr
	}
	return obj, nil
}

// coerceField coerces one present, non-null value. Reference fields are
// resolved inline; composed objects and lists recurse depth-first so nested
// reference fields resolve too.
func (r *Registry) coerceField(ctx context.Context, spec FieldSpec, v any, obj *Object) (any, error) {
	switch spec.Kind {
	case FieldStr:
		s, err := coerceString(v)
		if err != nil {
			return nil, fieldError(spec, err)
		}
		if spec.Rule != "" {
			if err := r.vd.Var(s, spec.Rule); err != nil {
				return nil, NewValidationError([]string{spec.Name}, fmt.Sprintf("value does not satisfy rule %q", spec.Rule))
			}
		}
		return s, nil

	case FieldInt:
		n, err := coerceInt(v)
		if err != nil {
			return nil, fieldError(spec, err)
		}
		return n, nil

	case FieldBool:
		b, err := coerceBool(v)
		if err != nil {
			return nil, fieldError(spec, err)
		}
		return b, nil

	case FieldDate:
		t, err := coerceDate(v)
		if err != nil {
			return nil, fieldError(spec, err)
		}
		return t, nil

	case FieldDecimal:
		d, err := coerceDecimal(v)
		if err != nil {
			return nil, fieldError(spec, err)
		}
		return d, nil

	case FieldFK:
		id, err := coerceInt(v)
		if err != nil {
			return nil, fieldError(spec, err)
		}
		entity, err := r.resolveReference(ctx, spec, id)
		if err != nil {
			return nil, err
		}
		if entity != nil {
			obj.Related[spec.alias()] = entity
		}
		return id, nil

	case FieldObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, NewValidationError([]string{spec.Name}, "expected an object")
		}
		nested, err := r.validateAgainst(ctx, spec.Nested, m)
		if err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return nil, ve.prefixed(spec.Name)
			}
			return nil, err
		}
		return nested, nil

	case FieldList:
		items, ok := v.([]any)
		if !ok {
			return nil, NewValidationError([]string{spec.Name}, "expected a list")
		}
		out := make([]*Object, 0, len(items))
		for i, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, NewValidationError([]string{spec.Name, fmt.Sprint(i)}, "expected an object")
			}
			nested, err := r.validateAgainst(ctx, spec.Nested, m)
			if err != nil {
				var ve *ValidationError
				if errors.As(err, &ve) {
					return nil, ve.prefixed(spec.Name)
				}
				return nil, err
			}
			out = append(out, nested)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown field kind %q", spec.Kind)
}

func fieldError(spec FieldSpec, err error) *ValidationError {
	return NewValidationError([]string{spec.Name}, err.Error())
}
