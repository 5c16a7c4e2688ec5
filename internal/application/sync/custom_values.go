package sync

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/hermes/backend/internal/application/schema"
	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// storedValueString renders a coerced field value in its stored string form.
// ok=false means the field is absent or null, so any stored row must go.
func storedValueString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case time.Time:
		return t.Format(schema.DateLayout), true
	case decimal.Decimal:
		return t.String(), true
	}
	return "", false
}

// objectCustomValue reads the value a validated object carries for one
// definition. FK-typed fields store the lookup-attribute value the external
// systems exchange, never the local id of the resolved entity; an
// unresolved reference clears the row.
func objectCustomValue(def *crm.CustomField, obj *schema.Object) (string, bool) {
	if def.FieldType == crm.FieldTypeFK && obj.RelatedEntity(def.MachineName) == nil {
		return "", false
	}
	return storedValueString(obj.Get(def.MachineName))
}

// applyCustomValues upserts the stored value rows for one owner from a
// validated snapshot. It returns the machine names whose stored value
// changed and, for each, the new value (nil when cleared), which feeds
// inherited-field propagation.
//
// More than one row for a (definition, owner) pair is an anomaly from a past
// race; the first row wins and the rest are deleted, so repeated processing
// always converges on one row.
func (r *Reconciler) applyCustomValues(ctx context.Context, owner crm.OwnerRef, obj *schema.Object) ([]string, map[string]*string, error) {
	defs, err := r.customFields.FindByObjectType(ctx, owner.Kind)
	if err != nil {
		return nil, nil, err
	}

	var changed []string
	values := make(map[string]*string)
	for i := range defs {
		def := defs[i]
		if def.MachineName == HermesIDField {
			continue
		}
		// A definition with no key for this system is not on its contract;
		// leave the stored value alone.
		if customFieldKey(&def, obj.System) == "" {
			continue
		}

		newVal, present := objectCustomValue(&def, obj)

		rows, err := r.customValues.FindByFieldAndOwner(ctx, def.ID, owner)
		if err != nil {
			return nil, nil, err
		}

		if !present {
			if len(rows) == 0 {
				continue
			}
			for i := range rows {
				if err := r.customValues.Delete(ctx, rows[i].ID); err != nil && !isNotFound(err) {
					return nil, nil, err
				}
			}
			changed = append(changed, def.MachineName)
			values[def.MachineName] = nil
			continue
		}

		if len(rows) == 0 {
			row := crm.CustomFieldValue{CustomFieldID: def.ID, Value: newVal}
			row.SetOwner(owner)
			if err := r.customValues.Save(ctx, &row); err != nil {
				return nil, nil, err
			}
			changed = append(changed, def.MachineName)
			v := newVal
			values[def.MachineName] = &v
			continue
		}

		keep := rows[0]
		for _, extra := range rows[1:] {
			r.logger.Warn("duplicate custom field value row, deleting extra",
				zap.Int64("custom_field_id", def.ID),
				zap.Int64("value_id", extra.ID),
			)
			if err := r.customValues.Delete(ctx, extra.ID); err != nil && !isNotFound(err) {
				return nil, nil, err
			}
		}
		if keep.Value != newVal {
			keep.Value = newVal
			if err := r.customValues.Save(ctx, &keep); err != nil {
				return nil, nil, err
			}
			changed = append(changed, def.MachineName)
			v := newVal
			values[def.MachineName] = &v
		}
	}
	return changed, values, nil
}

// deleteCustomValues drops every stored value for an owner. Used on entity
// deletion when the store's cascade rules cannot be relied on.
func (r *Reconciler) deleteCustomValues(ctx context.Context, owner crm.OwnerRef) error {
	rows, err := r.customValues.FindByOwner(ctx, owner)
	if err != nil {
		return err
	}
	for i := range rows {
		if err := r.customValues.Delete(ctx, rows[i].ID); err != nil && !isNotFound(err) {
			return err
		}
	}
	return nil
}

// customFieldKey returns the external field identifier a definition carries
// for one system, or "" when the definition does not exist there.
func customFieldKey(def *crm.CustomField, system schema.System) string {
	if system == schema.SystemPipedrive {
		return def.PDFieldID
	}
	return def.TC2MachineName
}

func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
