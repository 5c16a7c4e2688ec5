package schema

import (
	"time"

	"github.com/hermes/backend/internal/domain/crm"
	"github.com/hermes/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// System identifies the external system a contract parses payloads from.
type System string

const (
	SystemPipedrive System = "pipedrive"
	SystemTC2       System = "tc2"
)

// Other returns the opposite system, the one locally-applied changes are
// pushed back out to.
func (s System) Other() System {
	if s == SystemPipedrive {
		return SystemTC2
	}
	return SystemPipedrive
}

// FieldKind is the declared type of a contract field.
type FieldKind string

const (
	FieldStr     FieldKind = "str"
	FieldInt     FieldKind = "int"
	FieldBool    FieldKind = "bool"
	FieldDate    FieldKind = "date"
	FieldDecimal FieldKind = "decimal"
	FieldFK      FieldKind = "fk"
	FieldObject  FieldKind = "object"
	FieldList    FieldKind = "list"
)

// FieldSpec describes one field of a compiled contract: where to read it from
// the inbound payload, how to coerce it, and for reference fields how to
// resolve it against the store.
type FieldSpec struct {
	// Name is the canonical field name the validated object exposes.
	Name string
	// Key is the payload key, usually Name but the external system's own
	// field identifier for custom fields.
	Key      string
	Kind     FieldKind
	Required bool
	// Custom marks fields added from the registry rather than the canonical
	// contract.
	Custom bool
	// Rule is an optional validator tag applied to string values, e.g.
	// "omitempty,email".
	Rule string

	// Reference fields only.
	Target        crm.ObjectKind
	LookupAttr    string
	Alias         string
	NullIfInvalid bool

	// Composed object / list element contract.
	Nested *Contract
}

// Contract is the compiled, immutable validation contract for one object
// kind of one external system.
type Contract struct {
	System System
	Kind   crm.ObjectKind
	fields []FieldSpec
	byName map[string]int
}

// NewContract builds a contract from the given field specs.
func NewContract(system System, kind crm.ObjectKind, specs ...FieldSpec) *Contract {
	c := &Contract{
		System: system,
		Kind:   kind,
		fields: specs,
		byName: make(map[string]int, len(specs)),
	}
	for i, s := range specs {
		c.byName[s.Name] = i
	}
	return c
}

// withCustomFields returns a new contract extended with the given specs.
// The receiver is never mutated; rebuilds always start from the canonical
// contract.
func (c *Contract) withCustomFields(specs []FieldSpec) *Contract {
	merged := make([]FieldSpec, 0, len(c.fields)+len(specs))
	merged = append(merged, c.fields...)
	merged = append(merged, specs...)
	return NewContract(c.System, c.Kind, merged...)
}

// Fields returns the contract's field specs in declaration order.
func (c *Contract) Fields() []FieldSpec {
	return c.fields
}

// Field returns the spec with the given canonical name.
func (c *Contract) Field(name string) (FieldSpec, bool) {
	i, ok := c.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return c.fields[i], true
}

// CustomFields returns only the specs added from the registry.
func (c *Contract) CustomFields() []FieldSpec {
	var out []FieldSpec
	for _, s := range c.fields {
		if s.Custom {
			out = append(out, s)
		}
	}
	return out
}

// Object is a validated inbound snapshot. Fields holds coerced canonical
// values keyed by field name (nil for null); Related holds entities attached
// by the foreign-key resolver under each reference field's alias.
type Object struct {
	System  System
	Kind    crm.ObjectKind
	Fields  map[string]any
	Related map[string]shared.Entity
}

// Get returns the coerced value for a field, nil when absent or null.
func (o *Object) Get(name string) any {
	return o.Fields[name]
}

// Int returns an int64 field value, or nil.
func (o *Object) Int(name string) *int64 {
	if v, ok := o.Fields[name].(int64); ok {
		return &v
	}
	return nil
}

// Str returns a string field value, or "" when absent.
func (o *Object) Str(name string) string {
	if v, ok := o.Fields[name].(string); ok {
		return v
	}
	return ""
}

// Bool returns a bool field value, false when absent.
func (o *Object) Bool(name string) bool {
	v, _ := o.Fields[name].(bool)
	return v
}

// Date returns a date field value, or nil.
func (o *Object) Date(name string) *time.Time {
	if v, ok := o.Fields[name].(time.Time); ok {
		return &v
	}
	return nil
}

// Decimal returns a decimal field value, or zero.
func (o *Object) Decimal(name string) decimal.Decimal {
	if v, ok := o.Fields[name].(decimal.Decimal); ok {
		return v
	}
	return decimal.Zero
}

// Object returns a nested validated object, or nil.
func (o *Object) Object(name string) *Object {
	v, _ := o.Fields[name].(*Object)
	return v
}

// List returns a nested validated object list.
func (o *Object) List(name string) []*Object {
	v, _ := o.Fields[name].([]*Object)
	return v
}

// RelatedEntity returns the entity the resolver attached under alias, or nil.
func (o *Object) RelatedEntity(alias string) shared.Entity {
	return o.Related[alias]
}

// RelatedID returns the local ID of the entity attached under alias.
func (o *Object) RelatedID(alias string) *int64 {
	if e := o.Related[alias]; e != nil {
		id := e.GetID()
		return &id
	}
	return nil
}
