package types

import (
	"fmt"
	"time"
)

// Ref is a polymorphic (type discriminator, id) reference.
type Ref struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s#%d", r.Type, r.ID)
}

// Valid reports whether the reference names a type.
func (r Ref) Valid() bool {
	return r.Type != ""
}

// PropertyValue is one stored (record, property) value. Value holds the raw
// text form; nil is SQL NULL. Definition is the joined catalog entry and
// drives the cast applied by Cast.
type PropertyValue struct {
	ID         int64     `json:"id"`
	Entity     Ref       `json:"entity"`
	Property   Ref       `json:"property"`
	Value      *string   `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Definition *Property `json:"definition,omitempty"`
}

// Exists reports whether the value has been persisted.
func (v *PropertyValue) Exists() bool {
	return v.ID != 0
}

// Name returns the property name from the joined definition.
func (v *PropertyValue) Name() string {
	if v.Definition == nil {
		return ""
	}
	return v.Definition.Name
}

// CastKind returns the cast kind of the joined definition, or CastString when
// the definition is missing.
func (v *PropertyValue) CastKind() string {
	if v.Definition == nil || v.Definition.Cast == "" {
		return CastString
	}
	return v.Definition.Cast
}

// Cast returns the stored value converted per CastKind. A NULL value yields
// nil.
func (v *PropertyValue) Cast() (any, error) {
	if v.Value == nil {
		return nil, nil
	}
	return CastValue(v.CastKind(), *v.Value)
}

// Current returns the cast value, or the raw text when it cannot be cast.
func (v *PropertyValue) Current() any {
	c, err := v.Cast()
	if err != nil {
		return *v.Value
	}
	return c
}

// Assign encodes val into Value per CastKind. The row is not persisted.
func (v *PropertyValue) Assign(val any) {
	v.Value = EncodeValue(v.CastKind(), val)
}

// Clone returns a deep copy so cached rows are never mutated by their readers.
func (v *PropertyValue) Clone() *PropertyValue {
	c := *v
	if v.Value != nil {
		s := *v.Value
		c.Value = &s
	}
	if v.Definition != nil {
		d := *v.Definition
		c.Definition = &d
	}
	return &c
}
