package types

import (
	"fmt"
	"sort"
	"time"
)

// Definition declares one property a record type may hold: its cast kind and
// an optional default returned while no value has been persisted.
type Definition struct {
	Cast    string `json:"cast" yaml:"cast"`
	Default any    `json:"default,omitempty" yaml:"default,omitempty"`
}

// PropertySet is the closed vocabulary of properties a record type declares,
// keyed by property name.
type PropertySet map[string]Definition

// Has reports whether name is declared.
func (s PropertySet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the declared names in ascending order.
func (s PropertySet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults maps every declared name to its declared default, or nil when the
// definition has none.
func (s PropertySet) Defaults() map[string]any {
	defaults := make(map[string]any, len(s))
	for name, def := range s {
		defaults[name] = def.Default
	}
	return defaults
}

// Validate checks that every name is non-empty and every cast kind is known.
func (s PropertySet) Validate() error {
	for name, def := range s {
		if name == "" {
			return ErrInvalidName
		}
		if !IsValidCast(def.Cast) {
			return fmt.Errorf("property %s: %w: %q", name, ErrInvalidCast, def.Cast)
		}
	}
	return nil
}

// PropertyRefType is the reference type of catalog-backed definitions in
// PropertyValue.Property.
const PropertyRefType = "property"

// Property is a catalog entry shared by every record type that declares a
// property of the same name. A name maps to exactly one cast kind.
type Property struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Cast      string    `json:"cast"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref returns the polymorphic reference stored in property_values.
func (p *Property) Ref() Ref {
	return Ref{Type: PropertyRefType, ID: p.ID}
}
