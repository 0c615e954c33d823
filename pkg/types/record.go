package types

// Record is the contract a record type implements to carry dynamic
// properties. RecordType is the stable type discriminator stored in
// property_values.entity_type; RecordID is the record's persisted identity
// and may be zero until the record is first saved.
type Record interface {
	RecordType() string
	RecordID() int64
	Properties() PropertySet
}

// PropertySetter is implemented by record types whose declared set can be
// replaced at runtime, typically in tests and setup code.
type PropertySetter interface {
	SetProperties(PropertySet)
}

// EntityRef returns the polymorphic reference of r.
func EntityRef(r Record) Ref {
	return Ref{Type: r.RecordType(), ID: r.RecordID()}
}
