// Package types defines the record contract, the property catalog and value
// entities, the cast rules, and the storage and cache interfaces used by the
// Satchel properties engine.
//
// A record type declares a PropertySet (name to cast kind and default).
// Definitions are registered in a shared Catalog, and the values a record
// holds are persisted one row per (record, property) pair in a ValueStore.
package types
