package sqlstore

// SQLite DDL. The "cast" column is quoted because CAST is a reserved word.
const (
	sqliteCreateProperties = `CREATE TABLE IF NOT EXISTS properties (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE,
    "cast" TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	sqliteCreatePropertyValues = `CREATE TABLE IF NOT EXISTS property_values (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_type TEXT NOT NULL,
    entity_id INTEGER NOT NULL,
    property_type TEXT NOT NULL,
    property_id INTEGER NOT NULL,
    value TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	sqliteCreateProfiles = `CREATE TABLE IF NOT EXISTS profiles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    uid TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// PostgreSQL DDL.
const (
	postgresCreateProperties = `CREATE TABLE IF NOT EXISTS properties (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    "cast" TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	postgresCreatePropertyValues = `CREATE TABLE IF NOT EXISTS property_values (
    id BIGSERIAL PRIMARY KEY,
    entity_type TEXT NOT NULL,
    entity_id BIGINT NOT NULL,
    property_type TEXT NOT NULL,
    property_id BIGINT NOT NULL,
    value TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	postgresCreateProfiles = `CREATE TABLE IF NOT EXISTS profiles (
    id BIGSERIAL PRIMARY KEY,
    uid TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Index DDL shared by both dialects.
const (
	idxPropertyValuesUnique = `CREATE UNIQUE INDEX IF NOT EXISTS idx_property_values_unique
    ON property_values(entity_type, entity_id, property_type, property_id);`
	idxPropertyValuesEntity = `CREATE INDEX IF NOT EXISTS idx_property_values_entity
    ON property_values(entity_type, entity_id);`
)

var sqliteSchema = []string{
	sqliteCreateProperties,
	sqliteCreatePropertyValues,
	sqliteCreateProfiles,
	idxPropertyValuesUnique,
	idxPropertyValuesEntity,
}

var postgresSchema = []string{
	postgresCreateProperties,
	postgresCreatePropertyValues,
	postgresCreateProfiles,
	idxPropertyValuesUnique,
	idxPropertyValuesEntity,
}
