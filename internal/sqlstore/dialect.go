package sqlstore

import (
	"strconv"
	"strings"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// dialect captures what differs between the supported SQL engines: the
// database/sql driver name, the placeholder style and the schema DDL.
type dialect struct {
	name       string
	driver     string
	positional bool
	schema     []string
}

var dialects = map[string]dialect{
	types.BackendSQLite: {
		name:   types.BackendSQLite,
		driver: "sqlite",
		schema: sqliteSchema,
	},
	types.BackendPostgres: {
		name:       types.BackendPostgres,
		driver:     "pgx",
		positional: true,
		schema:     postgresSchema,
	},
}

// rebind rewrites ? placeholders to $1, $2, ... for positional dialects.
// Queries in this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
