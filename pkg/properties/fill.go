package properties

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Fill upserts every property declared by the record types in registry into
// catalog and writes one "Saved {name} property as {cast}" line per property
// to w, in name order. Fill is additive: catalog entries no record type
// declares are left alone. A name declared with different casts, by two
// record types or by a record type and the catalog, takes the last
// registered cast and is logged at warn level.
func Fill(ctx context.Context, catalog types.Catalog, registry *Registry, w io.Writer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	decls, err := registry.Declarations()
	if err != nil {
		return err
	}

	declaredBy := make(map[string]Declaration, len(decls))
	for _, d := range decls {
		if prev, ok := declaredBy[d.Name]; ok && prev.Cast != d.Cast {
			logger.Warn("property declared with conflicting casts",
				zap.String("property", d.Name),
				zap.String("record", prev.Record),
				zap.String("cast", prev.Cast),
				zap.String("overridden_by", d.Record),
				zap.String("new_cast", d.Cast))
		}
		declaredBy[d.Name] = d
	}

	set, err := registry.Collect()
	if err != nil {
		return err
	}

	for _, name := range set.Names() {
		cast := set[name].Cast

		existing, err := catalog.FindByName(ctx, name)
		switch {
		case err == nil && existing.Cast != cast:
			logger.Warn("property cast changed",
				zap.String("property", name),
				zap.String("from", existing.Cast),
				zap.String("to", cast))
		case err != nil && !errors.Is(err, types.ErrNotFound):
			return fmt.Errorf("finding property %s: %w", name, err)
		}

		if _, err := catalog.Upsert(ctx, name, cast); err != nil {
			return fmt.Errorf("saving property %s: %w", name, err)
		}
		if _, err := fmt.Fprintf(w, "Saved %s property as %s\n", name, cast); err != nil {
			return err
		}
	}
	return nil
}
