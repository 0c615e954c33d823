package properties

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Bag is the property view of one loaded record: declared defaults overlaid
// by persisted values, overlaid by writes made since loading.
//
// A Bag is owned by a single goroutine. Writes to names the record does not
// declare are dropped without error.
type Bag struct {
	engine   *Engine
	record   types.Record
	declared types.PropertySet

	// values only ever gains keys from declared or persisted.
	values map[string]any

	// persisted indexes resolved rows by property name.
	persisted map[string]*types.PropertyValue
}

// NewBag loads the property values of record through the engine's cache.
func (e *Engine) NewBag(ctx context.Context, record types.Record) (*Bag, error) {
	declared := record.Properties()
	if err := declared.Validate(); err != nil {
		return nil, fmt.Errorf("%s properties: %w", record.RecordType(), err)
	}

	b := &Bag{
		engine:   e,
		record:   record,
		declared: declared,
	}
	if err := b.retrieveValues(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// retrieveValues hydrates persisted and values. A record without identity has
// no rows and is not looked up.
func (b *Bag) retrieveValues(ctx context.Context) error {
	var rows []*types.PropertyValue
	if b.record.RecordID() != 0 {
		entity := types.EntityRef(b.record)
		cached, err := b.engine.cache.RememberForever(ctx, b.engine.CacheKey(b.record),
			func(ctx context.Context) ([]*types.PropertyValue, error) {
				return b.engine.values.FetchForEntity(ctx, entity)
			})
		if err != nil {
			return fmt.Errorf("loading properties of %s: %w", entity, err)
		}
		rows = cached
	}

	b.persisted = make(map[string]*types.PropertyValue, len(rows))
	b.values = b.declared.Defaults()

	for _, row := range rows {
		name := row.Name()
		if name == "" {
			continue
		}
		row = row.Clone()
		b.persisted[name] = row

		v, err := row.Cast()
		if err != nil {
			b.engine.logger.Warn("stored property value does not match its cast",
				zap.String("record", types.EntityRef(b.record).String()),
				zap.String("property", name),
				zap.String("cast", row.CastKind()),
				zap.Error(err))
			v = *row.Value
		}
		b.values[name] = v
	}

	b.engine.logger.Debug("properties loaded",
		zap.String("record", types.EntityRef(b.record).String()),
		zap.Int("declared", len(b.declared)),
		zap.Int("persisted", len(rows)))
	return nil
}

// Get returns the current value of name, or nil when it has none.
func (b *Bag) Get(name string) any {
	return b.values[name]
}

// Lookup returns the current value of name and whether the bag holds it.
func (b *Bag) Lookup(name string) (any, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Set assigns v to name when name is declared. The value is kept as given
// and cast when saved.
func (b *Bag) Set(name string, v any) {
	if !b.declared.Has(name) {
		return
	}
	b.values[name] = v
}

// SetMany applies Set to every entry of values.
func (b *Bag) SetMany(values map[string]any) {
	for name, v := range values {
		b.Set(name, v)
	}
}

// Has reports whether the record declares name.
func (b *Bag) Has(name string) bool {
	return b.declared.Has(name)
}

// Names returns the names held by the bag in ascending order.
func (b *Bag) Names() []string {
	names := make([]string, 0, len(b.values))
	for name := range b.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns a copy of the merged value map.
func (b *Bag) Values() map[string]any {
	out := make(map[string]any, len(b.values))
	for name, v := range b.values {
		out[name] = v
	}
	return out
}

// String returns name as a string, or "" when it has no value.
func (b *Bag) String(name string) string {
	return cast.ToString(b.values[name])
}

// Float returns name cast to float64, or 0.
func (b *Bag) Float(name string) float64 {
	v, _ := types.CastValue(types.CastFloat, b.values[name])
	f, _ := v.(float64)
	return f
}

// Int returns name cast to int64, or 0.
func (b *Bag) Int(name string) int64 {
	v, _ := types.CastValue(types.CastInteger, b.values[name])
	i, _ := v.(int64)
	return i
}

// Bool returns name cast to bool, or false.
func (b *Bag) Bool(name string) bool {
	v, _ := types.CastValue(types.CastBoolean, b.values[name])
	ok, _ := v.(bool)
	return ok
}

// Time returns name cast to a time, or the zero time.
func (b *Bag) Time(name string) time.Time {
	v, _ := types.CastValue(types.CastDatetime, b.values[name])
	t, _ := v.(time.Time)
	return t
}

// Save writes every value that differs from its stored row. The cache entry
// of the record is forgotten before anything is written. A new row is not
// created for a value equal to its declared default.
//
// Save returns a *types.MissingPropertyDefinitionError when a held name has
// no catalog entry. Writes are not transactional; rows saved before a failure
// stay saved.
func (b *Bag) Save(ctx context.Context) error {
	if err := b.engine.cache.Forget(ctx, b.engine.CacheKey(b.record)); err != nil {
		return fmt.Errorf("forgetting cached properties: %w", err)
	}

	for _, name := range b.Names() {
		value := b.values[name]

		pv, err := b.propertyValue(ctx, name)
		if err != nil {
			return err
		}

		kind := pv.CastKind()
		if types.LooseEqual(kind, pv.Current(), value) {
			continue
		}
		if !pv.Exists() && b.isDefault(name, kind, value) {
			continue
		}

		pv.Assign(value)
		if err := b.engine.values.Save(ctx, pv); err != nil {
			return fmt.Errorf("saving property %s: %w", name, err)
		}
		b.engine.logger.Debug("property saved",
			zap.String("record", pv.Entity.String()),
			zap.String("property", name),
			zap.Int64("id", pv.ID))
	}
	return nil
}

// isDefault reports whether value equals the declared default of name.
func (b *Bag) isDefault(name, kind string, value any) bool {
	def, ok := b.declared[name]
	if !ok {
		return false
	}
	return types.LooseEqual(kind, def.Default, value)
}

// propertyValue returns the row that stores name: the loaded row, the stored
// row for the catalog definition, or a new unsaved row for it.
func (b *Bag) propertyValue(ctx context.Context, name string) (*types.PropertyValue, error) {
	if pv, ok := b.persisted[name]; ok {
		return pv, nil
	}

	prop, err := b.engine.catalog.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, &types.MissingPropertyDefinitionError{Name: name}
		}
		return nil, fmt.Errorf("finding property %s: %w", name, err)
	}

	pv, err := b.engine.values.FirstOrNew(ctx, types.EntityRef(b.record), prop.Ref())
	if err != nil {
		return nil, fmt.Errorf("resolving property %s: %w", name, err)
	}
	if pv.Definition == nil {
		pv.Definition = prop
	}
	b.persisted[name] = pv
	return pv, nil
}
