package properties

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/satchel/internal/cache"
	"github.com/mesh-intelligence/satchel/internal/sqlstore"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// testModel is a record type whose declared set is replaced per test.
type testModel struct {
	id    int64
	props types.PropertySet
}

func (m *testModel) RecordType() string { return "test_model" }
func (m *testModel) RecordID() int64 { return m.id }
func (m *testModel) Properties() types.PropertySet { return m.props }
func (m *testModel) SetProperties(props types.PropertySet) { m.props = props }

var _ types.PropertySetter = (*testModel)(nil)

// modelProperties mirrors the declared set used across the bag tests.
func modelProperties() types.PropertySet {
	return types.PropertySet{
		"nickname":                    {Cast: types.CastString},
		"float_property":              {Cast: types.CastFloat},
		"datetime_property":           {Cast: types.CastDatetime},
		"property_with_default_value": {Cast: types.CastString, Default: "Default string"},
	}
}

// recordingStore counts the reads and writes that reach the value store.
type recordingStore struct {
	types.ValueStore
	fetches int
	saves   int
}

func (r *recordingStore) FetchForEntity(ctx context.Context, entity types.Ref) ([]*types.PropertyValue, error) {
	r.fetches++
	return r.ValueStore.FetchForEntity(ctx, entity)
}

func (r *recordingStore) Save(ctx context.Context, value *types.PropertyValue) error {
	r.saves++
	return r.ValueStore.Save(ctx, value)
}

// recordingCache logs cache operations in call order.
type recordingCache struct {
	types.Cache
	ops []string
}

func (r *recordingCache) RememberForever(ctx context.Context, key string, produce types.Producer) ([]*types.PropertyValue, error) {
	r.ops = append(r.ops, "remember "+key)
	return r.Cache.RememberForever(ctx, key, produce)
}

func (r *recordingCache) Forget(ctx context.Context, key string) error {
	r.ops = append(r.ops, "forget "+key)
	return r.Cache.Forget(ctx, key)
}

type fixture struct {
	catalog types.Catalog
	values  types.ValueStore
	store   *recordingStore
	cache   *recordingCache
	engine  *Engine
}

// setupEngine attaches a SQLite backend in a temp dir and builds an engine
// over recording wrappers of its stores.
func setupEngine(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	backend := sqlstore.NewBackend()
	require.NoError(t, backend.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { backend.Detach() })

	catalog, err := backend.Catalog()
	require.NoError(t, err)
	values, err := backend.Values()
	require.NoError(t, err)

	f := &fixture{
		catalog: catalog,
		values:  values,
		store:   &recordingStore{ValueStore: values},
		cache:   &recordingCache{Cache: cache.NewMemory()},
	}
	opts = append([]Option{WithCache(f.cache)}, opts...)
	f.engine = NewEngine(catalog, f.store, opts...)
	return f
}

// makeModel returns a stored record declaring modelProperties, with every
// declared name registered in the catalog.
func (f *fixture) makeModel(t *testing.T, id int64) *testModel {
	t.Helper()
	m := &testModel{id: id, props: modelProperties()}
	f.makeProperties(t, m.props)
	return m
}

func (f *fixture) makeProperties(t *testing.T, set types.PropertySet) {
	t.Helper()
	for _, name := range set.Names() {
		_, err := f.catalog.Upsert(context.Background(), name, set[name].Cast)
		require.NoError(t, err)
	}
}

// stored returns the raw stored values of r keyed by property name.
func (f *fixture) stored(t *testing.T, r types.Record) map[string]*string {
	t.Helper()
	rows, err := f.values.FetchForEntity(context.Background(), types.EntityRef(r))
	require.NoError(t, err)
	out := make(map[string]*string, len(rows))
	for _, row := range rows {
		out[row.Name()] = row.Value
	}
	return out
}

// hasValue reports whether any stored row of r holds value.
func (f *fixture) hasValue(t *testing.T, r types.Record, value string) bool {
	t.Helper()
	for _, v := range f.stored(t, r) {
		if v != nil && *v == value {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }
