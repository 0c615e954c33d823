package properties

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

func TestBagSavesChanges(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	bag.Set("nickname", "test_nickname_property")
	require.NoError(t, bag.Save(ctx))

	assert.Equal(t, "test_nickname_property", bag.Get("nickname"))
	assert.True(t, f.hasValue(t, m, "test_nickname_property"))
}

func TestBagIgnoresUndeclaredProperties(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	bag.Set("missing_property", "not exists!")
	require.NoError(t, bag.Save(ctx))

	assert.Nil(t, bag.Get("missing_property"))
	_, ok := bag.Lookup("missing_property")
	assert.False(t, ok)
	assert.False(t, f.hasValue(t, m, "not exists!"))
}

func TestBagCastsValues(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	bag.Set("float_property", " 100 ")
	bag.Set("datetime_property", "06.10.2021 00:00:00")
	require.NoError(t, bag.Save(ctx))

	fresh, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	assert.Equal(t, 100.0, fresh.Get("float_property"))
	dt, ok := fresh.Get("datetime_property").(time.Time)
	require.True(t, ok, "datetime property should hydrate as time.Time")
	assert.True(t, dt.Equal(time.Date(2021, 10, 6, 0, 0, 0, 0, time.UTC)))

	stored := f.stored(t, m)
	assert.Equal(t, "100", *stored["float_property"])
}

func TestBagMassAssignment(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	bag.SetMany(map[string]any{
		"nickname":           "Cool nickname",
		"float_property":     "555.55",
		"non_exist_property": "this property will not be saved",
	})
	require.NoError(t, bag.Save(ctx))

	assert.True(t, f.hasValue(t, m, "Cool nickname"))
	assert.True(t, f.hasValue(t, m, "555.55"))
	assert.False(t, f.hasValue(t, m, "this property will not be saved"))
}

func TestBagDefaults(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	assert.Equal(t, "Default string", bag.Get("property_with_default_value"))
	assert.Nil(t, bag.Get("nickname"))
	v, ok := bag.Lookup("nickname")
	assert.True(t, ok)
	assert.Nil(t, v)

	require.NoError(t, bag.Save(ctx))
	assert.False(t, f.hasValue(t, m, "Default string"))
	assert.Empty(t, f.stored(t, m))
	assert.Zero(t, f.store.saves)
}

func TestBagDefaultIsOverriddenOnce(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	bag.Set("property_with_default_value", "custom")
	require.NoError(t, bag.Save(ctx))

	bag, err = f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, "custom", bag.Get("property_with_default_value"))

	// Once a row exists, going back to the default value is a change.
	bag.Set("property_with_default_value", "Default string")
	require.NoError(t, bag.Save(ctx))
	assert.Equal(t, "Default string", *f.stored(t, m)["property_with_default_value"])
}

func TestBagScenarioNicknameHomepage(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := &testModel{id: 1, props: types.PropertySet{
		"nickname": {Cast: types.CastString},
		"homepage": {Cast: types.CastString, Default: "www.example.site"},
	}}
	f.makeProperties(t, m.props)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	assert.Nil(t, bag.Get("nickname"))
	assert.Equal(t, "www.example.site", bag.Get("homepage"))

	bag.Set("nickname", "neo")
	require.NoError(t, bag.Save(ctx))

	stored := f.stored(t, m)
	require.Len(t, stored, 1)
	assert.Equal(t, "neo", *stored["nickname"])
	assert.Equal(t, "neo", bag.Get("nickname"))
	assert.Equal(t, 1, f.store.saves)
}

func TestBagResaveWritesNothing(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	bag.Set("nickname", "neo")
	bag.Set("float_property", " 100 ")
	require.NoError(t, bag.Save(ctx))
	assert.Equal(t, 2, f.store.saves)

	require.NoError(t, bag.Save(ctx))
	assert.Equal(t, 2, f.store.saves, "same bag")

	fresh, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	require.NoError(t, fresh.Save(ctx))
	assert.Equal(t, 2, f.store.saves, "fresh bag")
}

func TestBagLooseEquality(t *testing.T) {
	tests := []struct {
		name      string
		prop      string
		stored    any
		assign    any
		wantWrite bool
	}{
		{"number equals numeric string", "float_property", 100.0, "100", false},
		{"padded numeric string", "float_property", 100.0, " 100.0 ", false},
		{"different number", "float_property", 100.0, "100.5", true},
		{"nil is not empty string", "nickname", nil, "", true},
		{"same string", "nickname", "neo", "neo", false},
		{"same instant", "datetime_property", "2021-10-06T00:00:00Z", time.Date(2021, 10, 6, 2, 0, 0, 0, time.FixedZone("CEST", 7200)), false},
		{"different instant", "datetime_property", "2021-10-06T00:00:00Z", "07.10.2021 00:00:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := setupEngine(t)
			m := f.makeModel(t, 1)

			prop, err := f.catalog.FindByName(ctx, tt.prop)
			require.NoError(t, err)
			row := &types.PropertyValue{Entity: types.EntityRef(m), Property: prop.Ref(), Definition: prop}
			row.Assign(tt.stored)
			require.NoError(t, f.values.Save(ctx, row))

			bag, err := f.engine.NewBag(ctx, m)
			require.NoError(t, err)
			bag.Set(tt.prop, tt.assign)
			require.NoError(t, bag.Save(ctx))

			if tt.wantWrite {
				assert.Equal(t, 1, f.store.saves)
			} else {
				assert.Zero(t, f.store.saves)
			}
		})
	}
}

func TestBagReadDoesNotCreateRows(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	for _, name := range bag.Names() {
		bag.Get(name)
	}

	assert.Zero(t, f.store.saves)
	assert.Empty(t, f.stored(t, m))
}

func TestBagMissingPropertyDefinition(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := &testModel{id: 1, props: types.PropertySet{
		"nickname": {Cast: types.CastString},
	}}

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	bag.Set("nickname", "new nickname")

	err = bag.Save(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingPropertyDefinition)

	var missing *types.MissingPropertyDefinitionError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "nickname", missing.Name)
	assert.Equal(t, "missing nickname property", err.Error())
	assert.Empty(t, f.stored(t, m))
}

func TestBagMissingDefinitionForUnchangedDefault(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := &testModel{id: 1, props: types.PropertySet{
		"homepage": {Cast: types.CastString, Default: "www.example.site"},
	}}

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	assert.ErrorIs(t, bag.Save(ctx), types.ErrMissingPropertyDefinition)
}

func TestBagSaveForgetsCacheFirst(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := &testModel{id: 3, props: types.PropertySet{"nickname": {Cast: types.CastString}}}

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	bag.Set("nickname", "neo")

	require.Error(t, bag.Save(ctx))
	assert.Equal(t, []string{
		"remember properties_test_model_3",
		"forget properties_test_model_3",
	}, f.cache.ops)
}

func TestBagUsesCache(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	_, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	_, err = f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.fetches)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	bag.Set("nickname", "neo")
	require.NoError(t, bag.Save(ctx))

	fresh, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 2, f.store.fetches)
	assert.Equal(t, "neo", fresh.Get("nickname"))
}

func TestBagDoesNotMutateCachedRows(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	bag.Set("nickname", "neo")
	require.NoError(t, bag.Save(ctx))

	first, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	second, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	first.persisted["nickname"].Value = strPtr("mutated")
	assert.Equal(t, "neo", *second.persisted["nickname"].Value)
}

func TestBagKeyPrefix(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t, WithKeyPrefix("custom"))
	m := f.makeModel(t, 42)

	_, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, []string{"remember custom_test_model_42"}, f.cache.ops)
	assert.Equal(t, "custom_test_model_42", f.engine.CacheKey(m))
}

func TestBagIntegerReadsDecimal(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := &testModel{id: 1, props: types.PropertySet{
		"visits": {Cast: types.CastInteger},
		"stars":  {Cast: types.CastInteger},
	}}
	f.makeProperties(t, m.props)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	bag.Set("visits", "010")
	bag.Set("stars", "08")
	require.NoError(t, bag.Save(ctx))

	stored := f.stored(t, m)
	assert.Equal(t, "10", *stored["visits"])
	assert.Equal(t, "8", *stored["stars"])

	fresh, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, int64(10), fresh.Get("visits"))
	assert.Equal(t, int64(8), fresh.Get("stars"))
	assert.Equal(t, int64(10), fresh.Int("visits"))
}

func TestBagCastFallback(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	prop, err := f.catalog.FindByName(ctx, "float_property")
	require.NoError(t, err)
	require.NoError(t, f.values.Save(ctx, &types.PropertyValue{
		Entity:   types.EntityRef(m),
		Property: prop.Ref(),
		Value:    strPtr("not a number"),
	}))

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, "not a number", bag.Get("float_property"))

	require.NoError(t, bag.Save(ctx))
	assert.Zero(t, f.store.saves)
}

func TestBagUndeclaredPersistedRows(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	legacy, err := f.catalog.Upsert(ctx, "legacy", types.CastInteger)
	require.NoError(t, err)
	require.NoError(t, f.values.Save(ctx, &types.PropertyValue{
		Entity:   types.EntityRef(m),
		Property: legacy.Ref(),
		Value:    strPtr("7"),
	}))

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, int64(7), bag.Get("legacy"))
	assert.False(t, bag.Has("legacy"))

	bag.Set("legacy", 8)
	assert.Equal(t, int64(7), bag.Get("legacy"))

	require.NoError(t, bag.Save(ctx))
	assert.Zero(t, f.store.saves)
}

func TestBagNames(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"datetime_property",
		"float_property",
		"nickname",
		"property_with_default_value",
	}, bag.Names())
	assert.True(t, bag.Has("nickname"))
	assert.False(t, bag.Has("homepage"))

	values := bag.Values()
	values["nickname"] = "changed"
	assert.Nil(t, bag.Get("nickname"))
}

func TestBagTypedGetters(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := &testModel{id: 1, props: types.PropertySet{
		"nickname": {Cast: types.CastString},
		"score":    {Cast: types.CastFloat},
		"visits":   {Cast: types.CastInteger},
		"active":   {Cast: types.CastBoolean},
		"seen_at":  {Cast: types.CastDatetime},
	}}

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	assert.Equal(t, "", bag.String("nickname"))
	assert.Zero(t, bag.Float("score"))
	assert.True(t, bag.Time("seen_at").IsZero())

	bag.SetMany(map[string]any{
		"nickname": "neo",
		"score":    " 99.5 ",
		"visits":   "12",
		"active":   "true",
		"seen_at":  "06.10.2021 00:00:00",
	})

	assert.Equal(t, "neo", bag.String("nickname"))
	assert.Equal(t, 99.5, bag.Float("score"))
	assert.Equal(t, int64(12), bag.Int("visits"))
	assert.True(t, bag.Bool("active"))
	assert.True(t, bag.Time("seen_at").Equal(time.Date(2021, 10, 6, 0, 0, 0, 0, time.UTC)))

	bag.Set("visits", "many")
	assert.Zero(t, bag.Int("visits"))
}

func TestBagRecordWithoutIdentity(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 0)

	bag, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	assert.Zero(t, f.store.fetches)
	assert.Empty(t, f.cache.ops)

	bag.Set("nickname", "neo")
	assert.ErrorIs(t, bag.Save(ctx), types.ErrInvalidRef)
}

func TestNewBagRejectsInvalidDeclarations(t *testing.T) {
	f := setupEngine(t)
	m := &testModel{id: 1, props: types.PropertySet{"nickname": {Cast: "varchar"}}}

	_, err := f.engine.NewBag(context.Background(), m)
	assert.ErrorIs(t, err, types.ErrInvalidCast)
}

func TestBagsRacingOnNewPair(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)
	m := f.makeModel(t, 1)

	a, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)
	b, err := f.engine.NewBag(ctx, m)
	require.NoError(t, err)

	a.Set("nickname", "first")
	b.Set("nickname", "second")
	require.NoError(t, a.Save(ctx))
	require.NoError(t, b.Save(ctx))

	stored := f.stored(t, m)
	require.Len(t, stored, 1)
	assert.Equal(t, "second", *stored["nickname"])
}
