package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropertySetNames(t *testing.T) {
	set := PropertySet{
		"nickname": {Cast: CastString},
		"homepage": {Cast: CastString, Default: "www.example.site"},
		"age":      {Cast: CastInteger},
	}
	assert.Equal(t, []string{"age", "homepage", "nickname"}, set.Names())
	assert.Empty(t, PropertySet{}.Names())
}

func TestPropertySetDefaults(t *testing.T) {
	set := PropertySet{
		"nickname": {Cast: CastString},
		"homepage": {Cast: CastString, Default: "www.example.site"},
	}
	defaults := set.Defaults()
	assert.Len(t, defaults, 2)
	assert.Nil(t, defaults["nickname"])
	assert.Equal(t, "www.example.site", defaults["homepage"])
}

func TestPropertySetHas(t *testing.T) {
	set := PropertySet{"nickname": {Cast: CastString}}
	assert.True(t, set.Has("nickname"))
	assert.False(t, set.Has("missing_property"))

	var empty PropertySet
	assert.False(t, empty.Has("nickname"))
}

func TestPropertySetValidate(t *testing.T) {
	tests := []struct {
		name    string
		set     PropertySet
		wantErr error
	}{
		{"empty set", PropertySet{}, nil},
		{"all casts", PropertySet{
			"a": {Cast: CastString}, "b": {Cast: CastInteger}, "c": {Cast: CastFloat},
			"d": {Cast: CastBoolean}, "e": {Cast: CastDatetime}, "f": {Cast: CastDate},
			"g": {Cast: CastJSON},
		}, nil},
		{"empty name", PropertySet{"": {Cast: CastString}}, ErrInvalidName},
		{"unknown cast", PropertySet{"x": {Cast: "decimal"}}, ErrInvalidCast},
		{"missing cast", PropertySet{"x": {}}, ErrInvalidCast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestPropertyRef(t *testing.T) {
	p := &Property{ID: 7, Name: "nickname", Cast: CastString}
	assert.Equal(t, Ref{Type: PropertyRefType, ID: 7}, p.Ref())
	assert.Equal(t, "property#7", p.Ref().String())
}

func TestMissingPropertyDefinitionError(t *testing.T) {
	var err error = &MissingPropertyDefinitionError{Name: "nickname"}
	assert.EqualError(t, err, "missing nickname property")
	assert.True(t, errors.Is(err, ErrMissingPropertyDefinition))

	var target *MissingPropertyDefinitionError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, "nickname", target.Name)
}
