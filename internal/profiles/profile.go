// Package profiles is the sample record type of satchel: a named profile
// stored in the profiles table that carries dynamic properties.
package profiles

import (
	"context"

	"github.com/mesh-intelligence/satchel/internal/sqlstore"
	"github.com/mesh-intelligence/satchel/pkg/properties"
	"github.com/mesh-intelligence/satchel/pkg/types"
)

// RecordType is stored as the entity type of profile property values.
const RecordType = "profile"

// Declared is the property vocabulary of a profile.
var Declared = types.PropertySet{
	"nickname":     {Cast: types.CastString},
	"homepage":     {Cast: types.CastString, Default: "www.example.site"},
	"rating":       {Cast: types.CastFloat},
	"visits":       {Cast: types.CastInteger, Default: 0},
	"newsletter":   {Cast: types.CastBoolean, Default: false},
	"birthday":     {Cast: types.CastDate},
	"last_seen_at": {Cast: types.CastDatetime},
	"links":        {Cast: types.CastJSON},
}

func init() {
	properties.Register(RecordType, func() types.Record { return &Profile{} })
}

// Profile is a profiles row with its properties attached.
type Profile struct {
	sqlstore.ProfileRow

	props *properties.Attachment

	// declared overrides Declared for this instance when set.
	declared types.PropertySet
}

var (
	_ types.Record         = (*Profile)(nil)
	_ types.PropertySetter = (*Profile)(nil)
)

func (p *Profile) RecordType() string { return RecordType }

func (p *Profile) RecordID() int64 { return p.ID }

func (p *Profile) Properties() types.PropertySet {
	if p.declared != nil {
		return p.declared
	}
	return Declared
}

// SetProperties replaces the vocabulary of this profile only. A bag already
// loaded keeps the set it was built with until the profile is reloaded.
func (p *Profile) SetProperties(set types.PropertySet) {
	p.declared = set
}

// Bag returns the profile's properties, loading them on first use.
func (p *Profile) Bag(ctx context.Context) (*properties.Bag, error) {
	return p.props.Bag(ctx)
}
