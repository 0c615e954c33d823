package profiles

import (
	"context"

	"github.com/mesh-intelligence/satchel/internal/sqlstore"
	"github.com/mesh-intelligence/satchel/pkg/properties"
)

// Repository loads and saves profiles together with their properties.
type Repository struct {
	table  *sqlstore.ProfilesTable
	engine *properties.Engine
}

// NewRepository returns a repository over table whose profiles use engine.
func NewRepository(table *sqlstore.ProfilesTable, engine *properties.Engine) *Repository {
	return &Repository{table: table, engine: engine}
}

// New returns an unsaved profile named name.
func (r *Repository) New(name string) *Profile {
	return r.attach(&Profile{ProfileRow: sqlstore.ProfileRow{Name: name}})
}

// Get loads the profile with the given id, or returns types.ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (*Profile, error) {
	row, err := r.table.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.attach(&Profile{ProfileRow: *row}), nil
}

// List loads every profile ordered by id.
func (r *Repository) List(ctx context.Context) ([]*Profile, error) {
	rows, err := r.table.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.attach(&Profile{ProfileRow: *row}))
	}
	return out, nil
}

// Save stores the profile row, then its changed properties. A new profile
// gets its id before its properties are written.
func (r *Repository) Save(ctx context.Context, p *Profile) error {
	return p.props.SaveRecord(ctx, func(ctx context.Context) error {
		return r.table.Save(ctx, &p.ProfileRow)
	})
}

// Reload rereads the profile row and discards its loaded properties.
func (r *Repository) Reload(ctx context.Context, p *Profile) error {
	row, err := r.table.Get(ctx, p.ID)
	if err != nil {
		return err
	}
	p.ProfileRow = *row
	p.props.Refresh()
	return nil
}

func (r *Repository) attach(p *Profile) *Profile {
	p.props = properties.NewAttachment(r.engine, p)
	return p
}
