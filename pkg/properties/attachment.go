package properties

import (
	"context"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Attachment gives a record a lazily loaded Bag whose lifetime follows the
// record: Refresh when the record is reloaded, Saved (or SaveRecord) when it
// is saved. Record types embed an *Attachment next to their own fields.
type Attachment struct {
	engine *Engine
	owner  types.Record
	bag    *Bag
}

// NewAttachment binds owner to engine. No values are loaded until Bag.
func NewAttachment(engine *Engine, owner types.Record) *Attachment {
	return &Attachment{engine: engine, owner: owner}
}

// Bag returns the owner's bag, loading it on first use. The same bag is
// returned until Refresh or a successful Saved.
func (a *Attachment) Bag(ctx context.Context) (*Bag, error) {
	if a.bag != nil {
		return a.bag, nil
	}
	bag, err := a.engine.NewBag(ctx, a.owner)
	if err != nil {
		return nil, err
	}
	a.bag = bag
	return bag, nil
}

// Materialized reports whether the bag has been loaded.
func (a *Attachment) Materialized() bool {
	return a.bag != nil
}

// Refresh discards the bag; the next Bag call reloads it.
func (a *Attachment) Refresh() {
	a.bag = nil
}

// Saved saves a loaded bag and discards it. Without a loaded bag it does
// nothing. On error the bag is kept so the caller can retry.
func (a *Attachment) Saved(ctx context.Context) error {
	if a.bag == nil {
		return nil
	}
	if err := a.bag.Save(ctx); err != nil {
		return err
	}
	a.bag = nil
	return nil
}

// SaveRecord runs persist, which stores the owner itself, then Saved. Values
// are written against the owner's identity after persist, so a newly created
// record keeps the properties assigned before it had an id.
func (a *Attachment) SaveRecord(ctx context.Context, persist func(context.Context) error) error {
	if err := persist(ctx); err != nil {
		return err
	}
	return a.Saved(ctx)
}
