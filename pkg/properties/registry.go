package properties

import (
	"fmt"
	"sync"

	"github.com/mesh-intelligence/satchel/pkg/types"
)

// Prototype returns a zero record of a registered type. Only its declared
// property set is read.
type Prototype func() types.Record

// Registry lists the record types whose declared properties are bulk
// registered in the catalog by Fill.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	protos map[string]Prototype
}

// DefaultRegistry is the process-wide registry record packages add
// themselves to from init.
var DefaultRegistry = NewRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{protos: make(map[string]Prototype)}
}

// Register adds a record type under name. Registering a name again replaces
// its prototype and keeps its original position.
func (r *Registry) Register(name string, proto Prototype) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.protos[name]; !ok {
		r.order = append(r.order, name)
	}
	r.protos[name] = proto
}

// Register adds a record type to DefaultRegistry.
func Register(name string, proto Prototype) {
	DefaultRegistry.Register(name, proto)
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Declaration is one property declared by a registered record type.
type Declaration struct {
	Record string
	Name   string
	Cast   string
}

// Declarations returns every declared property of every registered record
// type, in registration order and by name within a record type. Nil
// prototypes and prototypes returning nil are skipped.
func (r *Registry) Declarations() ([]Declaration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Declaration
	for _, name := range r.order {
		proto := r.protos[name]
		if proto == nil {
			continue
		}
		record := proto()
		if record == nil {
			continue
		}
		set := record.Properties()
		if err := set.Validate(); err != nil {
			return nil, fmt.Errorf("record %s: %w", name, err)
		}
		for _, prop := range set.Names() {
			out = append(out, Declaration{Record: name, Name: prop, Cast: set[prop].Cast})
		}
	}
	return out, nil
}

// Collect merges the declared sets of every registered record type. A name
// declared by several record types takes the definition registered last.
func (r *Registry) Collect() (types.PropertySet, error) {
	decls, err := r.Declarations()
	if err != nil {
		return nil, err
	}
	set := make(types.PropertySet, len(decls))
	for _, d := range decls {
		set[d.Name] = types.Definition{Cast: d.Cast}
	}
	return set, nil
}
