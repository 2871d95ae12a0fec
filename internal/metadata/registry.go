package metadata

import (
	"fakeseed/internal/core/apperror"
)

// Registry stores entity definitions in registration order.
type Registry struct {
	entities map[string]*EntityDef
	order    []string
}

var _ Provider = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]*EntityDef),
	}
}

// Register adds def, replacing any definition with the same name.
func (r *Registry) Register(def *EntityDef) {
	if _, exists := r.entities[def.name]; !exists {
		r.order = append(r.order, def.name)
	}
	r.entities[def.name] = def
}

// MustRegister inspects entity and registers the result.
func (r *Registry) MustRegister(entity any, opts ...InspectOption) *EntityDef {
	def := MustInspect(entity, opts...)
	r.Register(def)
	return def
}

func (r *Registry) Get(name string) (*EntityDef, bool) {
	d, ok := r.entities[name]
	return d, ok
}

// Schema implements Provider.
func (r *Registry) Schema(name string) (Schema, error) {
	d, ok := r.entities[name]
	if !ok {
		return nil, apperror.NewUnknownEntity(name)
	}
	return d, nil
}

func (r *Registry) List() []*EntityDef {
	list := make([]*EntityDef, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.entities[name])
	}
	return list
}
