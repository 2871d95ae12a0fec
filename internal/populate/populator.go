package populate

import (
	"context"
	"math/rand/v2"
	"time"

	"fakeseed/internal/core/apperror"
	appctx "fakeseed/internal/core/context"
	"fakeseed/internal/core/id"
	"fakeseed/internal/metadata"
	"fakeseed/pkg/logger"
)

// PopulatorOption configures a Populator.
type PopulatorOption func(*Populator)

// WithProvider sets the metadata provider used by Add.
func WithProvider(provider metadata.Provider) PopulatorOption {
	return func(p *Populator) { p.provider = provider }
}

// WithStore sets the default store for Execute.
func WithStore(store Store) PopulatorOption {
	return func(p *Populator) { p.store = store }
}

// WithRand sets the random source handed to the entity populators Add creates.
func WithRand(rng *rand.Rand) PopulatorOption {
	return func(p *Populator) { p.rng = rng }
}

// WithObserver sets a progress observer.
func WithObserver(observer Observer) PopulatorOption {
	return func(p *Populator) { p.observer = observer }
}

// EntityOption customizes one registration.
type EntityOption func(*registration)

// WithFormatters overrides inferred formatters with fs.
func WithFormatters(fs *Formatters) EntityOption {
	return func(r *registration) { r.formatters = fs }
}

// WithModifiers appends modifiers to the entity populator.
func WithModifiers(modifiers ...Modifier) EntityOption {
	return func(r *registration) { r.modifiers = append(r.modifiers, modifiers...) }
}

// WithGeneratedID makes the run assign unique identifiers instead of leaving them to the store.
func WithGeneratedID() EntityOption {
	return func(r *registration) { r.generateID = true }
}

type registration struct {
	populator  *EntityPopulator
	count      int
	generateID bool

	formatters *Formatters
	modifiers  []Modifier
}

// Populator populates several entity types in registration order.
type Populator struct {
	library  ValueLibrary
	provider metadata.Provider
	store    Store
	rng      *rand.Rand
	observer Observer

	order   []string
	entries map[string]*registration
}

// New creates a Populator that guesses formatters with library.
func New(library ValueLibrary, opts ...PopulatorOption) *Populator {
	p := &Populator{
		library:  library,
		observer: nopObserver{},
		entries:  make(map[string]*registration),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		p.rng = newRand()
	}
	return p
}

// Add registers count instances of the entity named name, looked up through the
// metadata provider.
func (p *Populator) Add(name string, count int, opts ...EntityOption) error {
	if p.provider == nil {
		return apperror.NewConfiguration("no metadata provider passed to populator").
			WithDetail("entity", name)
	}
	schema, err := p.provider.Schema(name)
	if err != nil {
		return err
	}
	return p.AddPopulator(NewEntityPopulator(schema, WithResolverRand(p.rng)), count, opts...)
}

// AddPopulator registers count instances produced by ep.
//
// Formatters are always re-guessed first, even if ep already had some; custom
// formatters then override them and custom modifiers are appended. Registering the
// same entity again replaces the previous registration but keeps its position.
func (p *Populator) AddPopulator(ep *EntityPopulator, count int, opts ...EntityOption) error {
	if ep == nil {
		return apperror.NewConfiguration("nil entity populator")
	}
	if count < 0 {
		return apperror.NewConfiguration("negative instance count").
			WithDetail("entity", ep.EntityName()).
			WithDetail("count", count)
	}

	reg := &registration{populator: ep, count: count}
	for _, opt := range opts {
		opt(reg)
	}

	ep.SetFieldFormatters(ep.GuessFieldFormatters(p.library))
	if reg.formatters.Len() > 0 {
		ep.MergeFieldFormattersWith(reg.formatters)
	}
	ep.MergeModifiersWith(reg.modifiers)

	name := ep.EntityName()
	if _, exists := p.entries[name]; !exists {
		p.order = append(p.order, name)
	}
	p.entries[name] = reg
	return nil
}

// Entities returns registered entity names in population order.
func (p *Populator) Entities() []string {
	return append([]string(nil), p.order...)
}

// Count returns the requested instance count for name.
func (p *Populator) Count(name string) int {
	if reg, ok := p.entries[name]; ok {
		return reg.count
	}
	return 0
}

// EntityPopulator returns the populator registered for name.
func (p *Populator) EntityPopulator(name string) (*EntityPopulator, bool) {
	reg, ok := p.entries[name]
	if !ok {
		return nil, false
	}
	return reg.populator, true
}

// Execute populates every registered entity and returns the created instances.
//
// store overrides the default store; with neither, Execute fails with a configuration
// error. Each entity is flushed before the next one starts. A failure aborts the run;
// entities flushed before it stay committed and instances staged since the last flush
// are discarded when store is a Discarder.
func (p *Populator) Execute(ctx context.Context, store Store) (*InsertionContext, error) {
	if store == nil {
		store = p.store
	}
	if store == nil {
		return nil, apperror.NewConfiguration("no store passed to populator")
	}

	ctx = appctx.WithRun(ctx, &appctx.RunContext{RunID: id.New().String()})
	logger.Info(ctx, "population started", "entities", len(p.order))

	inserted := NewInsertionContext()
	for _, name := range p.order {
		reg := p.entries[name]
		entityCtx := appctx.WithEntity(ctx, name)
		started := time.Now()

		for i := 0; i < reg.count; i++ {
			instance, err := reg.populator.Execute(entityCtx, store, inserted, reg.generateID)
			if err != nil {
				logger.Error(entityCtx, "population aborted", "index", i, "error", err)
				discard(entityCtx, store)
				return nil, err
			}
			inserted.Append(name, instance)
			p.observer.InstancePopulated(name)
		}

		if err := store.Flush(entityCtx); err != nil {
			logger.Error(entityCtx, "flush failed", "error", err)
			discard(entityCtx, store)
			return nil, err
		}

		elapsed := time.Since(started)
		p.observer.EntityFlushed(name, reg.count, elapsed)
		logger.Info(entityCtx, "entity populated", "count", reg.count, "elapsed", elapsed)
	}

	logger.Info(ctx, "population finished", "instances", inserted.Total())
	return inserted, nil
}

// discard drops what an aborted run left staged so the store can be reused.
func discard(ctx context.Context, store Store) {
	d, ok := store.(Discarder)
	if !ok {
		return
	}
	if n := d.Discard(ctx); n > 0 {
		logger.Warn(ctx, "discarded staged instances", "count", n)
	}
}
