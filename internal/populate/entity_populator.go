package populate

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"fakeseed/internal/core/apperror"
	"fakeseed/internal/core/id"
	"fakeseed/internal/metadata"
	"fakeseed/pkg/logger"
)

// Modifier runs after the fields of a new instance are filled, in registration order.
// It mutates instance directly.
type Modifier func(instance any, ic *InsertionContext) error

// Option configures an EntityPopulator.
type Option func(*EntityPopulator)

// WithResolverRand sets the random source used by association resolvers and
// identifier generation.
func WithResolverRand(rng *rand.Rand) Option {
	return func(ep *EntityPopulator) { ep.rng = rng }
}

// EntityPopulator creates instances of one entity type.
type EntityPopulator struct {
	schema     metadata.Schema
	formatters *Formatters
	modifiers  []Modifier
	rng        *rand.Rand
}

// NewEntityPopulator binds a populator to schema for its whole lifetime.
func NewEntityPopulator(schema metadata.Schema, opts ...Option) *EntityPopulator {
	ep := &EntityPopulator{
		schema:     schema,
		formatters: NewFormatters(),
	}
	for _, opt := range opts {
		opt(ep)
	}
	if ep.rng == nil {
		ep.rng = newRand()
	}
	return ep
}

func (ep *EntityPopulator) Schema() metadata.Schema { return ep.schema }

func (ep *EntityPopulator) EntityName() string { return ep.schema.EntityName() }

// SetFieldFormatters replaces the formatter mapping.
func (ep *EntityPopulator) SetFieldFormatters(fs *Formatters) {
	if fs == nil {
		fs = NewFormatters()
	}
	ep.formatters = fs
}

func (ep *EntityPopulator) FieldFormatters() *Formatters { return ep.formatters }

// MergeFieldFormattersWith overwrites same-named formatters with those of fs and keeps the rest.
func (ep *EntityPopulator) MergeFieldFormattersWith(fs *Formatters) {
	ep.formatters.Merge(fs)
}

func (ep *EntityPopulator) SetModifiers(modifiers []Modifier) {
	ep.modifiers = append([]Modifier(nil), modifiers...)
}

func (ep *EntityPopulator) Modifiers() []Modifier { return ep.modifiers }

// MergeModifiersWith appends modifiers after the existing ones.
func (ep *EntityPopulator) MergeModifiersWith(modifiers []Modifier) {
	ep.modifiers = append(ep.modifiers, modifiers...)
}

// GuessFieldFormatters infers formatters from the schema alone.
//
// Scalar fields other than identifiers try lib's name guesser, then its type guesser;
// the name guesser declines names whose usual value does not fit the field's type.
// A field neither matches gets no formatter and keeps its zero value. Every
// single-valued association gets its own AssociationResolver. Collection-valued
// associations are never formatted.
func (ep *EntityPopulator) GuessFieldFormatters(lib ValueLibrary) *Formatters {
	formatters := NewFormatters()

	for _, field := range ep.schema.Fields() {
		if field.Identifier || !ep.schema.HasField(field.Name) {
			continue
		}
		if gen, ok := lib.GuessByName(field); ok {
			formatters.Set(field.Name, Generated(gen))
			continue
		}
		if gen, ok := lib.GuessByType(field); ok {
			formatters.Set(field.Name, Generated(gen))
		}
	}

	for _, assoc := range ep.schema.Associations() {
		if assoc.IsCollection() {
			continue
		}
		resolver := NewAssociationResolver(assoc.Target, assoc.IsUnique(), assoc.Optional, ep.rng)
		formatters.Set(assoc.Name, StatefulResolver(resolver))
	}

	return formatters
}

// Execute creates one instance, fills it, optionally assigns unique identifiers and
// stages it in store. Formatter and modifier errors are returned unchanged.
func (ep *EntityPopulator) Execute(ctx context.Context, store Store, ic *InsertionContext, generateID bool) (any, error) {
	if store == nil {
		return nil, apperror.NewConfiguration("no store passed to entity populator").
			WithDetail("entity", ep.EntityName())
	}

	instance := ep.schema.NewInstance()

	if err := ep.fillFields(instance, ic); err != nil {
		return nil, err
	}
	if err := ep.callModifiers(instance, ic); err != nil {
		return nil, err
	}

	if generateID {
		for _, name := range ep.schema.Identifiers() {
			value, err := ep.generateID(ctx, store, ic, name)
			if err != nil {
				return nil, err
			}
			if err := ep.schema.SetFieldValue(instance, name, value); err != nil {
				return nil, err
			}
		}
	}

	if err := store.Stage(ctx, ep.schema, instance); err != nil {
		return nil, fmt.Errorf("stage %s: %w", ep.EntityName(), err)
	}

	logger.Debug(ctx, "instance staged", "index", ic.Len(ep.EntityName()))
	return instance, nil
}

func (ep *EntityPopulator) fillFields(instance any, ic *InsertionContext) error {
	for _, name := range ep.formatters.Names() {
		formatter, _ := ep.formatters.Get(name)
		if formatter.IsZero() {
			continue
		}
		value, err := formatter.Evaluate(ic, instance)
		if err != nil {
			return err
		}
		if err := ep.schema.SetFieldValue(instance, name, value); err != nil {
			return err
		}
	}
	return nil
}

func (ep *EntityPopulator) callModifiers(instance any, ic *InsertionContext) error {
	for _, modifier := range ep.modifiers {
		if err := modifier(instance, ic); err != nil {
			return err
		}
	}
	return nil
}

// generateID draws a value for the identifier field that neither a persisted
// instance nor an instance created earlier in this run uses yet.
func (ep *EntityPopulator) generateID(ctx context.Context, store Store, ic *InsertionContext, field string) (any, error) {
	existing, err := store.Values(ctx, ep.schema, field)
	if err != nil {
		return nil, fmt.Errorf("load %s.%s values: %w", ep.EntityName(), field, err)
	}
	for _, instance := range ic.Get(ep.EntityName()) {
		v, err := ep.schema.FieldValue(instance, field)
		if err != nil {
			return nil, err
		}
		existing = append(existing, v)
	}

	def, _ := ep.schema.Field(field)
	value, err := id.Unique(ep.rng, identifierKind(def.Type), identifierRange(def), existing)
	if err != nil {
		return nil, apperror.NewConfiguration(fmt.Sprintf("no free identifier for %s.%s", ep.EntityName(), field)).
			WithDetail("entity", ep.EntityName()).
			WithDetail("field", field).
			WithDetail("taken", len(existing)).
			WithCause(err)
	}
	return value, nil
}

func identifierKind(t metadata.FieldType) id.Kind {
	switch t {
	case metadata.TypeUUID:
		return id.KindUUID
	case metadata.TypeString, metadata.TypeText:
		return id.KindString
	default:
		return id.KindInt
	}
}

// identifierRange bounds generated identifiers to what def's column holds.
func identifierRange(def metadata.FieldDef) id.Range {
	switch def.Type {
	case metadata.TypeTinyInt:
		return id.Range{Max: math.MaxInt8}
	case metadata.TypeSmallInt:
		return id.Range{Max: math.MaxInt16}
	case metadata.TypeString:
		return id.Range{Length: def.Length}
	default:
		return id.Range{}
	}
}
