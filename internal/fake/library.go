// Package fake supplies field value generators backed by gofakeit.
//
// Generators are matched first by field name (email, firstName, createdAt, ...)
// and then by declared field type. A single seeded faker drives every
// generator so a run is reproducible for a given seed.
package fake

import (
	"github.com/brianvoe/gofakeit/v7"

	"fakeseed/internal/metadata"
)

// Generator produces one value per call.
type Generator = func() any

// Library implements populate.ValueLibrary.
type Library struct {
	faker *gofakeit.Faker
	names *NameGuesser
	types *TypeGuesser
}

// New creates a Library seeded with seed. Seed 0 asks gofakeit for a random seed.
func New(seed uint64) *Library {
	f := gofakeit.New(seed)
	return &Library{
		faker: f,
		names: NewNameGuesser(f),
		types: NewTypeGuesser(f),
	}
}

// Faker exposes the underlying faker for custom formatters that want the same stream.
func (l *Library) Faker() *gofakeit.Faker { return l.faker }

func (l *Library) GuessByName(field metadata.FieldDef) (func() any, bool) {
	gen := l.names.GuessFormat(field)
	return gen, gen != nil
}

func (l *Library) GuessByType(field metadata.FieldDef) (func() any, bool) {
	gen := l.types.GuessFormat(field)
	return gen, gen != nil
}
