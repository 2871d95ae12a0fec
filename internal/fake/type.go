package fake

import (
	"math"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"fakeseed/internal/core/types"
	"fakeseed/internal/metadata"
)

const defaultStringLength = 255

// TypeGuesser picks a generator from a field's declared type.
type TypeGuesser struct {
	f *gofakeit.Faker
}

func NewTypeGuesser(f *gofakeit.Faker) *TypeGuesser {
	return &TypeGuesser{f: f}
}

// GuessFormat returns nil for types it cannot fill.
func (g *TypeGuesser) GuessFormat(field metadata.FieldDef) Generator {
	f := g.f
	switch field.Type {
	case metadata.TypeBoolean:
		return func() any { return f.Bool() }
	case metadata.TypeTinyInt:
		return func() any { return f.IntRange(0, math.MaxInt8) }
	case metadata.TypeSmallInt:
		return func() any { return f.IntRange(0, math.MaxInt16) }
	case metadata.TypeInteger:
		return func() any { return f.IntRange(0, math.MaxInt32) }
	case metadata.TypeBigInt:
		return func() any { return int64(f.IntRange(0, math.MaxInt)) }
	case metadata.TypeNumber:
		return func() any { return f.Float64Range(0, 1e6) }
	case metadata.TypeMoney:
		return func() any { return types.NewMoney(f.Price(0, 10000), types.DefaultMoneyPlaces) }
	case metadata.TypeString:
		return g.text(field.Length)
	case metadata.TypeText:
		return func() any { return f.Paragraph(1, 4, 12, " ") }
	case metadata.TypeDate:
		return func() any { return pastDate(f, 10) }
	case metadata.TypeUUID:
		return func() any { return uuid.MustParse(f.UUID()) }
	}
	return nil
}

func (g *TypeGuesser) text(length int) Generator {
	if length <= 0 {
		length = defaultStringLength
	}
	if length < 5 {
		return func() any { return g.f.LetterN(uint(length)) }
	}

	words := min(max(length/8, 1), 12)
	return func() any { return truncate(g.f.Sentence(words), length) }
}
