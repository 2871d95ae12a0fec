package seeder

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakeseed/internal/config"
	"fakeseed/internal/core/apperror"
	"fakeseed/internal/core/id"
	"fakeseed/internal/domain/catalogs"
	"fakeseed/internal/domain/catalogs/nomenclature"
	"fakeseed/internal/fake"
	"fakeseed/internal/infrastructure/storage/sqlite"
)

func newSeeder(seed uint64) *Seeder {
	return New(fake.New(seed), WithRand(rand.New(rand.NewPCG(seed, seed))))
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sqlite.Open(context.Background(), sqlite.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlite.NewStore(db)
}

func TestSeeder_RunDefaultPlan(t *testing.T) {
	ctx := context.Background()
	s := newSeeder(21)
	store := newStore(t)
	plan := config.DefaultPlan()

	ic, err := s.Run(ctx, store, plan, true)
	require.NoError(t, err)

	for _, entry := range plan.Entities {
		schema, err := s.Registry().Schema(entry.Entity)
		require.NoError(t, err)

		ids, err := store.Values(ctx, schema, "id")
		require.NoError(t, err)
		assert.Len(t, ids, entry.Count, entry.Entity)
		assert.Len(t, ic.Get(entry.Entity), entry.Count, entry.Entity)
	}

	units := map[any]bool{}
	for _, u := range ic.Get(catalogs.Unit) {
		units[u] = true
	}
	for _, instance := range ic.Get(catalogs.Nomenclature) {
		n := instance.(*nomenclature.Nomenclature)
		assert.True(t, units[n.BaseUnit], "base unit comes from the populated units")
		assert.False(t, id.IsNil(n.ID), "identifier assigned on stage")
	}
}

func TestSeeder_RunTwiceAppends(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	plan := &config.Plan{Entities: []config.PlanEntry{{Entity: catalogs.Currency, Count: 2}}}

	_, err := newSeeder(1).Run(ctx, store, plan, true)
	require.NoError(t, err)
	_, err = newSeeder(2).Run(ctx, store, plan, true)
	require.NoError(t, err)

	schema, err := newSeeder(1).Registry().Schema(catalogs.Currency)
	require.NoError(t, err)
	ids, err := store.Values(ctx, schema, "id")
	require.NoError(t, err)
	assert.Len(t, ids, 4)

	codes, err := store.Values(ctx, schema, "code")
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"CUR-00001", "CUR-00002", "CUR-00003", "CUR-00004"}, codes)
}

func TestSeeder_Reproducible(t *testing.T) {
	names := func() []string {
		plan := &config.Plan{Entities: []config.PlanEntry{
			{Entity: catalogs.Unit, Count: 4},
			{Entity: catalogs.Nomenclature, Count: 6},
		}}
		ic, err := newSeeder(99).Run(context.Background(), newStore(t), plan, true)
		require.NoError(t, err)

		var out []string
		for _, instance := range ic.Get(catalogs.Nomenclature) {
			n := instance.(*nomenclature.Nomenclature)
			out = append(out, n.Name+"/"+n.BaseUnit.Symbol)
		}
		return out
	}

	assert.Equal(t, names(), names())
}

func TestSeeder_PlanValues(t *testing.T) {
	plan, err := config.ParsePlan([]byte(`
entities:
  - entity: unit
    count: 2
  - entity: nomenclature
    count: 3
    values:
      name: Widget
      weight: 1.5
      manufacturer: null
`))
	require.NoError(t, err)

	ic, err := newSeeder(4).Run(context.Background(), newStore(t), plan, true)
	require.NoError(t, err)

	for _, instance := range ic.Get(catalogs.Nomenclature) {
		n := instance.(*nomenclature.Nomenclature)
		assert.Equal(t, "Widget", n.Name)
		assert.True(t, decimal.RequireFromString("1.5").Equal(n.Weight))
		assert.Nil(t, n.Manufacturer)
	}
}

func TestSeeder_PopulatorErrors(t *testing.T) {
	tests := []struct {
		name  string
		entry config.PlanEntry
		check func(error) bool
	}{
		{
			name:  "unknown entity",
			entry: config.PlanEntry{Entity: "invoice", Count: 1},
			check: apperror.IsUnknownEntity,
		},
		{
			name:  "unknown field",
			entry: config.PlanEntry{Entity: catalogs.Unit, Count: 1, Values: map[string]any{"colour": "red"}},
			check: func(err error) bool { return apperror.HasCode(err, apperror.CodeUnknownField) },
		},
		{
			name:  "bad decimal",
			entry: config.PlanEntry{Entity: catalogs.Nomenclature, Count: 1, Values: map[string]any{"weight": "heavy"}},
			check: func(err error) bool { return apperror.HasCode(err, apperror.CodeInvalidValue) },
		},
		{
			name:  "association value",
			entry: config.PlanEntry{Entity: catalogs.Nomenclature, Count: 1, Values: map[string]any{"baseUnit": "kg"}},
			check: apperror.IsConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newSeeder(1).Populator(&config.Plan{Entities: []config.PlanEntry{tt.entry}})
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestLiteral(t *testing.T) {
	s := newSeeder(1)
	schema, err := s.Registry().Schema(catalogs.Nomenclature)
	require.NoError(t, err)

	v, err := literal(schema, "weight", 2)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2).Equal(v.(decimal.Decimal)))

	v, err = literal(schema, "id", "0190a3e4-7c1d-7b3e-9f7a-2d4c5e6f7a8b")
	require.NoError(t, err)
	assert.Equal(t, "0190a3e4-7c1d-7b3e-9f7a-2d4c5e6f7a8b", v.(interface{ String() string }).String())

	v, err = literal(schema, "article", "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", v)

	v, err = literal(schema, "baseUnit", nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
