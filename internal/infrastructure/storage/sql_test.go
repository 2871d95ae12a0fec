package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakeseed/internal/metadata"
)

type unit struct {
	ID   int64  `db:"id"`
	Code string `db:"code" meta:"size=8"`
	Note *string
}

type item struct {
	Key   uuid.UUID `meta:"id"`
	Name  string    `meta:"size=100"`
	Price float64
	Unit  *unit `meta:"optional"`
}

type pair struct {
	Left  int32 `meta:"id"`
	Right int32 `meta:"id"`
}

type bare struct {
	ID int64
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"id", "code", "note"}, Columns(metadata.MustInspect(&unit{})))
	assert.Equal(t, []string{"key", "name", "price", "unit_id"}, Columns(metadata.MustInspect(&item{})))
}

func TestCreateTableSQL(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		schema  metadata.Schema
		want    string
	}{
		{
			name:    "postgres identity",
			dialect: Postgres,
			schema:  metadata.MustInspect(&unit{}),
			want: "CREATE TABLE IF NOT EXISTS \"units\" (\n" +
				"\t\"id\" BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,\n" +
				"\t\"code\" VARCHAR(8) NOT NULL,\n" +
				"\t\"note\" TEXT\n)",
		},
		{
			name:    "sqlite identity",
			dialect: SQLite,
			schema:  metadata.MustInspect(&unit{}),
			want: "CREATE TABLE IF NOT EXISTS \"units\" (\n" +
				"\t\"id\" INTEGER PRIMARY KEY,\n" +
				"\t\"code\" TEXT NOT NULL,\n" +
				"\t\"note\" TEXT\n)",
		},
		{
			name:    "uuid key and association",
			dialect: Postgres,
			schema:  metadata.MustInspect(&item{}),
			want: "CREATE TABLE IF NOT EXISTS \"items\" (\n" +
				"\t\"key\" UUID PRIMARY KEY,\n" +
				"\t\"name\" VARCHAR(100) NOT NULL,\n" +
				"\t\"price\" DOUBLE PRECISION NOT NULL,\n" +
				"\t\"unit_id\" BIGINT\n)",
		},
		{
			name:    "composite key",
			dialect: SQLite,
			schema:  metadata.MustInspect(&pair{}),
			want: "CREATE TABLE IF NOT EXISTS \"pairs\" (\n" +
				"\t\"left\" INTEGER NOT NULL,\n" +
				"\t\"right\" INTEGER NOT NULL,\n" +
				"\tPRIMARY KEY (\"left\", \"right\")\n)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CreateTableSQL(tt.dialect, tt.schema))
		})
	}
}

func TestInsertChunks(t *testing.T) {
	schema := metadata.MustInspect(&unit{})
	records := []Record{
		{Values: map[string]any{"id": int64(1), "code": "kg", "note": nil}},
		{Values: map[string]any{"id": int64(2), "code": "pcs", "note": "piece"}},
		{Values: map[string]any{"id": int64(3), "code": "m", "note": nil}},
	}

	d := Postgres
	d.MaxParams = 6 // two rows per statement

	chunks, err := InsertChunks(d, schema, records)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	sql, args, err := chunks[0].ToSql()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "units" ("id","code","note") VALUES ($1,$2,$3),($4,$5,$6)`, sql)
	assert.Equal(t, []any{int64(1), "kg", nil, int64(2), "pcs", "piece"}, args)

	sql, args, err = chunks[1].ToSql()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "units" ("id","code","note") VALUES ($1,$2,$3)`, sql)
	assert.Equal(t, []any{int64(3), "m", nil}, args)
}

func TestInsertReturning(t *testing.T) {
	schema := metadata.MustInspect(&unit{})
	idField, _ := schema.Field("id")

	rec := Record{
		Values:    map[string]any{"code": "kg", "note": nil},
		Generated: []metadata.FieldDef{idField},
	}

	sql, args, err := InsertReturning(SQLite, schema, rec).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "units" ("code","note") VALUES (?,?) RETURNING "id"`, sql)
	assert.Equal(t, []any{"kg", nil}, args)
}

func TestInsertReturning_OnlyIdentifier(t *testing.T) {
	schema := metadata.MustInspect(&bare{})
	idField, _ := schema.Field("id")
	rec := Record{Values: map[string]any{}, Generated: []metadata.FieldDef{idField}}

	sql, args, err := InsertReturning(Postgres, schema, rec).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "bares" ("id") VALUES (DEFAULT) RETURNING "id"`, sql)
	assert.Empty(t, args)

	sql, args, err = InsertReturning(SQLite, schema, rec).ToSql()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "bares" ("id") VALUES (?) RETURNING "id"`, sql)
	assert.Equal(t, []any{nil}, args)
}

func TestSelectColumn(t *testing.T) {
	schema := metadata.MustInspect(&item{})

	typ, col, ok := ColumnFor(schema, "unit")
	require.True(t, ok)
	assert.Equal(t, "unit_id", col)
	assert.Equal(t, metadata.TypeBigInt, typ)

	_, _, ok = ColumnFor(schema, "missing")
	assert.False(t, ok)

	sql, _, err := SelectColumn(Postgres, schema, "key").ToSql()
	require.NoError(t, err)
	assert.Equal(t, `SELECT "key" FROM "items"`, sql)
}
