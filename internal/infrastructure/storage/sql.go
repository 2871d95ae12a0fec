package storage

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"fakeseed/internal/metadata"
)

// Dialect carries the per-database differences of the SQL stores.
type Dialect struct {
	Name        string
	Placeholder squirrel.PlaceholderFormat
	// MaxParams caps bind parameters per statement.
	MaxParams int
	// ColumnType maps a field type and declared length to a column type.
	ColumnType func(t metadata.FieldType, length int) string
	// IdentityColumn renders a single integer primary key the database assigns.
	IdentityColumn string
	// DefaultValue is inserted into identifier columns when a row has no other values.
	DefaultValue any
}

// Postgres is the PostgreSQL dialect.
var Postgres = Dialect{
	Name:           "postgres",
	Placeholder:    squirrel.Dollar,
	MaxParams:      65535,
	ColumnType:     postgresType,
	IdentityColumn: "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY",
	DefaultValue:   squirrel.Expr("DEFAULT"),
}

// SQLite is the SQLite dialect.
var SQLite = Dialect{
	Name:           "sqlite",
	Placeholder:    squirrel.Question,
	MaxParams:      32766,
	ColumnType:     sqliteType,
	IdentityColumn: "INTEGER PRIMARY KEY",
}

// Builder returns a squirrel builder with the dialect's placeholders.
func (d Dialect) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

func postgresType(t metadata.FieldType, length int) string {
	switch t {
	case metadata.TypeString:
		if length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", length)
		}
		return "TEXT"
	case metadata.TypeTinyInt, metadata.TypeSmallInt:
		return "SMALLINT"
	case metadata.TypeInteger:
		return "INTEGER"
	case metadata.TypeBigInt:
		return "BIGINT"
	case metadata.TypeNumber:
		return "DOUBLE PRECISION"
	case metadata.TypeMoney:
		return "NUMERIC(18,2)"
	case metadata.TypeBoolean:
		return "BOOLEAN"
	case metadata.TypeDate:
		return "TIMESTAMPTZ"
	case metadata.TypeUUID:
		return "UUID"
	default:
		return "TEXT"
	}
}

func sqliteType(t metadata.FieldType, _ int) string {
	switch t {
	case metadata.TypeTinyInt, metadata.TypeSmallInt, metadata.TypeInteger, metadata.TypeBigInt, metadata.TypeBoolean:
		return "INTEGER"
	case metadata.TypeNumber:
		return "REAL"
	case metadata.TypeMoney:
		return "NUMERIC"
	case metadata.TypeDate:
		return "DATETIME"
	default:
		return "TEXT"
	}
}

// Quote quotes an identifier for both dialects.
func Quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// column is one persisted column of an entity table.
type column struct {
	name     string
	typ      metadata.FieldType
	length   int
	nullable bool
	primary  bool
}

// tableColumns lists scalar field columns followed by single-valued association columns.
func tableColumns(schema metadata.Schema) []column {
	var cols []column
	for _, f := range schema.Fields() {
		cols = append(cols, column{
			name:     f.Column,
			typ:      f.Type,
			length:   f.Length,
			nullable: f.Nullable,
			primary:  f.Identifier,
		})
	}
	for _, a := range schema.Associations() {
		if a.IsCollection() {
			continue
		}
		cols = append(cols, column{name: a.Column, typ: a.TargetIDType, nullable: a.Optional})
	}
	return cols
}

// Columns returns the column names Row produces for schema, in table order.
func Columns(schema metadata.Schema) []string {
	cols := tableColumns(schema)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for schema.
// Association columns carry no foreign keys: tables are created in plan order.
func CreateTableSQL(d Dialect, schema metadata.Schema) string {
	cols := tableColumns(schema)

	var primary []string
	for _, c := range cols {
		if c.primary {
			primary = append(primary, c.name)
		}
	}
	identity := len(primary) == 1

	defs := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		if c.primary && identity && isIntegerType(c.typ) {
			defs = append(defs, Quote(c.name)+" "+d.IdentityColumn)
			continue
		}

		def := Quote(c.name) + " " + d.ColumnType(c.typ, c.length)
		if c.primary && identity {
			def += " PRIMARY KEY"
		} else if !c.nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}

	if len(primary) > 1 {
		quoted := make([]string, len(primary))
		for i, p := range primary {
			quoted[i] = Quote(p)
		}
		defs = append(defs, "PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)",
		Quote(schema.TableName()), strings.Join(defs, ",\n\t"))
}

func isIntegerType(t metadata.FieldType) bool {
	switch t {
	case metadata.TypeTinyInt, metadata.TypeSmallInt, metadata.TypeInteger, metadata.TypeBigInt:
		return true
	}
	return false
}

// InsertChunks builds multi-row INSERT statements for records that carry every
// column, splitting so no statement exceeds the dialect's parameter limit.
func InsertChunks(d Dialect, schema metadata.Schema, records []Record) ([]squirrel.InsertBuilder, error) {
	columns := Columns(schema)
	if len(columns) == 0 {
		return nil, fmt.Errorf("%s has no columns", schema.EntityName())
	}

	perStatement := max(d.MaxParams/len(columns), 1)

	quoted := quoteAll(columns)
	var chunks []squirrel.InsertBuilder
	for start := 0; start < len(records); start += perStatement {
		end := min(start+perStatement, len(records))

		q := d.Builder().Insert(Quote(schema.TableName())).Columns(quoted...)
		for _, rec := range records[start:end] {
			q = q.Values(RowValues(columns, rec.Values)...)
		}
		chunks = append(chunks, q)
	}
	return chunks, nil
}

// InsertReturning builds a single-row INSERT that omits the generated identifier
// columns and returns them.
func InsertReturning(d Dialect, schema metadata.Schema, rec Record) squirrel.InsertBuilder {
	var columns []string
	for _, c := range Columns(schema) {
		if _, ok := rec.Values[c]; ok {
			columns = append(columns, c)
		}
	}

	returning := make([]string, len(rec.Generated))
	for i, f := range rec.Generated {
		returning[i] = Quote(f.Column)
	}

	values := RowValues(columns, rec.Values)
	if len(columns) == 0 {
		for _, f := range rec.Generated {
			columns = append(columns, f.Column)
			values = append(values, d.DefaultValue)
		}
	}

	return d.Builder().Insert(Quote(schema.TableName())).
		Columns(quoteAll(columns)...).
		Values(values...).
		Suffix("RETURNING " + strings.Join(returning, ", "))
}

// SelectColumn builds SELECT of one column over the whole table.
func SelectColumn(d Dialect, schema metadata.Schema, column string) squirrel.SelectBuilder {
	return d.Builder().Select(Quote(column)).From(Quote(schema.TableName()))
}

// ColumnFor resolves a field or association name to its column.
func ColumnFor(schema metadata.Schema, field string) (metadata.FieldType, string, bool) {
	if f, ok := schema.Field(field); ok {
		return f.Type, f.Column, true
	}
	if a, ok := schema.Association(field); ok && !a.IsCollection() {
		return a.TargetIDType, a.Column, true
	}
	return metadata.TypeUnknown, "", false
}

// RowValues orders values by columns. Missing columns become NULL.
func RowValues(columns []string, values map[string]any) []any {
	out := make([]any, len(columns))
	for i, c := range columns {
		out[i] = values[c]
	}
	return out
}

func quoteAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = Quote(n)
	}
	return out
}
