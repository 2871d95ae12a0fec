package metadata

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakeseed/internal/core/apperror"
)

type base struct {
	ID int64 `db:"id"`
}

type author struct {
	base
	FirstName string          `db:"first_name"`
	Email     *string         `meta:"size=64"`
	Bio       string          `meta:"type=text"`
	Born      time.Time
	Rating    float64
	Fee       decimal.Decimal
	Active    bool    `json:"isActive"`
	Secret    string  `db:"-"`
	Books     []*book
}

type book struct {
	Key    uuid.UUID `db:"key" meta:"id"`
	Title  string
	Pages  int32
	Author *author `meta:"one_to_one,optional"`
	Editor *author `db:"editor_ref"`
}

func fieldNames(fields []FieldDef) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

func TestInspect_Fields(t *testing.T) {
	def, err := Inspect(&author{})
	require.NoError(t, err)

	assert.Equal(t, "author", def.EntityName())
	assert.Equal(t, "authors", def.TableName())

	want := []string{"id", "firstName", "email", "bio", "born", "rating", "fee", "isActive"}
	if diff := cmp.Diff(want, fieldNames(def.Fields())); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}

	tests := []struct {
		name     string
		column   string
		typ      FieldType
		length   int
		nullable bool
	}{
		{"id", "id", TypeBigInt, 0, false},
		{"firstName", "first_name", TypeString, 0, false},
		{"email", "email", TypeString, 64, true},
		{"bio", "bio", TypeText, 0, false},
		{"born", "born", TypeDate, 0, false},
		{"rating", "rating", TypeNumber, 0, false},
		{"fee", "fee", TypeMoney, 0, false},
		{"isActive", "active", TypeBoolean, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := def.Field(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.column, f.Column)
			assert.Equal(t, tt.typ, f.Type)
			assert.Equal(t, tt.length, f.Length)
			assert.Equal(t, tt.nullable, f.Nullable)
		})
	}

	assert.Equal(t, []string{"id"}, def.Identifiers())
	assert.True(t, def.IsIdentifier("id"))
	assert.False(t, def.HasField("secret"))
	assert.False(t, def.HasField("books"))
}

func TestInspect_Associations(t *testing.T) {
	authorDef, err := Inspect(author{})
	require.NoError(t, err)
	books, ok := authorDef.Association("books")
	require.True(t, ok)
	assert.Equal(t, OneToMany, books.Kind)
	assert.True(t, books.IsCollection())
	assert.Equal(t, "book", books.Target)

	bookDef, err := Inspect(&book{})
	require.NoError(t, err)
	assert.Equal(t, []string{"key"}, bookDef.Identifiers())

	a, ok := bookDef.Association("author")
	require.True(t, ok)
	assert.Equal(t, OneToOne, a.Kind)
	assert.True(t, a.IsUnique())
	assert.True(t, a.Optional)
	assert.Equal(t, "author_id", a.Column)
	assert.Equal(t, TypeBigInt, a.TargetIDType)

	e, ok := bookDef.Association("editor")
	require.True(t, ok)
	assert.Equal(t, ManyToOne, e.Kind)
	assert.False(t, e.Optional)
	assert.Equal(t, "editor_ref", e.Column)
}

func TestInspect_Options(t *testing.T) {
	def, err := Inspect(&book{}, WithName("novel"), WithTable("lib_novels"))
	require.NoError(t, err)

	assert.Equal(t, "novel", def.EntityName())
	assert.Equal(t, "lib_novels", def.TableName())

	_, err = Inspect(42)
	assert.Error(t, err)
}

func TestSetFieldValue(t *testing.T) {
	bookDef := MustInspect(&book{})
	authorDef := MustInspect(&author{})

	b := bookDef.NewInstance().(*book)
	a := authorDef.NewInstance().(*author)

	require.NoError(t, bookDef.SetFieldValue(b, "title", "Dune"))
	require.NoError(t, bookDef.SetFieldValue(b, "pages", 412)) // int -> int32
	require.NoError(t, bookDef.SetFieldValue(b, "author", a))
	require.NoError(t, authorDef.SetFieldValue(a, "email", "x@example.com"))
	require.NoError(t, authorDef.SetFieldValue(a, "id", int64(9)))

	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, int32(412), b.Pages)
	assert.Same(t, a, b.Author)
	require.NotNil(t, a.Email)
	assert.Equal(t, "x@example.com", *a.Email)

	require.NoError(t, authorDef.SetFieldValue(a, "email", nil))
	assert.Nil(t, a.Email)

	require.NoError(t, bookDef.SetFieldValue(b, "title", 5))
	assert.Equal(t, "5", b.Title)

	born := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, bookDef.SetFieldValue(b, "title", born))
	assert.Equal(t, "2001-02-03T04:05:06Z", b.Title)

	err := bookDef.SetFieldValue(b, "title", []int{1})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidValue))

	err = bookDef.SetFieldValue(b, "pages", "many")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidValue))

	err = bookDef.SetFieldValue(b, "pages", int64(1)<<40)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidValue), "overflowing int32")
	assert.Equal(t, int32(412), b.Pages)

	err = bookDef.SetFieldValue(b, "pages", 2.5)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidValue), "fractional value for an integer")

	require.NoError(t, bookDef.SetFieldValue(b, "pages", 300.0))
	assert.Equal(t, int32(300), b.Pages)

	err = bookDef.SetFieldValue(b, "missing", "x")
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownField))

	err = authorDef.SetFieldValue(a, "books", []*book{b})
	assert.True(t, apperror.HasCode(err, apperror.CodeUnknownField))

	err = bookDef.SetFieldValue(a, "title", "wrong instance")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidValue))
}

func TestFieldValueAndRow(t *testing.T) {
	bookDef := MustInspect(&book{})
	key := uuid.New()
	email := "a@b.c"
	b := &book{Key: key, Title: "Emma", Pages: 300, Author: &author{base: base{ID: 7}, Email: &email}}

	v, err := bookDef.FieldValue(b, "key")
	require.NoError(t, err)
	assert.Equal(t, key, v)

	ref, err := bookDef.FieldValue(b, "author")
	require.NoError(t, err)
	assert.Same(t, b.Author, ref)

	row, err := bookDef.Row(b)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"key":        key,
		"title":      "Emma",
		"pages":      int32(300),
		"author_id":  int64(7),
		"editor_ref": nil,
	}, row)

	authorRow, err := MustInspect(&author{}).Row(b.Author)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", authorRow["email"])
	assert.NotContains(t, authorRow, "books")
}

func TestNaming(t *testing.T) {
	tests := []struct {
		in, snake, camel string
	}{
		{"ID", "id", "id"},
		{"FirstName", "first_name", "firstName"},
		{"BaseUnitID", "base_unit_id", "baseUnitID"},
		{"ImageURL", "image_url", "imageURL"},
		{"URLPath", "url_path", "urlPath"},
		{"Address2", "address2", "address2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.snake, toSnake(tt.in))
			assert.Equal(t, tt.camel, lowerCamel(tt.in))
		})
	}
}
