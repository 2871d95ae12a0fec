package populate_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakeseed/internal/core/apperror"
	"fakeseed/internal/fake"
	"fakeseed/internal/infrastructure/storage/memory"
	"fakeseed/internal/metadata"
	"fakeseed/internal/populate"
)

type author struct {
	ID        int64
	FirstName string `db:"first_name"`
	Email     string
	Books     []*book
}

type book struct {
	ID     int64
	Title  string
	Author *author `meta:"one_to_one,optional"`
}

type strictBook struct {
	ID     int64
	Title  string
	Author *author `meta:"one_to_one"`
}

type review struct {
	ID    int64
	Stars int32
	Book  *book
}

// stubLibrary fills email by name and every string by type.
type stubLibrary struct{}

func (stubLibrary) GuessByName(field metadata.FieldDef) (func() any, bool) {
	if field.Name == "email" && field.Type == metadata.TypeString {
		return func() any { return "someone@example.com" }, true
	}
	return nil, false
}

func (stubLibrary) GuessByType(field metadata.FieldDef) (func() any, bool) {
	switch field.Type {
	case metadata.TypeString:
		return func() any { return "text" }, true
	case metadata.TypeInteger:
		return func() any { return 3 }, true
	}
	return nil, false
}

type recorder struct {
	populated map[string]int
	flushed   []string
}

func (r *recorder) InstancePopulated(entity string) { r.populated[entity]++ }

func (r *recorder) EntityFlushed(entity string, _ int, _ time.Duration) {
	r.flushed = append(r.flushed, entity)
}

func newRegistry() *metadata.Registry {
	reg := metadata.NewRegistry()
	reg.MustRegister(&author{})
	reg.MustRegister(&book{})
	reg.MustRegister(&strictBook{})
	reg.MustRegister(&review{})
	return reg
}

func newPopulator(opts ...populate.PopulatorOption) *populate.Populator {
	opts = append([]populate.PopulatorOption{
		populate.WithProvider(newRegistry()),
		populate.WithRand(rand.New(rand.NewPCG(3, 4))),
	}, opts...)
	return populate.New(stubLibrary{}, opts...)
}

func TestPopulator_OneToOneOptional(t *testing.T) {
	store := memory.NewStore()
	p := newPopulator()
	require.NoError(t, p.Add("author", 2))
	require.NoError(t, p.Add("book", 3))

	ic, err := p.Execute(context.Background(), store)
	require.NoError(t, err)

	authors := ic.Get("author")
	books := ic.Get("book")
	require.Len(t, authors, 2)
	require.Len(t, books, 3)

	assert.Same(t, authors[0], books[0].(*book).Author)
	assert.Same(t, authors[1], books[1].(*book).Author)
	assert.Nil(t, books[2].(*book).Author)

	assert.Len(t, store.Rows("author"), 2)
	assert.Len(t, store.Rows("book"), 3)
	assert.Equal(t, 0, store.Staged())
}

func TestPopulator_OneToOneRequiredExhausted(t *testing.T) {
	store := memory.NewStore()
	p := newPopulator()
	require.NoError(t, p.Add("author", 2))
	require.NoError(t, p.Add("strict_book", 3))

	ic, err := p.Execute(context.Background(), store)
	require.Error(t, err)
	assert.Nil(t, ic)
	assert.True(t, apperror.IsIndexExhausted(err))

	// authors were flushed before books started; the two staged books were dropped
	assert.Len(t, store.Rows("author"), 2)
	assert.Empty(t, store.Rows("strict_book"))
	assert.Equal(t, 0, store.Staged())

	// the store stays usable and the next run commits only its own instances
	next := newPopulator()
	require.NoError(t, next.Add("book", 1))
	_, err = next.Execute(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, store.Rows("strict_book"))
	assert.Len(t, store.Rows("book"), 1)
}

func TestPopulator_ManyToOnePicksExistingTargets(t *testing.T) {
	store := memory.NewStore()
	p := newPopulator()
	require.NoError(t, p.Add("book", 4))
	require.NoError(t, p.Add("review", 40))

	ic, err := p.Execute(context.Background(), store)
	require.NoError(t, err)

	books := ic.Get("book")
	for _, r := range ic.Get("review") {
		rv := r.(*review)
		require.NotNil(t, rv.Book)
		assert.Contains(t, books, any(rv.Book))
		assert.Equal(t, int32(3), rv.Stars)
	}
}

func TestPopulator_ReferenceToMissingEntityIsNil(t *testing.T) {
	p := newPopulator()
	require.NoError(t, p.Add("book", 2))

	ic, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)
	for _, b := range ic.Get("book") {
		assert.Nil(t, b.(*book).Author)
	}
}

func TestPopulator_GuessedFields(t *testing.T) {
	p := newPopulator()
	require.NoError(t, p.Add("author", 3))

	ic, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)

	authors := ic.Get("author")
	require.Len(t, authors, 3)
	for i, a := range authors {
		au := a.(*author)
		assert.Equal(t, "someone@example.com", au.Email)
		assert.Equal(t, "text", au.FirstName)
		assert.Zero(t, au.ID, "identifiers are left to the store")
		assert.Nil(t, au.Books, "collections are not populated")
		for _, other := range authors[:i] {
			assert.NotSame(t, other, a)
		}
	}
}

func TestPopulator_GeneratedIDs(t *testing.T) {
	reg := newRegistry()
	schema, err := reg.Schema("author")
	require.NoError(t, err)

	store := memory.NewStore()
	store.Seed(schema, &author{ID: 11}, &author{ID: 12})

	p := populate.New(stubLibrary{}, populate.WithProvider(reg), populate.WithStore(store))
	require.NoError(t, p.Add("author", 20, populate.WithGeneratedID()))

	ic, err := p.Execute(context.Background(), nil)
	require.NoError(t, err)

	seen := map[int64]bool{11: true, 12: true}
	for _, a := range ic.Get("author") {
		id := a.(*author).ID
		assert.GreaterOrEqual(t, id, int64(0))
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, store.Rows("author"), 22)
}

func TestPopulator_GeneratedIDsEmptyStore(t *testing.T) {
	p := newPopulator()
	require.NoError(t, p.Add("author", 1, populate.WithGeneratedID()))

	ic, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)
	require.Len(t, ic.Get("author"), 1)
}

func TestPopulator_FlushesBetweenEntities(t *testing.T) {
	reg := newRegistry()
	authorSchema, err := reg.Schema("author")
	require.NoError(t, err)

	store := memory.NewStore()
	var visible []int

	checkAuthors := func(_ any, _ *populate.InsertionContext) error {
		values, err := store.Values(context.Background(), authorSchema, "id")
		if err != nil {
			return err
		}
		visible = append(visible, len(values))
		return nil
	}

	p := populate.New(stubLibrary{}, populate.WithProvider(reg))
	require.NoError(t, p.Add("author", 2))
	require.NoError(t, p.Add("book", 2, populate.WithModifiers(checkAuthors)))

	_, err = p.Execute(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2}, visible)
	assert.Equal(t, 2, store.Flushes())
}

func TestPopulator_CustomFormattersOverrideGuesses(t *testing.T) {
	p := newPopulator()
	require.NoError(t, p.Add("author", 2))
	require.NoError(t, p.Add("book", 2, populate.WithFormatters(
		populate.NewFormatters().
			Set("title", populate.Literal("Fixed")).
			Set("author", populate.Literal(nil)),
	)))

	ic, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)

	for _, b := range ic.Get("book") {
		bk := b.(*book)
		assert.Equal(t, "Fixed", bk.Title)
		assert.Nil(t, bk.Author)
	}
}

func TestPopulator_StatelessFormatterSeesContext(t *testing.T) {
	p := newPopulator()
	require.NoError(t, p.Add("author", 3))
	require.NoError(t, p.Add("book", 1, populate.WithFormatters(
		populate.NewFormatters().Set("author", populate.Stateless(
			func(ic *populate.InsertionContext, _ any) (any, error) {
				authors := ic.Get("author")
				return authors[len(authors)-1], nil
			},
		)),
	)))

	ic, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)
	assert.Same(t, ic.Get("author")[2], ic.Get("book")[0].(*book).Author)
}

func TestPopulator_ModifiersRunInOrder(t *testing.T) {
	var calls []string
	first := func(instance any, _ *populate.InsertionContext) error {
		b := instance.(*book)
		calls = append(calls, "first:"+b.Title)
		b.Title = "modified"
		return nil
	}
	second := func(instance any, _ *populate.InsertionContext) error {
		calls = append(calls, "second:"+instance.(*book).Title)
		return nil
	}

	p := newPopulator()
	require.NoError(t, p.Add("book", 1, populate.WithModifiers(first, second)))

	ic, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)
	assert.Equal(t, []string{"first:text", "second:modified"}, calls)
	assert.Equal(t, "modified", ic.Get("book")[0].(*book).Title)
}

func TestPopulator_ModifierErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	p := newPopulator()
	require.NoError(t, p.Add("book", 2, populate.WithModifiers(
		func(any, *populate.InsertionContext) error { return boom },
	)))

	_, err := p.Execute(context.Background(), memory.NewStore())
	assert.ErrorIs(t, err, boom)
}

func TestPopulator_Configuration(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		p := newPopulator()
		require.NoError(t, p.Add("author", 1))
		_, err := p.Execute(context.Background(), nil)
		assert.True(t, apperror.IsConfiguration(err))
	})

	t.Run("no provider", func(t *testing.T) {
		p := populate.New(stubLibrary{})
		err := p.Add("author", 1)
		assert.True(t, apperror.IsConfiguration(err))
	})

	t.Run("unknown entity", func(t *testing.T) {
		err := newPopulator().Add("publisher", 1)
		assert.True(t, apperror.IsUnknownEntity(err))
	})

	t.Run("negative count", func(t *testing.T) {
		err := newPopulator().Add("author", -1)
		assert.True(t, apperror.IsConfiguration(err))
	})

	t.Run("nil populator", func(t *testing.T) {
		err := newPopulator().AddPopulator(nil, 1)
		assert.True(t, apperror.IsConfiguration(err))
	})
}

func TestPopulator_ReRegistrationReplaces(t *testing.T) {
	p := newPopulator()
	require.NoError(t, p.Add("author", 2))
	require.NoError(t, p.Add("book", 1))
	require.NoError(t, p.Add("author", 4))

	assert.Equal(t, []string{"author", "book"}, p.Entities())
	assert.Equal(t, 4, p.Count("author"))
	assert.Equal(t, 0, p.Count("publisher"))

	ic, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)
	assert.Len(t, ic.Get("author"), 4)
}

func TestPopulator_AddPopulatorReguessesFormatters(t *testing.T) {
	reg := newRegistry()
	schema, err := reg.Schema("book")
	require.NoError(t, err)

	ep := populate.NewEntityPopulator(schema)
	ep.SetFieldFormatters(populate.NewFormatters().Set("title", populate.Literal("stale")))

	p := populate.New(stubLibrary{}, populate.WithProvider(reg))
	require.NoError(t, p.AddPopulator(ep, 1))

	got, ok := p.EntityPopulator("book")
	require.True(t, ok)
	assert.Same(t, ep, got)

	ic, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)
	assert.Equal(t, "text", ic.Get("book")[0].(*book).Title)
}

func TestPopulator_Observer(t *testing.T) {
	rec := &recorder{populated: map[string]int{}}
	p := newPopulator(populate.WithObserver(rec))
	require.NoError(t, p.Add("author", 2))
	require.NoError(t, p.Add("book", 3))

	_, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"author": 2, "book": 3}, rec.populated)
	assert.Equal(t, []string{"author", "book"}, rec.flushed)
}

func TestPopulator_ZeroCountStillFlushes(t *testing.T) {
	store := memory.NewStore()
	p := newPopulator()
	require.NoError(t, p.Add("author", 0))

	ic, err := p.Execute(context.Background(), store)
	require.NoError(t, err)
	assert.Empty(t, ic.Get("author"))
	assert.Equal(t, 1, store.Flushes())
}

type employee struct {
	ID      int64
	Name    string
	Manager *employee `meta:"optional"`
}

func TestPopulator_SelfReferenceSeesEarlierInstancesOfSameBatch(t *testing.T) {
	reg := metadata.NewRegistry()
	reg.MustRegister(&employee{})

	store := memory.NewStore()
	p := populate.New(stubLibrary{},
		populate.WithProvider(reg),
		populate.WithRand(rand.New(rand.NewPCG(5, 6))),
	)
	require.NoError(t, p.Add("employee", 12))

	ic, err := p.Execute(context.Background(), store)
	require.NoError(t, err)

	staff := ic.Get("employee")
	require.Len(t, staff, 12)
	assert.Nil(t, staff[0].(*employee).Manager, "the first instance has nothing to reference")

	referenced := 0
	for i, e := range staff[1:] {
		manager := e.(*employee).Manager
		require.NotNil(t, manager, "earlier instances are visible before the flush")
		found := false
		for _, earlier := range staff[:i+1] {
			if earlier == any(manager) {
				found = true
			}
		}
		assert.True(t, found, "manager of #%d is an earlier instance", i+1)
		referenced++
	}
	assert.Equal(t, 11, referenced)
	assert.Equal(t, 1, store.Flushes())
}

func TestPopulator_InstancesAreDistinct(t *testing.T) {
	p := newPopulator()
	require.NoError(t, p.Add("review", 25))

	ic, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)

	reviews := ic.Get("review")
	require.Len(t, reviews, 25)
	seen := make(map[*review]struct{}, len(reviews))
	for _, r := range reviews {
		rv := r.(*review)
		_, dup := seen[rv]
		assert.False(t, dup, "instance returned twice")
		seen[rv] = struct{}{}
	}
	assert.Len(t, seen, 25)
}

type postalAddress struct {
	ID    int64
	Zip   int
	Code  int32
	Email string
}

func TestPopulator_NameGuessesThatDoNotFitFallBackToType(t *testing.T) {
	reg := metadata.NewRegistry()
	reg.MustRegister(&postalAddress{})

	p := populate.New(fake.New(1), populate.WithProvider(reg))
	require.NoError(t, p.Add("postal_address", 3))

	ic, err := p.Execute(context.Background(), memory.NewStore())
	require.NoError(t, err)

	for _, a := range ic.Get("postal_address") {
		pa := a.(*postalAddress)
		assert.GreaterOrEqual(t, pa.Zip, 0)
		assert.GreaterOrEqual(t, pa.Code, int32(0))
		assert.Contains(t, pa.Email, "@")
	}
}

type tag struct {
	ID    int16
	Label string
}

func TestPopulator_GeneratedNarrowIdentifiersStayUnique(t *testing.T) {
	reg := metadata.NewRegistry()
	reg.MustRegister(&tag{})
	store := memory.NewStore()

	seen := make(map[int16]struct{})
	for run := 0; run < 20; run++ {
		p := populate.New(stubLibrary{},
			populate.WithProvider(reg),
			populate.WithRand(rand.New(rand.NewPCG(uint64(run), 1))),
		)
		require.NoError(t, p.Add("tag", 100, populate.WithGeneratedID()))

		ic, err := p.Execute(context.Background(), store)
		require.NoError(t, err)
		for _, tg := range ic.Get("tag") {
			id := tg.(*tag).ID
			assert.GreaterOrEqual(t, id, int16(0))
			_, dup := seen[id]
			require.False(t, dup, "identifier %d reused", id)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, 2000)
}
