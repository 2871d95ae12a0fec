// Package seeder turns a population plan into a run over the demo catalogs.
package seeder

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fakeseed/internal/config"
	"fakeseed/internal/core/apperror"
	"fakeseed/internal/core/numerator"
	"fakeseed/internal/domain/catalogs"
	"fakeseed/internal/fake"
	"fakeseed/internal/metadata"
	"fakeseed/internal/populate"
	"fakeseed/pkg/logger"
)

// Store is a populate.Store that can create the tables it writes to.
type Store interface {
	populate.Store
	CreateTable(ctx context.Context, schema metadata.Schema) error
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithObserver reports run progress to observer.
func WithObserver(observer populate.Observer) Option {
	return func(s *Seeder) { s.observer = observer }
}

// WithRand sets the source used to pick references and identifiers.
func WithRand(rng *rand.Rand) Option {
	return func(s *Seeder) { s.rng = rng }
}

// Seeder populates the catalogs registered in its registry.
type Seeder struct {
	registry *metadata.Registry
	library  *fake.Library
	rng      *rand.Rand
	observer populate.Observer
}

// New creates a Seeder over every demo catalog.
func New(library *fake.Library, opts ...Option) *Seeder {
	reg := metadata.NewRegistry()
	catalogs.Register(reg)

	s := &Seeder{registry: reg, library: library}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the catalog registry.
func (s *Seeder) Registry() *metadata.Registry { return s.registry }

// Populator builds a populator for plan. Plan values override the catalog formatters.
// Codes are numbered from 1.
func (s *Seeder) Populator(plan *config.Plan) (*populate.Populator, error) {
	return s.populator(plan, nil)
}

// populator numbers codes after the highest of existing, keyed by entity name.
func (s *Seeder) populator(plan *config.Plan, existing map[string][]any) (*populate.Populator, error) {
	opts := []populate.PopulatorOption{populate.WithProvider(s.registry)}
	if s.rng != nil {
		opts = append(opts, populate.WithRand(s.rng))
	}
	if s.observer != nil {
		opts = append(opts, populate.WithObserver(s.observer))
	}
	p := populate.New(s.library, opts...)

	for _, entry := range plan.Entities {
		schema, err := s.registry.Schema(entry.Entity)
		if err != nil {
			return nil, err
		}

		formatters := catalogs.Formatters(entry.Entity, s.library.Faker())
		if schema.HasField("code") {
			seq := numerator.Resume(catalogs.CodeConfig(entry.Entity), existing[entry.Entity])
			formatters.Set("code", populate.Generated(func() any { return seq.Next() }))
		}
		for _, name := range entry.ValueNames() {
			value, err := literal(schema, name, entry.Values[name])
			if err != nil {
				return nil, err
			}
			formatters.Set(name, populate.Literal(value))
		}

		entityOpts := []populate.EntityOption{
			populate.WithFormatters(formatters),
			populate.WithModifiers(catalogs.Modifiers(entry.Entity)...),
		}
		if entry.GenerateID {
			entityOpts = append(entityOpts, populate.WithGeneratedID())
		}
		if err := p.Add(entry.Entity, entry.Count, entityOpts...); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Run populates store according to plan, creating missing tables first when
// createTables is set. Codes continue after those already stored.
func (s *Seeder) Run(ctx context.Context, store Store, plan *config.Plan, createTables bool) (*populate.InsertionContext, error) {
	existing := make(map[string][]any)
	for _, entry := range plan.Entities {
		schema, err := s.registry.Schema(entry.Entity)
		if err != nil {
			return nil, err
		}

		if createTables {
			if err := store.CreateTable(ctx, schema); err != nil {
				return nil, fmt.Errorf("create table for %s: %w", entry.Entity, err)
			}
			logger.Debug(ctx, "table ready", "entity", entry.Entity, "table", schema.TableName())
		}

		if schema.HasField("code") {
			codes, err := store.Values(ctx, schema, "code")
			if err != nil {
				return nil, fmt.Errorf("load %s codes: %w", entry.Entity, err)
			}
			existing[entry.Entity] = codes
		}
	}

	p, err := s.populator(plan, existing)
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, store)
}

// literal converts a plan value decoded from YAML into the field's Go value.
func literal(schema metadata.Schema, name string, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	if _, ok := schema.Association(name); ok {
		return nil, apperror.NewConfiguration("only null can be set on an association").
			WithDetail("entity", schema.EntityName()).
			WithDetail("field", name)
	}
	field, ok := schema.Field(name)
	if !ok {
		return nil, apperror.NewUnknownField(schema.EntityName(), name)
	}

	invalid := func(err error) error {
		return apperror.NewInvalidValue(schema.EntityName(), name, value).WithCause(err)
	}

	switch field.Type {
	case metadata.TypeMoney:
		switch v := value.(type) {
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case float64:
			return decimal.NewFromFloat(v), nil
		case string:
			d, err := decimal.NewFromString(v)
			if err != nil {
				return nil, invalid(err)
			}
			return d, nil
		}
	case metadata.TypeUUID:
		if v, ok := value.(string); ok {
			u, err := uuid.Parse(v)
			if err != nil {
				return nil, invalid(err)
			}
			return u, nil
		}
	case metadata.TypeDate:
		if v, ok := value.(string); ok {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return nil, invalid(err)
			}
			return t, nil
		}
	}
	return value, nil
}
