// Package memory provides an in-process Store: staged instances become visible to
// Values only after Flush, like rows in a database transaction.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fakeseed/internal/metadata"
)

type staged struct {
	schema   metadata.Schema
	instance any
}

// Store keeps flushed instances per entity in insertion order.
type Store struct {
	mu        sync.Mutex
	staged    []staged
	committed map[string][]any
	flushes   int
}

// NewStore constructs an empty memory store.
func NewStore() *Store {
	return &Store{committed: make(map[string][]any)}
}

func (s *Store) Stage(_ context.Context, schema metadata.Schema, instance any) error {
	if instance == nil {
		return fmt.Errorf("stage %s: nil instance", schema.EntityName())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = append(s.staged, staged{schema: schema, instance: instance})
	return nil
}

func (s *Store) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.staged {
		name := st.schema.EntityName()
		s.committed[name] = append(s.committed[name], st.instance)
	}
	s.staged = nil
	s.flushes++
	return nil
}

// Discard drops staged instances without committing them.
func (s *Store) Discard(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.staged)
	s.staged = nil
	return n
}

func (s *Store) Values(_ context.Context, schema metadata.Schema, field string) ([]any, error) {
	s.mu.Lock()
	rows := append([]any(nil), s.committed[schema.EntityName()]...)
	s.mu.Unlock()

	values := make([]any, 0, len(rows))
	for _, row := range rows {
		v, err := schema.FieldValue(row, field)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Rows returns the flushed instances of entity.
func (s *Store) Rows(entity string) []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]any(nil), s.committed[entity]...)
}

// Staged returns the number of instances waiting for Flush.
func (s *Store) Staged() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

// Flushes returns how many times Flush was called.
func (s *Store) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// Seed inserts already persisted instances, bypassing staging.
func (s *Store) Seed(schema metadata.Schema, instances ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := schema.EntityName()
	s.committed[name] = append(s.committed[name], instances...)
}
