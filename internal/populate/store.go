package populate

import (
	"context"
	"time"

	"fakeseed/internal/metadata"
)

// Store persists populated instances.
type Store interface {
	// Stage queues instance for the next Flush. Staged instances are not yet visible to Values.
	Stage(ctx context.Context, schema metadata.Schema, instance any) error
	// Flush durably commits everything staged so far.
	Flush(ctx context.Context) error
	// Values returns the persisted values of one field across all instances of schema.
	Values(ctx context.Context, schema metadata.Schema, field string) ([]any, error)
}

// Discarder is implemented by stores that can drop staged instances without
// writing them. It returns the number of instances dropped.
type Discarder interface {
	Discard(ctx context.Context) int
}

// ValueLibrary maps fields to value generators. A false result means no match.
type ValueLibrary interface {
	// GuessByName matches common field names (email, firstName, ...). It declines
	// names whose generated value cannot be assigned to the field's type.
	GuessByName(field metadata.FieldDef) (func() any, bool)
	// GuessByType picks a generic generator for the field's declared type.
	GuessByType(field metadata.FieldDef) (func() any, bool)
}

// Observer is notified about run progress.
type Observer interface {
	InstancePopulated(entity string)
	EntityFlushed(entity string, count int, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) InstancePopulated(string) {}
func (nopObserver) EntityFlushed(string, int, time.Duration) {}
