package populate

import (
	"math/rand/v2"
	"time"

	"fakeseed/internal/core/apperror"
)

// AssociationResolver picks the referenced instance for a single-valued association.
//
// One-to-one associations consume targets strictly in insertion order, one per call.
// Many-to-one associations pick a uniformly random target from everything inserted so far.
// When no target has been inserted yet the reference is nil.
type AssociationResolver struct {
	target   string
	unique   bool
	optional bool
	index    int
	rng      *rand.Rand
}

var _ Resolver = (*AssociationResolver)(nil)

// NewAssociationResolver creates a resolver for references to target. A nil rng gets a
// time-seeded source.
func NewAssociationResolver(target string, unique, optional bool, rng *rand.Rand) *AssociationResolver {
	if rng == nil {
		rng = newRand()
	}
	return &AssociationResolver{
		target:   target,
		unique:   unique,
		optional: optional,
		rng:      rng,
	}
}

// Target returns the referenced entity name.
func (r *AssociationResolver) Target() string { return r.target }

// Index returns how many targets a one-to-one resolver has consumed.
func (r *AssociationResolver) Index() int { return r.index }

// Resolve returns the next referenced instance.
//
// A one-to-one resolver that has consumed every available target returns nil when the
// association is optional and an INDEX_EXHAUSTED error otherwise. In both cases the index
// stays put, so targets inserted later are still handed out in order.
func (r *AssociationResolver) Resolve(ic *InsertionContext) (any, error) {
	pool := ic.Get(r.target)
	if len(pool) == 0 {
		return nil, nil
	}

	if !r.unique {
		return pool[r.rng.IntN(len(pool))], nil
	}

	if r.index >= len(pool) {
		if r.optional {
			return nil, nil
		}
		return nil, apperror.NewIndexExhausted(r.target, r.index, len(pool))
	}

	related := pool[r.index]
	r.index++
	return related, nil
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
}
