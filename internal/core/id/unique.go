package id

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// Kind selects the shape of generated identifier candidates.
type Kind int

const (
	// KindInt draws non-negative integers up to Range.Max, returned as int64.
	KindInt Kind = iota
	// KindUUID draws random version 4 UUIDs.
	KindUUID
	// KindString draws the string form of a random UUID, or a hex prefix of it
	// when Range.Length is shorter.
	KindString
)

// uuidStringLength is the length of the canonical UUID string form.
const uuidStringLength = 36

// ErrExhausted is returned by Unique when every candidate is already taken.
var ErrExhausted = errors.New("identifier space exhausted")

// Range bounds candidates to what the identifier column can hold.
// Zero values select the defaults: math.MaxInt32 and the full UUID string.
type Range struct {
	Max    int64
	Length int
}

func (r Range) max() int64 {
	if r.Max <= 0 {
		return math.MaxInt32
	}
	return r.Max
}

// size returns the number of distinct candidates, or -1 when it is too large to matter.
func (r Range) size(kind Kind) int64 {
	switch kind {
	case KindInt:
		return r.max() + 1
	case KindString:
		if r.Length > 0 && r.Length <= 15 {
			return int64(1) << (4 * r.Length)
		}
	}
	return -1
}

// FromRand builds a version 4 UUID from rng so that runs with a fixed seed
// produce the same identifiers.
func FromRand(rng *rand.Rand) ID {
	var u uuid.UUID
	for i := 0; i < len(u); i += 8 {
		v := rng.Uint64()
		for j := 0; j < 8; j++ {
			u[i+j] = byte(v >> (8 * j))
		}
	}
	u[6] = (u[6] & 0x0f) | 0x40
	u[8] = (u[8] & 0x3f) | 0x80
	return u
}

// Candidate draws one random identifier of the given kind within r.
func Candidate(rng *rand.Rand, kind Kind, r Range) any {
	switch kind {
	case KindUUID:
		return FromRand(rng)
	case KindString:
		s := FromRand(rng).String()
		if r.Length <= 0 || r.Length >= uuidStringLength {
			return s
		}
		hex := strings.ReplaceAll(s, "-", "")
		return hex[:min(r.Length, len(hex))]
	default:
		return rng.Int64N(r.max() + 1)
	}
}

// Unique draws candidates until it finds one that is not in existing. It returns
// ErrExhausted when existing already covers the whole range.
//
// The existing set is read once by the caller, so the result is only unique under a
// single writer.
func Unique(rng *rand.Rand, kind Kind, r Range, existing []any) (any, error) {
	taken := make(map[any]struct{}, len(existing))
	for _, v := range existing {
		key, ok := normalize(kind, v)
		if !ok || !r.contains(kind, key) {
			continue
		}
		taken[key] = struct{}{}
	}

	if size := r.size(kind); size >= 0 && int64(len(taken)) >= size {
		return nil, fmt.Errorf("%w: %d of %d taken", ErrExhausted, len(taken), size)
	}

	for {
		candidate := Candidate(rng, kind, r)
		if _, ok := taken[candidate]; !ok {
			return candidate, nil
		}
	}
}

// contains reports whether a normalized stored value could be drawn from r.
func (r Range) contains(kind Kind, key any) bool {
	switch kind {
	case KindInt:
		n := key.(int64)
		return n >= 0 && n <= r.max()
	case KindString:
		if r.Length > 0 && r.Length < uuidStringLength {
			return len(key.(string)) == r.Length
		}
	}
	return true
}

// normalize maps stored identifier values onto the type Candidate returns for kind,
// so that comparisons work regardless of the driver's scan type.
func normalize(kind Kind, v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	switch kind {
	case KindInt:
		switch n := v.(type) {
		case int:
			return int64(n), true
		case int8:
			return int64(n), true
		case int16:
			return int64(n), true
		case int32:
			return int64(n), true
		case int64:
			return n, true
		case uint:
			return int64(n), true
		case uint8:
			return int64(n), true
		case uint16:
			return int64(n), true
		case uint32:
			return int64(n), true
		case uint64:
			return int64(n), true
		}
		return nil, false
	case KindUUID:
		switch u := v.(type) {
		case uuid.UUID:
			return u, true
		case [16]byte:
			return uuid.UUID(u), true
		case []byte:
			parsed, err := uuid.FromBytes(u)
			if err != nil {
				parsed, err = uuid.ParseBytes(u)
			}
			return parsed, err == nil
		case string:
			parsed, err := uuid.Parse(u)
			return parsed, err == nil
		}
		return nil, false
	default:
		if s, ok := v.(string); ok {
			return s, true
		}
		return fmt.Sprint(v), true
	}
}
