package sampleorders

import (
	"errors"
	"fmt"

	"github.com/okian/demandrank/internal/domain/types"
)

// ErrInconsistent is returned when a ranking breaks one of its guarantees.
var ErrInconsistent = errors.New("inconsistent ranking")

// Verify checks a ranking: ranks are exactly 1..N in order, scores are
// non-increasing and within 0..10, equal scores are ordered by name, top7
// counts are within 0..3 and products are unique.
func Verify(entries []types.Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries", ErrInconsistent)
	}

	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.Rank != i+1 {
			return fmt.Errorf("%w: entry %d has rank %d", ErrInconsistent, i, e.Rank)
		}
		if e.OutOf10 < 0 || e.OutOf10 > 10 {
			return fmt.Errorf("%w: %s scores %v", ErrInconsistent, e.Product, e.OutOf10)
		}
		if e.Top7 < 0 || e.Top7 > 3 {
			return fmt.Errorf("%w: %s has top7 %d", ErrInconsistent, e.Product, e.Top7)
		}
		if _, dup := seen[e.Product]; dup {
			return fmt.Errorf("%w: %s listed twice", ErrInconsistent, e.Product)
		}
		seen[e.Product] = struct{}{}

		if i == 0 {
			continue
		}
		prev := entries[i-1]
		if e.OutOf10 > prev.OutOf10 {
			return fmt.Errorf("%w: %s (%v) ranked below %s (%v)", ErrInconsistent, e.Product, e.OutOf10, prev.Product, prev.OutOf10)
		}
		if e.OutOf10 == prev.OutOf10 && e.Product < prev.Product {
			return fmt.Errorf("%w: tie between %s and %s not ordered by name", ErrInconsistent, prev.Product, e.Product)
		}
	}
	return nil
}
