package store

import (
	"fmt"
	"math"

	"github.com/tendermint/nftauction/types"
)

const (
	// DefaultPageLimit is used when a read does not name a limit.
	DefaultPageLimit = uint64(10)
	// MaxPageLimit caps any requested limit.
	MaxPageLimit = uint64(30)
)

// PageLimits bounds ranged reads.
type PageLimits struct {
	Default uint64
	Max     uint64
}

func DefaultPageLimits() PageLimits {
	return PageLimits{Default: DefaultPageLimit, Max: MaxPageLimit}
}

func (l PageLimits) ValidateBasic() error {
	if l.Max == 0 {
		return fmt.Errorf("max limit must be positive")
	}
	if l.Default > l.Max {
		return fmt.Errorf("default limit (%d) cannot exceed max limit (%d)", l.Default, l.Max)
	}
	return nil
}

// Clamp returns the effective limit. A missing limit means Default, and
// anything above Max is lowered to Max. Clamping never fails.
func (l PageLimits) Clamp(limit *uint64) uint64 {
	if limit == nil {
		return l.Default
	}
	if *limit > l.Max {
		return l.Max
	}
	return *limit
}

func addSat(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// bidWindow maps a cursor and limit onto the half open ledger range
// [lo, hi) of a ledger with length entries. Cursor i means reading starts at
// offset i+1, counted from the oldest entry for ascending reads and from the
// newest for descending reads.
func bidWindow(length uint64, startAfter *uint64, limit uint64, order types.Order) (lo, hi uint64) {
	var start uint64
	if startAfter != nil {
		start = addSat(*startAfter, 1)
	}
	end := addSat(start, limit)

	if order == types.OrderDescending {
		return length - minUint64(length, end), length - minUint64(start, length)
	}
	return minUint64(start, length), minUint64(end, length)
}
