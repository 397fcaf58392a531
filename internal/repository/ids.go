package repository

import "math"

// storable reports whether id fits the signed bigint primary key columns.
// Larger ids cannot name a row, so lookups treat them as missing.
func storable(id uint64) bool {
	return id <= math.MaxInt64
}
