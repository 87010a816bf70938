package semantics

import "github.com/zeebo/xxh3"

// hashString hashes a string component of a pooled value.
func hashString(s string) uint64 {
	return xxh3.HashString(s)
}

// combineHash folds v into h.
func combineHash(h, v uint64) uint64 {
	return h ^ (v + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2))
}
