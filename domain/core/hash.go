package core

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	SubsetHash Hash
	FilterHash Hash
)

func (h SubsetHash) String() string { return Hash(h).String() }
func (h FilterHash) String() string { return Hash(h).String() }

// ComputeSubsetHash fingerprints an ordered sequence of row keys. Order is
// significant: the same rows in a different order hash differently.
func ComputeSubsetHash(rowKeys []string) SubsetHash {
	var data strings.Builder
	for _, key := range rowKeys {
		data.WriteString(key)
		data.WriteByte('\n')
	}
	return SubsetHash(NewHash([]byte(data.String())))
}

// ComputeFilterHash fingerprints a filter map independent of key order.
// Empty values are skipped since they impose no constraint.
func ComputeFilterHash(filters map[string]string) FilterHash {
	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if strings.TrimSpace(v) == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteByte('=')
		data.WriteString(filters[key])
		data.WriteByte(';')
	}
	return FilterHash(NewHash([]byte(data.String())))
}
