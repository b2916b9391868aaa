// Package join implements the single-key hash inner join operator of spec
// §4.6: a build phase that hashes the left (streamed-to-EOS) relation's join
// column into a multi-map, and a probe phase that looks up each right-row's
// join value against it.
//
// Grounded on inner_join_node_single.py's preprocess_left /
// inner_join_with_preprocessed_left_side / InnerJoinSingleNode, with
// opteryx.compiled.structures.HashTable's insert/get multi-map ported
// directly rather than reached for via cgo; Python's manual null-bitmap
// bit-twiddling is replaced by Arrow Go's native IsNull/IsValid per-array
// accessors, which already expose exactly what the bitmap parsing computed.
package join

// HashTable is the multi-map of join key -> left-relation row offsets
// sharing that key, ported from opteryx.compiled.structures.HashTable's
// insert/get pair.
type HashTable struct {
	buckets map[uint64][]int32
}

// NewHashTable returns an empty hash table.
func NewHashTable() *HashTable {
	return &HashTable{buckets: make(map[uint64][]int32)}
}

// Insert records that row offset shares key.
func (h *HashTable) Insert(key uint64, rowOffset int32) {
	h.buckets[key] = append(h.buckets[key], rowOffset)
}

// Get returns every left-relation row offset sharing key, or nil if none.
func (h *HashTable) Get(key uint64) []int32 {
	return h.buckets[key]
}
