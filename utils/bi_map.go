// Package utils contains small generic helpers shared across the module.
package utils

// BiMap is an immutable bidirectional map allowing lookups in both
// directions. It keeps two internal maps for efficient lookup by either key
// or value; there are no mutating methods.
type BiMap[K comparable, V comparable] struct {
	forward map[K]V
	reverse map[V]K
}

// NewBiMap builds a BiMap from the provided mapping, copying it defensively.
// If the input contains duplicate values, the reverse mapping keeps the last
// key seen for that value.
func NewBiMap[K comparable, V comparable](input map[K]V) *BiMap[K, V] {
	forward := make(map[K]V, len(input))
	reverse := make(map[V]K, len(input))
	for k, v := range input {
		forward[k] = v
		reverse[v] = k
	}
	return &BiMap[K, V]{forward: forward, reverse: reverse}
}

// Lookup finds a value by its key in the forward mapping.
func (m *BiMap[K, V]) Lookup(key K) (V, bool) {
	value, ok := m.forward[key]
	return value, ok
}

// DirectLookup finds a value by its key, returning the zero value for V when
// the key is absent.
func (m *BiMap[K, V]) DirectLookup(key K) V {
	return m.forward[key]
}

// RLookup finds a key by its value in the reverse mapping.
func (m *BiMap[K, V]) RLookup(value V) (K, bool) {
	key, ok := m.reverse[value]
	return key, ok
}
