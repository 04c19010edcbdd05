package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBiMap_Lookups(t *testing.T) {
	m := NewBiMap(map[int]string{1: "one", 2: "two"})

	v, ok := m.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "one", v)

	_, ok = m.Lookup(3)
	assert.False(t, ok)

	k, ok := m.RLookup("two")
	require.True(t, ok)
	assert.Equal(t, 2, k)

	_, ok = m.RLookup("three")
	assert.False(t, ok)

	assert.Equal(t, "one", m.DirectLookup(1))
	assert.Empty(t, m.DirectLookup(9))
}

func TestBiMap_DefensiveCopy(t *testing.T) {
	input := map[string]bool{"a": true}
	m := NewBiMap(input)

	input["a"] = false
	input["b"] = true

	v, ok := m.Lookup("a")
	require.True(t, ok)
	assert.True(t, v, "mutating the input must not affect the BiMap")

	_, ok = m.Lookup("b")
	assert.False(t, ok)
}

func TestBiMap_DuplicateValues(t *testing.T) {
	m := NewBiMap(map[string]int{"a": 1, "b": 1})

	// Forward lookups keep both keys.
	va, _ := m.Lookup("a")
	vb, _ := m.Lookup("b")
	assert.Equal(t, 1, va)
	assert.Equal(t, 1, vb)

	// Reverse lookup resolves to one of them.
	k, ok := m.RLookup(1)
	require.True(t, ok)
	assert.Contains(t, []string{"a", "b"}, k)
}
