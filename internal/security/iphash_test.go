package security_test

import (
	"strings"
	"testing"

	"doctrust-server/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIPHasher_EmptyKey(t *testing.T) {
	_, err := security.NewIPHasher("")
	assert.Error(t, err)
}

func TestNewIPHasher_KeyTooLong(t *testing.T) {
	_, err := security.NewIPHasher(strings.Repeat("k", 65))
	assert.Error(t, err)
}

func TestIPHasher_Deterministic(t *testing.T) {
	hasher, err := security.NewIPHasher("test-key")
	require.NoError(t, err)

	h1 := hasher.Hash("203.0.113.7")
	h2 := hasher.Hash("203.0.113.7")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "203.0.113.7")
}

func TestIPHasher_DifferentKeysDifferentDigests(t *testing.T) {
	h1, err := security.NewIPHasher("key-one")
	require.NoError(t, err)
	h2, err := security.NewIPHasher("key-two")
	require.NoError(t, err)

	assert.NotEqual(t, h1.Hash("203.0.113.7"), h2.Hash("203.0.113.7"))
}

func TestIPHasher_DifferentIPsDifferentDigests(t *testing.T) {
	hasher, err := security.NewIPHasher("test-key")
	require.NoError(t, err)

	assert.NotEqual(t, hasher.Hash("203.0.113.7"), hasher.Hash("203.0.113.8"))
}
