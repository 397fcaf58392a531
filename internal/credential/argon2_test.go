package credential

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPassword      = "SecurePassword123!"
	testWrongPassword = "WrongPassword456!"
)

// cheap parameters keep the suite fast; the format is identical
var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHash_Format(t *testing.T) {
	h := NewHasher(testParams)

	hash, err := h.Hash(testPassword)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.NotContains(t, hash, testPassword)
}

func TestVerify_CorrectAndIncorrect(t *testing.T) {
	h := NewHasher(testParams)
	hash, err := h.Hash(testPassword)
	require.NoError(t, err)

	ok, err := h.Verify(testPassword, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(testWrongPassword, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_UniqueSalt(t *testing.T) {
	h := NewHasher(testParams)

	a, err := h.Hash(testPassword)
	require.NoError(t, err)
	b, err := h.Hash(testPassword)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerify_UsesParamsFromHash(t *testing.T) {
	hash, err := NewHasher(testParams).Hash(testPassword)
	require.NoError(t, err)

	// A hasher configured differently still verifies older hashes
	ok, err := NewHasher(Params{Memory: 2048, Iterations: 2, Parallelism: 2, SaltLength: 8, KeyLength: 16}).
		Verify(testPassword, hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_PlaintextStoredValueRejected(t *testing.T) {
	ok, err := NewHasher(testParams).Verify("secret1", "secret1")

	assert.ErrorIs(t, err, ErrInvalidHash)
	assert.False(t, ok)
}

func TestVerify_MalformedHashes(t *testing.T) {
	h := NewHasher(testParams)
	testCases := []struct {
		name     string
		hash     string
		expected error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong algorithm", "$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$a2V5", ErrInvalidHash},
		{"bad version", "$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5", ErrIncompatibleVersion},
		{"bad params", "$argon2id$v=19$mem=1$c2FsdA$a2V5", ErrInvalidHash},
		{"bad salt", "$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5", ErrInvalidHash},
		{"bad key", "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$!!!", ErrInvalidHash},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := h.Verify(testPassword, tc.hash)
			assert.ErrorIs(t, err, tc.expected)
			assert.False(t, ok)
		})
	}
}
