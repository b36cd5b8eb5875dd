package password

import (
	"context"
	"strings"
	"testing"

	"github.com/go-authix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testParams = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(testParams, 2)
	ctx := context.Background()

	encoded, err := h.Hash(ctx, "Str0ng#Pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify(ctx, "Str0ng#Pass", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	h := NewHasher(testParams, 1)
	a, err := h.Hash(context.Background(), "same-password")
	require.NoError(t, err)
	b, err := h.Hash(context.Background(), "same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerify_UsesParamsFromHash(t *testing.T) {
	encoded, err := NewHasher(testParams, 1).Hash(context.Background(), "Str0ng#Pass")
	require.NoError(t, err)

	// a hasher configured with different costs still verifies older hashes
	ok, err := NewHasher(DefaultParams, 1).Verify(context.Background(), "Str0ng#Pass", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_LegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("oldpass1"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := NewHasher(testParams, 1).Verify(context.Background(), "oldpass1", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_MalformedHashIsMismatch(t *testing.T) {
	ok, err := NewHasher(testParams, 1).Verify(context.Background(), "x", "$argon2id$garbage")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHash_CancelledContext(t *testing.T) {
	h := NewHasher(testParams, 1)
	require.NoError(t, h.sem.Acquire(context.Background(), 1)) // occupy the only worker
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Hash(ctx, "Str0ng#Pass")
	assert.ErrorIs(t, err, domain.ErrInfrastructure)
	assert.ErrorIs(t, err, context.Canceled)
}
