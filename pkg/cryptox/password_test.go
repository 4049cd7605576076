package cryptox

import (
	"context"
	"encoding/hex"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var testParams = Params{N: 1 << 10, R: 8, P: 1, KeyLen: 64, SaltLen: 16}

func newTestHasher() *Hasher {
	return NewHasher(testParams, "test-pepper", 0)
}

func TestHash_Format(t *testing.T) {
	h := newTestHasher()

	hash, err := h.Hash(context.Background(), "password123")
	require.NoError(t, err)

	key, salt, ok := strings.Cut(hash, ".")
	require.True(t, ok, "hash should contain a separator")

	rawKey, err := hex.DecodeString(key)
	require.NoError(t, err)
	require.Len(t, rawKey, testParams.KeyLen)

	rawSalt, err := hex.DecodeString(salt)
	require.NoError(t, err)
	require.Len(t, rawSalt, testParams.SaltLen)
}

func TestHash_UniqueSalts(t *testing.T) {
	h := newTestHasher()
	ctx := context.Background()

	hash1, err := h.Hash(ctx, "samepassword")
	require.NoError(t, err)
	hash2, err := h.Hash(ctx, "samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
}

func TestVerify_RoundTrip(t *testing.T) {
	h := newTestHasher()
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 200)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"contains separator", "dots.in.the.password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(ctx, tt.password)
			require.NoError(t, err)

			ok, err := h.Verify(ctx, tt.password, hash)
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	h := newTestHasher()
	ctx := context.Background()

	hash, err := h.Hash(ctx, "correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", "", "correct-passwor"} {
		ok, err := h.Verify(ctx, wrong, hash)
		require.NoError(t, err, "mismatch is not an error")
		require.False(t, ok, "password %q should not verify", wrong)
	}
}

func TestVerify_PepperMatters(t *testing.T) {
	ctx := context.Background()

	hash, err := NewHasher(testParams, "pepper-a", 1).Hash(ctx, "secret")
	require.NoError(t, err)

	ok, err := NewHasher(testParams, "pepper-b", 1).Verify(ctx, "secret", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerify_CorruptCredential(t *testing.T) {
	h := newTestHasher()

	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"missing separator", strings.Repeat("ab", 64)},
		{"empty key", ".00112233445566778899aabbccddeeff"},
		{"empty salt", strings.Repeat("ab", 64) + "."},
		{"bad key hex", "zz." + strings.Repeat("00", 16)},
		{"bad salt hex", strings.Repeat("ab", 64) + ".xyz"},
		{"short key", "abcd." + strings.Repeat("00", 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(context.Background(), "whatever", tt.stored)
			require.ErrorIs(t, err, ErrCorruptCredential)
			require.False(t, ok)
		})
	}
}

func TestHash_RespectsCancelledContext(t *testing.T) {
	h := NewHasher(testParams, "", 1)

	// Hold the only slot so the next derivation has to wait.
	require.NoError(t, h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "password")
	require.ErrorIs(t, err, context.Canceled)
}

func TestHash_ConcurrentCallers(t *testing.T) {
	h := NewHasher(testParams, "", 2)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hash, err := h.Hash(ctx, "concurrent")
			if err != nil {
				errs <- err
				return
			}
			ok, err := h.Verify(ctx, "concurrent", hash)
			if err == nil && !ok {
				err = ErrCorruptCredential
			}
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestDefaultParamsAreDocumented(t *testing.T) {
	require.Equal(t, 1<<15, DefaultParams.N)
	require.Equal(t, 8, DefaultParams.R)
	require.Equal(t, 1, DefaultParams.P)
	require.Equal(t, 64, DefaultParams.KeyLen)
	require.Equal(t, 16, DefaultParams.SaltLen)
}
