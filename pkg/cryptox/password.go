package cryptox

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/scrypt"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrCorruptCredential means a stored hash could not be parsed. It is never
	// a plain mismatch: the record itself is damaged.
	ErrCorruptCredential = errors.New("cryptox: corrupt credential")
)

// Params are the scrypt cost parameters. They are not encoded in the stored
// hash, so changing them invalidates every existing credential.
type Params struct {
	N       int // CPU/memory cost, power of two
	R       int // block size
	P       int // parallelisation
	KeyLen  int // derived key length in bytes
	SaltLen int // salt length in bytes
}

// DefaultParams: N=2^15, r=8, p=1, 64 byte key, 16 byte salt (32 MiB per hash).
var DefaultParams = Params{
	N:       1 << 15,
	R:       8,
	P:       1,
	KeyLen:  64,
	SaltLen: 16,
}

const hashSeparator = "."

// Hasher derives and verifies password hashes in the form
// hex(derivedKey) + "." + hex(salt).
//
// Derivation is CPU and memory bound, so a Hasher only runs a bounded number
// of derivations at once. Callers beyond that limit wait on the semaphore (or
// give up when their context ends) instead of piling onto the scheduler.
type Hasher struct {
	params Params
	pepper string
	sem    *semaphore.Weighted
}

// NewHasher creates a Hasher. A zero maxConcurrent defaults to GOMAXPROCS.
func NewHasher(params Params, pepper string, maxConcurrent int) *Hasher {
	if maxConcurrent <= 0 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &Hasher{
		params: params,
		pepper: pepper,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Hash returns the encoded hash for password using a fresh random salt.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: generate salt: %w", err)
	}

	key, err := h.derive(ctx, password, salt)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(key) + hashSeparator + hex.EncodeToString(salt), nil
}

// Verify reports whether password matches stored. A malformed stored value
// returns ErrCorruptCredential rather than false.
func (h *Hasher) Verify(ctx context.Context, password, stored string) (bool, error) {
	keyHex, saltHex, ok := strings.Cut(stored, hashSeparator)
	if !ok || keyHex == "" || saltHex == "" {
		return false, ErrCorruptCredential
	}

	expected, err := hex.DecodeString(keyHex)
	if err != nil {
		return false, fmt.Errorf("%w: key: %v", ErrCorruptCredential, err)
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrCorruptCredential, err)
	}
	if len(expected) != h.params.KeyLen {
		return false, fmt.Errorf("%w: key length %d", ErrCorruptCredential, len(expected))
	}

	computed, err := h.derive(ctx, password, salt)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// Decoy spends the same effort as Verify without a stored hash. Login uses it
// for unknown accounts so response time does not reveal which emails exist.
func (h *Hasher) Decoy(ctx context.Context, password string) {
	salt := make([]byte, h.params.SaltLen)
	_, _ = h.derive(ctx, password, salt)
}

func (h *Hasher) derive(ctx context.Context, password string, salt []byte) ([]byte, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.sem.Release(1)

	key, err := scrypt.Key([]byte(password+h.pepper), salt, h.params.N, h.params.R, h.params.P, h.params.KeyLen)
	if err != nil {
		return nil, fmt.Errorf("cryptox: scrypt: %w", err)
	}
	return key, nil
}
