// Package sealed encrypts slot values before they reach another
// SlotStorage. Keys are derived with HKDF-SHA256 from a configured secret and
// values are sealed with XChaCha20-Poly1305, bound to their slot name.
package sealed

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/sunrise-apartments/portal/internal/core/ports"
)

const keyInfo = "portal-session-slots-v1"

var ErrTampered = errors.New("sealed slot could not be opened")

// Storage wraps inner, sealing values on Set and opening them on Get.
type Storage struct {
	inner ports.SlotStorage
	key   []byte
}

var _ ports.SlotStorage = (*Storage)(nil)

// New derives the sealing key from secret.
func New(inner ports.SlotStorage, secret string) (*Storage, error) {
	if secret == "" {
		return nil, errors.New("sealed storage: empty secret")
	}
	key, err := deriveKey([]byte(secret))
	if err != nil {
		return nil, err
	}
	return &Storage{inner: inner, key: key}, nil
}

func deriveKey(secret []byte) ([]byte, error) {
	h := hkdf.New(sha256.New, secret, nil, []byte(keyInfo))
	out := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, fmt.Errorf("sealed storage: derive key: %w", err)
	}
	return out, nil
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	raw, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	plain, err := s.open(key, raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrTampered, key, err)
	}
	return plain, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Ping forwards to the wrapped storage when it supports it.
func (s *Storage) Ping(ctx context.Context) error {
	if p, ok := s.inner.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (s *Storage) seal(slot, value string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ct := aead.Seal(nonce, nonce, []byte(value), []byte(slot))
	return base64.StdEncoding.EncodeToString(ct), nil
}

func (s *Storage) open(slot, encoded string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	ns := aead.NonceSize()
	if len(blob) < ns {
		return "", errors.New("ciphertext too short")
	}
	plain, err := aead.Open(nil, blob[:ns], blob[ns:], []byte(slot))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
