// Package cryptoutil seals values the server stores outside its own memory.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// Versioned prefix so the algorithm or key can rotate without a migration.
const sealedPrefixV1 = "v1:"

// ErrUnknownFormat is returned by Open for payloads without a known version prefix.
var ErrUnknownFormat = errors.New("unknown sealed payload format")

// Sealer encrypts and decrypts opaque payloads.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// ParseKey decodes a 32-byte key given as 64 hex characters or base64.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) == hex.EncodedLen(KeySize) {
		if key, err := hex.DecodeString(s); err == nil {
			return key, nil
		}
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if key, err := enc.DecodeString(s); err == nil {
			if len(key) != KeySize {
				return nil, fmt.Errorf("key must decode to %d bytes, got %d", KeySize, len(key))
			}
			return key, nil
		}
	}
	return nil, errors.New("key must be 64 hex characters or base64")
}

// AESGCMSealer seals with AES-256-GCM and a random nonce per payload.
type AESGCMSealer struct {
	aead cipher.AEAD
}

// NewAESGCMSealer builds a sealer for a 32-byte key.
func NewAESGCMSealer(key []byte) (*AESGCMSealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("aes-gcm key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &AESGCMSealer{aead: aead}, nil
}

// Seal returns "v1:" followed by base64(nonce||ciphertext).
func (s *AESGCMSealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	raw := s.aead.Seal(nonce, nonce, plaintext, nil)

	out := make([]byte, len(sealedPrefixV1)+base64.StdEncoding.EncodedLen(len(raw)))
	copy(out, sealedPrefixV1)
	base64.StdEncoding.Encode(out[len(sealedPrefixV1):], raw)
	return out, nil
}

// Open reverses Seal.
func (s *AESGCMSealer) Open(sealed []byte) ([]byte, error) {
	body, ok := strings.CutPrefix(string(sealed), sealedPrefixV1)
	if !ok {
		return nil, ErrUnknownFormat
	}
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("decode sealed payload: %w", err)
	}
	n := s.aead.NonceSize()
	if len(raw) < n {
		return nil, errors.New("sealed payload too short")
	}
	return s.aead.Open(nil, raw[:n], raw[n:], nil)
}

// Plaintext is the Sealer used when no key is configured.
type Plaintext struct{}

func (Plaintext) Seal(plaintext []byte) ([]byte, error) { return plaintext, nil }

func (Plaintext) Open(sealed []byte) ([]byte, error) { return sealed, nil }
