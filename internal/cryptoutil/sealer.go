// Package cryptoutil seals session records at rest.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sealer encrypts and decrypts opaque records.
type Sealer interface {
	Seal(plaintext []byte) (string, error)
	Open(sealed string) ([]byte, error)
}

const (
	// Versioned prefix to allow future key/algorithm rotations.
	sealedPrefixV1 = "v1:"
	plainPrefix    = "plain:"
)

// ErrUnsealed is returned by Open when the record carries no known prefix.
var ErrUnsealed = errors.New("record is not sealed")

// AESGCMSealer implements Sealer using AES-256-GCM.
type AESGCMSealer struct {
	aead cipher.AEAD
}

// NewAESGCMSealer constructs a sealer. Key must be 32 bytes (AES-256).
func NewAESGCMSealer(key []byte) (*AESGCMSealer, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("aes-gcm key must be 32 bytes, got %d", len(key))
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

// KeyFromString derives a 32-byte key. A 64-character hex string is used
// as-is; anything else is hashed with SHA-256.
func KeyFromString(key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("sealing key is required")
	}
	if decoded, err := hex.DecodeString(key); err == nil && len(decoded) == 32 {
		return decoded, nil
	}
	sum := sha256.Sum256([]byte(key))
	return sum[:], nil
}

// Seal encrypts plaintext with a random nonce and returns a versioned base64 string.
func (s *AESGCMSealer) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	// nonce||ciphertext
	out := s.aead.Seal(nonce, nonce, plaintext, nil)
	return sealedPrefixV1 + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a string produced by Seal. Records written by PlainSealer
// are accepted so enabling a key does not invalidate existing sessions.
func (s *AESGCMSealer) Open(sealed string) ([]byte, error) {
	if strings.HasPrefix(sealed, plainPrefix) {
		return PlainSealer{}.Open(sealed)
	}
	if !strings.HasPrefix(sealed, sealedPrefixV1) {
		return nil, ErrUnsealed
	}
	data, err := base64.StdEncoding.DecodeString(sealed[len(sealedPrefixV1):])
	if err != nil {
		return nil, fmt.Errorf("decode sealed record: %w", err)
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return nil, errors.New("sealed record too short")
	}
	pt, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("open sealed record: %w", err)
	}
	return pt, nil
}

// PlainSealer stores records base64-encoded behind a marker prefix.
type PlainSealer struct{}

func (PlainSealer) Seal(plaintext []byte) (string, error) {
	return plainPrefix + base64.StdEncoding.EncodeToString(plaintext), nil
}

func (PlainSealer) Open(sealed string) ([]byte, error) {
	if !strings.HasPrefix(sealed, plainPrefix) {
		return nil, ErrUnsealed
	}
	return base64.StdEncoding.DecodeString(sealed[len(plainPrefix):])
}

// SealJSON marshals v and seals it. A nil sealer yields plain JSON.
func SealJSON(s Sealer, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	if s == nil {
		return raw, nil
	}
	sealed, err := s.Seal(raw)
	if err != nil {
		return nil, fmt.Errorf("seal record: %w", err)
	}
	return []byte(sealed), nil
}

// OpenJSON reverses SealJSON. Plain JSON is accepted with or without a sealer.
func OpenJSON(s Sealer, data []byte, v any) error {
	raw := data
	if s != nil && !looksLikeJSON(data) {
		opened, err := s.Open(string(data))
		if err != nil {
			return err
		}
		raw = opened
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{")
}
