package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/elicat001/ai-smart-pomodoro-timer/internal/obfuscate"
)

// Transform converts plaintext JSON to its stored form and back.
type Transform interface {
	Name() string
	Encode(plain []byte) ([]byte, error)
	Decode(stored []byte) ([]byte, error)
}

const (
	TransformIdentity = "identity"
	TransformXOR      = "xor"
	TransformSealed   = "sealed"
)

var ErrSealedCorrupt = errors.New("storage: sealed value is corrupt or the secret is wrong")

// Identity stores plaintext JSON.
type Identity struct{}

func (Identity) Name() string                        { return TransformIdentity }
func (Identity) Encode(plain []byte) ([]byte, error) { return plain, nil }
func (Identity) Decode(stored []byte) ([]byte, error) {
	return stored, nil
}

// XOR applies the reversible obfuscation transform with a fixed key.
type XOR struct {
	key string
}

func NewXOR(key string) (XOR, error) {
	if key == "" {
		return XOR{}, obfuscate.ErrEmptyKey
	}
	return XOR{key: key}, nil
}

func (x XOR) Name() string { return TransformXOR }

func (x XOR) Encode(plain []byte) ([]byte, error) {
	return obfuscate.EncodeBytes(plain, x.key)
}

func (x XOR) Decode(stored []byte) ([]byte, error) {
	return obfuscate.DecodeBytes(stored, x.key)
}

// Argon2id parameters for the Sealed key. The salt is derived from the namespace.
const (
	sealedTime    = 2
	sealedMemory  = 19 * 1024
	sealedThreads = 1
)

// Sealed encrypts values with XChaCha20-Poly1305. Stored form is
// base64(nonce || ciphertext).
type Sealed struct {
	aead cipher.AEAD
}

func NewSealed(secret, namespace string) (*Sealed, error) {
	if secret == "" {
		return nil, errors.New("storage: sealed transform needs a secret")
	}
	key := argon2.IDKey([]byte(secret), []byte("aipomodoro:"+namespace), sealedTime, sealedMemory, sealedThreads, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("storage: init sealed transform: %w", err)
	}
	return &Sealed{aead: aead}, nil
}

func (s *Sealed) Name() string { return TransformSealed }

func (s *Sealed) Encode(plain []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("storage: read nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, plain, nil)
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sealed)))
	base64.StdEncoding.Encode(out, sealed)
	return out, nil
}

func (s *Sealed) Decode(stored []byte) ([]byte, error) {
	raw := make([]byte, base64.StdEncoding.DecodedLen(len(stored)))
	n, err := base64.StdEncoding.Decode(raw, stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealedCorrupt, err)
	}
	raw = raw[:n]
	if len(raw) < s.aead.NonceSize() {
		return nil, ErrSealedCorrupt
	}
	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSealedCorrupt
	}
	return plain, nil
}
