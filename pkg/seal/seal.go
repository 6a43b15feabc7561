// Package seal provides authenticated encryption for records at rest.
//
// The cipher is chosen by hardware: AES-GCM where AES instructions are
// available (amd64, arm64), ChaCha20-Poly1305 elsewhere. Sealed payloads
// carry the random nonce as a prefix, so a Sealer is stateless.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = 32

// ErrInvalidKey indicates the key has the wrong length.
var ErrInvalidKey = errors.New("seal: key must be 32 bytes")

// Sealer provides authenticated encryption with associated data.
type Sealer struct {
	aead cipher.AEAD
	name string
}

// New creates a Sealer, selecting the cipher for the current hardware.
func New(key []byte) (*Sealer, error) {
	if preferAES() {
		return NewAESGCM(key)
	}
	return NewChaCha20(key)
}

// NewAESGCM creates an AES-256-GCM Sealer.
func NewAESGCM(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead, name: "aes-gcm"}, nil
}

// NewChaCha20 creates a ChaCha20-Poly1305 Sealer.
func NewChaCha20(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead, name: "chacha20-poly1305"}, nil
}

// Name returns the selected cipher name.
func (s *Sealer) Name() string { return s.name }

// Seal encrypts plaintext, binding additionalData into the auth tag.
// The returned payload is nonce || ciphertext.
func (s *Sealer) Seal(plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Open decrypts a payload produced by Seal.
func (s *Sealer) Open(payload, additionalData []byte) ([]byte, error) {
	if len(payload) < s.aead.NonceSize() {
		return nil, errors.New("seal: payload too short")
	}
	nonce := payload[:s.aead.NonceSize()]
	return s.aead.Open(nil, nonce, payload[s.aead.NonceSize():], additionalData)
}

// Go uses AES hardware instructions on these architectures.
func preferAES() bool {
	switch runtime.GOARCH {
	case "amd64", "arm64":
		return true
	default:
		return false
	}
}
