// Package cryptobox provides reversible authenticated encryption for
// individual field values.
//
// The envelope is base64(nonce || box) using NaCl secretbox: a fresh 24-byte
// nonce per call, XSalsa20 encryption, Poly1305 authentication. The envelope
// carries everything needed for decryption except the key, which is supplied
// once at process start and never persisted or logged.
package cryptobox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"

	dErrors "medivault/pkg/domain-errors"
)

// KeySize is the secretbox key length in bytes.
const KeySize = 32

const nonceSize = 24

// Codec encrypts and decrypts field values under a single symmetric key.
type Codec struct {
	key [KeySize]byte
}

// New builds a Codec from a raw 32-byte key.
func New(key [KeySize]byte) *Codec {
	return &Codec{key: key}
}

// NewFromBase64 builds a Codec from a base64-encoded key, the form the key
// takes in the external secret source.
func NewFromBase64(encoded string) (*Codec, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "encryption key is not valid base64")
	}
	if len(raw) != KeySize {
		return nil, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("encryption key must be %d bytes", KeySize))
	}
	var key [KeySize]byte
	copy(key[:], raw)
	return &Codec{key: key}, nil
}

// GenerateKey returns a fresh random key, base64-encoded. Intended for
// provisioning tooling and tests, not for runtime key management.
func GenerateKey() (string, error) {
	var key [KeySize]byte
	if _, err := rand.Read(key[:]); err != nil {
		return "", fmt.Errorf("could not generate key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(key[:]), nil
}

// Encrypt seals plaintext into an envelope. The nonce is random per call, so
// encrypting the same plaintext twice yields different envelopes.
func (c *Codec) Encrypt(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("could not generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens an envelope. Any authentication failure or malformed envelope
// yields CodeDecryptionFailed with no partial output.
func (c *Codec) Decrypt(envelope string) (string, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(envelope)
	if err != nil {
		return "", dErrors.New(dErrors.CodeDecryptionFailed, "malformed ciphertext envelope")
	}
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", dErrors.New(dErrors.CodeDecryptionFailed, "ciphertext envelope too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &c.key)
	if !ok {
		return "", dErrors.New(dErrors.CodeDecryptionFailed, "ciphertext authentication failed")
	}
	return string(plaintext), nil
}
