// Package cipher obscures and authenticates token bytes.
//
// It supports two protections:
//   - Encrypted: AES-256-GCM with a synthetic nonce - fully opaque
//   - Signed: truncated HMAC-SHA256 - visible but tamper-proof
//
// Encryption is deterministic per key. The nonce is derived from the
// plaintext (SIV style), so the same input always yields the same output and
// no random state has to travel with the ciphertext beyond the nonce itself.
package cipher

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the size of generated secrets and derived subkeys.
	KeySize = 32

	// NonceSize is the GCM nonce size prepended to every ciphertext.
	NonceSize = 12

	// TagSize is the GCM authentication tag size.
	TagSize = 16

	// Overhead is the number of bytes Encrypt adds to its input.
	Overhead = NonceSize + TagSize

	// SignatureSize is the number of bytes Sign appends to its input.
	SignatureSize = 16
)

var (
	ErrEmptyKey         = errors.New("cipher: empty key")
	ErrDecryptFailed    = errors.New("cipher: decryption failed")
	ErrSignatureInvalid = errors.New("cipher: signature verification failed")
)

var hkdfSalt = []byte("persist-token-v1")

// Cipher holds immutable key material. It is safe for concurrent use.
type Cipher struct {
	gcm     cipher.AEAD
	sivKey  []byte
	signKey []byte
}

// New creates a Cipher from an operator secret of any length.
// Subkeys are stretched from the secret with HKDF-SHA256.
func New(secret []byte) (*Cipher, error) {
	if len(secret) == 0 {
		return nil, ErrEmptyKey
	}

	encKey, err := derive(secret, "aes-gcm")
	if err != nil {
		return nil, err
	}
	sivKey, err := derive(secret, "siv-nonce")
	if err != nil {
		return nil, err
	}
	signKey, err := derive(secret, "hmac-sign")
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Cipher{
		gcm:     gcm,
		sivKey:  sivKey,
		signKey: signKey,
	}, nil
}

// GenerateKey returns KeySize bytes of cryptographically random data.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cipher: generate key: %w", err)
	}
	return key, nil
}

// Generate creates a Cipher from a fresh random secret.
// Anything it encrypts or signs is unreadable once the process exits.
func Generate() (*Cipher, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	return New(key)
}

func derive(secret []byte, purpose string) ([]byte, error) {
	r := hkdf.New(sha256.New, secret, hkdfSalt, []byte(purpose))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("cipher: derive %s key: %w", purpose, err)
	}
	return key, nil
}

// Encrypt returns nonce || ciphertext || tag.
func (c *Cipher) Encrypt(plaintext []byte) []byte {
	nonce := c.syntheticNonce(plaintext)
	out := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	copy(out, nonce)
	return c.gcm.Seal(out, nonce, plaintext, nil)
}

// Decrypt reverses Encrypt. Any modification of the input yields
// ErrDecryptFailed.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < Overhead {
		return nil, ErrDecryptFailed
	}

	nonce := ciphertext[:NonceSize]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext[NonceSize:], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}

	// The nonce is a function of the plaintext; a mismatch means the
	// ciphertext was not produced by Encrypt under this key.
	if !hmac.Equal(nonce, c.syntheticNonce(plaintext)) {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// Sign returns data || mac, where mac is a truncated HMAC-SHA256.
func (c *Cipher) Sign(data []byte) []byte {
	out := make([]byte, 0, len(data)+SignatureSize)
	out = append(out, data...)
	return append(out, c.mac(c.signKey, data)[:SignatureSize]...)
}

// Verify checks a value produced by Sign and returns the original data.
func (c *Cipher) Verify(signed []byte) ([]byte, error) {
	if len(signed) < SignatureSize {
		return nil, ErrSignatureInvalid
	}

	split := len(signed) - SignatureSize
	data, sig := signed[:split], signed[split:]
	if !hmac.Equal(sig, c.mac(c.signKey, data)[:SignatureSize]) {
		return nil, ErrSignatureInvalid
	}
	return data, nil
}

func (c *Cipher) syntheticNonce(plaintext []byte) []byte {
	return c.mac(c.sivKey, plaintext)[:NonceSize]
}

func (c *Cipher) mac(key, data []byte) []byte {
	m := hmac.New(sha256.New, key)
	m.Write(data)
	return m.Sum(nil)
}
