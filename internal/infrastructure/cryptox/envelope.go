// Package cryptox holds the cryptographic primitives of the service: envelope
// encryption of shared files, password wrapping of private keys and the
// password hash used for optional download gates.
package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// SymmetricKeySize is the XChaCha20-Poly1305 key length.
	SymmetricKeySize = chacha20poly1305.KeySize
	// NonceSize is the XChaCha20-Poly1305 extended nonce length.
	NonceSize = chacha20poly1305.NonceSizeX
	// TagSize is the Poly1305 authentication tag length.
	TagSize = chacha20poly1305.Overhead

	keyBundleSize = SymmetricKeySize + NonceSize
)

var (
	// ErrDecryptionFailed is the only error Open reports, whichever stage failed.
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrEmptyPlaintext   = errors.New("plaintext is empty")
	ErrNoRecipientKey   = errors.New("recipient public key is required")
)

// Sealed is a payload encrypted for exactly one recipient.
type Sealed struct {
	Ciphertext []byte
	WrappedKey []byte
}

// Seal encrypts plaintext under a fresh random key and nonce and wraps
// key||nonce with RSA-OAEP(SHA-256) for pub.
func Seal(plaintext []byte, pub *rsa.PublicKey) (*Sealed, error) {
	if pub == nil {
		return nil, ErrNoRecipientKey
	}
	if len(plaintext) == 0 {
		return nil, ErrEmptyPlaintext
	}

	bundle := make([]byte, keyBundleSize)
	defer WipeByteArray(bundle)
	if _, err := rand.Read(bundle); err != nil {
		return nil, err
	}
	key, nonce := bundle[:SymmetricKeySize], bundle[SymmetricKeySize:]

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, plaintext, nil)

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, bundle, nil)
	if err != nil {
		return nil, err
	}

	return &Sealed{Ciphertext: ct, WrappedKey: wrapped}, nil
}

// Open reverses Seal. Any failure, including malformed input, yields
// ErrDecryptionFailed.
func Open(ciphertext, wrappedKey []byte, priv *rsa.PrivateKey) ([]byte, error) {
	if priv == nil || len(ciphertext) < TagSize || len(wrappedKey) != priv.Size() {
		return nil, ErrDecryptionFailed
	}

	bundle, err := rsa.DecryptOAEP(sha256.New(), nil, priv, wrappedKey, nil)
	if err != nil || len(bundle) != keyBundleSize {
		return nil, ErrDecryptionFailed
	}
	defer WipeByteArray(bundle)

	aead, err := chacha20poly1305.NewX(bundle[:SymmetricKeySize])
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	plain, err := aead.Open(nil, bundle[SymmetricKeySize:], ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plain, nil
}

// WipeByteArray zeroes b in place.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
