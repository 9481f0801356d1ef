package cryptox

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"
	"errors"
	"math/big"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltSize       = 16
	minRSABits     = 2048
	maxKDFTime     = 16
	maxKDFMemory   = 1 << 20 // 1 GiB in KiB
	pemTypePublic  = "PUBLIC KEY"
	wrapHeaderSize = 4 + 4 + 4 + 1 + saltSize + NonceSize
)

var wrapMagic = []byte("FSK1")

var (
	ErrUnwrapFailed     = errors.New("private key unwrap failed")
	ErrInvalidPublicKey = errors.New("invalid public key")
	ErrWeakKeySize      = errors.New("rsa key size below 2048 bits")
)

// KDFParams are the Argon2id cost parameters used to derive a key-encryption
// key from a password. They are stored in the wrapped blob.
type KDFParams struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultKDFParams: m=64 MiB, t=2, p=1.
var DefaultKDFParams = KDFParams{Time: 2, MemoryKiB: 64 * 1024, Threads: 1}

func GenerateKeyPair(bits int) (*rsa.PrivateKey, error) {
	if bits < minRSABits {
		return nil, ErrWeakKeySize
	}
	return rsa.GenerateKey(rand.Reader, bits)
}

func EncodePublicKey(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: pemTypePublic, Bytes: der})), nil
}

func ParsePublicKey(s string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(s))
	if block == nil || block.Type != pemTypePublic {
		return nil, ErrInvalidPublicKey
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok || pub.N.BitLen() < minRSABits {
		return nil, ErrInvalidPublicKey
	}
	return pub, nil
}

// WrapPrivateKey seals the PKCS#8 form of priv under an Argon2id-derived key.
// Layout: MAGIC | t(4) | m(4) | p(1) | salt(16) | nonce(24) | ct.
func WrapPrivateKey(priv *rsa.PrivateKey, password []byte, p KDFParams) ([]byte, error) {
	if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 {
		p = DefaultKDFParams
	}
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, err
	}
	defer WipeByteArray(der)

	salt := make([]byte, saltSize)
	if _, err = rand.Read(salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err = rand.Read(nonce); err != nil {
		return nil, err
	}

	kek := argon2.IDKey(password, salt, p.Time, p.MemoryKiB, p.Threads, SymmetricKeySize)
	defer WipeByteArray(kek)
	aead, err := chacha20poly1305.NewX(kek)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(wrapMagic)+wrapHeaderSize+len(der)+TagSize)
	out = append(out, wrapMagic...)
	out = binary.BigEndian.AppendUint32(out, p.Time)
	out = binary.BigEndian.AppendUint32(out, p.MemoryKiB)
	out = append(out, p.Threads)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, der, nil)

	return out, nil
}

// UnwrapPrivateKey re-derives the key-encryption key from password and opens
// blob. Every failure is reported as ErrUnwrapFailed. Callers must
// WipePrivateKey the result once done.
func UnwrapPrivateKey(blob, password []byte) (*rsa.PrivateKey, error) {
	if len(blob) < len(wrapMagic)+wrapHeaderSize+TagSize || string(blob[:len(wrapMagic)]) != string(wrapMagic) {
		return nil, ErrUnwrapFailed
	}
	off := len(wrapMagic)
	t := binary.BigEndian.Uint32(blob[off:])
	off += 4
	m := binary.BigEndian.Uint32(blob[off:])
	off += 4
	threads := blob[off]
	off++
	if t == 0 || t > maxKDFTime || m == 0 || m > maxKDFMemory || threads == 0 {
		return nil, ErrUnwrapFailed
	}
	salt := blob[off : off+saltSize]
	off += saltSize
	nonce := blob[off : off+NonceSize]
	off += NonceSize

	kek := argon2.IDKey(password, salt, t, m, threads, SymmetricKeySize)
	defer WipeByteArray(kek)
	aead, err := chacha20poly1305.NewX(kek)
	if err != nil {
		return nil, ErrUnwrapFailed
	}
	der, err := aead.Open(nil, nonce, blob[off:], nil)
	if err != nil {
		return nil, ErrUnwrapFailed
	}
	defer WipeByteArray(der)

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, ErrUnwrapFailed
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, ErrUnwrapFailed
	}

	return priv, nil
}

// WipePrivateKey zeroes the private components of priv in place.
func WipePrivateKey(priv *rsa.PrivateKey) {
	if priv == nil {
		return
	}
	wipeInt(priv.D)
	for _, p := range priv.Primes {
		wipeInt(p)
	}
	wipeInt(priv.Precomputed.Dp)
	wipeInt(priv.Precomputed.Dq)
	wipeInt(priv.Precomputed.Qinv)
}

func wipeInt(x *big.Int) {
	if x == nil {
		return
	}
	words := x.Bits()
	for i := range words {
		words[i] = 0
	}
	x.SetInt64(0)
}
