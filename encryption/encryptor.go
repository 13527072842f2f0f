package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrCiphertextTooShort is returned by Open for input shorter than a nonce.
var ErrCiphertextTooShort = errors.New("encryption: ciphertext too short")

// Encryptor seals and opens byte payloads. Output of Seal is nonce||ciphertext.
type Encryptor interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// Algorithm represents supported encryption algorithms.
type Algorithm string

const (
	// AlgorithmXChaCha20 is XChaCha20-Poly1305 with a 24-byte random nonce.
	AlgorithmXChaCha20 Algorithm = "xchacha20-poly1305"
	// AlgorithmAESGCM is AES-256-GCM.
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
)

// Option configures the encryptor.
type Option func(*options)

type options struct {
	algorithm Algorithm
	info      string
}

// WithAlgorithm selects the cipher (default: XChaCha20-Poly1305).
func WithAlgorithm(alg Algorithm) Option {
	return func(o *options) { o.algorithm = alg }
}

// WithContext binds derived keys to a purpose string, so the same
// passphrase yields unrelated keys for different stores.
func WithContext(info string) Option {
	return func(o *options) { o.info = info }
}

// New creates an Encryptor from a passphrase. The 256-bit key is derived
// with HKDF-SHA256.
func New(passphrase string, opts ...Option) (Encryptor, error) {
	if passphrase == "" {
		return nil, errors.New("encryption: empty passphrase")
	}
	o := &options{algorithm: AlgorithmXChaCha20, info: "gopocket"}
	for _, opt := range opts {
		opt(o)
	}

	key, err := deriveKey(passphrase, o.info)
	if err != nil {
		return nil, err
	}

	var aead cipher.AEAD
	switch o.algorithm {
	case AlgorithmXChaCha20:
		aead, err = chacha20poly1305.NewX(key)
	case AlgorithmAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(key)
		if err == nil {
			aead, err = cipher.NewGCM(block)
		}
	default:
		return nil, fmt.Errorf("encryption: unknown algorithm %q", o.algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", o.algorithm, err)
	}
	return &aeadEncryptor{aead: aead}, nil
}

func deriveKey(passphrase, info string) ([]byte, error) {
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(passphrase), nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}

type aeadEncryptor struct {
	aead cipher.AEAD
}

func (e *aeadEncryptor) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (e *aeadEncryptor) Open(sealed []byte) ([]byte, error) {
	n := e.aead.NonceSize()
	if len(sealed) < n {
		return nil, ErrCiphertextTooShort
	}
	plaintext, err := e.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// EncryptString seals s and returns it base64 encoded.
func EncryptString(enc Encryptor, s string) (string, error) {
	sealed, err := enc.Seal([]byte(s))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString reverses EncryptString.
func DecryptString(enc Encryptor, s string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("decode base64: %w", err)
	}
	plain, err := enc.Open(data)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
