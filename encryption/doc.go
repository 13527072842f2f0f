// Package encryption seals small payloads, such as persisted auth state,
// with an AEAD cipher keyed from a passphrase.
//
// # Usage
//
//	enc, err := encryption.New("my-secret-passphrase")
//	sealed, err := enc.Seal([]byte(`{"pb_auth":"..."}`))
//	plain, err := enc.Open(sealed)
//
// XChaCha20-Poly1305 is the default. AES-256-GCM is available through
// WithAlgorithm for hosts with AES hardware.
package encryption
