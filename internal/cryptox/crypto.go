// Package cryptox implements the cryptographic half of the SecretBin
// protocol: random material generation, PBKDF2 key derivation and
// AES-256-GCM sealing.
//
// Every submission draws fresh random material. Reusing a nonce under the
// same key breaks AES-GCM completely, so none of the values produced here
// may ever be cached or shared between calls.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"fmt"

	"github.com/secretbin/secretbin-go/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// Sizes and parameters of the SecretBin encryption scheme. These are fixed
// by the protocol; the KDF parameters are additionally framed into the
// crypto:// URL so decoders never have to guess them.
const (
	BaseKeySize = 32
	SaltSize    = 16
	NonceSize   = 12
	KeySize     = 32
	Iterations  = 210_000
)

// RandBytes returns n cryptographically secure random bytes. crypto/rand is
// safe for concurrent use, so every call gets independent material.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("reading random bytes: %w", err)
	}
	return b, nil
}

// DeriveKey derives the AES key from the random base key and the optional
// password using PBKDF2-HMAC-SHA512. The KDF input is baseKey followed by
// the password bytes: the password adds entropy on top of the base key, it
// never replaces it, so the derived key stays unguessable even when the
// password is empty.
//
// The inputs and the derived key are secrets. They must never be logged or
// persisted.
func DeriveKey(baseKey, password, salt []byte) []byte {
	secret := make([]byte, 0, len(baseKey)+len(password))
	secret = append(secret, baseKey...)
	secret = append(secret, password...)
	return pbkdf2.Key(secret, salt, Iterations, KeySize, sha512.New)
}

// Seal encrypts plaintext with AES-256-GCM under key and nonce, returning
// ciphertext with the authentication tag appended. No associated data is
// used. The nonce must be fresh for every call.
func Seal(key, nonce, plaintext []byte) ([]byte, error) {
	aesgcm, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}
	return aesgcm.Seal(nil, nonce, plaintext, nil), nil
}

// Open is the inverse of Seal. The submission path never decrypts; Open
// exists as the verification counterpart for round-trip tests and future
// receive-side work.
func Open(key, nonce, ciphertext []byte) ([]byte, error) {
	aesgcm, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.Errorf(common.ErrCrypto, "opening ciphertext: %v", err)
	}
	return plaintext, nil
}

func newGCM(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, common.Errorf(common.ErrCrypto, "key must be %d bytes, got %d", KeySize, len(key))
	}
	if len(nonce) != NonceSize {
		return nil, common.Errorf(common.ErrCrypto, "nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, common.Errorf(common.ErrCrypto, "creating cipher: %v", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, common.Errorf(common.ErrCrypto, "creating GCM: %v", err)
	}
	return aesgcm, nil
}

// Wipe overwrites b with zeros. Callers use it to drop passwords and derived
// keys from memory as soon as they are no longer needed.
//
// If the slice is nil, the function does nothing.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
