package secretbin

import (
	"github.com/secretbin/secretbin-go/internal/codec"
	"github.com/secretbin/secretbin-go/internal/cryptourl"
	"github.com/secretbin/secretbin-go/internal/cryptox"
)

// EncryptionResult is the output of one encryption run. Every run draws
// fresh random material, so results are never reused across submissions.
type EncryptionResult struct {
	// BaseKey is the base58 text form of the random 32-byte base key. It
	// belongs in the fragment of the outer share link and is never sent to
	// the server.
	BaseKey string

	// CryptoURL is the self-describing crypto:// URL stored on the server.
	// In the JSON format it carries the ciphertext in its fragment.
	CryptoURL string

	// Ciphertext holds the raw sealed bytes in the compact format, where
	// they travel in the request body instead of the URL fragment. Nil in
	// the JSON format.
	Ciphertext []byte
}

// Encrypt serializes secret in the given format and seals it with
// AES-256-GCM under a key derived from a fresh random base key and the
// optional password (PBKDF2-HMAC-SHA512, 210000 iterations).
//
// As a side effect, attachments with an empty ContentType get it filled in
// from their file name extension, so a second run over the same secret is
// byte-identical modulo the fresh random material.
func Encrypt(secret *Secret, password string, compact bool) (*EncryptionResult, error) {
	attachments := make([]codec.Attachment, len(secret.Attachments))
	for i := range secret.Attachments {
		if secret.Attachments[i].ContentType == "" {
			secret.Attachments[i].ContentType = codec.ContentTypeByName(secret.Attachments[i].Name)
		}
		attachments[i] = codec.Attachment{
			Name:        secret.Attachments[i].Name,
			ContentType: secret.Attachments[i].ContentType,
			Data:        secret.Attachments[i].Data,
		}
	}

	plaintext, err := codec.Marshal(codec.Payload{Message: secret.Message, Attachments: attachments}, compact)
	if err != nil {
		return nil, err
	}

	baseKey, err := cryptox.RandBytes(cryptox.BaseKeySize)
	if err != nil {
		return nil, err
	}
	salt, err := cryptox.RandBytes(cryptox.SaltSize)
	if err != nil {
		return nil, err
	}
	nonce, err := cryptox.RandBytes(cryptox.NonceSize)
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveKey(baseKey, []byte(password), salt)
	defer cryptox.Wipe(key)

	sealed, err := cryptox.Seal(key, nonce, plaintext)
	if err != nil {
		return nil, err
	}

	url, err := cryptourl.Encode(cryptourl.Params{
		Nonce:      nonce,
		Salt:       salt,
		Iterations: cryptox.Iterations,
		Ciphertext: sealed,
		Compact:    compact,
	})
	if err != nil {
		return nil, err
	}

	result := &EncryptionResult{
		BaseKey:   cryptourl.EncodeKey(baseKey),
		CryptoURL: url,
	}
	if compact {
		result.Ciphertext = sealed
	}
	return result, nil
}
