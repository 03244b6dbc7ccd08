// Package cryptourl frames the SecretBin encryption parameters and
// ciphertext into the crypto:// URL stored on the server. The URL carries
// everything a decoder needs except the base key: algorithm identifiers,
// nonce, salt and KDF parameters in the query, the ciphertext in the
// fragment. The base key is encoded separately and travels only in the
// fragment of the outer share link, so the server-stored blob alone cannot
// be decrypted.
package cryptourl

import (
	"encoding/base64"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/secretbin/secretbin-go/internal/common"
	"github.com/secretbin/secretbin-go/internal/cryptox"
)

// Algorithm identifiers framed into the URL. Decoders select their
// primitives from these, so they are part of the wire format.
const (
	Algorithm    = "AES256-GCM"
	KeyAlgorithm = "pbkdf2"
	Hash         = "SHA-512"
)

// Params holds everything the URL encodes.
type Params struct {
	Nonce      []byte
	Salt       []byte
	Iterations int
	Ciphertext []byte

	// Compact leaves the fragment empty: in the compact format the
	// ciphertext travels as a raw byte string in the CBOR request body
	// instead of being base64-inflated into the URL.
	Compact bool
}

// Encode renders p as a crypto:// URL. Decoders treat the query as a map,
// but the parameter order emitted here is fixed so output is reproducible:
// algorithm, key-algorithm, nonce, salt, iter, hash. Nonce and salt are
// base58 (no padding, URL-safe without percent-encoding); the ciphertext
// fragment is standard padded base64.
func Encode(p Params) (string, error) {
	if len(p.Nonce) != cryptox.NonceSize {
		return "", common.Errorf(common.ErrEncoding, "nonce must be %d bytes, got %d", cryptox.NonceSize, len(p.Nonce))
	}
	if len(p.Salt) != cryptox.SaltSize {
		return "", common.Errorf(common.ErrEncoding, "salt must be %d bytes, got %d", cryptox.SaltSize, len(p.Salt))
	}

	url := fmt.Sprintf("crypto://?algorithm=%s&key-algorithm=%s&nonce=%s&salt=%s&iter=%d&hash=%s#",
		Algorithm, KeyAlgorithm, base58.Encode(p.Nonce), base58.Encode(p.Salt), p.Iterations, Hash)
	if !p.Compact {
		url += base64.StdEncoding.EncodeToString(p.Ciphertext)
	}
	return url, nil
}

// EncodeKey returns the base58 text form of the caller-held base key.
func EncodeKey(baseKey []byte) string {
	return base58.Encode(baseKey)
}
