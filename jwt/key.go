package jwt

import (
	"bytes"
	"crypto"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	jose "github.com/go-jose/go-jose/v4"
	gjwt "github.com/golang-jwt/jwt/v5"
)

// Algorithm is the only signature scheme accepted in token headers.
const Algorithm = "EdDSA"

// PublicKey is an Ed25519 verification key pinned to [Algorithm].
//
// The zero value verifies nothing.
type PublicKey struct {
	key        ed25519.PublicKey
	keyID      string
	thumbprint string
}

// NewPublicKey wraps a raw Ed25519 public key.
func NewPublicKey(key ed25519.PublicKey) (PublicKey, error) {
	return newPublicKey(key, "")
}

func newPublicKey(key ed25519.PublicKey, kid string) (PublicKey, error) {
	if len(key) != ed25519.PublicKeySize {
		return PublicKey{}, fmt.Errorf("%w: ed25519 public key must be %d bytes, got %d", ErrInvalidKey, ed25519.PublicKeySize, len(key))
	}
	key = bytes.Clone(key)

	jwk := jose.JSONWebKey{Key: key}
	sum, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}

	return PublicKey{
		key:        key,
		keyID:      kid,
		thumbprint: base64.RawURLEncoding.EncodeToString(sum),
	}, nil
}

// ParsePublicKey parses verification key material.
//
// Accepted forms are an OKP/Ed25519 JWK and a PEM "PUBLIC KEY" block. Private JWKs,
// other key types and curves, an "alg" other than EdDSA, and a "use" other than
// "sig" are rejected with [ErrInvalidKey].
func ParsePublicKey(raw string) (PublicKey, error) {
	material := strings.TrimSpace(raw)
	switch {
	case material == "":
		return PublicKey{}, fmt.Errorf("%w: empty key material", ErrInvalidKey)
	case strings.HasPrefix(material, "{"):
		return parseJWK([]byte(material))
	case strings.HasPrefix(material, "-----BEGIN"):
		return parsePEM([]byte(material))
	default:
		return PublicKey{}, fmt.Errorf("%w: expected JWK or PEM key material", ErrInvalidKey)
	}
}

func parseJWK(material []byte) (PublicKey, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(material); err != nil {
		return PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	if !jwk.IsPublic() {
		return PublicKey{}, fmt.Errorf("%w: jwk carries private key material", ErrInvalidKey)
	}
	if jwk.Algorithm != "" && jwk.Algorithm != Algorithm {
		return PublicKey{}, fmt.Errorf("%w: jwk alg %q is not %s", ErrInvalidKey, jwk.Algorithm, Algorithm)
	}
	if jwk.Use != "" && jwk.Use != "sig" {
		return PublicKey{}, fmt.Errorf("%w: jwk use %q is not sig", ErrInvalidKey, jwk.Use)
	}

	edKey, ok := jwk.Key.(ed25519.PublicKey)
	if !ok {
		return PublicKey{}, fmt.Errorf("%w: unsupported key type %T", ErrInvalidKey, jwk.Key)
	}
	// The JWK decoder zero-pads a short "x"; require the encoded point to be exact.
	var point struct {
		X string `json:"x"`
	}
	if err := json.Unmarshal(material, &point); err != nil {
		return PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	x, err := base64.RawURLEncoding.DecodeString(point.X)
	if err != nil || len(x) != ed25519.PublicKeySize {
		return PublicKey{}, fmt.Errorf("%w: jwk x must encode %d bytes", ErrInvalidKey, ed25519.PublicKeySize)
	}
	return newPublicKey(edKey, jwk.KeyID)
}

func parsePEM(material []byte) (PublicKey, error) {
	parsed, err := gjwt.ParseEdPublicKeyFromPEM(material)
	if err != nil {
		return PublicKey{}, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return PublicKey{}, fmt.Errorf("%w: unsupported key type %T", ErrInvalidKey, parsed)
	}
	return newPublicKey(edKey, "")
}

// Algorithm returns the pinned signature scheme.
func (k PublicKey) Algorithm() string {
	return Algorithm
}

// KeyID returns the JWK "kid", if any.
func (k PublicKey) KeyID() string {
	return k.keyID
}

// Thumbprint returns the base64url RFC 7638 SHA-256 thumbprint of the key.
func (k PublicKey) Thumbprint() string {
	return k.thumbprint
}

// Valid reports whether the key can verify signatures.
func (k PublicKey) Valid() bool {
	return len(k.key) == ed25519.PublicKeySize
}

// Equal reports whether both keys hold the same Ed25519 point.
func (k PublicKey) Equal(other PublicKey) bool {
	return k.key.Equal(other.key)
}
