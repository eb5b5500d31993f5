package jwt

import "errors"

var (
	// ErrMalformedToken reports a token that does not split into three segments, or any
	// codec failure surfaced by [Verify].
	ErrMalformedToken = errors.New("jwt: malformed token")
	// ErrInvalidEncoding reports a segment that is not unpadded base64url.
	ErrInvalidEncoding = errors.New("jwt: invalid segment encoding")
	// ErrBadHeader reports a header that is not a UTF-8 JSON object, repeats a member,
	// or carries "crit".
	ErrBadHeader = errors.New("jwt: bad header")
	// ErrUnsupportedAlgorithm reports a missing "alg" or any value other than EdDSA.
	ErrUnsupportedAlgorithm = errors.New("jwt: unsupported algorithm")
	// ErrBadSignature reports a signature that does not verify under the configured key.
	ErrBadSignature = errors.New("jwt: bad signature")
	// ErrBadPayload reports a payload that is not a UTF-8 JSON object.
	ErrBadPayload = errors.New("jwt: bad payload")
	// ErrInvalidKey reports key material that is not a usable Ed25519 public key.
	ErrInvalidKey = errors.New("jwt: invalid verification key")
)
