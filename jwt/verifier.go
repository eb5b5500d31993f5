package jwt

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/sessionjwt/claims"
)

// Verify decodes token, checks its header and Ed25519 signature against key, and
// returns the payload as a trusted claim set.
//
// Checks run in a fixed order and stop at the first failure: codec
// ([ErrMalformedToken]), header ([ErrBadHeader], [ErrUnsupportedAlgorithm]),
// signature ([ErrBadSignature]), payload ([ErrBadPayload]). A header that repeats a
// member name is rejected rather than resolved to one of the values.
func Verify(token string, key PublicKey) (claims.Set, error) {
	seg, err := Decode(token)
	if err != nil {
		if errors.Is(err, ErrMalformedToken) {
			return claims.Set{}, err
		}
		return claims.Set{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	if err := checkHeader(seg.Header); err != nil {
		return claims.Set{}, err
	}

	if err := gjwt.SigningMethodEdDSA.Verify(seg.SigningInput, seg.Signature, key.key); err != nil {
		return claims.Set{}, fmt.Errorf("%w: %w", ErrBadSignature, err)
	}

	out, err := claims.FromObject(seg.Payload, claims.Trusted)
	if err != nil {
		return claims.Set{}, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return out, nil
}

func checkHeader(raw []byte) error {
	if !utf8.Valid(raw) {
		return fmt.Errorf("%w: invalid UTF-8", ErrBadHeader)
	}
	var header map[string]json.RawMessage
	if err := json.Unmarshal(raw, &header); err != nil {
		return fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	if header == nil {
		return fmt.Errorf("%w: header is not a JSON object", ErrBadHeader)
	}

	if name, ok := duplicateMember(raw); ok {
		return fmt.Errorf("%w: duplicate member %q", ErrBadHeader, name)
	}

	algRaw, ok := header["alg"]
	if !ok {
		return fmt.Errorf("%w: missing alg", ErrUnsupportedAlgorithm)
	}
	var alg string
	if err := json.Unmarshal(algRaw, &alg); err != nil || alg != Algorithm {
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algRaw)
	}

	// No header extensions are understood, so a critical one can never be honoured.
	if _, ok := header["crit"]; ok {
		return fmt.Errorf("%w: unsupported crit header", ErrBadHeader)
	}
	return nil
}

// duplicateMember reports the first top-level member name that appears twice in a JSON
// object already known to be well formed.
func duplicateMember(raw []byte) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return "", false
	}
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		name, _ := tok.(string)
		if _, dup := seen[name]; dup {
			return name, true
		}
		seen[name] = struct{}{}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return "", false
		}
	}
	return "", false
}
