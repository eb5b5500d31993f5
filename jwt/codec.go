package jwt

import (
	"fmt"
	"strings"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// segmentDecoder only decodes segments. Strict mode rejects non-canonical trailing
// bits; padding stays disallowed.
var segmentDecoder = gjwt.NewParser(gjwt.WithStrictDecoding())

// Segments is a compact token split into its decoded parts.
type Segments struct {
	Header    []byte
	Payload   []byte
	Signature []byte
	// SigningInput is the original "header.payload" text the signature covers.
	SigningInput string
}

// Decode splits a compact token and decodes its three segments.
//
// It fails with [ErrMalformedToken] unless the token has exactly three dot-separated
// segments, and with [ErrInvalidEncoding] when a segment is not unpadded base64url.
func Decode(token string) (Segments, error) {
	if strings.Count(token, ".") != 2 {
		return Segments{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, strings.Count(token, ".")+1)
	}

	parts := strings.SplitN(token, ".", 3)
	names := [3]string{"header", "payload", "signature"}
	var decoded [3][]byte
	for i, part := range parts {
		// The base64 decoder skips CR and LF, so the alphabet is checked first.
		if j := strings.IndexFunc(part, notBase64URL); j >= 0 {
			return Segments{}, fmt.Errorf("%w: %s segment: byte %q at offset %d", ErrInvalidEncoding, names[i], part[j], j)
		}
		b, err := segmentDecoder.DecodeSegment(part)
		if err != nil {
			return Segments{}, fmt.Errorf("%w: %s segment: %w", ErrInvalidEncoding, names[i], err)
		}
		decoded[i] = b
	}

	return Segments{
		Header:       decoded[0],
		Payload:      decoded[1],
		Signature:    decoded[2],
		SigningInput: token[:len(parts[0])+1+len(parts[1])],
	}, nil
}

func notBase64URL(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return false
	case r == '-' || r == '_':
		return false
	}
	return true
}
