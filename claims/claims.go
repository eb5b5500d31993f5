package claims

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Trust records where a claim set came from.
type Trust uint8

const (
	// Untrusted marks claims read from the externally writable fallback channel.
	Untrusted Trust = iota
	// Trusted marks claims taken from a signature-verified token.
	Trusted
)

// String returns the lower-case name of the trust level.
func (t Trust) String() string {
	if t == Trusted {
		return "trusted"
	}
	return "untrusted"
}

// ErrNotObject is returned by [FromObject] when the input is not a single JSON object.
var ErrNotObject = errors.New("claims: payload is not a JSON object")

var nullJSON = []byte("null")

// Set is a decoded claim payload tagged with its [Trust] level. The zero value is a
// null, untrusted set.
type Set struct {
	raw    []byte
	fields map[string]json.RawMessage
	trust  Trust
}

// Null returns a set holding JSON null with the given trust tag.
func Null(trust Trust) Set {
	return Set{trust: trust}
}

// FromObject builds a set from raw JSON that must decode to a single object of valid
// UTF-8. Duplicate member names resolve to the last occurrence, as encoding/json does.
func FromObject(raw []byte, trust Trust) (Set, error) {
	// encoding/json replaces invalid UTF-8 while decoding but the raw bytes are kept
	// verbatim, so they must already be valid.
	if !utf8.Valid(raw) {
		return Set{}, fmt.Errorf("%w: invalid UTF-8", ErrNotObject)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Set{}, errors.Join(ErrNotObject, err)
	}
	// "null" unmarshals into a nil map without error.
	if fields == nil {
		return Set{}, ErrNotObject
	}

	return Set{
		raw:    bytes.Clone(raw),
		fields: fields,
		trust:  trust,
	}, nil
}

// IsNull reports whether the set carries no identity.
func (s Set) IsNull() bool {
	return s.fields == nil
}

// Trust returns the trust tag.
func (s Set) Trust() Trust {
	return s.trust
}

// Trusted reports whether the set came from a verified token.
func (s Set) Trusted() bool {
	return s.trust == Trusted
}

// JSON returns a copy of the payload exactly as it was received, or null.
func (s Set) JSON() json.RawMessage {
	if s.fields == nil {
		return bytes.Clone(nullJSON)
	}
	return bytes.Clone(s.raw)
}

// MarshalJSON implements json.Marshaler by emitting the payload verbatim.
func (s Set) MarshalJSON() ([]byte, error) {
	return s.JSON(), nil
}

// Claim returns the raw JSON value of a top-level member.
func (s Set) Claim(name string) (json.RawMessage, bool) {
	v, ok := s.fields[name]
	if !ok {
		return nil, false
	}
	return bytes.Clone(v), true
}

// Subject returns the "sub" member when it is a JSON string.
func (s Set) Subject() (string, bool) {
	return s.stringClaim("sub")
}

func (s Set) stringClaim(name string) (string, bool) {
	v := bytes.TrimSpace(s.fields[name])
	if len(v) == 0 || v[0] != '"' {
		return "", false
	}
	var out string
	if err := json.Unmarshal(v, &out); err != nil {
		return "", false
	}
	return out, true
}
