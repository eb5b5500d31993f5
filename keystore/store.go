package keystore

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/sessionjwt/jwt"
)

var (
	// ErrMalformed is returned when key material cannot be parsed into a public key.
	ErrMalformed = errors.New("keystore: malformed key material")
	// ErrAlreadySet is returned when a key is configured a second time.
	ErrAlreadySet = errors.New("keystore: key already set")
)

// state is either unset or set; set carries the key.
type state interface {
	isKeyState()
}

type unset struct{}

type set struct {
	key jwt.PublicKey
}

func (unset) isKeyState() {}
func (set) isKeyState()   {}

// Store is the per-connection key holder. The zero value is an unset store.
//
// Store is not safe for concurrent use; a connection runs one call at a time.
type Store struct {
	st state
}

// Configure parses raw key material and stores the result.
//
// On any error the store is left unchanged.
func (s *Store) Configure(raw string) error {
	if s.IsConfigured() {
		return ErrAlreadySet
	}
	key, err := jwt.ParsePublicKey(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	s.st = set{key: key}
	return nil
}

// IsConfigured reports whether a key has been stored.
func (s *Store) IsConfigured() bool {
	_, ok := s.Verifier()
	return ok
}

// Verifier returns the stored key.
func (s *Store) Verifier() (jwt.PublicKey, bool) {
	switch st := s.st.(type) {
	case set:
		return st.key, true
	default:
		return jwt.PublicKey{}, false
	}
}

// Reset discards the key so no state survives onto a reused connection.
func (s *Store) Reset() {
	s.st = unset{}
}
