package session

import (
	"errors"

	"github.com/MrEthical07/sessionjwt/claims"
)

var (
	// ErrAlreadyInitialized is returned when the connection already holds claims.
	ErrAlreadyInitialized = errors.New("session: already initialized")
	// ErrUntrustedClaims is returned when Init is handed fallback claims.
	ErrUntrustedClaims = errors.New("session: claims are not trusted")
)

type phase interface {
	isPhase()
}

type empty struct{}

type initialized struct {
	claims claims.Set
}

func (empty) isPhase()       {}
func (initialized) isPhase() {}

// State is the per-connection claim holder. The zero value is empty.
type State struct {
	p phase
}

// Init stores verified claims.
func (s *State) Init(c claims.Set) error {
	if _, ok := s.p.(initialized); ok {
		return ErrAlreadyInitialized
	}
	if !c.Trusted() || c.IsNull() {
		return ErrUntrustedClaims
	}
	s.p = initialized{claims: c}
	return nil
}

// Current returns the stored claims, if any.
func (s *State) Current() (claims.Set, bool) {
	if st, ok := s.p.(initialized); ok {
		return st.claims, true
	}
	return claims.Set{}, false
}

// Initialized reports whether claims have been stored.
func (s *State) Initialized() bool {
	_, ok := s.p.(initialized)
	return ok
}

// Reset discards the stored claims at connection teardown.
func (s *State) Reset() {
	s.p = empty{}
}
