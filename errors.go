package sessionjwt

import (
	"errors"

	"github.com/MrEthical07/sessionjwt/internal/rate"
	"github.com/MrEthical07/sessionjwt/jwt"
	"github.com/MrEthical07/sessionjwt/keystore"
	"github.com/MrEthical07/sessionjwt/session"
)

var (
	// ErrNoKey is returned by JWTSessionInit when the connection has no verification key.
	ErrNoKey = errors.New("no verification key configured")
	// ErrKeyParamUnset is returned by Init when the key parameter is absent or empty.
	ErrKeyParamUnset = errors.New("key parameter is not set")
	// ErrConnClosed is returned by mutating calls on a closed connection.
	ErrConnClosed = errors.New("connection closed")
	// ErrModeLatched is returned by Init once the connection has answered an identity
	// query without a key.
	ErrModeLatched = errors.New("connection mode already latched untrusted")
	// ErrSettingsUnavailable wraps settings provider failures on the key path.
	ErrSettingsUnavailable = errors.New("settings provider unavailable")
	// ErrEngineClosed is returned by Open after Engine.Close.
	ErrEngineClosed = errors.New("engine closed")
)

// Key errors.
var (
	ErrKeyMalformed  = keystore.ErrMalformed
	ErrKeyAlreadySet = keystore.ErrAlreadySet
)

// Codec and validation errors.
var (
	ErrMalformedToken       = jwt.ErrMalformedToken
	ErrInvalidEncoding      = jwt.ErrInvalidEncoding
	ErrBadHeader            = jwt.ErrBadHeader
	ErrUnsupportedAlgorithm = jwt.ErrUnsupportedAlgorithm
	ErrBadSignature         = jwt.ErrBadSignature
	ErrBadPayload           = jwt.ErrBadPayload
)

// Session errors.
var (
	ErrAlreadyInitialized = session.ErrAlreadyInitialized
)

// Throttle errors.
var (
	// ErrThrottled is returned by JWTSessionInit when the client address has used up its
	// failure budget for the current window.
	ErrThrottled = rate.ErrRateLimited
	// ErrThrottleUnavailable is returned by JWTSessionInit when the throttle backend
	// cannot be reached. Verification does not run without it.
	ErrThrottleUnavailable = rate.ErrRedisUnavailable
)
