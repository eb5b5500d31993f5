package sessionjwt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/sessionjwt/claims"
	"github.com/MrEthical07/sessionjwt/fallback"
	"github.com/MrEthical07/sessionjwt/jwt"
	"github.com/MrEthical07/sessionjwt/keystore"
	"github.com/MrEthical07/sessionjwt/session"
	"github.com/MrEthical07/sessionjwt/settings"
)

// Mode is the identity source a connection answers from.
type Mode uint8

const (
	// ModeUnlatched means no identity query has run yet.
	ModeUnlatched Mode = iota
	// ModeTrusted answers from a signature-verified token.
	ModeTrusted
	// ModeUntrusted answers from the claims parameter.
	ModeUntrusted
)

// String returns the lower-case mode name.
func (m Mode) String() string {
	switch m {
	case ModeTrusted:
		return "trusted"
	case ModeUntrusted:
		return "untrusted"
	default:
		return "unlatched"
	}
}

// Conn is the identity state of one database connection.
//
// A Conn serves one call at a time and must not be shared between goroutines. Its key
// and claims live only as long as the Conn; [Conn.Close] discards both.
type Conn struct {
	engine   *Engine
	id       uuid.UUID
	info     connInfo
	provider settings.Provider
	logger   *slog.Logger
	fallback *fallback.Resolver

	keys   keystore.Store
	state  session.State
	mode   Mode
	closed bool
}

// ID returns the connection id used in logs and audit events.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// Mode returns the latched identity mode.
func (c *Conn) Mode() Mode {
	return c.mode
}

// HasKey reports whether a verification key is configured.
func (c *Conn) HasKey() bool {
	return !c.closed && c.keys.IsConfigured()
}

// Init reads key material from the key parameter and configures the connection's
// verification key. It fails with [ErrKeyParamUnset] when the parameter is absent or
// empty, wraps [ErrKeyMalformed] and [ErrKeyAlreadySet], and fails with
// [ErrModeLatched] once the connection has answered an identity query without a key.
func (c *Conn) Init(ctx context.Context) error {
	err := c.init(ctx)
	if err != nil {
		c.engine.metricInc(MetricKeyRejected)
		c.emitAudit(ctx, auditEventKeyRejected, false, "", err, nil)
		c.logger.WarnContext(ctx, "verification key rejected", slog.Any("error", err))
		return err
	}

	key, _ := c.keys.Verifier()
	c.engine.metricInc(MetricKeyConfigured)
	c.emitAudit(ctx, auditEventKeyConfigured, true, "", nil, func() map[string]string {
		meta := map[string]string{
			"alg":        key.Algorithm(),
			"thumbprint": key.Thumbprint(),
		}
		if kid := key.KeyID(); kid != "" {
			meta["kid"] = kid
		}
		return meta
	})
	c.logger.DebugContext(ctx, "verification key configured",
		slog.String("thumbprint", key.Thumbprint()),
		slog.String("kid", key.KeyID()),
	)
	return nil
}

func (c *Conn) init(ctx context.Context) error {
	if c.closed {
		return ErrConnClosed
	}
	if c.mode == ModeUntrusted {
		return ErrModeLatched
	}
	if c.keys.IsConfigured() {
		return keystore.ErrAlreadySet
	}

	param := c.engine.config.Settings.KeyParam
	raw, ok, err := c.provider.Lookup(ctx, param)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSettingsUnavailable, param, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: %s", ErrKeyParamUnset, param)
	}
	return c.keys.Configure(raw)
}

// JWTSessionInit verifies token against the configured key and stores its claims as
// the connection's identity. It fails with [ErrNoKey] when Init has not succeeded,
// with [ErrAlreadyInitialized] when the connection already holds claims, and with a
// validation error when the token does not verify. With the failure throttle enabled
// it fails with [ErrThrottled] once the client address has used up its budget. The
// connection is left unchanged on every failure.
func (c *Conn) JWTSessionInit(ctx context.Context, token string) error {
	set, err := c.jwtSessionInit(ctx, token)
	if err != nil {
		c.engine.metricInc(MetricSessionInitFailure)
		switch {
		case errors.Is(err, ErrThrottled), errors.Is(err, ErrThrottleUnavailable):
			c.engine.metricInc(MetricSessionInitThrottled)
		case errors.Is(err, jwt.ErrMalformedToken):
			c.engine.metricInc(MetricMalformedToken)
		case errors.Is(err, jwt.ErrUnsupportedAlgorithm):
			c.engine.metricInc(MetricAlgorithmRejected)
		case errors.Is(err, jwt.ErrBadSignature):
			c.engine.metricInc(MetricSignatureRejected)
		}
		c.emitAudit(ctx, auditEventSessionInitFailure, false, "", err, nil)
		c.logger.InfoContext(ctx, "session init rejected", slog.Any("error", err))
		return err
	}

	sub, _ := set.Subject()
	c.engine.metricInc(MetricSessionInitSuccess)
	c.emitAudit(ctx, auditEventSessionInitSuccess, true, sub, nil, nil)
	c.logger.DebugContext(ctx, "session initialized", slog.String("sub", sub))
	return nil
}

func (c *Conn) jwtSessionInit(ctx context.Context, token string) (claims.Set, error) {
	if c.closed {
		return claims.Set{}, ErrConnClosed
	}
	key, ok := c.keys.Verifier()
	if !ok {
		return claims.Set{}, ErrNoKey
	}
	if c.state.Initialized() {
		return claims.Set{}, session.ErrAlreadyInitialized
	}

	subject, throttled := c.throttleSubject()
	if throttled {
		if _, err := c.engine.limiter.Acquire(ctx, subject); err != nil {
			return claims.Set{}, err
		}
	}

	set, err := c.verify(token, key)
	if err != nil {
		return claims.Set{}, err
	}

	if err := c.state.Init(set); err != nil {
		return claims.Set{}, err
	}
	c.latch()

	if throttled {
		if err := c.engine.limiter.Reset(ctx, subject); err != nil {
			c.logger.WarnContext(ctx, "failure throttle not reset", slog.Any("error", err))
		}
	}
	return set, nil
}

func (c *Conn) verify(token string, key jwt.PublicKey) (claims.Set, error) {
	if limit := c.engine.config.Token.MaxBytes; len(token) > limit {
		return claims.Set{}, fmt.Errorf("%w: token is %d bytes, limit %d", jwt.ErrMalformedToken, len(token), limit)
	}

	start := time.Now()
	set, err := jwt.Verify(token, key)
	if m := c.engine.metrics; m.LatencyEnabled() {
		m.Observe(MetricVerifyLatency, time.Since(start))
	}
	return set, err
}

// throttleSubject returns the host the failure throttle counts against. Connections
// without a client address are not throttled.
func (c *Conn) throttleSubject() (string, bool) {
	if c.engine.limiter == nil || c.info.clientAddr == "" {
		return "", false
	}
	host, _, err := net.SplitHostPort(c.info.clientAddr)
	if err != nil {
		return c.info.clientAddr, true
	}
	return host, true
}

// Session returns the connection's identity as JSON. It never fails: without an
// identity it returns JSON null.
//
// With a key configured the result is the verified token payload, or null before
// JWTSessionInit. Without a key the claims parameter is read now and returned when it
// holds a JSON object.
func (c *Conn) Session(ctx context.Context) json.RawMessage {
	return c.SessionClaims(ctx).JSON()
}

// SessionClaims is [Conn.Session] keeping the trust tag.
func (c *Conn) SessionClaims(ctx context.Context) claims.Set {
	if c.closed {
		return claims.Null(claims.Untrusted)
	}
	c.latch()

	if c.mode == ModeTrusted {
		if cur, ok := c.state.Current(); ok {
			return cur
		}
		return claims.Null(claims.Trusted)
	}

	set := c.fallback.Resolve(ctx)
	c.engine.metricInc(MetricFallbackResolved)
	if set.IsNull() {
		c.engine.metricInc(MetricFallbackNull)
	}
	return set
}

// UserID returns the "sub" claim of [Conn.Session] when it is a JSON string.
func (c *Conn) UserID(ctx context.Context) (string, bool) {
	return c.SessionClaims(ctx).Subject()
}

// Close discards the key and claims so nothing survives onto a reused connection.
// Close is idempotent.
func (c *Conn) Close(ctx context.Context) {
	if c.closed {
		return
	}
	hadKey := c.keys.IsConfigured()
	hadSession := c.state.Initialized()

	c.keys.Reset()
	c.state.Reset()
	c.mode = ModeUnlatched
	c.closed = true

	c.engine.openConns.Add(-1)
	c.engine.metricInc(MetricConnClosed)
	c.emitAudit(ctx, auditEventConnectionClosed, true, "", nil, func() map[string]string {
		return map[string]string{
			"had_key":     strconv.FormatBool(hadKey),
			"had_session": strconv.FormatBool(hadSession),
		}
	})
	c.logger.DebugContext(ctx, "connection closed")
}

// latch fixes the mode on the first identity-bearing call.
func (c *Conn) latch() {
	if c.mode != ModeUnlatched {
		return
	}
	if c.keys.IsConfigured() {
		c.mode = ModeTrusted
	} else {
		c.mode = ModeUntrusted
	}
}
