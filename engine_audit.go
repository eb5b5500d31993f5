package sessionjwt

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/sessionjwt/jwt"
	"github.com/MrEthical07/sessionjwt/keystore"
	"github.com/MrEthical07/sessionjwt/session"
)

const (
	auditEventKeyConfigured      = "key_configured"
	auditEventKeyRejected        = "key_rejected"
	auditEventSessionInitSuccess = "session_init_success"
	auditEventSessionInitFailure = "session_init_failure"
	auditEventConnectionClosed   = "connection_closed"
)

// AuditErrorCode is the stable error label recorded in [AuditEvent.Error].
type AuditErrorCode string

const (
	auditErrNoKey                AuditErrorCode = "no_key"
	auditErrKeyParamUnset        AuditErrorCode = "key_param_unset"
	auditErrKeyMalformed         AuditErrorCode = "key_malformed"
	auditErrKeyAlreadySet        AuditErrorCode = "key_already_set"
	auditErrModeLatched          AuditErrorCode = "mode_latched"
	auditErrMalformedToken       AuditErrorCode = "malformed_token"
	auditErrBadHeader            AuditErrorCode = "bad_header"
	auditErrUnsupportedAlgorithm AuditErrorCode = "unsupported_algorithm"
	auditErrBadSignature         AuditErrorCode = "bad_signature"
	auditErrBadPayload           AuditErrorCode = "bad_payload"
	auditErrAlreadyInitialized   AuditErrorCode = "already_initialized"
	auditErrUnavailable          AuditErrorCode = "backend_unavailable"
	auditErrThrottled            AuditErrorCode = "throttled"
	auditErrThrottleUnavailable  AuditErrorCode = "throttle_unavailable"
	auditErrConnClosed           AuditErrorCode = "conn_closed"
	auditErrInternal             AuditErrorCode = "internal_error"
)

func (c *Conn) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	e := c.engine
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:   time.Now().UTC(),
		EventType:   eventType,
		ConnID:      c.id.String(),
		UserID:      userID,
		Database:    c.info.database,
		Application: c.info.application,
		ClientAddr:  c.info.clientAddr,
		Success:     success,
		Metadata:    metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNoKey):
		return auditErrNoKey
	case errors.Is(err, ErrKeyParamUnset):
		return auditErrKeyParamUnset
	case errors.Is(err, keystore.ErrMalformed):
		return auditErrKeyMalformed
	case errors.Is(err, keystore.ErrAlreadySet):
		return auditErrKeyAlreadySet
	case errors.Is(err, ErrModeLatched):
		return auditErrModeLatched
	case errors.Is(err, ErrSettingsUnavailable):
		return auditErrUnavailable
	case errors.Is(err, ErrConnClosed):
		return auditErrConnClosed
	case errors.Is(err, ErrThrottled):
		return auditErrThrottled
	case errors.Is(err, ErrThrottleUnavailable):
		return auditErrThrottleUnavailable
	case errors.Is(err, jwt.ErrMalformedToken):
		return auditErrMalformedToken
	case errors.Is(err, jwt.ErrBadHeader):
		return auditErrBadHeader
	case errors.Is(err, jwt.ErrUnsupportedAlgorithm):
		return auditErrUnsupportedAlgorithm
	case errors.Is(err, jwt.ErrBadSignature):
		return auditErrBadSignature
	case errors.Is(err, jwt.ErrBadPayload):
		return auditErrBadPayload
	case errors.Is(err, session.ErrAlreadyInitialized):
		return auditErrAlreadyInitialized
	default:
		return auditErrInternal
	}
}
