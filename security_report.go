package sessionjwt

import (
	"time"

	"github.com/MrEthical07/sessionjwt/jwt"
)

// SecurityReport summarises the engine's identity-relevant settings.
type SecurityReport struct {
	SigningAlgorithm  string
	KeyParam          string
	ClaimsParam       string
	MaxTokenBytes     int
	ExpiryEnforced    bool
	ThrottleEnabled   bool
	ThrottleBudget    int
	ThrottleWindow    time.Duration
	AuditEnabled      bool
	AuditDropIfFull   bool
	MetricsEnabled    bool
	LatencyHistograms bool
	OpenConnections   int64
	LintFindings      []string
}

// SecurityReport returns the current [SecurityReport].
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	return SecurityReport{
		SigningAlgorithm:  jwt.Algorithm,
		KeyParam:          e.config.Settings.KeyParam,
		ClaimsParam:       e.config.Settings.ClaimsParam,
		MaxTokenBytes:     e.config.Token.MaxBytes,
		ExpiryEnforced:    false,
		ThrottleEnabled:   e.limiter != nil,
		ThrottleBudget:    e.config.Throttle.MaxFailures,
		ThrottleWindow:    e.config.Throttle.Window,
		AuditEnabled:      e.config.Audit.Enabled,
		AuditDropIfFull:   e.config.Audit.Enabled && e.config.Audit.DropIfFull,
		MetricsEnabled:    e.config.Metrics.Enabled,
		LatencyHistograms: e.metrics.LatencyEnabled(),
		OpenConnections:   e.openConns.Load(),
		LintFindings:      e.config.Lint().Codes(),
	}
}
