package sessionjwt

import (
	"errors"
	"strings"
	"time"

	"github.com/MrEthical07/sessionjwt/fallback"
)

const (
	// DefaultKeyParam names the connection parameter that carries verification key material.
	DefaultKeyParam = "pg_session_jwt.jwk"
	// DefaultClaimsParam names the externally writable claims parameter read in untrusted mode.
	DefaultClaimsParam = fallback.DefaultClaimsParam
	// DefaultMaxTokenBytes bounds the compact token length accepted by JWTSessionInit.
	DefaultMaxTokenBytes = 16 << 10

	maxTokenBytesCeiling = 1 << 20
)

// Config controls an [Engine].
//
// Config values are copied by [Builder.WithConfig] and [Builder.Build]; changing a
// Config after Build has no effect on the Engine.
type Config struct {
	Settings SettingsConfig
	Token    TokenConfig
	Throttle ThrottleConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
SETTINGS CONFIG
====================================
*/

// SettingsConfig names the parameters read through a connection's settings.Provider.
type SettingsConfig struct {
	// KeyParam is read once by Conn.Init. It must only be writable at connection start.
	KeyParam string
	// ClaimsParam is read on every identity query in untrusted mode.
	ClaimsParam string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig bounds the tokens a connection will attempt to verify.
type TokenConfig struct {
	MaxBytes int
}

/*
====================================
THROTTLE CONFIG
====================================
*/

// ThrottleConfig limits failed JWTSessionInit calls per client address. Counters live
// in Redis so every engine sharing the instance sees the same budget. Each attempt is
// counted before verification and a verified token clears the counter, so at most
// MaxFailures verifications per window fail for one host, concurrent callers included.
type ThrottleConfig struct {
	Enabled     bool
	MaxFailures int
	Window      time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters and the verify latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Settings: SettingsConfig{
			KeyParam:    DefaultKeyParam,
			ClaimsParam: DefaultClaimsParam,
		},
		Token: TokenConfig{
			MaxBytes: DefaultMaxTokenBytes,
		},
		Throttle: ThrottleConfig{
			Enabled:     false,
			MaxFailures: 10,
			Window:      time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// Validate reports the first invalid setting in c.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	// Settings
	key := strings.TrimSpace(c.Settings.KeyParam)
	claimsParam := strings.TrimSpace(c.Settings.ClaimsParam)
	if key == "" {
		return errors.New("Settings KeyParam must not be empty")
	}
	if claimsParam == "" {
		return errors.New("Settings ClaimsParam must not be empty")
	}
	if key != c.Settings.KeyParam || claimsParam != c.Settings.ClaimsParam {
		return errors.New("Settings parameter names must not carry surrounding whitespace")
	}
	// The claims parameter is writable by any session participant.
	if strings.EqualFold(key, claimsParam) {
		return errors.New("Settings KeyParam and ClaimsParam must differ")
	}

	// Token
	if c.Token.MaxBytes <= 0 {
		return errors.New("Token MaxBytes must be > 0")
	}
	if c.Token.MaxBytes > maxTokenBytesCeiling {
		return errors.New("Token MaxBytes must be <= 1MiB")
	}

	// Throttle
	if c.Throttle.Enabled {
		if c.Throttle.MaxFailures <= 0 {
			return errors.New("Throttle MaxFailures must be > 0 when throttling is enabled")
		}
		if c.Throttle.Window <= 0 {
			return errors.New("Throttle Window must be > 0 when throttling is enabled")
		}
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
