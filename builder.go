package sessionjwt

import (
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/sessionjwt/internal/audit"
	"github.com/MrEthical07/sessionjwt/internal/rate"
)

// Builder assembles an [Engine]. A Builder can be used for one Build only.
type Builder struct {
	config    Config
	logger    *slog.Logger
	auditSink AuditSink
	redis     redis.UniversalClient

	built bool
}

// New returns a Builder holding [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithLogger sets the structured logger. Connections derive a child logger carrying
// their conn_id. The default is slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithAuditSink sets the audit sink and enables audit dispatch.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil {
		b.config.Audit.Enabled = true
	}
	return b
}

// WithFailureThrottle sets the Redis client holding failure counters and enables the
// throttle. Tune it with Config.Throttle.
func (b *Builder) WithFailureThrottle(client redis.UniversalClient) *Builder {
	b.redis = client
	if client != nil {
		b.config.Throttle.Enabled = true
	}
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verify latency histogram. It also enables metrics.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	if enabled {
		b.config.Metrics.Enabled = true
	}
	return b
}

// Build validates the configuration and starts the Engine.
//
// The audit dispatcher goroutine starts here when audit is enabled; release it with
// [Engine.Close].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Throttle.Enabled && b.redis == nil {
		return nil, errors.New("failure throttle requires a redis client")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:  cfg,
		logger:  logger,
		metrics: NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	if cfg.Throttle.Enabled {
		engine.limiter = rate.New(b.redis, rate.Config{
			MaxFailures: cfg.Throttle.MaxFailures,
			Window:      cfg.Throttle.Window,
		})
	}

	for _, w := range cfg.Lint() {
		if w.Severity >= LintWarn {
			logger.Warn("risky configuration",
				slog.String("code", w.Code),
				slog.String("severity", w.Severity.String()),
				slog.String("detail", w.Message),
			)
		}
	}

	b.built = true

	return engine, nil
}
