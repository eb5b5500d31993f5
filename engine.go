package sessionjwt

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/MrEthical07/sessionjwt/claims"
	"github.com/MrEthical07/sessionjwt/fallback"
	"github.com/MrEthical07/sessionjwt/internal/audit"
	"github.com/MrEthical07/sessionjwt/internal/rate"
	"github.com/MrEthical07/sessionjwt/settings"
)

// Engine owns what connections share: configuration, logger, metrics, the failure
// throttle and the audit dispatcher. Engine methods are safe for concurrent use.
type Engine struct {
	config  Config
	logger  *slog.Logger
	audit   *audit.Dispatcher
	metrics *Metrics
	limiter *rate.Limiter

	openConns atomic.Int64
	closed    atomic.Bool
}

// Open starts a connection whose parameters are read through p. Host metadata attached
// with [WithClientAddr], [WithDatabase], and [WithApplicationName] is captured from ctx.
//
// A nil provider behaves as one with no parameters set.
func (e *Engine) Open(ctx context.Context, p settings.Provider) (*Conn, error) {
	if e == nil || e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if p == nil {
		p = settings.NewMemory(nil)
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	logger := e.logger.With(slog.String("conn_id", id.String()))
	c := &Conn{
		engine:   e,
		id:       id,
		info:     connInfoFromContext(ctx),
		provider: p,
		logger:   logger,
		fallback: fallback.NewResolver(p, e.config.Settings.ClaimsParam, logger),
	}

	e.openConns.Add(1)
	e.metricInc(MetricConnOpened)
	logger.DebugContext(ctx, "connection opened",
		slog.String("database", c.info.database),
		slog.String("client_addr", c.info.clientAddr),
	)
	return c, nil
}

// Close stops the audit dispatcher after flushing queued events. Open fails afterwards;
// connections already open keep working.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closed.Store(true)
	if e.audit != nil {
		e.audit.Close()
	}
}

// OpenConnections returns the number of connections opened and not yet closed.
func (e *Engine) OpenConnections() int64 {
	if e == nil {
		return 0
	}
	return e.openConns.Load()
}

// AuditDropped returns how many audit events were discarded under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the current counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Resolve is the untrusted claims path on its own, for hosts that never configure a
// key. It reads the claims parameter from p once.
func (e *Engine) Resolve(ctx context.Context, p settings.Provider) claims.Set {
	if e == nil {
		return claims.Null(claims.Untrusted)
	}
	set := fallback.NewResolver(p, e.config.Settings.ClaimsParam, e.logger).Resolve(ctx)
	e.metricInc(MetricFallbackResolved)
	if set.IsNull() {
		e.metricInc(MetricFallbackNull)
	}
	return set
}
