package fallback

import (
	"context"
	"log/slog"

	"github.com/MrEthical07/sessionjwt/claims"
	"github.com/MrEthical07/sessionjwt/settings"
)

// DefaultClaimsParam is the parameter the resolver reads unless configured otherwise.
const DefaultClaimsParam = "request.jwt.claims"

// Resolve turns raw parameter text into an untrusted claim set. Absent, empty, and
// non-object input all yield null.
func Resolve(raw string, ok bool) claims.Set {
	if !ok || raw == "" {
		return claims.Null(claims.Untrusted)
	}
	c, err := claims.FromObject([]byte(raw), claims.Untrusted)
	if err != nil {
		return claims.Null(claims.Untrusted)
	}
	return c
}

// Resolver reads the claims parameter from a provider at call time.
type Resolver struct {
	provider settings.Provider
	param    string
	logger   *slog.Logger
}

// NewResolver returns a Resolver. An empty param selects [DefaultClaimsParam]; a nil
// logger selects slog.Default().
func NewResolver(p settings.Provider, param string, logger *slog.Logger) *Resolver {
	if param == "" {
		param = DefaultClaimsParam
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{provider: p, param: param, logger: logger}
}

// Param returns the parameter name the resolver reads.
func (r *Resolver) Param() string {
	return r.param
}

// Resolve reads the parameter and resolves it. Provider failures are logged and
// treated as an absent parameter.
func (r *Resolver) Resolve(ctx context.Context) claims.Set {
	if r == nil || r.provider == nil {
		return claims.Null(claims.Untrusted)
	}
	raw, ok, err := r.provider.Lookup(ctx, r.param)
	if err != nil {
		r.logger.WarnContext(ctx, "claims parameter unavailable",
			slog.String("param", r.param),
			slog.Any("error", err),
		)
		return claims.Null(claims.Untrusted)
	}
	out := Resolve(raw, ok)
	if ok && raw != "" && out.IsNull() {
		r.logger.DebugContext(ctx, "claims parameter is not a JSON object", slog.String("param", r.param))
	}
	return out
}
