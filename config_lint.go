package sessionjwt

import (
	"errors"
	"strings"
)

// LintSeverity ranks a [LintWarning].
type LintSeverity int

const (
	// LintInfo marks a setting worth knowing about.
	LintInfo LintSeverity = iota
	// LintWarn marks a setting that weakens operations or observability.
	LintWarn
	// LintHigh marks a setting that weakens identity guarantees.
	LintHigh
)

// String returns the upper-case severity name.
func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is one finding from [Config.Lint].
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of findings for a Config.
type LintResult []LintWarning

// Codes returns the finding codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// AsError joins every finding at or above min into one error, or returns nil.
func (r LintResult) AsError(min LintSeverity) error {
	var errs []error
	for _, w := range r {
		if w.Severity >= min {
			errs = append(errs, errors.New(w.Severity.String()+" "+w.Code+": "+w.Message))
		}
	}
	return errors.Join(errs...)
}

// Lint reports settings that are valid but risky. Lint does not call Validate.
func (c *Config) Lint() LintResult {
	if c == nil {
		return nil
	}
	var out LintResult

	if strings.HasPrefix(strings.ToLower(c.Settings.KeyParam), "request.") {
		out = append(out, LintWarning{
			Code:     "key_param_client_writable",
			Severity: LintHigh,
			Message:  "KeyParam is in the request.* namespace, which query-time statements can write",
		})
	}
	if !strings.Contains(c.Settings.ClaimsParam, ".") {
		out = append(out, LintWarning{
			Code:     "claims_param_not_namespaced",
			Severity: LintWarn,
			Message:  "ClaimsParam has no prefix and may collide with a server setting",
		})
	}
	if c.Token.MaxBytes > 64<<10 {
		out = append(out, LintWarning{
			Code:     "token_max_large",
			Severity: LintWarn,
			Message:  "Token MaxBytes above 64KiB lets callers force large JSON decodes",
		})
	}
	if !c.Audit.Enabled {
		out = append(out, LintWarning{
			Code:     "audit_disabled",
			Severity: LintInfo,
			Message:  "key and session events are not audited",
		})
	} else if !c.Audit.DropIfFull {
		out = append(out, LintWarning{
			Code:     "audit_blocking",
			Severity: LintWarn,
			Message:  "a slow audit sink will stall connections",
		})
	}
	if !c.Metrics.Enabled {
		out = append(out, LintWarning{
			Code:     "metrics_disabled",
			Severity: LintInfo,
			Message:  "metrics snapshots and exporters will be empty",
		})
	}
	if !c.Throttle.Enabled {
		out = append(out, LintWarning{
			Code:     "throttle_disabled",
			Severity: LintInfo,
			Message:  "failed token verifications are not rate limited",
		})
	} else if c.Throttle.MaxFailures > 100 {
		out = append(out, LintWarning{
			Code:     "throttle_budget_large",
			Severity: LintWarn,
			Message:  "Throttle MaxFailures above 100 allows sustained signature probing",
		})
	}
	return out
}
