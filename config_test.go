package sessionjwt

import (
	"strings"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Settings.KeyParam != "pg_session_jwt.jwk" || cfg.Settings.ClaimsParam != "request.jwt.claims" {
		t.Fatalf("unexpected default parameter names: %+v", cfg.Settings)
	}
	if cfg.Token.MaxBytes != 16*1024 {
		t.Fatalf("unexpected default MaxBytes %d", cfg.Token.MaxBytes)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty key param",
			mutate:  func(c *Config) { c.Settings.KeyParam = "" },
			wantErr: "KeyParam",
		},
		{
			name:    "blank claims param",
			mutate:  func(c *Config) { c.Settings.ClaimsParam = "   " },
			wantErr: "ClaimsParam",
		},
		{
			name:    "padded param",
			mutate:  func(c *Config) { c.Settings.KeyParam = " app.jwk" },
			wantErr: "whitespace",
		},
		{
			name: "same param for key and claims",
			mutate: func(c *Config) {
				c.Settings.KeyParam = "request.jwt.claims"
			},
			wantErr: "must differ",
		},
		{
			name: "same param differing in case",
			mutate: func(c *Config) {
				c.Settings.KeyParam = "Request.JWT.Claims"
			},
			wantErr: "must differ",
		},
		{
			name:    "zero max bytes",
			mutate:  func(c *Config) { c.Token.MaxBytes = 0 },
			wantErr: "MaxBytes",
		},
		{
			name:    "huge max bytes",
			mutate:  func(c *Config) { c.Token.MaxBytes = 2 << 20 },
			wantErr: "MaxBytes",
		},
		{
			name: "audit without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantErr: "BufferSize",
		},
		{
			name: "throttle without budget",
			mutate: func(c *Config) {
				c.Throttle.Enabled = true
				c.Throttle.MaxFailures = 0
			},
			wantErr: "MaxFailures",
		},
		{
			name: "throttle without window",
			mutate: func(c *Config) {
				c.Throttle.Enabled = true
				c.Throttle.Window = 0
			},
			wantErr: "Window",
		},
		{
			name: "latency without metrics",
			mutate: func(c *Config) {
				c.Metrics.Enabled = false
				c.Metrics.EnableLatencyHistograms = true
			},
			wantErr: "EnableLatencyHistograms",
		},
		{
			name: "custom names valid",
			mutate: func(c *Config) {
				c.Settings.KeyParam = "app.jwk"
				c.Settings.ClaimsParam = "app.claims"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.MaxBytes = -1
	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected Build to reject invalid config")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithLogger(discardLogger())
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuilderToggles(t *testing.T) {
	b := New().WithLogger(discardLogger()).WithLatencyHistograms(true).WithAuditSink(NoOpSink{})
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	cfg := engine.Config()
	if !cfg.Metrics.Enabled || !cfg.Metrics.EnableLatencyHistograms {
		t.Fatalf("expected metrics with latency, got %+v", cfg.Metrics)
	}
	if !cfg.Audit.Enabled {
		t.Fatal("WithAuditSink must enable audit")
	}
}

func TestEngineConfigIsACopy(t *testing.T) {
	cfg := DefaultConfig()
	engine, err := New().WithConfig(cfg).WithLogger(discardLogger()).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	cfg.Settings.KeyParam = "changed.after.build"
	got := engine.Config()
	if got.Settings.KeyParam != DefaultKeyParam {
		t.Fatal("engine config must not follow caller mutations")
	}
	got.Settings.KeyParam = "changed.copy"
	if engine.Config().Settings.KeyParam != DefaultKeyParam {
		t.Fatal("Config() must return a copy")
	}
}

func TestBuildThrottleRequiresRedis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Throttle.Enabled = true
	if _, err := New().WithConfig(cfg).WithLogger(discardLogger()).Build(); err == nil {
		t.Fatal("expected Build to require a redis client")
	}
}
