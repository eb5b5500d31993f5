package sessionjwt

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"io"
	"log/slog"
	"testing"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/sessionjwt/settings"
)

type testKeys struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newTestKeys(t testing.TB) testKeys {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return testKeys{pub: pub, priv: priv}
}

func (k testKeys) jwk() string {
	return `{"kty":"OKP","crv":"Ed25519","kid":"test-key","x":"` + base64.RawURLEncoding.EncodeToString(k.pub) + `"}`
}

// sign produces a compact token over the exact header and payload text.
func (k testKeys) sign(t testing.TB, header, payload string) string {
	t.Helper()
	input := base64.RawURLEncoding.EncodeToString([]byte(header)) + "." +
		base64.RawURLEncoding.EncodeToString([]byte(payload))
	sig, err := gjwt.SigningMethodEdDSA.Sign(input, k.priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return input + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func (k testKeys) token(t testing.TB, payload string) string {
	return k.sign(t, `{"alg":"EdDSA","typ":"JWT"}`, payload)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

func newTestEngine(t testing.TB, cfg Config, sink AuditSink) *Engine {
	t.Helper()
	b := New().WithConfig(cfg).WithLogger(discardLogger())
	if sink != nil {
		b = b.WithAuditSink(sink)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func openConn(t testing.TB, engine *Engine, p settings.Provider) *Conn {
	t.Helper()
	conn, err := engine.Open(context.Background(), p)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return conn
}

func pemPublicKey(t testing.TB, k testKeys) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(k.pub)
	if err != nil {
		t.Fatalf("marshal pkix: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}
