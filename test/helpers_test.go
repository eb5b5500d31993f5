package test

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	gjwt "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/sessionjwt"
)

type signer struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

func newSigner(t testing.TB) signer {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return signer{pub: pub, priv: priv}
}

func (s signer) jwk() string {
	return `{"kty":"OKP","crv":"Ed25519","x":"` + base64.RawURLEncoding.EncodeToString(s.pub) + `"}`
}

func (s signer) token(t testing.TB, claims gjwt.MapClaims) string {
	t.Helper()
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodEdDSA, claims).SignedString(s.priv)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func newEngine(t testing.TB, b *sessionjwt.Builder) *sessionjwt.Engine {
	t.Helper()
	engine, err := b.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}
