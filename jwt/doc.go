// Package jwt decodes compact tokens and verifies them against a single Ed25519 key.
//
// # Algorithm pinning
//
// Exactly one signature scheme is supported: EdDSA over Ed25519. The token header's
// "alg" member is only compared against that scheme and never used to pick a
// verification routine, so "none" or HMAC-with-the-public-key tokens are rejected
// before any signature work happens.
//
// # Signing input
//
// The signature is checked over the header and payload segments exactly as they
// appeared in the token. [Decode] keeps that text next to the decoded bytes; nothing
// here re-encodes JSON.
//
// # What this package must NOT do
//
//   - Hold per-connection state (see packages keystore and session).
//   - Enforce exp, nbf, iss or aud. Claims are returned verbatim.
//   - Issue or sign tokens.
package jwt
