// Package sessionjwt provides per-connection JWT sessions for a database server.
//
// A host opens one [Conn] per physical database connection with [Engine.Open] and
// routes four SQL-callable operations to it:
//
//   - [Conn.Init] reads Ed25519 key material from the key parameter.
//   - [Conn.JWTSessionInit] verifies a compact EdDSA token and stores its claims.
//   - [Conn.Session] returns the identity claims as JSON, or null.
//   - [Conn.UserID] returns the "sub" claim.
//
// # Modes
//
// A connection with a key is trusted: identity comes only from a verified token. A
// connection without a key is untrusted: identity is read from the claims parameter on
// every call, which any session participant may write. The mode latches on the first
// identity query and cannot change afterwards.
//
// With [Builder.WithFailureThrottle] failed token verifications are counted per client
// host in Redis, and JWTSessionInit is refused once a host exhausts its budget.
//
// # Architecture boundaries
//
// sessionjwt is the public surface. Token decoding and verification live in jwt, the
// per-connection state machines in keystore and session, the untrusted path in
// fallback, and parameter access in settings. The Engine is safe for concurrent use; a
// Conn is not.
//
// # What this package must NOT do
//
//   - Choose a verification routine from the token header.
//   - Replace an established key or identity within a connection.
//   - Fail a read query because the untrusted claims parameter is malformed.
//   - Enforce exp or nbf; claims are exposed verbatim for policy authors.
package sessionjwt
