// Package session holds the verified identity of one connection.
//
// # State machine
//
// A [State] is either empty or initialized. [State.Init] performs the only legal
// transition; a second call fails with [ErrAlreadyInitialized] and the first claim set
// stays in place, so an established identity cannot be silently replaced.
//
// # Architecture boundaries
//
// This package stores claims that have already been verified. It does NOT decode or
// verify tokens, and it never reads the untrusted fallback channel.
//
// # What this package must NOT do
//
//   - Import sessionjwt, jwt, or fallback (no upward imports).
//   - Accept untrusted claims.
//   - Outlive the connection that owns it.
package session
