// Package claims holds the identity claim set produced by token verification or by the
// untrusted fallback channel.
//
// A [Set] is the payload JSON value of a token together with a [Trust] tag recording
// how it was obtained. Sets are immutable: the raw bytes are copied on construction
// and on every read, so a caller can never mutate the identity a connection holds.
//
// # What this package must NOT do
//
//   - Verify signatures or decode compact tokens (see package jwt).
//   - Enforce time-bound claims such as exp or nbf.
package claims
