// Package fallback derives untrusted claims from an externally writable parameter.
//
// It is consulted only when a connection has no verification key. Whatever the
// parameter holds is taken at face value; protecting that parameter from writes is the
// host's job. Bad input never fails a query: it degrades to JSON null.
//
// # What this package must NOT do
//
//   - Return errors to callers.
//   - Cache parameter values between calls.
//   - Produce trusted claims.
package fallback
