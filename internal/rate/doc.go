// Package rate provides the Redis-backed fixed-window counter that throttles repeated
// token verification failures.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Keys are "sjf:"
// followed by the subject, normally a client address.
//
// # What this package must NOT do
//
//   - Decide which failures count (that lives in the connection code).
//   - Be imported outside the sessionjwt module.
package rate
