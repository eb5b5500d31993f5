// Package keystore holds the single verification key of one connection.
//
// A [Store] starts unset and moves to set exactly once. There is no transition back
// and no replacement: a second [Store.Configure] fails with [ErrAlreadySet] and leaves
// the original key in place, so a key cannot be swapped under an established session.
//
// # What this package must NOT do
//
//   - Read configuration parameters (the caller passes raw material in).
//   - Share a Store between connections.
//   - Verify tokens (see package jwt).
package keystore
