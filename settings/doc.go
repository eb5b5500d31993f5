// Package settings reads named connection parameters from the host.
//
// A [Provider] is the only channel through which the engine sees configuration. Values
// are read as point-in-time snapshots on every call; nothing is cached here.
//
// # Providers
//
//   - [Memory]: an in-process map, for tests and embedding.
//   - [Redis]: one Redis hash per connection, for hosts that publish parameters to a
//     shared store.
//   - [Postgres]: current_setting over a pgx connection, pool, or transaction.
//
// # What this package must NOT do
//
//   - Write parameters on behalf of the engine.
//   - Interpret parameter values.
package settings
