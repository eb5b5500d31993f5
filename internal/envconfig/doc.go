// Package envconfig loads command configuration from the environment.
//
// A .env file in the working directory is read once, without overriding variables
// that are already set, and struct fields are then filled by caarlos0/env tags.
//
// # What this package must NOT do
//
//   - Configure the engine itself. Commands translate their env structs into
//     sessionjwt.Config.
package envconfig
