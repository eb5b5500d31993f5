// Package audit implements async event dispatching for connection identity events.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full or block-if-full semantics.
//   - [Event]: structured record of a key, session, or connection lifecycle step.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; the Engine and its connections do.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import sessionjwt or any sibling package.
//   - Record token text or claim payloads.
package audit
