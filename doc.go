// Package kstor is a local, file-backed key-value store: callers read and
// write values addressed by dotted/indexed property paths inside a single
// JSON document, optionally encrypted at rest, with change notifications and
// an embedded document-query facility.
//
// ARCHITECTURE:
//
// Lazy reload, eager persist:
// The store holds exactly one in-memory copy of the document plus two flags,
// loaded and dirty. A read with loaded && !dirty returns the cache without
// touching disk. Every successful write persists the full document
// atomically and then sets dirty, so the next read re-validates from disk.
// This trades an extra read for freshness; the dirty flag is the only
// inter-call synchronization primitive.
//
// Entrypoint remapping:
// An optional path prefix fixed at construction aliases the visible root to
// an internal subtree. Every externally supplied key is prefixed before
// lookup; sibling keys outside the entrypoint stay on disk but are invisible
// through the store's surface.
//
// Degraded reads:
// A missing file yields an empty document after ensuring the directory
// exists. A file that fails to decode or decrypt also yields an empty
// document rather than an error, with a slog diagnostic naming the path;
// callers that need strict validation must check for emptiness themselves.
//
// Concurrency:
// Operations are blocking calls serialized by an internal mutex, and event
// listeners run synchronously after the triggering call releases it.
// Cross-process access is unguarded beyond atomic file replacement: two
// processes writing the same path race last-writer-wins.
package kstor
