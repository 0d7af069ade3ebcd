// Package queue persists pending work items in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages the database connection, schema initialization, FIFO
// ordering, and the requeue semantics the worker relies on: a consumed item is
// never mutated into a retry, a requeue always inserts a fresh row at the tail.
// SQLite's locking makes concurrent enqueues from several producers (CLI,
// directory expansion, self-requeue) safe against the single consumer.
//
// The database is transient storage for in-flight work, not an archive. Schema
// changes bump the version in schema.go; users clear the database to adopt the
// new schema.
package queue
