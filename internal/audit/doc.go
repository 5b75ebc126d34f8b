// Package audit keeps a SQLite trail of publish attempts.
//
// Entries record what was sent, where, and whether the transport accepted
// it. The trail is diagnostic only: message bodies are not stored and
// nothing is ever redelivered from it.
package audit
