// Package form defines the typed document model the rest of the engine
// operates on: the immutable form schema (groups, fields, options, columns),
// the mutable per-field responses, notes and documentation blocks, the
// identifier index used for O(1) reference checks, and the tag regions that
// make content-preserving serialization possible. The package carries no
// behaviour beyond construction and lookup helpers; parsing lives in
// pkg/parser and mutation in pkg/patch.
package form
