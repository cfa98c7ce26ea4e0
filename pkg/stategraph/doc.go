// Package stategraph is the public façade. It re-exports the core graph
// and state types and wraps the engine in a Runtime so callers build and
// run graphs without importing internal packages.
package stategraph
