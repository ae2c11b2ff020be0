// Package block defines the polymorphic Block contract and the Dispatcher
// that resolves a serialized node's type and action to a concrete
// implementation
//
// Every node of a plan, whether a family Router or a leaf, satisfies Block:
// SetData hydrates it from a Template, Template serializes it back, and Do
// evaluates it against the execution context and a per-evaluation Scratch.
// Non-local exits (break, continue, early response) travel up the tree as
// Result signals rather than errors, so the generic error wrapping applied
// by every leaf can never swallow them
package block
