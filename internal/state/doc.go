// Package state holds the per-execution context shared by every block of a
// plan run: logger, transaction and account managers, collaborator resource
// handles, request data, the scoped stack, and the return register
//
// An Execution is created once per plan run and must never be shared by two
// concurrent runs
package state
