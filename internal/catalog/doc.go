// Package catalog holds the concrete block families a plan is built from
// and registers them with a block.Dispatcher
//
// Each family declares its actions as block.Action constants in its own
// file. Collaborators (Redis, the blob file store, the request, the account)
// are reached only through the state.Execution passed to Do
package catalog
