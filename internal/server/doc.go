// Package server implements the HTTP API of the blockplan service
//
// Plans are registered in memory and executed on demand. Every execution
// gets its own Operator and Execution, so concurrent requests never share
// evaluation state
package server
