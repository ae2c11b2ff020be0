// Package fault defines the domain error taxonomy of the block engine
//
// A domain Error names the failing block by its type and action (the Key),
// carries the block's extra metadata, and optionally a Context describing
// why the failure happened. Block implementations attach a Context to an
// internal error with WithContext; the block wrapping layer combines it with
// the Key before the error surfaces to logging or response rendering
package fault
