// Package api defines the wire types shared by the block engine
//
// This package contains the block Template format, the discriminated Value
// type every block produces, plan documents, and the request and response
// messages exchanged with the HTTP surface
package api
