// Package builder provides an API for authoring plans and talking to the
// blockplan service
//
// Block and Plan are immutable fluent builders: every With method returns a
// modified copy, so partially built trees can be shared and reused. Client
// registers plans with a running service and executes them
package builder
