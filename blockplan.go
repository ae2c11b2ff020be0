// Package blockplan executes block plans: trees of typed blocks registered
// over HTTP and run against inbound requests
package blockplan

const (
	// Name is the service name reported in logs and health checks
	Name = "blockplan"

	// Version is the service version reported in logs
	Version = "0.1.0"
)
