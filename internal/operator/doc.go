// Package operator runs a plan: an ordered list of units, each holding one
// feature whose result is published into the execution's return register.
// An Operator is hydrated up front, so every configuration error surfaces
// before the first unit runs
package operator
