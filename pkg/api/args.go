package api

import (
	"maps"
	"slices"
)

type (
	// Args represents a structured record of named values
	Args map[Name]any

	// Name is a string identifier for record keys and frame values
	Name string
)

// Get retrieves a value from args as a Value, returning Null if not found
func (a Args) Get(name Name) Value {
	val, ok := a[name]
	if !ok {
		return Null
	}
	return ValueOf(val)
}

// SortedNames returns the names in args in sorted order
func (a Args) SortedNames() []Name {
	return slices.Sorted(maps.Keys(a))
}
