package block

import (
	"maps"
	"slices"

	"github.com/kode4food/blockplan/pkg/api"
)

type (
	// Scratch is the mutable evaluation context visible to one block
	// subtree. It is distinct from the execution context, which is shared by
	// the whole plan run
	Scratch struct {
		vars  map[string]api.Value
		loops []*Loop
	}

	// Loop is the state of one active loop iteration
	Loop struct {
		Item  api.Value
		Key   string
		Index int
	}
)

// NewScratch creates an empty Scratch
func NewScratch() *Scratch {
	return &Scratch{vars: map[string]api.Value{}}
}

// Get returns a named variable
func (s *Scratch) Get(name string) (api.Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Set assigns a named variable
func (s *Scratch) Set(name string, v api.Value) {
	s.vars[name] = v
}

// Names returns the variable names in sorted order
func (s *Scratch) Names() []string {
	return slices.Sorted(maps.Keys(s.vars))
}

// PushLoop enters a new loop and returns its state
func (s *Scratch) PushLoop() *Loop {
	l := &Loop{}
	s.loops = append(s.loops, l)
	return l
}

// PopLoop leaves the innermost loop
func (s *Scratch) PopLoop() {
	if len(s.loops) == 0 {
		return
	}
	s.loops = s.loops[:len(s.loops)-1]
}

// Loop returns the state of the innermost active loop
func (s *Scratch) Loop() (*Loop, bool) {
	if len(s.loops) == 0 {
		return nil, false
	}
	return s.loops[len(s.loops)-1], true
}
