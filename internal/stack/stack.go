// Package stack implements the scoped call stack used to pass ambient
// values down a block tree and to bound diagnostic snapshots to the
// innermost custom-util scope
package stack

import "github.com/kode4food/blockplan/pkg/api"

type (
	// Frame is one entry of the scoped stack
	Frame struct {
		Values api.Args
		UtilID string
	}

	// Manager is a LIFO stack of frames that tracks the custom-util scope
	// opened most recently
	Manager struct {
		frames []*Frame
		scope  string
	}
)

// NewFrame creates a frame holding the given values
func NewFrame(values api.Args) *Frame {
	return &Frame{Values: values}
}

// NewUtilFrame creates a frame that opens a custom-util scope
func NewUtilFrame(utilID string, values api.Args) *Frame {
	return &Frame{Values: values, UtilID: utilID}
}

// NewManager creates an empty stack manager
func NewManager() *Manager {
	return &Manager{}
}

// Get returns a value stored in the frame
func (f *Frame) Get(name api.Name) (api.Value, bool) {
	if f == nil {
		return api.Null, false
	}
	if _, ok := f.Values[name]; !ok {
		return api.Null, false
	}
	return f.Values.Get(name), true
}

// Snapshot flattens the frame for diagnostics
func (f *Frame) Snapshot() map[string]any {
	res := map[string]any{}
	if f.UtilID != "" {
		res["util_id"] = f.UtilID
	}
	if len(f.Values) > 0 {
		values := make(map[string]any, len(f.Values))
		for k, v := range f.Values {
			values[string(k)] = api.ValueOf(v).Any()
		}
		res["values"] = values
	}
	return res
}

// Push places a frame on top of the stack. A nil frame pushes an empty one.
// A frame carrying a util id becomes the current scope
func (m *Manager) Push(f *Frame) {
	if f == nil {
		f = &Frame{}
	}
	if f.Values == nil {
		f.Values = api.Args{}
	}
	m.frames = append(m.frames, f)
	if f.UtilID != "" {
		m.scope = f.UtilID
	}
}

// Peek returns the top frame, or nil if the stack is empty
func (m *Manager) Peek() *Frame {
	if len(m.frames) == 0 {
		return nil
	}
	return m.frames[len(m.frames)-1]
}

// Pop removes and returns the top frame, or nil if the stack is empty.
// Popping the frame that opened the current scope restores the scope of the
// nearest enclosing util frame
func (m *Manager) Pop() *Frame {
	if len(m.frames) == 0 {
		return nil
	}
	top := m.frames[len(m.frames)-1]
	m.frames[len(m.frames)-1] = nil
	m.frames = m.frames[:len(m.frames)-1]

	if top.UtilID != "" {
		m.scope = m.enclosingScope()
	}
	return top
}

// Scope returns the util id of the current custom-util scope, or an empty
// string when no scope is open
func (m *Manager) Scope() string {
	return m.scope
}

// Depth returns the number of frames on the stack
func (m *Manager) Depth() int {
	return len(m.frames)
}

// ToArray returns the frames top-first. Inside a custom-util scope the
// result stops at the frame that opened the scope
func (m *Manager) ToArray() []*Frame {
	res := make([]*Frame, 0, len(m.frames))
	for i := len(m.frames) - 1; i >= 0; i-- {
		f := m.frames[i]
		res = append(res, f)
		if m.scope != "" && f.UtilID == m.scope {
			break
		}
	}
	return res
}

// Snapshot returns the diagnostic window of ToArray in flattened form
func (m *Manager) Snapshot() []map[string]any {
	frames := m.ToArray()
	res := make([]map[string]any, len(frames))
	for i, f := range frames {
		res[i] = f.Snapshot()
	}
	return res
}

// Lookup searches the diagnostic window top-first for a named value
func (m *Manager) Lookup(name api.Name) (api.Value, bool) {
	for _, f := range m.ToArray() {
		if v, ok := f.Get(name); ok {
			return v, true
		}
	}
	return api.Null, false
}

func (m *Manager) enclosingScope() string {
	for i := len(m.frames) - 1; i >= 0; i-- {
		if id := m.frames[i].UtilID; id != "" {
			return id
		}
	}
	return ""
}
