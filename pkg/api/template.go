package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type (
	// Template is the serialized form of a block tree node
	Template struct {
		Extra  Extra  `json:"extra,omitempty"`
		Value  any    `json:"value,omitempty"`
		Type   string `json:"type"`
		Action string `json:"action"`
		Slots  Slots  `json:"template,omitempty"`
	}

	// Extra holds free-form diagnostic metadata attached by a plan author
	Extra map[string]any

	// Slots is the ordered set of named child slots of a Template. Order is
	// significant: children execute in the order they were declared
	Slots []*Slot

	// Slot binds a name to one child Template or to a list of them
	Slot struct {
		Name      string
		Templates []*Template
		List      bool
	}
)

var (
	ErrSlotNotObject = errors.New("template slots must be a JSON object")
	ErrSlotBadValue  = errors.New("slot must hold a template or an array")
)

// Single creates a slot holding exactly one child template
func Single(name string, t *Template) *Slot {
	return &Slot{Name: name, Templates: []*Template{t}}
}

// Many creates a slot holding an ordered list of child templates
func Many(name string, ts ...*Template) *Slot {
	if ts == nil {
		ts = []*Template{}
	}
	return &Slot{Name: name, Templates: ts, List: true}
}

// UnmarshalJSON decodes a Template, keeping numbers in value and extra as
// json.Number so integers beyond float64 precision survive a round trip
func (t *Template) UnmarshalJSON(data []byte) error {
	type plain Template
	var res plain
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&res); err != nil {
		return err
	}
	*t = Template(res)
	return nil
}

// Get returns the slot with the given name
func (s Slots) Get(name string) (*Slot, bool) {
	for _, slot := range s {
		if slot.Name == name {
			return slot, true
		}
	}
	return nil, false
}

// Names returns the slot names in declared order
func (s Slots) Names() []string {
	res := make([]string, len(s))
	for i, slot := range s {
		res[i] = slot.Name
	}
	return res
}

// MarshalJSON encodes the slots as a JSON object, preserving their order
func (s Slots) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, slot := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(slot.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')

		var val []byte
		if slot.List {
			ts := slot.Templates
			if ts == nil {
				ts = []*Template{}
			}
			val, err = json.Marshal(ts)
		} else {
			val, err = json.Marshal(slot.first())
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into slots, keeping the key order of
// the source document
func (s *Slots) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return ErrSlotNotObject
	}

	res := Slots{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		slot, err := decodeSlot(name, raw)
		if err != nil {
			return err
		}
		res = append(res, slot)
	}
	*s = res
	return nil
}

func (s *Slot) first() *Template {
	if len(s.Templates) == 0 {
		return nil
	}
	return s.Templates[0]
}

func decodeSlot(name string, raw json.RawMessage) (*Slot, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSlotBadValue, name)
	}

	switch trimmed[0] {
	case '[':
		var ts []*Template
		if err := json.Unmarshal(trimmed, &ts); err != nil {
			return nil, err
		}
		if ts == nil {
			ts = []*Template{}
		}
		return Many(name, ts...), nil
	case '{':
		var t Template
		if err := json.Unmarshal(trimmed, &t); err != nil {
			return nil, err
		}
		return Single(name, &t), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrSlotBadValue, name)
	}
}
