package block

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

type (
	// Base carries the data every hydrated block shares: its key, its
	// diagnostic extra, its literal value, and its bound child slots
	Base struct {
		extra api.Extra
		value any
		slots []*boundSlot
		key   fault.Key
	}

	// SlotSpec declares one slot a block accepts
	SlotSpec struct {
		Name  string
		Arity Arity
	}

	// Arity describes how many children a slot holds
	Arity uint8

	boundSlot struct {
		name   string
		blocks []Block
		list   bool
	}
)

const (
	// ArityOne is a required single child
	ArityOne Arity = iota

	// ArityOptional is a single child that may be omitted
	ArityOptional

	// ArityMany is a list of children
	ArityMany
)

var (
	ErrUnknownSlot   = errors.New("unknown slot")
	ErrMissingSlot   = errors.New("missing required slot")
	ErrDuplicateSlot = errors.New("duplicate slot")
	ErrSlotArity     = errors.New("wrong slot cardinality")
)

// One declares a required single-child slot
func One(name string) SlotSpec {
	return SlotSpec{Name: name, Arity: ArityOne}
}

// Optional declares a single-child slot that may be omitted
func Optional(name string) SlotSpec {
	return SlotSpec{Name: name, Arity: ArityOptional}
}

// Many declares a list slot
func Many(name string) SlotSpec {
	return SlotSpec{Name: name, Arity: ArityMany}
}

// Bind hydrates the base from a template, checking its slots against the
// declared specs and resolving every child through the Dispatcher in
// declared order
func (b *Base) Bind(d *Dispatcher, t *api.Template, specs ...SlotSpec) error {
	b.key = keyOf(t)
	b.extra = t.Extra
	b.value = t.Value

	if err := b.checkSlots(t.Slots, specs); err != nil {
		return err
	}

	if t.Slots == nil {
		b.slots = nil
		return nil
	}
	b.slots = make([]*boundSlot, 0, len(t.Slots))
	for _, s := range t.Slots {
		bs := &boundSlot{
			name:   s.Name,
			list:   s.List,
			blocks: make([]Block, 0, len(s.Templates)),
		}
		for _, ct := range s.Templates {
			child, err := d.Hydrate(ct)
			if err != nil {
				return err
			}
			bs.blocks = append(bs.blocks, child)
		}
		b.slots = append(b.slots, bs)
	}
	return nil
}

// Template rebuilds the serialized form of the block and its children.
// The result shares no mutable state with the hydrated block
func (b *Base) Template() *api.Template {
	res := &api.Template{
		Type:   b.key.Type,
		Action: b.key.Action,
		Extra:  maps.Clone(b.extra),
		Value:  cloneLiteral(b.value),
	}
	for k, v := range res.Extra {
		res.Extra[k] = cloneLiteral(v)
	}
	if b.slots == nil {
		return res
	}
	res.Slots = make(api.Slots, 0, len(b.slots))
	for _, bs := range b.slots {
		ts := make([]*api.Template, 0, len(bs.blocks))
		for _, child := range bs.blocks {
			ts = append(ts, child.Template())
		}
		if bs.list {
			res.Slots = append(res.Slots, api.Many(bs.name, ts...))
			continue
		}
		res.Slots = append(res.Slots, api.Single(bs.name, ts[0]))
	}
	return res
}

// Key returns the type and action this block was hydrated with
func (b *Base) Key() fault.Key {
	return b.key
}

// Extra returns the diagnostic metadata of the block
func (b *Base) Extra() api.Extra {
	return b.extra
}

// Literal returns the template's literal payload
func (b *Base) Literal() any {
	return b.value
}

// Has reports whether a slot was provided
func (b *Base) Has(name string) bool {
	_, ok := b.slot(name)
	return ok
}

// Children returns the blocks bound to a slot
func (b *Base) Children(name string) []Block {
	if bs, ok := b.slot(name); ok {
		return bs.blocks
	}
	return nil
}

func (b *Base) slot(name string) (*boundSlot, bool) {
	for _, bs := range b.slots {
		if bs.name == name {
			return bs, true
		}
	}
	return nil, false
}

func (b *Base) checkSlots(slots api.Slots, specs []SlotSpec) error {
	seen := make(map[string]bool, len(slots))
	for _, s := range slots {
		if seen[s.Name] {
			return b.dispatchErr(ErrDuplicateSlot, s.Name)
		}
		seen[s.Name] = true

		idx := slices.IndexFunc(specs, func(spec SlotSpec) bool {
			return spec.Name == s.Name
		})
		if idx < 0 {
			return b.dispatchErr(ErrUnknownSlot, s.Name)
		}
		if !specs[idx].accepts(s) {
			return b.dispatchErr(ErrSlotArity, s.Name)
		}
	}
	for _, spec := range specs {
		if _, ok := slots.Get(spec.Name); !ok && spec.Arity == ArityOne {
			return b.dispatchErr(ErrMissingSlot, spec.Name)
		}
	}
	return nil
}

func (b *Base) dispatchErr(err error, slot string) error {
	return fault.New(fault.KindDispatch, b.key, b.extra,
		fmt.Errorf("%w: %q", err, slot),
	)
}

func cloneLiteral(v any) any {
	switch v := v.(type) {
	case map[string]any:
		res := make(map[string]any, len(v))
		for k, item := range v {
			res[k] = cloneLiteral(item)
		}
		return res
	case []any:
		res := make([]any, len(v))
		for i, item := range v {
			res[i] = cloneLiteral(item)
		}
		return res
	default:
		return v
	}
}

func (s SlotSpec) accepts(slot *api.Slot) bool {
	if s.Arity == ArityMany {
		return slot.List && !slices.Contains(slot.Templates, nil)
	}
	return !slot.List && len(slot.Templates) == 1 && slot.Templates[0] != nil
}
