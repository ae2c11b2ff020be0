package builder

import (
	"maps"
	"slices"

	"github.com/kode4food/blockplan/pkg/api"
)

type (
	// Block is an immutable builder for one node of a block tree
	Block struct {
		extra  api.Extra
		value  any
		typ    string
		action string
		slots  []slot
	}

	slot struct {
		name     string
		children []*Block
		list     bool
	}
)

// NewBlock creates a builder for a block of the given type and action
func NewBlock(typ, action string) *Block {
	return &Block{typ: typ, action: action}
}

// WithExtra attaches a diagnostic metadata entry
func (b *Block) WithExtra(key string, value any) *Block {
	res := *b
	res.extra = maps.Clone(b.extra)
	if res.extra == nil {
		res.extra = api.Extra{}
	}
	res.extra[key] = value
	return &res
}

// WithValue sets the literal payload
func (b *Block) WithValue(value any) *Block {
	res := *b
	res.value = value
	return &res
}

// WithSlot binds a single child to a named slot, replacing any previous
// binding while keeping the slot's position
func (b *Block) WithSlot(name string, child *Block) *Block {
	return b.withSlot(slot{name: name, children: []*Block{child}})
}

// WithList binds an ordered list of children to a named slot
func (b *Block) WithList(name string, children ...*Block) *Block {
	return b.withSlot(slot{
		name:     name,
		children: slices.Clone(children),
		list:     true,
	})
}

// Template builds the serialized form of the tree
func (b *Block) Template() *api.Template {
	res := &api.Template{
		Type:   b.typ,
		Action: b.action,
		Extra:  maps.Clone(b.extra),
		Value:  b.value,
	}
	if len(b.slots) == 0 {
		return res
	}
	res.Slots = make(api.Slots, 0, len(b.slots))
	for _, s := range b.slots {
		ts := make([]*api.Template, len(s.children))
		for i, child := range s.children {
			ts[i] = child.Template()
		}
		if s.list {
			res.Slots = append(res.Slots, api.Many(s.name, ts...))
			continue
		}
		res.Slots = append(res.Slots, api.Single(s.name, ts[0]))
	}
	return res
}

func (b *Block) withSlot(s slot) *Block {
	res := *b
	res.slots = slices.Clone(b.slots)
	idx := slices.IndexFunc(res.slots, func(e slot) bool {
		return e.name == s.name
	})
	if idx >= 0 {
		res.slots[idx] = s
		return &res
	}
	res.slots = append(res.slots, s)
	return &res
}
