package block

import (
	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/pkg/api"
)

type (
	// Block is the polymorphic unit of computation
	Block interface {
		// SetData hydrates the block from a Template, resolving every child
		// slot through the Dispatcher
		SetData(d *Dispatcher, t *api.Template) error

		// Template serializes the block and its children
		Template() *api.Template

		// Do evaluates the block
		Do(ec *state.Execution, sc *Scratch) (Result, error)
	}

	// Type names a block family
	Type string

	// Action names an operation within a block family
	Action string

	// Factory creates an empty block ready to be hydrated
	Factory func() Block
)
