package catalog_test

import (
	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/builder"
)

func node(t block.Type, a block.Action) *builder.Block {
	return builder.NewBlock(string(t), string(a))
}

func str(s string) *builder.Block {
	return builder.String(s)
}

func num(i int64) *builder.Block {
	return builder.Integer(i)
}
