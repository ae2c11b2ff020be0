package catalog

import (
	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/api"
)

// Primitive blocks produce literal values carried in the template's value
// field
const Primitive block.Type = "primitive"

const (
	PrimitiveString  block.Action = "string"
	PrimitiveInteger block.Action = "integer"
	PrimitiveBoolean block.Action = "boolean"
	PrimitiveRecord  block.Action = "record"
	PrimitiveNull    block.Action = "null"
	PrimitiveList    block.Action = "list"
)

const slotItems = "items"

func registerPrimitive(d *block.Dispatcher) {
	f := d.Family(Primitive)
	f.Register(PrimitiveString, block.Eval(literal(api.KindString)))
	f.Register(PrimitiveInteger, block.Eval(literal(api.KindInteger)))
	f.Register(PrimitiveBoolean, block.Eval(literal(api.KindBoolean)))
	f.Register(PrimitiveRecord, block.Eval(literal(api.KindRecord)))
	f.Register(PrimitiveNull, block.Eval(nullLiteral))
	f.Register(PrimitiveList,
		block.Eval(listLiteral, block.Many(slotItems)),
	)
}

func literal(kind api.Kind) block.ValueFunc {
	return func(c *block.Call) (api.Value, error) {
		v := api.ValueOf(c.Literal())
		if v.Kind() == kind {
			return v, nil
		}
		if kind == api.KindInteger {
			if i, ok := v.AsInteger(); ok {
				return api.Integer(i), nil
			}
		}
		return api.Null, block.Invalid(slotValue, kind.String(), v)
	}
}

func nullLiteral(*block.Call) (api.Value, error) {
	return api.Null, nil
}

func listLiteral(c *block.Call) (api.Value, error) {
	return c.In.Value(slotItems), nil
}
