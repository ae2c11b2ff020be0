package catalog

import (
	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/api"
)

// LogicControl blocks branch and sequence evaluation
const LogicControl block.Type = "logic-control"

const (
	LogicIf       block.Action = "if"
	LogicSequence block.Action = "sequence"
	LogicEquals   block.Action = "equals"
	LogicNot      block.Action = "not"
)

const (
	slotCondition = "condition"
	slotThen      = "then"
	slotElse      = "else"
	slotBlocks    = "blocks"
	slotLeft      = "left"
	slotRight     = "right"
)

func registerLogicControl(d *block.Dispatcher) {
	f := d.Family(LogicControl)
	f.Register(LogicIf, block.Lazy(ifThenElse,
		block.One(slotCondition),
		block.One(slotThen),
		block.Optional(slotElse),
	))
	f.Register(LogicSequence,
		block.Lazy(sequence, block.Many(slotBlocks)),
	)
	f.Register(LogicEquals, block.Eval(equals,
		block.One(slotLeft), block.One(slotRight),
	))
	f.Register(LogicNot, block.Eval(not, block.One(slotValue)))
}

func ifThenElse(c *block.Call) (block.Result, error) {
	res, err := c.Eval(slotCondition)
	if err != nil || res.Interrupted() {
		return res, err
	}
	if res.Value.Truthy() {
		return c.Eval(slotThen)
	}
	return c.Eval(slotElse)
}

// sequence evaluates its blocks in order and yields the last value
func sequence(c *block.Call) (block.Result, error) {
	res := block.Completed(api.Null)
	for _, child := range c.Children(slotBlocks) {
		var err error
		res, err = c.Run(child)
		if err != nil || res.Interrupted() {
			return res, err
		}
	}
	return res, nil
}

func equals(c *block.Call) (api.Value, error) {
	left := c.In.Value(slotLeft)
	return api.Boolean(left.Equal(c.In.Value(slotRight))), nil
}

func not(c *block.Call) (api.Value, error) {
	return api.Boolean(!c.In.Value(slotValue).Truthy()), nil
}
