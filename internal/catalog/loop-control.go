package catalog

import (
	"errors"
	"fmt"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/api"
)

// LoopControl blocks iterate a body and raise the break and continue
// signals the loops consume
const LoopControl block.Type = "loop-control"

const (
	LoopForEach  block.Action = "for-each"
	LoopRepeat   block.Action = "repeat"
	LoopBreak    block.Action = "break"
	LoopContinue block.Action = "continue"
)

const (
	slotBody  = "body"
	slotCount = "count"
)

var ErrLoopLimit = errors.New("loop iteration limit exceeded")

type loopStep struct {
	item api.Value
	key  string
}

func registerLoopControl(d *block.Dispatcher) {
	f := d.Family(LoopControl)
	f.Register(LoopForEach, block.Lazy(forEach,
		block.One(slotItems), block.One(slotBody),
	))
	f.Register(LoopRepeat, block.Lazy(repeat,
		block.One(slotCount), block.One(slotBody),
	))
	f.Register(LoopBreak, block.Eager(
		func(*block.Call) (block.Result, error) {
			return block.Break(), nil
		},
	))
	f.Register(LoopContinue, block.Eager(
		func(*block.Call) (block.Result, error) {
			return block.Continue(), nil
		},
	))
}

// forEach runs its body once per list item, or once per record entry in
// key order, collecting the value of every completed iteration
func forEach(c *block.Call) (block.Result, error) {
	res, err := c.Eval(slotItems)
	if err != nil || res.Interrupted() {
		return res, err
	}

	var steps []loopStep
	switch items := res.Value; items.Kind() {
	case api.KindList:
		list, _ := items.AsList()
		steps = make([]loopStep, len(list))
		for i, item := range list {
			steps[i] = loopStep{item: item}
		}
	case api.KindRecord:
		rec, _ := items.AsRecord()
		for _, k := range items.Keys() {
			steps = append(steps, loopStep{key: string(k), item: rec.Get(k)})
		}
	case api.KindNull:
	default:
		return block.Result{}, block.Invalid(
			slotItems, "list or record", items,
		)
	}
	return runLoop(c, steps)
}

func repeat(c *block.Call) (block.Result, error) {
	res, err := c.Fetch(slotCount)
	if err != nil || res.Interrupted() {
		return res, err
	}
	count, err := c.In.Integer(slotCount)
	if err != nil {
		return block.Result{}, err
	}
	if count < 0 {
		return block.Result{}, block.Invalid(
			slotCount, "non-negative integer", api.Integer(count),
		)
	}
	if limit := c.Exec.Limits().MaxLoopIterations; count > int64(limit) {
		return block.Result{}, fmt.Errorf("%w: %d > %d",
			ErrLoopLimit, count, limit,
		)
	}
	steps := make([]loopStep, count)
	for i := range steps {
		steps[i] = loopStep{item: api.Integer(int64(i))}
	}
	return runLoop(c, steps)
}

func runLoop(c *block.Call, steps []loopStep) (block.Result, error) {
	if limit := c.Exec.Limits().MaxLoopIterations; len(steps) > limit {
		return block.Result{}, fmt.Errorf("%w: %d > %d",
			ErrLoopLimit, len(steps), limit,
		)
	}

	loop := c.Scratch.PushLoop()
	defer c.Scratch.PopLoop()

	collected := make([]api.Value, 0, len(steps))
	for i, step := range steps {
		if err := c.Context().Err(); err != nil {
			return block.Result{}, err
		}
		loop.Index = i
		loop.Item = step.item
		loop.Key = step.key

		res, err := c.Eval(slotBody)
		if err != nil {
			return block.Result{}, err
		}
		switch res.Signal {
		case block.SignalBreak:
			return block.Completed(api.List(collected...)), nil
		case block.SignalContinue:
			continue
		case block.SignalRespond:
			return res, nil
		}
		collected = append(collected, res.Value)
	}
	return block.Completed(api.List(collected...)), nil
}
