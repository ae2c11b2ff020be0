package catalog

import (
	"errors"
	"fmt"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/internal/stack"
	"github.com/kode4food/blockplan/pkg/fault"
)

// CustomUtil blocks invoke the reusable block trees registered with the
// plan
const CustomUtil block.Type = "custom-util"

const UtilInvoke block.Action = "invoke"

const (
	slotID   = "id"
	slotArgs = "args"
)

var (
	ErrUnknownUtil   = errors.New("unknown custom util")
	ErrStackOverflow = errors.New("custom util stack depth exceeded")
	ErrSignalEscaped = errors.New("signal escaped custom util")
)

func registerCustomUtil(d *block.Dispatcher) {
	d.Register(CustomUtil, UtilInvoke, block.Eager(invokeUtil,
		block.One(slotID), block.Optional(slotArgs),
	))
}

// invokeUtil runs a custom util in its own stack scope and scratch
// context. The util's args become the values of the frame that opens the
// scope
func invokeUtil(c *block.Call) (block.Result, error) {
	id, err := c.In.String(slotID)
	if err != nil {
		return block.Result{}, err
	}
	args, err := c.In.RecordOr(slotArgs)
	if err != nil {
		return block.Result{}, err
	}

	tmpl, ok := c.Exec.Util(id)
	if !ok {
		return block.Result{}, fault.WithContext(
			fmt.Errorf("%w: %s", ErrUnknownUtil, id),
			fault.InvalidArgument{
				Slot:     slotID,
				Expected: "registered util id",
				Actual:   id,
			},
		)
	}
	util, err := c.Dispatcher().Hydrate(tmpl)
	if err != nil {
		return block.Result{}, err
	}

	st := c.Exec.Stack()
	if limit := c.Exec.Limits().MaxStackDepth; st.Depth() >= limit {
		return block.Result{}, fmt.Errorf("%w: %d", ErrStackOverflow, limit)
	}
	st.Push(stack.NewUtilFrame(id, args))
	defer st.Pop()

	res, err := util.Do(c.Exec, block.NewScratch())
	if err != nil {
		return block.Result{}, err
	}
	switch res.Signal {
	case block.SignalBreak, block.SignalContinue:
		return block.Result{}, fault.WithContext(ErrSignalEscaped,
			fault.Signal{
				Signal:   res.Signal.String(),
				Boundary: string(CustomUtil),
			},
		)
	}
	return res, nil
}

