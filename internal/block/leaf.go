package block

import (
	"context"
	"errors"
	"fmt"

	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
	"github.com/kode4food/blockplan/pkg/log"
)

type (
	// ValueFunc implements a leaf that produces a value
	ValueFunc func(c *Call) (api.Value, error)

	// ResultFunc implements a leaf that may also produce a signal
	ResultFunc func(c *Call) (Result, error)

	// Call is the view a leaf implementation has of one evaluation
	Call struct {
		In      Inputs
		Exec    *state.Execution
		Scratch *Scratch
		leaf    *leaf
	}

	leaf struct {
		Base
		dispatcher *Dispatcher
		run        ResultFunc
		specs      []SlotSpec
		eager      bool
	}
)

var ErrPanic = errors.New("block panicked")

// Eval creates a factory for a leaf whose slots are all evaluated, in
// declared order, before fn runs
func Eval(fn ValueFunc, specs ...SlotSpec) Factory {
	return newLeaf(func(c *Call) (Result, error) {
		v, err := fn(c)
		if err != nil {
			return Result{}, err
		}
		return Completed(v), nil
	}, true, specs)
}

// Eager is Eval for leaves that may return a signal
func Eager(fn ResultFunc, specs ...SlotSpec) Factory {
	return newLeaf(fn, true, specs)
}

// Lazy creates a factory for a leaf that evaluates its own slots, such as
// a conditional or a loop
func Lazy(fn ResultFunc, specs ...SlotSpec) Factory {
	return newLeaf(fn, false, specs)
}

func newLeaf(run ResultFunc, eager bool, specs []SlotSpec) Factory {
	return func() Block {
		return &leaf{run: run, eager: eager, specs: specs}
	}
}

func (l *leaf) SetData(d *Dispatcher, t *api.Template) error {
	l.dispatcher = d
	return l.Bind(d, t, l.specs...)
}

func (l *leaf) Do(ec *state.Execution, sc *Scratch) (Result, error) {
	c := &Call{Exec: ec, Scratch: sc, leaf: l}
	return l.Guard(ec, func() (Result, error) {
		if l.eager {
			res, err := c.evalInputs()
			if err != nil || res.Interrupted() {
				return res, err
			}
		}
		return l.run(c)
	})
}

// Guard runs fn and applies the error discipline shared by every block.
// Domain errors raised by children pass through untouched. Errors carrying
// a fault.Context become domain errors attributed to this block. Anything
// else, panics included, is logged and wrapped as a runtime error
func (b *Base) Guard(
	ec *state.Execution, fn func() (Result, error),
) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%w: %v", ErrPanic, r)
			}
			res, err = Result{}, b.wrap(ec, cause)
		}
	}()

	res, err = fn()
	if err != nil {
		return Result{}, b.wrap(ec, err)
	}
	return res, nil
}

func (b *Base) wrap(ec *state.Execution, err error) error {
	if _, ok := fault.As(err); ok {
		return err
	}

	if ctx, ok := fault.ContextOf(err); ok {
		fe := fault.New(ctx.Kind(), b.key, b.extra, fault.Cause(err)).
			WithContext(ctx)
		b.attachStack(ec, fe)
		ec.Logger().Debug("Block failed",
			log.Block(b.key),
			log.Fault(fe))
		return fe
	}

	ec.Logger().Error("Unexpected block failure",
		log.Block(b.key),
		log.Error(err))
	fe := fault.Runtime(b.key, b.extra, err)
	b.attachStack(ec, fe)
	return fe
}

func (b *Base) attachStack(ec *state.Execution, fe *fault.Error) {
	if ec.Stack().Depth() == 0 {
		return
	}
	fe.Stack = ec.Stack().Snapshot()
}

// Key returns the type and action of the running block
func (c *Call) Key() fault.Key {
	return c.leaf.key
}

// Extra returns the diagnostic metadata of the running block
func (c *Call) Extra() api.Extra {
	return c.leaf.extra
}

// Literal returns the literal payload of the running block's template
func (c *Call) Literal() any {
	return c.leaf.value
}

// Dispatcher returns the Dispatcher the running block was hydrated with
func (c *Call) Dispatcher() *Dispatcher {
	return c.leaf.dispatcher
}

func (c *Call) Context() context.Context {
	return c.Exec.Context()
}

// Has reports whether the running block was given a slot
func (c *Call) Has(name string) bool {
	return c.leaf.Has(name)
}

// Children returns the blocks bound to a slot
func (c *Call) Children(name string) []Block {
	return c.leaf.Children(name)
}

// Eval evaluates a slot with the caller's Scratch. A list slot evaluates
// to a list value. An absent slot evaluates to Null
func (c *Call) Eval(name string) (Result, error) {
	bs, ok := c.leaf.slot(name)
	if !ok {
		return Completed(api.Null), nil
	}
	return c.evalSlot(bs)
}

// Fetch evaluates a slot like Eval and records the value in In, so typed
// accessors can be used by lazy leaves
func (c *Call) Fetch(name string) (Result, error) {
	res, err := c.Eval(name)
	if err != nil || res.Interrupted() || !c.Has(name) {
		return res, err
	}
	if c.In == nil {
		c.In = Inputs{}
	}
	c.In[name] = res.Value
	return res, nil
}

// Run evaluates an arbitrary child block with the caller's Scratch
func (c *Call) Run(b Block) (Result, error) {
	return b.Do(c.Exec, c.Scratch)
}

func (c *Call) evalInputs() (Result, error) {
	c.In = make(Inputs, len(c.leaf.slots))
	for _, bs := range c.leaf.slots {
		res, err := c.evalSlot(bs)
		if err != nil || res.Interrupted() {
			return res, err
		}
		c.In[bs.name] = res.Value
	}
	return Result{}, nil
}

func (c *Call) evalSlot(bs *boundSlot) (Result, error) {
	if !bs.list {
		return c.Run(bs.blocks[0])
	}
	vals := make([]api.Value, 0, len(bs.blocks))
	for _, child := range bs.blocks {
		res, err := c.Run(child)
		if err != nil || res.Interrupted() {
			return res, err
		}
		vals = append(vals, res.Value)
	}
	return Completed(api.List(vals...)), nil
}
