package block

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/kode4food/blockplan/internal/state"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

type (
	// Dispatcher is the registration table resolving a template's type and
	// action to a concrete block. It is populated once at startup and is
	// read-only afterwards
	Dispatcher struct {
		families map[Type]*Family
	}

	// Family is the table of actions registered for one block type
	Family struct {
		actions map[Action]Factory
		name    Type
	}

	// Router is the block a Family hydrates into. It resolves the template's
	// action and delegates to the resolved block, so callers never see a
	// difference between routers and leaves
	Router struct {
		family *Family
		target Block
	}
)

var (
	ErrNilTemplate     = errors.New("template is nil")
	ErrUnknownType     = errors.New("unknown block type")
	ErrUnknownAction   = errors.New("unknown block action")
	ErrDuplicateAction = errors.New("action already registered")
)

var _ Block = (*Router)(nil)

// NewDispatcher creates an empty Dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{families: map[Type]*Family{}}
}

// Family returns the table for a block type, creating it on first use
func (d *Dispatcher) Family(t Type) *Family {
	if f, ok := d.families[t]; ok {
		return f
	}
	f := &Family{name: t, actions: map[Action]Factory{}}
	d.families[t] = f
	return f
}

// Register adds a factory for a type and action. Registering the same pair
// twice panics
func (d *Dispatcher) Register(t Type, a Action, fn Factory) {
	d.Family(t).Register(a, fn)
}

// Hydrate resolves a template into a ready-to-run block tree. Resolution
// failures are dispatch errors and surface here, never during Do
func (d *Dispatcher) Hydrate(t *api.Template) (Block, error) {
	if t == nil {
		return nil, fault.Dispatch(fault.Key{}, ErrNilTemplate)
	}
	fam, ok := d.families[Type(t.Type)]
	if !ok {
		return nil, fault.New(fault.KindDispatch, keyOf(t), t.Extra,
			fmt.Errorf("%w: %q", ErrUnknownType, t.Type),
		)
	}
	r := NewRouter(fam)
	if err := r.SetData(d, t); err != nil {
		return nil, err
	}
	return r, nil
}

// Catalog lists the registered actions of every family, sorted
func (d *Dispatcher) Catalog() map[string][]string {
	res := make(map[string][]string, len(d.families))
	for name, f := range d.families {
		res[string(name)] = f.Actions()
	}
	return res
}

// Name returns the block type this family handles
func (f *Family) Name() Type {
	return f.name
}

// Register adds a factory for an action. Registering the same action twice
// panics
func (f *Family) Register(a Action, fn Factory) {
	if _, ok := f.actions[a]; ok {
		panic(fmt.Errorf("%w: %s/%s", ErrDuplicateAction, f.name, a))
	}
	f.actions[a] = fn
}

// Resolve returns the factory registered for an action
func (f *Family) Resolve(a Action) (Factory, bool) {
	fn, ok := f.actions[a]
	return fn, ok
}

// Actions returns the registered action names, sorted
func (f *Family) Actions() []string {
	res := make([]string, 0, len(f.actions))
	for _, a := range slices.Sorted(maps.Keys(f.actions)) {
		res = append(res, string(a))
	}
	return res
}

// NewRouter creates an unhydrated Router for a family
func NewRouter(f *Family) *Router {
	return &Router{family: f}
}

// SetData resolves the template's action and hydrates the resolved block
func (r *Router) SetData(d *Dispatcher, t *api.Template) error {
	fn, ok := r.family.Resolve(Action(t.Action))
	if !ok {
		return fault.New(fault.KindDispatch, keyOf(t), t.Extra,
			fmt.Errorf("%w: %q in family %q",
				ErrUnknownAction, t.Action, r.family.name,
			),
		)
	}
	target := fn()
	if err := target.SetData(d, t); err != nil {
		return err
	}
	r.target = target
	return nil
}

// Template serializes the resolved block
func (r *Router) Template() *api.Template {
	return r.target.Template()
}

// Do evaluates the resolved block
func (r *Router) Do(ec *state.Execution, sc *Scratch) (Result, error) {
	return r.target.Do(ec, sc)
}

func keyOf(t *api.Template) fault.Key {
	return fault.Key{Type: t.Type, Action: t.Action}
}
