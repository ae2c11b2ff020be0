package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/kode4food/ale"
	"github.com/kode4food/ale/core/bootstrap"
	"github.com/kode4food/ale/data"
	"github.com/kode4food/ale/env"
	"github.com/kode4food/ale/eval"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

// AleEnv evaluates Ale lambdas against a bootstrapped environment. Each
// run compiles into its own anonymous namespace, so definitions made by
// one script are invisible to the next
type AleEnv struct {
	env *env.Environment
}

const ScriptAle block.Action = "ale"

const aleLambdaTemplate = "(lambda (%s) %s)"

var (
	ErrAleCompile      = errors.New("ale compile error")
	ErrAleCall         = errors.New("ale call error")
	ErrAleArgName      = errors.New("invalid ale argument name")
	ErrAleNotProcedure = errors.New("not a procedure")
)

var aleIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-?!*]*$`)

// NewAleEnv creates a bootstrapped Ale environment
func NewAleEnv() *AleEnv {
	e := env.NewEnvironment()
	bootstrap.Into(e)
	return &AleEnv{env: e}
}

func registerAle(d *block.Dispatcher, e *AleEnv) {
	d.Register(Script, ScriptAle, block.Eval(
		func(c *block.Call) (api.Value, error) {
			return runAle(e, c)
		},
		block.One(slotSource), block.Optional(slotArgs),
	))
}

func runAle(e *AleEnv, c *block.Call) (api.Value, error) {
	src, err := c.In.String(slotSource)
	if err != nil {
		return api.Null, err
	}
	args, err := c.In.RecordOr(slotArgs)
	if err != nil {
		return api.Null, err
	}

	names := args.SortedNames()
	proc, err := e.Compile(src, names)
	if err != nil {
		slot := slotSource
		if errors.Is(err, ErrAleArgName) {
			slot = slotArgs
		}
		return api.Null, fault.WithContext(err, fault.InvalidArgument{
			Slot:     slot,
			Expected: "valid ale",
			Actual:   api.KindString.String(),
		})
	}
	return e.Call(proc, names, args)
}

// Compile wraps the script in a lambda taking the named arguments
func (e *AleEnv) Compile(
	script string, argNames []api.Name,
) (data.Procedure, error) {
	params := make([]string, len(argNames))
	for i, name := range argNames {
		if !aleIdentifier.MatchString(string(name)) {
			return nil, fmt.Errorf("%w: %q", ErrAleArgName, name)
		}
		params[i] = string(name)
	}

	src := fmt.Sprintf(aleLambdaTemplate, strings.Join(params, " "), script)
	return catchPanic(ErrAleCompile, func() (data.Procedure, error) {
		res, err := eval.String(e.env.GetAnonymous(), data.String(src))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAleCompile, err)
		}
		proc, ok := res.(data.Procedure)
		if !ok {
			return nil, fmt.Errorf("%w: %w, got %T",
				ErrAleCompile, ErrAleNotProcedure, res,
			)
		}
		return proc, nil
	})
}

// Call applies the procedure to the named arguments in order
func (e *AleEnv) Call(
	proc data.Procedure, argNames []api.Name, args api.Args,
) (api.Value, error) {
	in := make(data.Vector, len(argNames))
	for i, name := range argNames {
		in[i] = valueToAle(args.Get(name))
	}
	res, err := catchPanic(ErrAleCall, func() (ale.Value, error) {
		return proc.Call(in...), nil
	})
	if err != nil {
		return api.Null, err
	}
	return aleToValue(res), nil
}

func valueToAle(v api.Value) ale.Value {
	switch v.Kind() {
	case api.KindString:
		s, _ := v.AsString()
		return data.String(s)
	case api.KindInteger:
		i, _ := v.AsInteger()
		return data.Integer(i)
	case api.KindFloat:
		f, _ := v.AsFloat()
		return data.Float(f)
	case api.KindBoolean:
		b, _ := v.AsBoolean()
		return data.Bool(b)
	case api.KindList:
		items, _ := v.AsList()
		res := make(data.Vector, len(items))
		for i, item := range items {
			res[i] = valueToAle(item)
		}
		return res
	case api.KindRecord:
		rec, _ := v.AsRecord()
		obj := data.NewObject()
		for _, k := range v.Keys() {
			pair := data.NewCons(data.Keyword(k), valueToAle(rec.Get(k)))
			obj = obj.Put(pair).(*data.Object)
		}
		return obj
	default:
		return data.Null
	}
}

func aleToValue(v ale.Value) api.Value {
	if v == data.Null {
		return api.Null
	}
	switch v := v.(type) {
	case data.Bool:
		return api.Boolean(bool(v))
	case data.Integer:
		return api.Integer(int64(v))
	case data.Float:
		return api.Float(float64(v))
	case data.String:
		return api.String(string(v))
	case data.Keyword:
		return api.String(string(v))
	case data.Vector:
		res := make([]api.Value, len(v))
		for i, item := range v {
			res[i] = aleToValue(item)
		}
		return api.List(res...)
	case *data.List:
		var res []api.Value
		for l := v; !l.IsEmpty(); {
			head, tail, ok := l.Split()
			if !ok {
				break
			}
			res = append(res, aleToValue(head))
			l = tail.(*data.List)
		}
		return api.List(res...)
	case *data.Object:
		rec := api.Args{}
		for _, pair := range v.Pairs() {
			key := aleToValue(pair.Car())
			if s, ok := key.AsString(); ok {
				rec[api.Name(s)] = aleToValue(pair.Cdr())
				continue
			}
			rec[api.Name(key.String())] = aleToValue(pair.Cdr())
		}
		return api.Record(rec)
	default:
		return api.String(fmt.Sprint(v))
	}
}

func catchPanic[T any](base error, fn func() (T, error)) (res T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", base, r)
		}
	}()
	return fn()
}
