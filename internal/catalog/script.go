package catalog

import (
	"errors"

	"github.com/kode4food/blockplan/internal/block"
	"github.com/kode4food/blockplan/pkg/api"
	"github.com/kode4food/blockplan/pkg/fault"
)

// Script blocks run sandboxed Lua snippets
const Script block.Type = "script"

const ScriptLua block.Action = "lua"

const slotSource = "source"

func registerScript(d *block.Dispatcher, env *LuaEnv) {
	d.Register(Script, ScriptLua, block.Eval(
		func(c *block.Call) (api.Value, error) {
			return runLua(env, c)
		},
		block.One(slotSource), block.Optional(slotArgs),
	))
}

// runLua exposes each arg to the script as a local of the same name and
// yields the script's first return value
func runLua(env *LuaEnv, c *block.Call) (api.Value, error) {
	src, err := c.In.String(slotSource)
	if err != nil {
		return api.Null, err
	}
	args, err := c.In.RecordOr(slotArgs)
	if err != nil {
		return api.Null, err
	}

	compiled, err := env.Compile(src, args.SortedNames())
	if err != nil {
		slot := slotSource
		if errors.Is(err, ErrLuaArgName) {
			slot = slotArgs
		}
		return api.Null, fault.WithContext(err, fault.InvalidArgument{
			Slot:     slot,
			Expected: "valid lua",
			Actual:   api.KindString.String(),
		})
	}
	return env.Execute(compiled, args)
}
