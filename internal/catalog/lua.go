package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Shopify/go-lua"
	"github.com/kode4food/lru"

	"github.com/kode4food/blockplan/pkg/api"
)

type (
	// LuaEnv compiles sandboxed Lua scripts into a bounded bytecode cache.
	// Every execution loads the bytecode into its own fresh state, so
	// globals a script assigns never outlive the run
	LuaEnv struct {
		scripts *lru.Cache[*CompiledLua]
	}

	// CompiledLua represents a compiled Lua script
	CompiledLua struct {
		bytecode []byte
		argNames []api.Name
	}
)

const (
	luaScriptCacheSize  = 1024
	luaGlobalTableIndex = -2
	luaArgLocalTemplate = "local %s = select(%d, ...)"
	luaScriptSeparator  = "\n"
	luaGlobalTableName  = "_G"
	luaChunkName        = "chunk"
)

var (
	ErrLuaLoad      = errors.New("lua load error")
	ErrLuaExecution = errors.New("lua execution error")
	ErrLuaArgName   = errors.New("invalid lua argument name")
)

var luaExclude = [...]string{
	"io", "os", "debug", "package", "require", "dofile", "loadfile", "load",
}

var luaIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewLuaEnv creates a new Lua environment
func NewLuaEnv() *LuaEnv {
	return &LuaEnv{
		scripts: lru.NewCache[*CompiledLua](luaScriptCacheSize),
	}
}

// Compile compiles a script that receives the named arguments as locals,
// returning a cached result when the same script was compiled before
func (e *LuaEnv) Compile(
	script string, argNames []api.Name,
) (*CompiledLua, error) {
	for _, name := range argNames {
		if !luaIdentifier.MatchString(string(name)) {
			return nil, fmt.Errorf("%w: %q", ErrLuaArgName, name)
		}
	}

	c, err := e.scripts.Get(hashScript(script, argNames),
		func() (*CompiledLua, error) {
			return e.compile(script, argNames)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLuaLoad, err)
	}
	return c, nil
}

// Execute runs a compiled script in a fresh sandboxed state and converts
// its first return value
func (e *LuaEnv) Execute(c *CompiledLua, args api.Args) (api.Value, error) {
	L := lua.NewState()
	e.setupSandbox(L)

	err := L.Load(bytes.NewReader(c.bytecode), luaChunkName, "b")
	if err != nil {
		return api.Null, fmt.Errorf("%w: %w", ErrLuaLoad, err)
	}

	for _, name := range c.argNames {
		pushLuaValue(L, args.Get(name))
	}

	if err := L.ProtectedCall(len(c.argNames), 1, 0); err != nil {
		return api.Null, fmt.Errorf("%w: %w", ErrLuaExecution, err)
	}
	return luaToValue(L, -1), nil
}

func (e *LuaEnv) compile(
	script string, argNames []api.Name,
) (*CompiledLua, error) {
	argLocals := make([]string, len(argNames))
	for i, name := range argNames {
		argLocals[i] = fmt.Sprintf(luaArgLocalTemplate, name, i+1)
	}

	src := strings.Join([]string{
		strings.Join(argLocals, luaScriptSeparator), script,
	}, luaScriptSeparator)

	L := lua.NewState()
	e.setupSandbox(L)

	if err := lua.LoadString(L, src); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := L.Dump(&buf); err != nil {
		return nil, err
	}

	return &CompiledLua{
		bytecode: buf.Bytes(),
		argNames: argNames,
	}, nil
}

func (e *LuaEnv) setupSandbox(L *lua.State) {
	lua.OpenLibraries(L)
	L.Global(luaGlobalTableName)
	for _, name := range luaExclude {
		L.PushNil()
		L.SetField(luaGlobalTableIndex, name)
	}
	L.Pop(1)
}

// hashScript keys the compile cache by source and argument names
func hashScript(script string, argNames []api.Name) string {
	h := sha256.New()
	_, _ = h.Write([]byte(script))
	for _, name := range argNames {
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(name))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func pushLuaValue(L *lua.State, v api.Value) {
	switch v.Kind() {
	case api.KindString:
		s, _ := v.AsString()
		L.PushString(s)
	case api.KindInteger:
		i, _ := v.AsInteger()
		L.PushInteger(int(i))
	case api.KindFloat:
		f, _ := v.AsFloat()
		L.PushNumber(f)
	case api.KindBoolean:
		b, _ := v.AsBoolean()
		L.PushBoolean(b)
	case api.KindList:
		items, _ := v.AsList()
		L.CreateTable(len(items), 0)
		for i, item := range items {
			pushLuaValue(L, item)
			L.RawSetInt(-2, i+1)
		}
	case api.KindRecord:
		rec, _ := v.AsRecord()
		L.CreateTable(0, len(rec))
		for _, k := range v.Keys() {
			pushLuaValue(L, rec.Get(k))
			L.SetField(-2, string(k))
		}
	default:
		L.PushNil()
	}
}

func luaToValue(L *lua.State, index int) api.Value {
	index = L.AbsIndex(index)
	switch L.TypeOf(index) {
	case lua.TypeBoolean:
		return api.Boolean(L.ToBoolean(index))
	case lua.TypeNumber:
		n, _ := L.ToNumber(index)
		return api.ValueOf(n)
	case lua.TypeString:
		s, _ := L.ToString(index)
		return api.String(s)
	case lua.TypeTable:
		return luaTableToValue(L, index)
	default:
		return api.Null
	}
}

// luaTableToValue converts a sequence into a list and any other table
// into a record
func luaTableToValue(L *lua.State, index int) api.Value {
	length := L.RawLength(index)
	count := 0
	L.PushNil()
	for L.Next(index) {
		count++
		L.Pop(1)
	}

	if length > 0 && length == count {
		items := make([]api.Value, length)
		for i := 1; i <= length; i++ {
			L.RawGetInt(index, i)
			items[i-1] = luaToValue(L, -1)
			L.Pop(1)
		}
		return api.List(items...)
	}

	rec := api.Args{}
	L.PushNil()
	for L.Next(index) {
		var key string
		if L.TypeOf(-2) == lua.TypeString {
			key, _ = L.ToString(-2)
		} else {
			key = luaToValue(L, -2).String()
		}
		rec[api.Name(key)] = luaToValue(L, -1)
		L.Pop(1)
	}
	return api.Record(rec)
}
