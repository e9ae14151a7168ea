package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine Lua table into L:
//
//	engine.log(msg)     logs msg at Info
//	engine.roll(n)      returns a uniform integer in [1, n]
//	engine.chance(p)    returns true with probability p
//
// Precondition: L must come from NewSandbox.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.ArgError(1, "n must be positive")
			return 0
		}
		L.Push(lua.LNumber(m.roller.IntRange("lua roll", 1, n)))
		return 1
	}))
	L.SetField(engine, "chance", L.NewFunction(func(L *lua.LState) int {
		p := float64(L.CheckNumber(1))
		L.Push(lua.LBool(m.roller.Chance("lua chance", p)))
		return 1
	}))
	L.SetGlobal("engine", engine)
}

// ToLua converts v into a Lua value. Maps with string keys become tables;
// slices become arrays; unsupported types become nil.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case map[string]any:
		t := L.NewTable()
		for k, e := range x {
			t.RawSetString(k, ToLua(L, e))
		}
		return t
	case map[string]bool:
		t := L.NewTable()
		for k, e := range x {
			t.RawSetString(k, lua.LBool(e))
		}
		return t
	case map[string]int:
		t := L.NewTable()
		for k, e := range x {
			t.RawSetString(k, lua.LNumber(e))
		}
		return t
	case []string:
		t := L.NewTable()
		for _, e := range x {
			t.Append(lua.LString(e))
		}
		return t
	default:
		return lua.LNil
	}
}
