package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/crucible-convert/internal/mapping"
	"github.com/cory-johannsen/crucible-convert/internal/translate"
)

// RegisterModules installs the "convert" helper table into L:
//
//	convert.normalize(key)  -> lowercased key with '_' folded to '-'
//	convert.stat_key(key)   -> upper snake case stat key
//	convert.number(value)   -> numeric reading of value, or nil
//
// Precondition: L must be from NewSandboxedState.
func RegisterModules(L *lua.LState) {
	mod := L.NewTable()
	L.SetField(mod, "normalize", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(mapping.NormalizeKey(L.CheckString(1))))
		return 1
	}))
	L.SetField(mod, "stat_key", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(translate.StatKey(L.CheckString(1))))
		return 1
	}))
	L.SetField(mod, "number", L.NewFunction(luaNumber))
	L.SetGlobal("convert", mod)
}

func luaNumber(L *lua.LState) int {
	switch v := L.Get(1).(type) {
	case lua.LNumber:
		L.Push(v)
	case lua.LString:
		n, ok := translate.Coerce(translate.StringValue(string(v)))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(n))
	default:
		L.Push(lua.LNil)
	}
	return 1
}

// toLua converts a source value into a Lua value. Sections become tables
// keyed by field name, lists become 1-based array tables.
func toLua(L *lua.LState, v translate.Value) lua.LValue {
	switch v.Kind() {
	case translate.KindScalar:
		if b, ok := v.Bool(); ok {
			return lua.LBool(b)
		}
		if v.IsNumber() {
			if n, ok := translate.Coerce(v); ok {
				return lua.LNumber(n)
			}
		}
		return lua.LString(v.Raw())
	case translate.KindList:
		t := L.NewTable()
		for _, item := range v.List() {
			t.Append(toLua(L, item))
		}
		return t
	case translate.KindSection:
		t := L.NewTable()
		sec := v.Section()
		for _, key := range sec.Keys() {
			child, _ := sec.Get(key)
			L.SetField(t, key, toLua(L, child))
		}
		return t
	default:
		return lua.LNil
	}
}
