package scripting

import (
	"errors"
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/statengine/internal/game/property"
	"github.com/cory-johannsen/statengine/internal/game/stat"
)

// ErrNoHook is returned when no loaded script defines the hook for a
// condition type.
var ErrNoHook = errors.New("scripting: no condition hook")

// HookName returns the Lua global consulted for conditions of type t:
// "condition_" followed by the type's wire form with ":" replaced by "_".
func HookName(t property.ConditionType) string {
	return "condition_" + strings.ReplaceAll(t.String(), ":", "_")
}

// ConditionEvaluator implements property.Evaluator by calling the Lua hook
// named by HookName with two tables: the condition parameters and the
// environment. The hook's result is interpreted with Lua truthiness.
type ConditionEvaluator struct {
	mgr   *Manager
	scope string
}

var _ property.Evaluator = (*ConditionEvaluator)(nil)

// NewConditionEvaluator returns an evaluator resolving hooks in scope, with
// fallback to the global scope.
//
// Precondition: mgr must not be nil.
func NewConditionEvaluator(mgr *Manager, scope string) *ConditionEvaluator {
	if scope == "" {
		scope = GlobalScope
	}
	return &ConditionEvaluator{mgr: mgr, scope: scope}
}

// Holds evaluates c against env.
//
// Postcondition: returns ErrNoHook (wrapped) when the hook is undefined, and
// the Lua error when the hook fails.
func (e *ConditionEvaluator) Holds(c property.Condition, env property.Env) (bool, error) {
	hook := HookName(c.Type)
	ret, found, err := e.mgr.Call(e.scope, hook, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{valueTable(L, c.Parameters), valueTable(L, env)}
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, fmt.Errorf("%w: %s", ErrNoHook, hook)
	}
	return lua.LVAsBool(ret), nil
}

func valueTable(L *lua.LState, values map[string]stat.Value) *lua.LTable {
	t := L.CreateTable(0, len(values))
	for k, v := range values {
		t.RawSetString(k, toLua(v))
	}
	return t
}

func toLua(v stat.Value) lua.LValue {
	switch v.Kind() {
	case stat.KindInteger:
		i, _ := v.AsInt()
		return lua.LNumber(i)
	case stat.KindFloat:
		f, _ := v.AsFloat()
		return lua.LNumber(f)
	case stat.KindBoolean:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case stat.KindString:
		s, _ := v.AsString()
		return lua.LString(s)
	default:
		return lua.LNil
	}
}
