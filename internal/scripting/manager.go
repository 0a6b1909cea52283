package scripting

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// GlobalScope is the reserved scope for shared scripts. Calls into a scope
// without its own VM, or whose VM lacks the hook, fall back to it.
const GlobalScope = "__global__"

//go:embed prelude.lua
var prelude string

// vm is one sandboxed LState. LStates are single-threaded; mu serializes
// every execution on L.
type vm struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	closed bool
}

// Manager owns one sandboxed LState per scope and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into the same scope are
// serialized; different scopes run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	logger *zap.Logger
}

// NewManager creates a Manager whose global scope holds only the prelude.
//
// Precondition: logger must be non-nil.
// Postcondition: Returns a non-nil Manager with a ready global scope.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	m := &Manager{
		vms:    make(map[string]*vm),
		logger: logger,
	}
	if err := m.LoadString(GlobalScope, "", 0); err != nil {
		panic(fmt.Sprintf("scripting.NewManager: loading prelude: %v", err))
	}
	return m
}

// LoadDir creates a fresh VM for scope, registers the engine module and the
// prelude, then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: the scope VM is replaced; on error the previous VM is kept.
func (m *Manager) LoadDir(scope, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, scope, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	slices.Sort(luaFiles)

	return m.install(scope, instLimit, func(L *lua.LState) error {
		for _, path := range luaFiles {
			if err := L.DoFile(path); err != nil {
				return fmt.Errorf("scripting: loading %q for %q: %w", path, scope, err)
			}
		}
		m.logger.Info("scripts loaded", zap.String("scope", scope), zap.Int("files", len(luaFiles)))
		return nil
	})
}

// LoadGlobal replaces the global scope with the scripts in scriptDir.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.LoadDir(GlobalScope, scriptDir, instLimit)
}

// LoadString replaces scope with a VM running src after the prelude.
func (m *Manager) LoadString(scope, src string, instLimit int) error {
	return m.install(scope, instLimit, func(L *lua.LState) error {
		if src == "" {
			return nil
		}
		if err := L.DoString(src); err != nil {
			return fmt.Errorf("scripting: loading source for %q: %w", scope, err)
		}
		return nil
	})
}

func (m *Manager) install(scope string, instLimit int, load func(*lua.LState) error) error {
	if scope == "" {
		return fmt.Errorf("scripting: scope must not be empty")
	}
	L, cancel := NewSandboxedState(instLimit)
	m.registerModules(L, scope)
	err := L.DoString(prelude)
	if err == nil {
		err = load(L)
	}
	cancel()
	if err != nil {
		L.Close()
		return err
	}

	next := &vm{L: L, limit: normalizeLimit(instLimit)}
	m.mu.Lock()
	old := m.vms[scope]
	m.vms[scope] = next
	m.mu.Unlock()
	if old != nil {
		old.close()
	}
	return nil
}

// lookup returns the VM that defines hook for scope: the scope's own VM when
// it defines hook, otherwise the global VM when it does, otherwise nil.
func (m *Manager) lookup(scope, hook string) *vm {
	m.mu.RLock()
	candidates := []*vm{m.vms[scope], m.vms[GlobalScope]}
	m.mu.RUnlock()

	for _, v := range candidates {
		if v != nil && v.defines(hook) {
			return v
		}
	}
	return nil
}

func (v *vm) defines(hook string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.closed && v.L.GetGlobal(hook).Type() == lua.LTFunction
}

func (v *vm) close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.L.Close()
}

// HasHook reports whether hook resolves for scope.
func (m *Manager) HasHook(scope, hook string) bool {
	return m.lookup(scope, hook) != nil
}

// Call invokes hook for scope with the arguments built by args inside the
// target LState. Tables must be created through the LState passed to args.
//
// Postcondition: found is false when no VM defines hook. Lua runtime errors,
// including an exhausted instruction budget, are returned.
func (m *Manager) Call(scope, hook string, args func(L *lua.LState) []lua.LValue) (ret lua.LValue, found bool, err error) {
	v := m.lookup(scope, hook)
	if v == nil {
		return lua.LNil, false, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	// The VM may have been replaced and closed between lookup and lock.
	if v.closed {
		return lua.LNil, false, nil
	}
	fn := v.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, false, nil
	}
	var argv []lua.LValue
	if args != nil {
		argv = args(v.L)
	}
	cancel := limitInstructions(v.L, v.limit)
	defer cancel()
	if err := v.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, argv...); err != nil {
		return lua.LNil, true, fmt.Errorf("scripting: %s in %q: %w", hook, scope, err)
	}
	ret = v.L.Get(-1)
	v.L.Pop(1)
	return ret, true, nil
}

// CallHook calls the named Lua global function for scope. Returns (LNil, nil)
// if the hook is not defined. Lua runtime errors are logged at Warn level and
// never propagated.
//
// Precondition: args must be scalar lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	ret, found, err := m.Call(scope, hook, func(*lua.LState) []lua.LValue { return args })
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	if !found {
		m.logger.Debug("scripting: hook not defined",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
	}
	return ret, nil
}

// Scopes returns the loaded scope names in sorted order.
func (m *Manager) Scopes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.vms))
	for s := range m.vms {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Close releases every VM. Subsequent calls find no hooks.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.close()
	}
}
