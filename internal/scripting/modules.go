package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// registerModules installs the engine global into L:
//
//	engine.log.debug|info|warn|error(msg)  writes msg to the manager logger
//	engine.scope                           the scope name L was loaded for
func (m *Manager) registerModules(L *lua.LState, scope string) {
	engine := L.NewTable()
	logTable := L.NewTable()
	for name, level := range map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
	} {
		L.SetField(logTable, name, L.NewFunction(func(L *lua.LState) int {
			msg := L.CheckString(1)
			if ce := m.logger.Check(level, msg); ce != nil {
				ce.Write(zap.String("scope", scope), zap.String("source", "lua"))
			}
			return 0
		}))
	}
	L.SetField(engine, "log", logTable)
	L.SetField(engine, "scope", lua.LString(scope))
	L.SetGlobal("engine", engine)
}
