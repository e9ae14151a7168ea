package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskborne/internal/game/dice"
)

// globalAreaID is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no area VM is found.
const globalAreaID = "__global__"

// Manager owns one sandbox per area and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook after all LoadArea calls complete.
// Each sandbox is single-threaded; the manager mutex serializes calls.
type Manager struct {
	mu        sync.Mutex
	sandboxes map[string]*Sandbox
	roller    *dice.Roller
	logger    *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with an empty area map.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		sandboxes: make(map[string]*Sandbox),
		roller:    roller,
		logger:    logger,
	}
}

// LoadArea creates a sandbox for areaID, registers the engine module, then
// executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: areaID must be non-empty; scriptDir must be a readable directory.
// Postcondition: Area VM is registered, replacing any previous one; returns error on Lua load failure.
func (m *Manager) LoadArea(areaID, scriptDir string, instLimit int) error {
	return m.loadInto(areaID, scriptDir, instLimit)
}

// LoadGlobal creates the shared VM used as a CallHook fallback from any area.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalAreaID, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	sb := NewSandbox(instLimit)
	m.RegisterModules(sb.L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		sb.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := sb.DoFile(path); err != nil {
			sb.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.sandboxes[key]; ok {
		old.Close()
	}
	m.sandboxes[key] = sb
	m.mu.Unlock()
	m.logger.Debug("scripts loaded", zap.String("area", key), zap.Int("files", len(luaFiles)))
	return nil
}

// CallHook calls the named Lua global function in areaID's VM. If the area has
// no VM, the global VM is tried as a fallback. Returns (LNil, nil) if the
// hook is not defined or no VM exists. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(areaID, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(areaID, hook, func(*lua.LState) []lua.LValue { return args })
}

// CallPredicate calls hook(facts) and reports whether it returned a truthy value.
// A missing VM or hook evaluates to false.
func (m *Manager) CallPredicate(areaID, hook string, facts map[string]any) (bool, error) {
	ret, err := m.call(areaID, hook, func(L *lua.LState) []lua.LValue {
		return []lua.LValue{ToLua(L, facts)}
	})
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(ret), nil
}

func (m *Manager) call(areaID, hook string, args func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sb, ok := m.sandboxes[areaID]
	if !ok {
		sb = m.sandboxes[globalAreaID]
	}
	if sb == nil {
		m.logger.Info("scripting: no VM for area",
			zap.String("area", areaID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	ret, err := sb.Call(hook, args(sb.L)...)
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("area", areaID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	return ret, nil
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, sb := range m.sandboxes {
		sb.Close()
		delete(m.sandboxes, key)
	}
}
