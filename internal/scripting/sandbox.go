// Package scripting provides a sandboxed GopherLua execution environment for
// area-level event predicates. It has no dependency on game domain packages;
// callers pass plain Go values that are converted to Lua tables.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// script execution when no override is configured.
const DefaultInstructionLimit = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's mainLoopWithContext calls Done() once
// per opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done returns the underlying cancellation channel. Each call decrements the
// remaining counter; when it reaches zero the cancel function fires,
// terminating the Lua VM on the next opcode boundary.
func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: rem,
	}, cancel
}

// Sandbox is a restricted LState whose every execution runs under a fresh
// instruction budget.
//
// A Sandbox is single-threaded; callers serialize access.
type Sandbox struct {
	L     *lua.LState
	limit int
}

// NewSandbox creates a GopherLua state with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, collectgarbage, require
//   - Each DoFile, DoString, and Call limited to at most instLimit opcodes
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the Sandbox and must call Close when done.
func NewSandbox(instLimit int) *Sandbox {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return &Sandbox{L: L, limit: limit}
}

func (s *Sandbox) budgeted(fn func() error) error {
	ctx, cancel := newCountingContext(s.limit)
	defer cancel()
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()
	return fn()
}

// DoString executes src under the instruction budget.
func (s *Sandbox) DoString(src string) error {
	return s.budgeted(func() error { return s.L.DoString(src) })
}

// DoFile executes the file at path under the instruction budget.
func (s *Sandbox) DoFile(path string) error {
	return s.budgeted(func() error { return s.L.DoFile(path) })
}

// Call invokes the global function name with args and returns its first result.
//
// Postcondition: Returns (LNil, nil) when name is not a defined global.
func (s *Sandbox) Call(name string, args ...lua.LValue) (lua.LValue, error) {
	fn := s.L.GetGlobal(name)
	if fn == lua.LNil {
		return lua.LNil, nil
	}
	err := s.budgeted(func() error {
		return s.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...)
	})
	if err != nil {
		return lua.LNil, err
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)
	return ret, nil
}

// Close releases the state.
func (s *Sandbox) Close() { s.L.Close() }
