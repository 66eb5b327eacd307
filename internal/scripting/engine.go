// Package scripting embeds the JavaScript runtime that executes user-authored
// operator scripts. It covers compiling script text into a module, binding
// the transform entry point and the cancelability probe, and running the
// entry point against a native data object passed in through an opaque
// handle.
//
// Script execution is serialized process-wide: a single engine mutex plays
// the role of a global interpreter lock, so no two script bodies ever run
// concurrently no matter how many pipeline workers exist.
package scripting

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/psavery/tomviz/internal/ctxlog"
)

const (
	// EntryPointName is the function every operator script must define.
	EntryPointName = "transform"
	// CancelProbeName is the optional function a script defines to declare
	// that its transform polls for cancellation.
	CancelProbeName = "isCancelable"
)

// Engine owns the process-wide script execution lock. One engine is shared
// by every operator in the host.
type Engine struct {
	mu sync.Mutex
}

// NewEngine creates the shared scripting engine.
func NewEngine() *Engine { return &Engine{} }

// Module is the compiled, bound artifact derived from one operator's script
// text. It is invalidated and rebuilt whenever the text changes; an operator
// holds at most one live module at a time.
type Module struct {
	label      string
	vm         *goja.Runtime
	entry      goja.Callable
	cancelable bool

	handleMu sync.Mutex
	handles  []*Handle
}

// Label returns the human-readable name the module was compiled under.
func (m *Module) Label() string { return m.label }

// Cancelable reports the cached value of the script's cancelability probe.
func (m *Module) Cancelable() bool { return m.cancelable }

// track registers a handle created during this module's lifetime so
// releaseHandles can sever it later.
func (m *Module) track(h *Handle) {
	m.handleMu.Lock()
	m.handles = append(m.handles, h)
	m.handleMu.Unlock()
}

// releaseHandles invalidates every handle the module's scripts have seen.
func (m *Module) releaseHandles() {
	m.handleMu.Lock()
	handles := m.handles
	m.handles = nil
	m.handleMu.Unlock()
	for _, h := range handles {
		h.Invalidate()
	}
}

// sourceName synthesizes the compiled unit's name from the operator label,
// mirroring how the label shows up in script stack traces.
func sourceName(label string) string {
	name := strings.ReplaceAll(strings.TrimSpace(label), " ", "_")
	if name == "" {
		name = "operator"
	}
	return "tomviz_" + name
}

// Compile builds a module from script text. It compiles the source, runs the
// top-level code to populate the module's globals, resolves the transform
// entry point, and evaluates the cancelability probe exactly once.
//
// A syntax or load failure returns a *CompileError; a missing entry point or
// a broken probe returns a *BindError. In both cases there is no usable
// module and the caller should treat the operator as inert.
func (e *Engine) Compile(ctx context.Context, label, script string) (*Module, error) {
	logger := ctxlog.FromContext(ctx)

	prog, err := goja.Compile(sourceName(label), script, false)
	if err != nil {
		return nil, &CompileError{Label: label, Err: err}
	}

	m := &Module{label: label, vm: goja.New()}
	installGlobals(m.vm, m, logger)

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := m.vm.RunProgram(prog); err != nil {
		return nil, &CompileError{Label: label, Err: err}
	}

	entry, ok := goja.AssertFunction(m.vm.Get(EntryPointName))
	if !ok {
		return nil, &BindError{Symbol: EntryPointName}
	}
	m.entry = entry

	if probeVal := m.vm.Get(CancelProbeName); probeVal != nil && !goja.IsUndefined(probeVal) && !goja.IsNull(probeVal) {
		probe, ok := goja.AssertFunction(probeVal)
		if !ok {
			return nil, &BindError{Symbol: CancelProbeName, Err: fmt.Errorf("defined but not callable")}
		}
		res, err := probe(goja.Undefined())
		if err != nil {
			return nil, &BindError{Symbol: CancelProbeName, Err: err}
		}
		m.cancelable = res.ToBoolean()
	}

	return m, nil
}

// Run invokes the module's transform entry point with the given data handle,
// blocking the calling goroutine until the script returns or raises. The
// handle is only guaranteed valid for the duration of the call; the caller
// severs it (and any handles the script created) via Result.Close.
//
// Run always returns a non-nil Result so callers can defer Close
// unconditionally; on a script fault the result carries no value and the
// error is an *ExecError.
func (e *Engine) Run(ctx context.Context, m *Module, h *Handle) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running transform entry point.", "module", m.label)

	m.track(h)
	arg := newDataObjectValue(m.vm, m, h)

	value, err := m.entry(goja.Undefined(), arg)
	if err != nil {
		return &Result{module: m}, &ExecError{Label: m.label, Err: err}
	}
	return &Result{module: m, value: value}, nil
}
