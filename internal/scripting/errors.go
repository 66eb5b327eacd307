package scripting

import (
	"errors"
	"fmt"
)

// ErrHandleExpired is reported when a script retains a data handle beyond the
// transform call that owned it.
var ErrHandleExpired = errors.New("data handle used outside its transform call")

// CompileError reports a script that failed to compile or whose top-level
// code failed to load. The operator that owns the script stays inert.
type CompileError struct {
	Label string
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile script %q: %v", e.Label, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// BindError reports a compiled module that is missing the transform entry
// point, or whose cancelability probe is broken.
type BindError struct {
	Symbol string
	Err    error
}

func (e *BindError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("script does not define %q", e.Symbol)
	}
	return fmt.Sprintf("bind %q: %v", e.Symbol, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// ExecError reports a runtime fault raised while the transform entry point
// was running. It fails the pipeline step but never the host.
type ExecError struct {
	Label string
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute script %q: %v", e.Label, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
