package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/psavery/tomviz/internal/dataset"
)

// Transform is one unit of work in a pipeline: a script operator or a
// built-in Go transform. Apply mutates the working data object in place and
// blocks until done.
type Transform interface {
	Label() string
	Apply(ctx context.Context, data dataset.DataObject) error
}

// State is the execution state of a pipeline step.
type State int32

const (
	// Pending means the step has not run yet.
	Pending State = iota
	// Running means a worker is currently executing the step.
	Running
	// Done means the step completed successfully.
	Done
	// Failed means the step's transform reported a fault.
	Failed
	// Skipped means an upstream failure or cancellation prevented the step
	// from running.
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Step pairs a transform with its execution state. State transitions are
// atomic so observers on other goroutines read a consistent value.
type Step struct {
	transform Transform
	state     atomic.Int32
	errMu     sync.Mutex
	err       error
	skipOnce  sync.Once
}

// NewStep wraps a transform as a pending pipeline step.
func NewStep(t Transform) *Step {
	return &Step{transform: t}
}

// Transform returns the wrapped transform.
func (s *Step) Transform() Transform { return s.transform }

// State atomically reads the step's state.
func (s *Step) State() State { return State(s.state.Load()) }

// Err returns the failure or skip cause, nil for healthy steps.
func (s *Step) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Step) setState(st State) { s.state.Store(int32(st)) }

func (s *Step) setErr(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

// fail marks the step failed with its cause.
func (s *Step) fail(err error) {
	s.setErr(err)
	s.setState(Failed)
}

// skip marks the step skipped exactly once; later skip calls are no-ops.
func (s *Step) skip(err error) {
	s.skipOnce.Do(func() {
		s.setErr(err)
		s.setState(Skipped)
	})
}
