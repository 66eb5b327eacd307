// Package operator implements script operators: user-authored transforms
// that are compiled by the scripting engine, bound to a transform entry
// point, executed against native data objects, and whose declared results
// and child datasets are marshaled back to the owning goroutine.
//
// An operator's identity is its label, script text, and JSON descriptor. The
// compiled module is a derived artifact, rebuilt whenever the script text
// changes. Label, script, and descriptor must only be mutated from the
// goroutine that runs the dispatcher; result delivery lands there too.
package operator

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/psavery/tomviz/internal/ctxlog"
	"github.com/psavery/tomviz/internal/dataset"
	"github.com/psavery/tomviz/internal/dispatch"
	"github.com/psavery/tomviz/internal/scripting"
)

// DefaultLabel names operators that were never given one.
const DefaultLabel = "Script Operator"

// Result is a declared output slot, preconfigured from the JSON descriptor
// before execution and populated by queued delivery afterwards.
type Result struct {
	name  string
	label string
	data  dataset.DataObject
}

// Name returns the key the execution result mapping is probed with.
func (r *Result) Name() string { return r.name }

// Label returns the human-readable slot label.
func (r *Result) Label() string { return r.label }

// Data returns the delivered payload, nil until delivery.
func (r *Result) Data() dataset.DataObject { return r.data }

// Operator is a script operator bound to one data source.
type Operator struct {
	engine *scripting.Engine
	disp   *dispatch.Dispatcher

	label       string
	script      string
	description string

	module         *scripting.Module
	supportsCancel bool
	canceled       atomic.Bool

	results    []*Result
	hasChild   bool
	childName  string
	childLabel string
	childData  dataset.DataObject

	onChild    func(label string, data dataset.DataObject)
	onModified func()
}

// New creates an inert operator. It does nothing until a script is set.
func New(engine *scripting.Engine, disp *dispatch.Dispatcher) *Operator {
	return &Operator{engine: engine, disp: disp, label: DefaultLabel}
}

// Label returns the operator's human-readable name.
func (o *Operator) Label() string { return o.label }

// Script returns the current script text.
func (o *Operator) Script() string { return o.script }

// Description returns the raw JSON descriptor string.
func (o *Operator) Description() string { return o.description }

// Results returns the declared result slots.
func (o *Operator) Results() []*Result { return o.results }

// ChildSlot returns the declared child-dataset slot, if any.
func (o *Operator) ChildSlot() (name, label string, ok bool) {
	return o.childName, o.childLabel, o.hasChild
}

// ChildData returns the delivered child dataset, nil until delivery.
func (o *Operator) ChildData() dataset.DataObject { return o.childData }

// SupportsCancel reports the cancelability probe value cached at the last
// successful compile.
func (o *Operator) SupportsCancel() bool { return o.supportsCancel }

// OnChildDataSource installs the hook invoked on the dispatcher goroutine
// when the operator produces a child dataset. The pipeline uses it to attach
// a child data source to the scene.
func (o *Operator) OnChildDataSource(fn func(label string, data dataset.DataObject)) {
	o.onChild = fn
}

// OnModified installs a hook fired when the label or script changes.
func (o *Operator) OnModified(fn func()) { o.onModified = fn }

// SetLabel renames the operator. The compiled module keeps its old synthetic
// source name until the next recompile.
func (o *Operator) SetLabel(label string) {
	o.label = label
	o.notifyModified()
}

// SetScript replaces the script text and rebuilds the compiled module.
// Setting the identical text is a no-op. On a compile or bind failure the
// operator is left inert — its transform degrades to identity — and the
// error is logged and returned; the host keeps running either way.
func (o *Operator) SetScript(ctx context.Context, script string) error {
	if o.script == script {
		return nil
	}
	logger := ctxlog.FromContext(ctx)

	o.script = script
	o.module = nil
	o.supportsCancel = false

	m, err := o.engine.Compile(ctx, o.label, script)
	if err != nil {
		var bindErr *scripting.BindError
		if errors.As(err, &bindErr) {
			logger.Error("Script is missing a required symbol.", "operator", o.label, "error", err)
		} else {
			logger.Error("Invalid script, please check the error message for details.", "operator", o.label, "error", err)
		}
		return err
	}

	o.module = m
	o.supportsCancel = m.Cancelable()
	o.notifyModified()
	return nil
}

// Cancel requests cooperative cancellation of a running transform. Ignored
// unless the script declared itself cancelable at bind time; the script must
// poll canceled() for the request to have any effect.
func (o *Operator) Cancel() {
	if o.supportsCancel {
		o.canceled.Store(true)
	}
}

// CancelRequested reports whether a cancel request is pending.
func (o *Operator) CancelRequested() bool { return o.canceled.Load() }

// Clone copies label, script, and descriptor onto a fresh operator. The
// compiled module is re-derived, never shared.
func (o *Operator) Clone(ctx context.Context) *Operator {
	c := New(o.engine, o.disp)
	c.SetLabel(o.label)
	_ = c.SetScript(ctx, o.script)
	_ = c.SetDescription(ctx, o.description)
	return c
}

func (o *Operator) notifyModified() {
	if o.onModified != nil {
		o.onModified()
	}
}

// setResult stores a delivered payload in its declared slot. Runs on the
// dispatcher goroutine.
func (o *Operator) setResult(name string, data dataset.DataObject) bool {
	for _, r := range o.results {
		if r.name == name {
			r.data = data
			return true
		}
	}
	return false
}
