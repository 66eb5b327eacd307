package operator

import (
	"context"
	"errors"
	"fmt"

	"github.com/psavery/tomviz/internal/ctxlog"
	"github.com/psavery/tomviz/internal/dataset"
	"github.com/psavery/tomviz/internal/scripting"
)

// ApplyTransform executes the compiled transform against the given data
// object, blocking until the script returns or raises. The data object is
// lent to the script for the duration of the call through a handle that is
// severed before returning.
//
// It reports false only for a runtime fault in the script; an absent script
// or a failed compile/bind leaves the operator inert and counts as an
// identity transform. Declared results that the output mapping omits or
// mistypes are collected and reported once, with the whole mapping rendered
// for diagnosis, and do not fail the step.
func (o *Operator) ApplyTransform(ctx context.Context, data dataset.DataObject) bool {
	logger := ctxlog.FromContext(ctx)
	if o.script == "" || o.module == nil {
		return true
	}

	o.canceled.Store(false)

	handle := scripting.NewHandle(data)
	handle.SetCancelPoll(o.canceled.Load)
	handle.SetProgress(func(fraction float64) {
		logger.Debug("Transform progress.", "operator", o.label, "fraction", fraction)
	})

	res, err := o.engine.Run(ctx, o.module, handle)
	defer res.Close()
	if err != nil {
		logger.Error("Failed to execute the script.", "operator", o.label, "error", err)
		return false
	}

	if res.IsMapping() {
		o.demux(ctx, res)
	}
	return true
}

// demux validates the declared result and child-dataset slots against the
// execution result mapping and dispatches valid payloads to the owning
// goroutine. Native payloads outlive the mapping; the handles do not.
func (o *Operator) demux(ctx context.Context, res *scripting.Result) {
	logger := ctxlog.FromContext(ctx)
	var faults []error

	for _, slot := range o.results {
		if slot.name == "" {
			continue
		}
		payload, err := res.Lookup(slot.name)
		if err != nil {
			faults = append(faults, err)
			continue
		}
		name := slot.name
		o.disp.Post(func() { o.deliverResult(ctx, name, payload) })
	}

	if o.hasChild {
		payload, err := res.Lookup(o.childName)
		if err != nil {
			faults = append(faults, err)
		} else {
			label := o.childLabel
			o.disp.Post(func() { o.deliverChild(label, payload) })
		}
	}

	if len(faults) > 0 {
		logger.Error("Execution output is missing declared entries.",
			"operator", o.label, "errors", errors.Join(faults...), "mapping", res.String())
	}
}

// deliverResult runs on the dispatcher goroutine.
func (o *Operator) deliverResult(ctx context.Context, name string, data dataset.DataObject) {
	if !o.setResult(name, data) {
		ctxlog.FromContext(ctx).Error("Could not set operator result.", "operator", o.label, "name", name)
	}
}

// deliverChild runs on the dispatcher goroutine.
func (o *Operator) deliverChild(label string, data dataset.DataObject) {
	o.childData = data
	if o.onChild != nil {
		o.onChild(label, data)
	}
}

// Apply adapts ApplyTransform to the error-returning contract pipeline steps
// use.
func (o *Operator) Apply(ctx context.Context, data dataset.DataObject) error {
	if !o.ApplyTransform(ctx, data) {
		return fmt.Errorf("operator %q transform failed", o.label)
	}
	return nil
}
