package scripting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dop251/goja"

	"github.com/psavery/tomviz/internal/dataset"
)

// Result is the ephemeral outcome of one transform call. It is consumed by
// the operator's result demultiplexer right after execution and then closed,
// which severs every data handle the call touched.
type Result struct {
	module *Module
	value  goja.Value
}

// IsMapping reports whether the script returned an object that can be probed
// for named results. Scripts that mutate the dataset in place and return
// nothing produce a non-mapping result, which is fine.
func (r *Result) IsMapping() bool {
	if r.value == nil || goja.IsUndefined(r.value) || goja.IsNull(r.value) {
		return false
	}
	_, ok := r.value.(*goja.Object)
	return ok
}

// Lookup resolves a declared slot name against the result mapping. Absence
// and type mismatch are distinct, non-fatal errors; the caller collects them
// and reports once with the full mapping via String.
func (r *Result) Lookup(name string) (dataset.DataObject, error) {
	obj, ok := r.value.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("no result named %q: output is not a mapping", name)
	}
	v := obj.Get(name)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, fmt.Errorf("no result named %q defined in output mapping", name)
	}
	if o, ok := v.(*goja.Object); ok {
		if hv := o.Get(handleKey); hv != nil {
			if h, ok := hv.Export().(*Handle); ok {
				return h.Object()
			}
		}
	}
	return nil, fmt.Errorf("result named %q is not a data object", name)
}

// String renders the full mapping for diagnostics when one or more declared
// slots failed to resolve.
func (r *Result) String() string {
	obj, ok := r.value.(*goja.Object)
	if !ok {
		if r.value == nil {
			return "<no value>"
		}
		return fmt.Sprintf("%v", r.value.Export())
	}
	keys := obj.Keys()
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, describe(obj.Get(k))))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Close invalidates every handle the owning module's scripts have seen,
// including the input capsule. Safe to call on a faulted result.
func (r *Result) Close() {
	if r.module != nil {
		r.module.releaseHandles()
	}
}

func describe(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if o, ok := v.(*goja.Object); ok {
		if hv := o.Get(handleKey); hv != nil {
			if h, ok := hv.Export().(*Handle); ok {
				if data, err := h.Object(); err == nil {
					return fmt.Sprintf("%v", data)
				}
				return "<expired handle>"
			}
		}
	}
	return fmt.Sprintf("%v", v.Export())
}
