package scripting

import (
	"log/slog"

	"github.com/dop251/goja"

	"github.com/psavery/tomviz/internal/dataset"
)

// handleKey is the hidden property linking a script-visible data object back
// to its native handle. The result demultiplexer unwraps through it.
const handleKey = "__tomvizHandle__"

// installGlobals populates a fresh module VM with the tomviz namespace and a
// console that routes into the host logger. Called once per compile, before
// the module's top-level code runs.
func installGlobals(rt *goja.Runtime, m *Module, logger *slog.Logger) {
	ns := rt.NewObject()

	_ = ns.Set("newVolume", func(call goja.FunctionCall) goja.Value {
		var dims []int
		if err := rt.ExportTo(call.Argument(0), &dims); err != nil || len(dims) != 3 {
			panic(rt.NewTypeError("newVolume expects an array of three dimensions"))
		}
		vol := dataset.NewVolume([3]int{dims[0], dims[1], dims[2]})
		h := NewHandle(vol)
		m.track(h)
		return newDataObjectValue(rt, m, h)
	})

	_ = ns.Set("newTable", func(call goja.FunctionCall) goja.Value {
		h := NewHandle(dataset.NewTable())
		m.track(h)
		return newDataObjectValue(rt, m, h)
	})

	_ = rt.Set("tomviz", ns)

	console := rt.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		args := make([]any, 0, len(call.Arguments))
		for _, a := range call.Arguments {
			args = append(args, a.Export())
		}
		logger.Info("script console.log", "module", m.label, "args", args)
		return goja.Undefined()
	})
	_ = rt.Set("console", console)
}

// newDataObjectValue builds the script-visible wrapper around a handle. The
// wrapper's accessors re-resolve the handle on every call, so an expired
// capsule raises inside the script rather than touching freed data.
func newDataObjectValue(rt *goja.Runtime, m *Module, h *Handle) *goja.Object {
	obj := rt.NewObject()

	resolve := func() dataset.DataObject {
		data, err := h.Object()
		if err != nil {
			panic(rt.NewGoError(err))
		}
		return data
	}
	volume := func() *dataset.Volume {
		v, ok := resolve().(*dataset.Volume)
		if !ok {
			panic(rt.NewTypeError("data object is not a volume"))
		}
		return v
	}
	table := func() *dataset.Table {
		t, ok := resolve().(*dataset.Table)
		if !ok {
			panic(rt.NewTypeError("data object is not a table"))
		}
		return t
	}

	_ = obj.Set("kind", func(goja.FunctionCall) goja.Value {
		return rt.ToValue(string(resolve().Kind()))
	})
	_ = obj.Set("canceled", func(goja.FunctionCall) goja.Value {
		return rt.ToValue(h.Canceled())
	})
	_ = obj.Set("progress", func(call goja.FunctionCall) goja.Value {
		h.Progress(call.Argument(0).ToFloat())
		return goja.Undefined()
	})

	// Volume accessors. activeScalars returns a live view; setActiveScalars
	// replaces the buffer and must keep the extent consistent.
	_ = obj.Set("dims", func(goja.FunctionCall) goja.Value {
		d := volume().Dims
		return rt.ToValue([]int{d[0], d[1], d[2]})
	})
	_ = obj.Set("spacing", func(goja.FunctionCall) goja.Value {
		s := volume().Spacing
		return rt.ToValue([]float64{s[0], s[1], s[2]})
	})
	_ = obj.Set("activeScalars", func(goja.FunctionCall) goja.Value {
		return rt.ToValue(volume().Scalars)
	})
	_ = obj.Set("setActiveScalars", func(call goja.FunctionCall) goja.Value {
		vol := volume()
		var values []float64
		if err := rt.ExportTo(call.Argument(0), &values); err != nil {
			panic(rt.NewTypeError("setActiveScalars expects an array of numbers"))
		}
		if len(values) != len(vol.Scalars) {
			panic(rt.NewTypeError("setActiveScalars must preserve the scalar count"))
		}
		vol.Scalars = values
		return goja.Undefined()
	})
	_ = obj.Set("tiltAngles", func(goja.FunctionCall) goja.Value {
		return rt.ToValue(volume().TiltAngles)
	})
	_ = obj.Set("setTiltAngles", func(call goja.FunctionCall) goja.Value {
		vol := volume()
		var angles []float64
		if err := rt.ExportTo(call.Argument(0), &angles); err != nil {
			panic(rt.NewTypeError("setTiltAngles expects an array of numbers"))
		}
		vol.TiltAngles = angles
		return goja.Undefined()
	})
	_ = obj.Set("rotations", func(goja.FunctionCall) goja.Value {
		return rt.ToValue(volume().Rotations)
	})
	_ = obj.Set("setRotations", func(call goja.FunctionCall) goja.Value {
		vol := volume()
		var rotations []float64
		if err := rt.ExportTo(call.Argument(0), &rotations); err != nil {
			panic(rt.NewTypeError("setRotations expects an array of numbers"))
		}
		vol.Rotations = rotations
		return goja.Undefined()
	})

	// Table accessors.
	_ = obj.Set("column", func(call goja.FunctionCall) goja.Value {
		return rt.ToValue(table().Column(call.Argument(0).String()))
	})
	_ = obj.Set("setColumn", func(call goja.FunctionCall) goja.Value {
		var values []float64
		if err := rt.ExportTo(call.Argument(1), &values); err != nil {
			panic(rt.NewTypeError("setColumn expects a name and an array of numbers"))
		}
		table().AddColumn(call.Argument(0).String(), values)
		return goja.Undefined()
	})

	_ = obj.DefineDataProperty(handleKey, rt.ToValue(h), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)

	return obj
}
