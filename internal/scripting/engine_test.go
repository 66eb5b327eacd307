package scripting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psavery/tomviz/internal/dataset"
)

func compileOK(t *testing.T, script string) (*Engine, *Module) {
	t.Helper()
	e := NewEngine()
	m, err := e.Compile(context.Background(), "Test Operator", script)
	require.NoError(t, err)
	return e, m
}

func TestCompileErrors(t *testing.T) {
	e := NewEngine()

	t.Run("syntax error", func(t *testing.T) {
		_, err := e.Compile(context.Background(), "bad", "function transform( {")
		var ce *CompileError
		require.ErrorAs(t, err, &ce)
	})

	t.Run("top level throw", func(t *testing.T) {
		_, err := e.Compile(context.Background(), "boom", `throw new Error("nope");`)
		var ce *CompileError
		require.ErrorAs(t, err, &ce)
	})

	t.Run("missing entry point", func(t *testing.T) {
		_, err := e.Compile(context.Background(), "noentry", `function helper() {}`)
		var be *BindError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, EntryPointName, be.Symbol)
	})

	t.Run("broken probe", func(t *testing.T) {
		_, err := e.Compile(context.Background(), "probe", `
function transform(dataset) {}
var isCancelable = 42;
`)
		var be *BindError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, CancelProbeName, be.Symbol)
	})
}

func TestCancelabilityProbe(t *testing.T) {
	t.Run("absent probe means not cancelable", func(t *testing.T) {
		_, m := compileOK(t, `function transform(dataset) {}`)
		assert.False(t, m.Cancelable())
	})

	t.Run("probe value is cached on the module", func(t *testing.T) {
		_, m := compileOK(t, `
var calls = 0;
function isCancelable() { calls++; return true; }
function transform(dataset) {}
`)
		assert.True(t, m.Cancelable())
	})
}

func TestRunMutatesVolumeInPlace(t *testing.T) {
	e, m := compileOK(t, `
function transform(dataset) {
	var s = dataset.activeScalars();
	var out = [];
	for (var i = 0; i < s.length; i++) {
		out.push(s[i] * 2);
	}
	dataset.setActiveScalars(out);
}
`)
	vol := dataset.NewVolume([3]int{2, 1, 1})
	vol.Scalars = []float64{3, 5}

	res, err := e.Run(context.Background(), m, NewHandle(vol))
	defer res.Close()
	require.NoError(t, err)
	assert.Equal(t, []float64{6, 10}, vol.Scalars)
}

func TestRunFaultIsNonFatal(t *testing.T) {
	e, m := compileOK(t, `function transform(dataset) { throw new Error("bad voxel"); }`)

	res, err := e.Run(context.Background(), m, NewHandle(dataset.NewVolume([3]int{1, 1, 1})))
	defer res.Close()

	var fault *ExecError
	require.ErrorAs(t, err, &fault)
	assert.False(t, res.IsMapping())
}

func TestHandleExpiresAfterClose(t *testing.T) {
	e, m := compileOK(t, `
var stash;
function transform(dataset) { stash = dataset; }
function poke() { return stash.activeScalars(); }
`)
	h := NewHandle(dataset.NewVolume([3]int{1, 1, 1}))
	res, err := e.Run(context.Background(), m, h)
	require.NoError(t, err)
	res.Close()

	assert.False(t, h.Valid())
	_, err = h.Object()
	assert.ErrorIs(t, err, ErrHandleExpired)
}

func TestResultMappingLookup(t *testing.T) {
	e, m := compileOK(t, `
function transform(dataset) {
	var tbl = tomviz.newTable();
	tbl.setColumn("bins", [1, 2, 3]);
	var child = tomviz.newVolume([2, 2, 2]);
	return { histogram: tbl, segmentation: child, note: "hello" };
}
`)
	res, err := e.Run(context.Background(), m, NewHandle(dataset.NewVolume([3]int{1, 1, 1})))
	require.NoError(t, err)
	defer res.Close()
	require.True(t, res.IsMapping())

	tbl, err := res.Lookup("histogram")
	require.NoError(t, err)
	require.IsType(t, &dataset.Table{}, tbl)
	assert.Equal(t, []float64{1, 2, 3}, tbl.(*dataset.Table).Column("bins"))

	child, err := res.Lookup("segmentation")
	require.NoError(t, err)
	assert.Equal(t, dataset.KindVolume, child.Kind())

	t.Run("missing name", func(t *testing.T) {
		_, err := res.Lookup("absent")
		assert.ErrorContains(t, err, `no result named "absent"`)
	})

	t.Run("wrong type", func(t *testing.T) {
		_, err := res.Lookup("note")
		assert.ErrorContains(t, err, "is not a data object")
	})

	t.Run("mapping repr names payloads", func(t *testing.T) {
		repr := res.String()
		assert.Contains(t, repr, "histogram: Table(columns=1)")
		assert.Contains(t, repr, "segmentation: Volume[2 2 2]")
	})
}

func TestCancelPollReachesScript(t *testing.T) {
	e, m := compileOK(t, `
function isCancelable() { return true; }
function transform(dataset) {
	var n = 0;
	while (!dataset.canceled()) {
		n++;
		if (n > 3) { throw new Error("cancel was never observed"); }
	}
}
`)
	calls := 0
	h := NewHandle(dataset.NewVolume([3]int{1, 1, 1}))
	h.SetCancelPoll(func() bool {
		calls++
		return calls > 2
	})

	res, err := e.Run(context.Background(), m, h)
	defer res.Close()
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
