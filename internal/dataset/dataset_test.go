package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeValidate(t *testing.T) {
	t.Run("valid volume", func(t *testing.T) {
		v := NewVolume([3]int{2, 3, 4})
		assert.NoError(t, v.Validate())
	})

	t.Run("scalar length mismatch", func(t *testing.T) {
		v := NewVolume([3]int{2, 2, 2})
		v.Scalars = v.Scalars[:5]
		assert.ErrorContains(t, v.Validate(), "does not match dims")
	})

	t.Run("tilt angles must match z extent", func(t *testing.T) {
		v := NewVolume([3]int{2, 2, 4})
		v.TiltAngles = []float64{0, 1}
		assert.ErrorContains(t, v.Validate(), "tilt angles")
	})
}

func TestVolumeDeepCopy(t *testing.T) {
	v := NewVolume([3]int{2, 2, 2})
	v.Scalars[0] = 7
	v.TiltAngles = []float64{0, 45}

	clone := v.DeepCopy().(*Volume)
	clone.Scalars[0] = 1
	clone.TiltAngles[0] = 90

	assert.Equal(t, 7.0, v.Scalars[0])
	assert.Equal(t, 0.0, v.TiltAngles[0])
	assert.Equal(t, v.Dims, clone.Dims)
}

func TestVolumeIndexing(t *testing.T) {
	v := NewVolume([3]int{3, 4, 5})
	v.SetAt(2, 3, 4, 9)
	assert.Equal(t, 9.0, v.At(2, 3, 4))
	assert.Equal(t, len(v.Scalars)-1, v.Index(2, 3, 4))
}

func TestVolumeRange(t *testing.T) {
	v := NewVolume([3]int{2, 1, 1})
	v.Scalars = []float64{-3, 11}
	min, max := v.Range()
	assert.Equal(t, -3.0, min)
	assert.Equal(t, 11.0, max)
}

func TestTableColumns(t *testing.T) {
	tbl := NewTable()
	tbl.AddColumn("bins", []float64{1, 2})
	tbl.AddColumn("counts", []float64{10, 20})

	assert.Equal(t, []float64{1, 2}, tbl.Column("bins"))
	assert.Nil(t, tbl.Column("missing"))

	// Re-adding replaces rather than duplicating.
	tbl.AddColumn("bins", []float64{3})
	assert.Len(t, tbl.Columns, 2)
	assert.Equal(t, []float64{3}, tbl.Column("bins"))
}

func TestGenerate(t *testing.T) {
	t.Run("ramp", func(t *testing.T) {
		v, err := Generate("ramp", [3]int{2, 2, 1}, [3]float64{1, 1, 1})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 2, 3}, v.Scalars)
	})

	t.Run("gaussian peaks at the center", func(t *testing.T) {
		v, err := Generate("gaussian", [3]int{5, 5, 5}, [3]float64{1, 1, 1})
		require.NoError(t, err)
		_, max := v.Range()
		assert.Equal(t, max, v.At(2, 2, 2))
	})

	t.Run("unknown generator", func(t *testing.T) {
		_, err := Generate("perlin", [3]int{2, 2, 2}, [3]float64{1, 1, 1})
		assert.ErrorContains(t, err, "unknown volume generator")
	})

	t.Run("negative dims are rejected before allocation", func(t *testing.T) {
		_, err := Generate("zeros", [3]int{2, -2, 2}, [3]float64{1, 1, 1})
		assert.ErrorContains(t, err, "dims must be positive")
	})
}

func TestCheckDims(t *testing.T) {
	assert.NoError(t, CheckDims([3]int{1, 1, 1}))
	assert.ErrorContains(t, CheckDims([3]int{0, 1, 1}), "axis 0")
	assert.ErrorContains(t, CheckDims([3]int{1, 1, -4}), "axis 2")
}

func TestRawRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vol.raw")

	v, err := Generate("ramp", [3]int{2, 3, 2}, [3]float64{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, WriteRaw(path, v))

	got, err := ReadRaw(path, v.Dims, v.Spacing)
	require.NoError(t, err)
	assert.Equal(t, v.Scalars, got.Scalars)

	// Declaring the wrong extent must not silently truncate.
	_, err = ReadRaw(path, [3]int{2, 3, 1}, v.Spacing)
	assert.ErrorContains(t, err, "larger than dims")

	// A negative extent is caught before the scalar buffer is sized.
	_, err = ReadRaw(path, [3]int{2, 3, -2}, v.Spacing)
	assert.ErrorContains(t, err, "dims must be positive")
}
