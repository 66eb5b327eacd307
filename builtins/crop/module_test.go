package crop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psavery/tomviz/internal/dataset"
	"github.com/psavery/tomviz/internal/registry"
)

func rampVolume(t *testing.T, dims [3]int) *dataset.Volume {
	t.Helper()
	v, err := dataset.Generate("ramp", dims, [3]float64{1, 1, 1})
	require.NoError(t, err)
	return v
}

func TestOnApplyCrop(t *testing.T) {
	ctx := context.Background()

	t.Run("extracts the requested region", func(t *testing.T) {
		vol := rampVolume(t, [3]int{4, 4, 2})
		want := make([]float64, 0, 8)
		for z := 0; z < 2; z++ {
			for y := 1; y < 3; y++ {
				for x := 1; x < 3; x++ {
					want = append(want, vol.At(x, y, z))
				}
			}
		}

		input := &Input{Origin: []int{1, 1, 0}, Extent: []int{2, 2, 2}}
		require.NoError(t, OnApplyCrop(ctx, input, vol))

		assert.Equal(t, [3]int{2, 2, 2}, vol.Dims)
		assert.Equal(t, want, vol.Scalars)
	})

	t.Run("trims tilt angles to the kept z range", func(t *testing.T) {
		vol := rampVolume(t, [3]int{2, 2, 4})
		vol.TiltAngles = []float64{-60, -20, 20, 60}
		vol.Rotations = []float64{0, 1, 2, 3}

		input := &Input{Origin: []int{0, 0, 1}, Extent: []int{2, 2, 2}}
		require.NoError(t, OnApplyCrop(ctx, input, vol))

		assert.Equal(t, []float64{-20, 20}, vol.TiltAngles)
		assert.Equal(t, []float64{1, 2}, vol.Rotations)
	})

	t.Run("out of bounds region is rejected", func(t *testing.T) {
		vol := rampVolume(t, [3]int{2, 2, 2})
		input := &Input{Origin: []int{1, 0, 0}, Extent: []int{2, 2, 2}}
		err := OnApplyCrop(ctx, input, vol)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds axis 0")
	})

	t.Run("arity of origin and extent is checked", func(t *testing.T) {
		vol := rampVolume(t, [3]int{2, 2, 2})
		err := OnApplyCrop(ctx, &Input{Origin: []int{0}, Extent: []int{1, 1, 1}}, vol)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "three components")
	})

	t.Run("non-volume data is rejected", func(t *testing.T) {
		err := OnApplyCrop(ctx, &Input{Origin: []int{0, 0, 0}, Extent: []int{1, 1, 1}}, dataset.NewTable())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires volume data")
	})
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	b, ok := r.Builtin("crop")
	require.True(t, ok)
	assert.IsType(t, &Input{}, b.NewInput())
	require.NoError(t, r.Validate(context.Background()))
}
