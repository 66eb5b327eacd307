package shift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psavery/tomviz/internal/dataset"
	"github.com/psavery/tomviz/internal/registry"
)

func TestOnApplyShift(t *testing.T) {
	ctx := context.Background()

	t.Run("shifts along x with wraparound", func(t *testing.T) {
		vol := dataset.NewVolume([3]int{4, 1, 1})
		vol.Scalars = []float64{0, 1, 2, 3}

		require.NoError(t, OnApplyShift(ctx, &Input{Delta: []int{1, 0, 0}}, vol))
		assert.Equal(t, []float64{3, 0, 1, 2}, vol.Scalars)
	})

	t.Run("negative delta shifts the other way", func(t *testing.T) {
		vol := dataset.NewVolume([3]int{4, 1, 1})
		vol.Scalars = []float64{0, 1, 2, 3}

		require.NoError(t, OnApplyShift(ctx, &Input{Delta: []int{-1, 0, 0}}, vol))
		assert.Equal(t, []float64{1, 2, 3, 0}, vol.Scalars)
	})

	t.Run("full-period shift is identity", func(t *testing.T) {
		vol := dataset.NewVolume([3]int{3, 2, 1})
		vol.Scalars = []float64{0, 1, 2, 3, 4, 5}

		require.NoError(t, OnApplyShift(ctx, &Input{Delta: []int{3, 2, 1}}, vol))
		assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, vol.Scalars)
	})

	t.Run("shift along z moves whole slices", func(t *testing.T) {
		vol := dataset.NewVolume([3]int{1, 1, 3})
		vol.Scalars = []float64{10, 20, 30}

		require.NoError(t, OnApplyShift(ctx, &Input{Delta: []int{0, 0, 1}}, vol))
		assert.Equal(t, []float64{30, 10, 20}, vol.Scalars)
	})

	t.Run("delta arity is checked", func(t *testing.T) {
		vol := dataset.NewVolume([3]int{2, 2, 2})
		err := OnApplyShift(ctx, &Input{Delta: []int{1}}, vol)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "three components")
	})

	t.Run("non-volume data is rejected", func(t *testing.T) {
		err := OnApplyShift(ctx, &Input{Delta: []int{0, 0, 0}}, dataset.NewTable())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires volume data")
	})
}

func TestRegister(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	b, ok := r.Builtin("shift")
	require.True(t, ok)
	assert.IsType(t, &Input{}, b.NewInput())
	require.NoError(t, r.Validate(context.Background()))
}
