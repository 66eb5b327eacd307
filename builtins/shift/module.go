package shift

import (
	"context"
	"fmt"

	"github.com/psavery/tomviz/internal/dataset"
	"github.com/psavery/tomviz/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the shift transform.
type Input struct {
	// Delta is the circular shift in voxels along x, y, z. Negative values
	// shift the other way.
	Delta []int `hcl:"delta"`
}

// OnApplyShift applies a circular shift to the scalar volume, the uniform
// translation used to align tilt series by whole voxels.
func OnApplyShift(ctx context.Context, input *Input, data dataset.DataObject) error {
	vol, ok := data.(*dataset.Volume)
	if !ok {
		return fmt.Errorf("shift requires volume data, got %s", data.Kind())
	}
	if len(input.Delta) != 3 {
		return fmt.Errorf("shift needs a delta with three components")
	}

	dims := vol.Dims
	out := make([]float64, len(vol.Scalars))
	for z := 0; z < dims[2]; z++ {
		sz := wrap(z-input.Delta[2], dims[2])
		for y := 0; y < dims[1]; y++ {
			sy := wrap(y-input.Delta[1], dims[1])
			for x := 0; x < dims[0]; x++ {
				sx := wrap(x-input.Delta[0], dims[0])
				out[vol.Index(x, y, z)] = vol.At(sx, sy, sz)
			}
		}
	}
	vol.Scalars = out
	return nil
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Register registers the transform with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuiltin("shift", &registry.RegisteredBuiltin{
		NewInput: func() any { return new(Input) },
		Fn:       OnApplyShift,
	})
}
