package crop

import (
	"context"
	"fmt"

	"github.com/psavery/tomviz/internal/dataset"
	"github.com/psavery/tomviz/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the crop transform.
type Input struct {
	// Origin is the lower corner of the kept region, in voxels.
	Origin []int `hcl:"origin"`
	// Extent is the size of the kept region along each axis.
	Extent []int `hcl:"extent"`
}

// OnApplyCrop extracts a sub-volume in place, shrinking the extent and
// trimming any tilt angle or rotation arrays to the kept z range.
func OnApplyCrop(ctx context.Context, input *Input, data dataset.DataObject) error {
	vol, ok := data.(*dataset.Volume)
	if !ok {
		return fmt.Errorf("crop requires volume data, got %s", data.Kind())
	}
	if len(input.Origin) != 3 || len(input.Extent) != 3 {
		return fmt.Errorf("crop needs origin and extent with three components")
	}
	for axis := 0; axis < 3; axis++ {
		o, e := input.Origin[axis], input.Extent[axis]
		if o < 0 || e <= 0 || o+e > vol.Dims[axis] {
			return fmt.Errorf("crop region [%d, %d) exceeds axis %d extent %d", o, o+e, axis, vol.Dims[axis])
		}
	}

	dims := [3]int{input.Extent[0], input.Extent[1], input.Extent[2]}
	out := make([]float64, dims[0]*dims[1]*dims[2])
	i := 0
	for z := 0; z < dims[2]; z++ {
		for y := 0; y < dims[1]; y++ {
			for x := 0; x < dims[0]; x++ {
				out[i] = vol.At(input.Origin[0]+x, input.Origin[1]+y, input.Origin[2]+z)
				i++
			}
		}
	}

	z0, z1 := input.Origin[2], input.Origin[2]+dims[2]
	if vol.TiltAngles != nil {
		vol.TiltAngles = append([]float64(nil), vol.TiltAngles[z0:z1]...)
	}
	if vol.Rotations != nil {
		vol.Rotations = append([]float64(nil), vol.Rotations[z0:z1]...)
	}
	vol.Scalars = out
	vol.Dims = dims
	return nil
}

// Register registers the transform with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuiltin("crop", &registry.RegisteredBuiltin{
		NewInput: func() any { return new(Input) },
		Fn:       OnApplyCrop,
	})
}
