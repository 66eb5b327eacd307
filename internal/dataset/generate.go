package dataset

import (
	"fmt"
	"math"
)

// Generate builds a synthetic volume by name. Supported generators:
//
//	"zeros"    all-zero scalars
//	"ramp"     scalar equals the flat voxel index
//	"gaussian" centered isotropic gaussian blob
//
// Unknown names are an error so that typos in pipeline files surface at load
// time rather than as silently empty data.
func Generate(name string, dims [3]int, spacing [3]float64) (*Volume, error) {
	if err := CheckDims(dims); err != nil {
		return nil, err
	}
	v := NewVolume(dims)
	v.Spacing = spacing

	switch name {
	case "zeros":
	case "ramp":
		for i := range v.Scalars {
			v.Scalars[i] = float64(i)
		}
	case "gaussian":
		cx := float64(dims[0]-1) / 2
		cy := float64(dims[1]-1) / 2
		cz := float64(dims[2]-1) / 2
		// Sigma scales with the smallest extent so the blob stays inside
		// the volume regardless of shape.
		sigma := math.Max(1, float64(minDim(dims))/6)
		for z := 0; z < dims[2]; z++ {
			for y := 0; y < dims[1]; y++ {
				for x := 0; x < dims[0]; x++ {
					dx, dy, dz := float64(x)-cx, float64(y)-cy, float64(z)-cz
					r2 := dx*dx + dy*dy + dz*dz
					v.SetAt(x, y, z, math.Exp(-r2/(2*sigma*sigma)))
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown volume generator %q", name)
	}
	return v, nil
}

func minDim(dims [3]int) int {
	m := dims[0]
	for _, d := range dims[1:] {
		if d < m {
			m = d
		}
	}
	return m
}
