package dataset

import "fmt"

// Volume is a 3D scalar field stored in row-major order (x fastest). A tilt
// series is a Volume whose z axis indexes projection images and which carries
// per-image TiltAngles.
type Volume struct {
	// Scalars holds Dims[0]*Dims[1]*Dims[2] values, x varying fastest.
	Scalars []float64
	// Dims is the extent in voxels along x, y, z.
	Dims [3]int
	// Spacing is the physical voxel size along each axis.
	Spacing [3]float64
	// TiltAngles holds one angle per z slice for tilt series data. Nil for
	// plain volumes.
	TiltAngles []float64
	// Rotations holds an optional per-image in-plane rotation, one entry
	// per z slice.
	Rotations []float64
}

// CheckDims rejects extents that cannot describe a volume. Load paths call
// it before allocating scalars so a bad pipeline file produces a clean error
// instead of an allocation panic.
func CheckDims(dims [3]int) error {
	for axis, d := range dims {
		if d <= 0 {
			return fmt.Errorf("volume dims must be positive, got %v (axis %d)", dims, axis)
		}
	}
	return nil
}

// NewVolume allocates a zero-filled volume with unit spacing.
func NewVolume(dims [3]int) *Volume {
	return &Volume{
		Scalars: make([]float64, dims[0]*dims[1]*dims[2]),
		Dims:    dims,
		Spacing: [3]float64{1, 1, 1},
	}
}

// Kind implements DataObject.
func (v *Volume) Kind() Kind { return KindVolume }

// DeepCopy implements DataObject.
func (v *Volume) DeepCopy() DataObject {
	out := &Volume{
		Scalars: append([]float64(nil), v.Scalars...),
		Dims:    v.Dims,
		Spacing: v.Spacing,
	}
	if v.TiltAngles != nil {
		out.TiltAngles = append([]float64(nil), v.TiltAngles...)
	}
	if v.Rotations != nil {
		out.Rotations = append([]float64(nil), v.Rotations...)
	}
	return out
}

// Validate checks that the scalar buffer matches the declared extent and
// that any tilt angle or rotation arrays match the z extent.
func (v *Volume) Validate() error {
	want := v.Dims[0] * v.Dims[1] * v.Dims[2]
	if want < 0 {
		return fmt.Errorf("volume has negative extent %v", v.Dims)
	}
	if len(v.Scalars) != want {
		return fmt.Errorf("volume scalars length %d does not match dims %v (want %d)", len(v.Scalars), v.Dims, want)
	}
	if v.TiltAngles != nil && len(v.TiltAngles) != v.Dims[2] {
		return fmt.Errorf("tilt angles length %d does not match z extent %d", len(v.TiltAngles), v.Dims[2])
	}
	if v.Rotations != nil && len(v.Rotations) != v.Dims[2] {
		return fmt.Errorf("rotations length %d does not match z extent %d", len(v.Rotations), v.Dims[2])
	}
	return nil
}

// Index returns the flat index of voxel (x, y, z).
func (v *Volume) Index(x, y, z int) int {
	return x + v.Dims[0]*(y+v.Dims[1]*z)
}

// At returns the scalar at voxel (x, y, z).
func (v *Volume) At(x, y, z int) float64 {
	return v.Scalars[v.Index(x, y, z)]
}

// SetAt stores a scalar at voxel (x, y, z).
func (v *Volume) SetAt(x, y, z int, value float64) {
	v.Scalars[v.Index(x, y, z)] = value
}

// Range returns the minimum and maximum scalar values. Empty volumes report
// (0, 0).
func (v *Volume) Range() (min, max float64) {
	if len(v.Scalars) == 0 {
		return 0, 0
	}
	min, max = v.Scalars[0], v.Scalars[0]
	for _, s := range v.Scalars[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return min, max
}

func (v *Volume) String() string {
	if v.TiltAngles != nil {
		return fmt.Sprintf("TiltSeries%v", v.Dims)
	}
	return fmt.Sprintf("Volume%v", v.Dims)
}
