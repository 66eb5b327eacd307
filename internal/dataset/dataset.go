// Package dataset defines the native data objects that operators transform:
// volumetric scalar data (including tilt series) and tabular results computed
// by operators. These are the payloads that cross the scripting boundary.
package dataset

// Kind identifies the concrete type of a DataObject.
type Kind string

const (
	// KindVolume is a 3D scalar volume or a tilt series.
	KindVolume Kind = "volume"
	// KindTable is a set of named numeric columns, typically a computed
	// result such as a histogram or a radial profile.
	KindTable Kind = "table"
)

// DataObject is the payload contract between the pipeline host and the
// scripting runtime. Implementations are plain value holders; none of them
// are safe for concurrent mutation.
type DataObject interface {
	// Kind reports the concrete data type.
	Kind() Kind
	// DeepCopy returns an independent copy. Pipelines transform copies so
	// the original data source stays intact for re-runs.
	DeepCopy() DataObject
}
