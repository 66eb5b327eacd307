package gridfile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Model is the format-agnostic result of loading pipeline files.
type Model struct {
	Pipelines []*Pipeline
}

// Pipeline describes one data source and the ordered operators applied to it.
type Pipeline struct {
	Name      string
	Dataset   Dataset
	Operators []*OperatorDef
}

// Dataset describes where a pipeline's root volume comes from. Exactly one
// of Generator or File is set. The struct doubles as the dataset provenance
// record in session documents, hence the JSON tags.
type Dataset struct {
	Generator  string     `json:"generator,omitempty"`
	File       string     `json:"file,omitempty"`
	Dims       [3]int     `json:"dims"`
	Spacing    [3]float64 `json:"spacing"`
	TiltAngles []float64  `json:"tiltAngles,omitempty"`
}

// OperatorDef is one operator declaration. Exactly one of Builtin, Ref, or
// Script is set after loading; script_file and operator references are
// resolved into Script/Description before the model leaves this package or
// the app's build step.
type OperatorDef struct {
	// Label is the operator's display name.
	Label string
	// Builtin names a compiled-in transform; Args carries its undecoded
	// arguments.
	Builtin string
	Args    hcl.Body
	// Ref names a script operator installed in the operator directory.
	Ref string
	// Script is inline (or resolved) script text with an optional JSON
	// descriptor.
	Script      string
	Description string
}

// fileRoot decodes the top-level blocks of one pipeline file.
type fileRoot struct {
	Pipelines []*pipelineBlock `hcl:"pipeline,block"`
}

type pipelineBlock struct {
	Name      string           `hcl:"name,label"`
	Dataset   *datasetBlock    `hcl:"dataset,block"`
	Operators []*operatorBlock `hcl:"operator,block"`
}

type datasetBlock struct {
	Generator  *string   `hcl:"generator,optional"`
	File       *string   `hcl:"file,optional"`
	Dims       []int     `hcl:"dims"`
	Spacing    []float64 `hcl:"spacing,optional"`
	TiltAngles []float64 `hcl:"tilt_angles,optional"`
}

type operatorBlock struct {
	Label       string   `hcl:"label,label"`
	Builtin     *string  `hcl:"builtin,optional"`
	Operator    *string  `hcl:"operator,optional"`
	Script      *string  `hcl:"script,optional"`
	ScriptFile  *string  `hcl:"script_file,optional"`
	Description *string  `hcl:"description,optional"`
	Args        hcl.Body `hcl:",remain"`
}

func (b *datasetBlock) translate() (Dataset, error) {
	var d Dataset
	if len(b.Dims) != 3 {
		return d, fmt.Errorf("dataset dims must have three components, got %d", len(b.Dims))
	}
	copy(d.Dims[:], b.Dims)

	d.Spacing = [3]float64{1, 1, 1}
	if b.Spacing != nil {
		if len(b.Spacing) != 3 {
			return d, fmt.Errorf("dataset spacing must have three components, got %d", len(b.Spacing))
		}
		copy(d.Spacing[:], b.Spacing)
	}
	d.TiltAngles = b.TiltAngles

	switch {
	case b.Generator != nil && b.File != nil:
		return d, fmt.Errorf("dataset declares both generator and file")
	case b.File != nil:
		d.File = *b.File
	case b.Generator != nil:
		d.Generator = *b.Generator
	default:
		d.Generator = "zeros"
	}
	return d, nil
}
