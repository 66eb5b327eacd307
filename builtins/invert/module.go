package invert

import (
	"context"
	"fmt"

	"github.com/psavery/tomviz/internal/dataset"
	"github.com/psavery/tomviz/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input is empty because inverting takes no arguments.
type Input struct{}

// OnApplyInvert reflects each scalar about the data maximum, so dense
// features become bright in datasets acquired with inverted contrast.
func OnApplyInvert(ctx context.Context, _ *Input, data dataset.DataObject) error {
	vol, ok := data.(*dataset.Volume)
	if !ok {
		return fmt.Errorf("invert requires volume data, got %s", data.Kind())
	}
	_, max := vol.Range()
	for i, s := range vol.Scalars {
		vol.Scalars[i] = max - s
	}
	return nil
}

// Register registers the transform with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterBuiltin("invert", &registry.RegisteredBuiltin{
		Fn: OnApplyInvert,
	})
}
