// Package pipeline hosts the execution of operator chains against data
// sources. Each data source runs its steps in order on a worker goroutine;
// script execution is still serialized process-wide by the scripting engine,
// and results cross back to the owner via the dispatcher.
package pipeline

import (
	"sync"

	"github.com/psavery/tomviz/internal/dataset"
)

// childObserver is satisfied by transforms that can produce child datasets
// (script operators). The pipeline wires the callback so a delivered child
// becomes a child data source.
type childObserver interface {
	OnChildDataSource(func(label string, data dataset.DataObject))
}

// DataSource owns a root data object and the ordered transforms applied to
// it. Runs operate on a deep copy, so the original data survives for
// re-runs and for editing operators between runs.
type DataSource struct {
	name string
	data dataset.DataObject

	mu          sync.Mutex
	transformed dataset.DataObject
	steps       []*Step
	children    []*DataSource
}

// NewDataSource wraps a root data object.
func NewDataSource(name string, data dataset.DataObject) *DataSource {
	return &DataSource{name: name, data: data}
}

// Name returns the data source's display name.
func (ds *DataSource) Name() string { return ds.name }

// Data returns the untransformed root data object.
func (ds *DataSource) Data() dataset.DataObject { return ds.data }

// Transformed returns the output of the last successful run, nil before the
// first one.
func (ds *DataSource) Transformed() dataset.DataObject {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return ds.transformed
}

func (ds *DataSource) setTransformed(data dataset.DataObject) {
	ds.mu.Lock()
	ds.transformed = data
	ds.mu.Unlock()
}

// AddStep appends a transform to the pipeline. Transforms that produce child
// datasets get wired so deliveries attach children to this source.
func (ds *DataSource) AddStep(t Transform) *Step {
	if obs, ok := t.(childObserver); ok {
		obs.OnChildDataSource(func(label string, data dataset.DataObject) {
			ds.addChild(label, data)
		})
	}
	step := NewStep(t)
	ds.mu.Lock()
	ds.steps = append(ds.steps, step)
	ds.mu.Unlock()
	return step
}

// Steps returns the pipeline's steps in execution order.
func (ds *DataSource) Steps() []*Step {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return append([]*Step(nil), ds.steps...)
}

// Children returns the child data sources operators have produced.
func (ds *DataSource) Children() []*DataSource {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return append([]*DataSource(nil), ds.children...)
}

// addChild runs on the dispatcher goroutine when an operator delivers a
// child dataset.
func (ds *DataSource) addChild(label string, data dataset.DataObject) {
	child := NewDataSource(label, data)
	ds.mu.Lock()
	ds.children = append(ds.children, child)
	ds.mu.Unlock()
}
