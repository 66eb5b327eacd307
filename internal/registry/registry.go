// Package registry is the glue between names appearing in pipeline files and
// the transforms that implement them. Built-in Go transforms register
// themselves at startup; script operators are discovered on disk as script
// files with sibling JSON descriptors.
//
// The registry is populated and validated before any pipeline runs, so a
// mismatch between a pipeline file and the compiled-in transforms surfaces
// at startup instead of mid-run.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/psavery/tomviz/internal/dataset"
)

// Module is implemented by each builtin package so the app can register the
// definitive set of compiled-in transforms.
type Module interface {
	Register(r *Registry)
}

// RegisteredBuiltin holds the compiled Go parts of a built-in transform.
type RegisteredBuiltin struct {
	// NewInput allocates the argument struct pipeline files decode into.
	// Nil for builtins that take no arguments.
	NewInput func() any
	// Fn is the transform body, with signature
	// func(ctx context.Context, input *T, data dataset.DataObject) error.
	Fn any
}

// Call invokes the builtin through reflection with a decoded input struct.
func (b *RegisteredBuiltin) Call(ctx context.Context, input any, data dataset.DataObject) error {
	fn := reflect.ValueOf(b.Fn)
	args := []reflect.Value{reflect.ValueOf(ctx)}
	if input == nil {
		args = append(args, reflect.Zero(fn.Type().In(1)))
	} else {
		args = append(args, reflect.ValueOf(input))
	}
	args = append(args, reflect.ValueOf(data))

	results := fn.Call(args)
	if errVal := results[0].Interface(); errVal != nil {
		return errVal.(error)
	}
	return nil
}

// ScriptDef is a script operator discovered on disk: the script text plus
// its JSON descriptor, keyed by file base name.
type ScriptDef struct {
	Name        string
	Script      string
	Description string
}

// Registry holds the registered builtins and discovered script operators for
// a single application instance.
type Registry struct {
	builtins map[string]*RegisteredBuiltin
	scripts  map[string]*ScriptDef
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		builtins: make(map[string]*RegisteredBuiltin),
		scripts:  make(map[string]*ScriptDef),
	}
}

// RegisterBuiltin registers a built-in transform. A duplicate name is a
// programmer error and panics.
func (r *Registry) RegisterBuiltin(name string, handler *RegisteredBuiltin) {
	if _, exists := r.builtins[name]; exists {
		panic(fmt.Sprintf("builtin transform with name '%s' already registered", name))
	}
	slog.Debug("Registering builtin transform.", "name", name)
	r.builtins[name] = handler
}

// Builtin looks up a registered built-in transform.
func (r *Registry) Builtin(name string) (*RegisteredBuiltin, bool) {
	b, ok := r.builtins[name]
	return b, ok
}

// Builtins returns the registered builtin names.
func (r *Registry) Builtins() []string {
	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}
	return names
}

// RegisterScript registers a discovered script operator. A duplicate name is
// a programmer error and panics.
func (r *Registry) RegisterScript(def *ScriptDef) {
	if _, exists := r.scripts[def.Name]; exists {
		panic(fmt.Sprintf("script operator with name '%s' already registered", def.Name))
	}
	slog.Debug("Registering script operator.", "name", def.Name)
	r.scripts[def.Name] = def
}

// Script looks up a discovered script operator.
func (r *Registry) Script(name string) (*ScriptDef, bool) {
	s, ok := r.scripts[name]
	return s, ok
}
