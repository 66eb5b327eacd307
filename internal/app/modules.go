package app

import (
	"github.com/psavery/tomviz/builtins/crop"
	"github.com/psavery/tomviz/builtins/invert"
	"github.com/psavery/tomviz/builtins/shift"
	"github.com/psavery/tomviz/internal/registry"
)

// coreModules is the definitive list of built-in transforms compiled into
// the binary.
var coreModules = []registry.Module{
	&crop.Module{},
	&invert.Module{},
	&shift.Module{},
}
