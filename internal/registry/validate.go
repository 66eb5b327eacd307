package registry

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/psavery/tomviz/internal/dataset"
)

var (
	ctxType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	dataType = reflect.TypeOf((*dataset.DataObject)(nil)).Elem()
	errType  = reflect.TypeOf((*error)(nil)).Elem()
)

// Validate performs a strict shape check on every registered builtin
// handler. Registration happens in package init paths where a bad signature
// would otherwise only explode mid-run via reflect.Call.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string

	for name, b := range r.builtins {
		fn := reflect.ValueOf(b.Fn)
		if fn.Kind() != reflect.Func {
			errs = append(errs, fmt.Sprintf("builtin '%s': Fn is not a function", name))
			continue
		}
		t := fn.Type()
		if t.NumIn() != 3 || t.NumOut() != 1 {
			errs = append(errs, fmt.Sprintf("builtin '%s': Fn must be func(ctx, input, data) error", name))
			continue
		}
		if !t.In(0).Implements(ctxType) && t.In(0) != ctxType {
			errs = append(errs, fmt.Sprintf("builtin '%s': first parameter must be context.Context", name))
		}
		if !t.In(2).Implements(dataType) && t.In(2) != dataType {
			errs = append(errs, fmt.Sprintf("builtin '%s': third parameter must be dataset.DataObject", name))
		}
		if !t.Out(0).Implements(errType) && t.Out(0) != errType {
			errs = append(errs, fmt.Sprintf("builtin '%s': return value must be error", name))
		}
		if b.NewInput != nil {
			inputType := reflect.TypeOf(b.NewInput())
			if inputType != t.In(1) {
				errs = append(errs, fmt.Sprintf("builtin '%s': NewInput returns %s but Fn expects %s", name, inputType, t.In(1)))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
