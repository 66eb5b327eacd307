package operator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/psavery/tomviz/internal/ctxlog"
)

// DescriptorError reports a malformed JSON operator descriptor.
type DescriptorError struct {
	Err error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("parse operator descriptor: %v", e.Err)
}

func (e *DescriptorError) Unwrap() error { return e.Err }

// slotDecl is one {name, label} entry in the descriptor. Pointers
// distinguish absent fields from empty strings.
type slotDecl struct {
	Name  *string `json:"name"`
	Label *string `json:"label"`
}

// descriptor is the operator descriptor schema:
//
//	{label?: string, results?: [{name, label}], children?: [{name, label}]}
//
// At most one child is honored; extra declarations are warned about.
type descriptor struct {
	Label    *string    `json:"label"`
	Results  []slotDecl `json:"results"`
	Children []slotDecl `json:"children"`
}

// SetDescription parses the JSON descriptor and preconfigures the result and
// child-dataset slots the next execution may populate. Re-setting an
// identical descriptor string is a no-op, detected before any work is done.
// Malformed JSON aborts parsing with no mutation beyond the stored raw
// string.
func (o *Operator) SetDescription(ctx context.Context, raw string) error {
	if o.description == raw {
		return nil
	}
	logger := ctxlog.FromContext(ctx)
	o.description = raw

	var desc descriptor
	if err := json.Unmarshal([]byte(raw), &desc); err != nil {
		logger.Error("Failed to parse operator JSON descriptor.", "operator", o.label, "error", err, "json", raw)
		return &DescriptorError{Err: err}
	}

	if desc.Label != nil {
		o.SetLabel(*desc.Label)
	}

	o.results = nil
	o.hasChild = false
	o.childName, o.childLabel = "", ""
	o.childData = nil

	for _, decl := range desc.Results {
		r := &Result{}
		if decl.Name != nil {
			r.name = *decl.Name
		}
		if decl.Label != nil {
			r.label = *decl.Label
		}
		o.results = append(o.results, r)
	}

	if len(desc.Children) > 0 {
		if len(desc.Children) != 1 {
			logger.Warn("Only one child dataset is supported; using the first declaration.",
				"operator", o.label, "declared", len(desc.Children))
		}
		child := desc.Children[0]
		switch {
		case child.Name == nil:
			logger.Error("No name given for child dataset declaration.", "operator", o.label)
		case child.Label == nil:
			logger.Error("No label given for child dataset declaration.", "operator", o.label)
		default:
			o.hasChild = true
			o.childName = *child.Name
			o.childLabel = *child.Label
		}
	}

	return nil
}
