package app

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/psavery/tomviz/internal/ctxlog"
	"github.com/psavery/tomviz/internal/dataset"
	"github.com/psavery/tomviz/internal/gridfile"
	"github.com/psavery/tomviz/internal/operator"
	"github.com/psavery/tomviz/internal/pipeline"
	"github.com/psavery/tomviz/internal/registry"
)

// buildFromModel turns the loaded pipeline model into runnable data sources.
func (a *App) buildFromModel(ctx context.Context, model *gridfile.Model) error {
	for _, p := range model.Pipelines {
		src, err := a.buildPipeline(ctx, p)
		if err != nil {
			return fmt.Errorf("pipeline %q: %w", p.Name, err)
		}
		a.sources = append(a.sources, src)
	}
	return nil
}

func (a *App) buildPipeline(ctx context.Context, p *gridfile.Pipeline) (*source, error) {
	data, err := buildDataset(p.Dataset)
	if err != nil {
		return nil, err
	}

	src := &source{
		ds:         pipeline.NewDataSource(p.Name, data),
		provenance: p.Dataset,
	}

	for _, def := range p.Operators {
		switch {
		case def.Builtin != "":
			bt, err := a.buildBuiltin(def)
			if err != nil {
				return nil, fmt.Errorf("operator %q: %w", def.Label, err)
			}
			src.steps = append(src.steps, sourceStep{builtin: def.Builtin, label: bt.label, input: bt.input})
			src.ds.AddStep(bt)
		default:
			op, err := a.buildScriptOperator(ctx, def)
			if err != nil {
				return nil, fmt.Errorf("operator %q: %w", def.Label, err)
			}
			src.steps = append(src.steps, sourceStep{op: op})
			src.ds.AddStep(op)
		}
	}
	return src, nil
}

// buildBuiltin resolves a builtin name and decodes its arguments eagerly so
// bad pipeline files fail at load time, not mid-run.
func (a *App) buildBuiltin(def *gridfile.OperatorDef) (*builtinTransform, error) {
	handler, ok := a.registry.Builtin(def.Builtin)
	if !ok {
		return nil, fmt.Errorf("unknown builtin transform %q", def.Builtin)
	}

	var input any
	if handler.NewInput != nil {
		input = handler.NewInput()
		if diags := gohcl.DecodeBody(def.Args, nil, input); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode arguments: %w", diags)
		}
	}
	return &builtinTransform{label: def.Label, handler: handler, input: input}, nil
}

// buildScriptOperator creates an operator from an inline script or an
// installed script operator reference. Compile and bind failures are logged
// and leave the operator inert rather than failing the load; that mirrors
// how a bad script behaves when edited live.
func (a *App) buildScriptOperator(ctx context.Context, def *gridfile.OperatorDef) (*operator.Operator, error) {
	script, description := def.Script, def.Description
	if def.Ref != "" {
		sd, ok := a.registry.Script(def.Ref)
		if !ok {
			return nil, fmt.Errorf("unknown script operator %q", def.Ref)
		}
		script, description = sd.Script, sd.Description
	}

	op := operator.New(a.engine, a.disp)
	op.SetLabel(def.Label)
	if description != "" {
		if err := op.SetDescription(ctx, description); err != nil {
			return nil, err
		}
	}
	if err := op.SetScript(ctx, script); err != nil {
		ctxlog.FromContext(ctx).Warn("Operator script failed to compile; it will act as identity.",
			"operator", def.Label, "error", err)
	}
	return op, nil
}

// builtinTransform adapts a registered builtin and its decoded arguments to
// the pipeline step contract.
type builtinTransform struct {
	label   string
	handler *registry.RegisteredBuiltin
	input   any
}

func (t *builtinTransform) Label() string { return t.label }

func (t *builtinTransform) Apply(ctx context.Context, data dataset.DataObject) error {
	return t.handler.Call(ctx, t.input, data)
}

// buildDataset materializes a root volume from its provenance record.
func buildDataset(d gridfile.Dataset) (dataset.DataObject, error) {
	var vol *dataset.Volume
	var err error
	if d.File != "" {
		vol, err = dataset.ReadRaw(d.File, d.Dims, d.Spacing)
	} else {
		vol, err = dataset.Generate(d.Generator, d.Dims, d.Spacing)
	}
	if err != nil {
		return nil, err
	}
	if d.TiltAngles != nil {
		vol.TiltAngles = append([]float64(nil), d.TiltAngles...)
	}
	if err := vol.Validate(); err != nil {
		return nil, err
	}
	return vol, nil
}
