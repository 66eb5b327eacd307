package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/psavery/tomviz/internal/ctxlog"
	"github.com/psavery/tomviz/internal/dispatch"
	"github.com/psavery/tomviz/internal/gridfile"
	"github.com/psavery/tomviz/internal/operator"
	"github.com/psavery/tomviz/internal/pipeline"
	"github.com/psavery/tomviz/internal/registry"
	"github.com/psavery/tomviz/internal/scripting"
	"github.com/psavery/tomviz/internal/session"
)

// Config holds everything an App instance needs to run.
type Config struct {
	PipelinePath  string
	OperatorsPath string
	SessionIn     string
	SessionOut    string
	LogFormat     string
	LogLevel      string
}

// source pairs a runnable data source with the provenance and ordered step
// records needed to persist it again.
type source struct {
	ds         *pipeline.DataSource
	provenance gridfile.Dataset
	steps      []sourceStep
}

// sourceStep is the persistent identity of one pipeline step: a builtin name
// with its decoded arguments, or a script operator.
type sourceStep struct {
	builtin string
	label   string
	input   any
	op      *operator.Operator
}

// App encapsulates the host's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	config   *Config
	logger   *slog.Logger
	registry *registry.Registry
	engine   *scripting.Engine
	disp     *dispatch.Dispatcher
	sources  []*source
}

// New is the constructor for the pipeline host. It returns a fully
// initialized App with its own isolated logger and registry, loaded either
// from pipeline files or from a saved session. Startup misconfiguration is a
// fatal error and panics; the CLI entrypoint recovers and reports it.
func New(outW io.Writer, config *Config, modules ...registry.Module) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("Built-in transforms registered.", "count", len(modules))

	if err := reg.Validate(ctx); err != nil {
		// Mismatch between Go code and registration is a programmer error.
		panic(err)
	}

	if config.OperatorsPath != "" {
		if err := reg.LoadScriptOperators(ctx, config.OperatorsPath); err != nil {
			panic(fmt.Errorf("failed to load script operators: %w", err))
		}
	}

	a := &App{
		outW:     outW,
		config:   config,
		logger:   logger,
		registry: reg,
		engine:   scripting.NewEngine(),
		disp:     dispatch.New(64),
	}

	if config.SessionIn != "" {
		if err := a.loadSession(ctx, config.SessionIn); err != nil {
			panic(fmt.Errorf("failed to restore session: %w", err))
		}
	} else {
		model, err := gridfile.NewLoader().Load(ctx, config.PipelinePath)
		if err != nil {
			panic(fmt.Errorf("failed to load pipeline files: %w", err))
		}
		if err := a.buildFromModel(ctx, model); err != nil {
			panic(err)
		}
	}
	logger.Debug("Data sources built.", "count", len(a.sources))

	return a
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Sources returns the runnable data sources. Primarily for testing.
func (a *App) Sources() []*pipeline.DataSource {
	out := make([]*pipeline.DataSource, len(a.sources))
	for i, s := range a.sources {
		out[i] = s.ds
	}
	return out
}

// saveSession captures every data source into a session document on disk.
// Each step is persisted in execution order so a restore rebuilds the exact
// pipeline, builtin steps included.
func (a *App) saveSession(path string) error {
	doc := &session.Document{}
	for _, s := range a.sources {
		src := session.Source{Name: s.ds.Name(), Dataset: s.provenance}
		for _, st := range s.steps {
			if st.op != nil {
				src.Steps = append(src.Steps, session.ScriptStep(st.op))
				continue
			}
			step, err := session.BuiltinStep(st.label, st.builtin, st.input)
			if err != nil {
				return err
			}
			src.Steps = append(src.Steps, step)
		}
		doc.Sources = append(doc.Sources, src)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create session file: %w", err)
	}
	defer f.Close()
	if err := session.Write(f, doc); err != nil {
		return err
	}
	return f.Close()
}

// loadSession rebuilds data sources and operators from a saved document.
// Setting each operator's script re-triggers compilation, so restored
// operators behave exactly as they did when saved.
func (a *App) loadSession(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open session file: %w", err)
	}
	defer f.Close()

	doc, err := session.Read(f)
	if err != nil {
		return err
	}

	for _, saved := range doc.Sources {
		data, err := buildDataset(saved.Dataset)
		if err != nil {
			return fmt.Errorf("source %q: %w", saved.Name, err)
		}
		src := &source{
			ds:         pipeline.NewDataSource(saved.Name, data),
			provenance: saved.Dataset,
		}
		for i, step := range saved.Steps {
			if err := step.Validate(); err != nil {
				return fmt.Errorf("source %q step %d: %w", saved.Name, i, err)
			}
			if step.Builtin != "" {
				bt, err := a.restoreBuiltin(step)
				if err != nil {
					return fmt.Errorf("source %q step %d: %w", saved.Name, i, err)
				}
				src.steps = append(src.steps, sourceStep{builtin: step.Builtin, label: bt.label, input: bt.input})
				src.ds.AddStep(bt)
				continue
			}
			op := operator.New(a.engine, a.disp)
			// Compile errors leave the operator inert, same as live edits.
			_ = op.Deserialize(ctx, *step.Script)
			src.steps = append(src.steps, sourceStep{op: op})
			src.ds.AddStep(op)
		}
		a.sources = append(a.sources, src)
	}
	return nil
}

// restoreBuiltin resolves a persisted builtin step against the registry and
// decodes its saved arguments.
func (a *App) restoreBuiltin(step session.Step) (*builtinTransform, error) {
	handler, ok := a.registry.Builtin(step.Builtin)
	if !ok {
		return nil, fmt.Errorf("unknown builtin transform %q", step.Builtin)
	}
	var input any
	if handler.NewInput != nil {
		input = handler.NewInput()
		if step.Args != nil {
			if err := json.Unmarshal(step.Args, input); err != nil {
				return nil, fmt.Errorf("decode arguments for builtin %q: %w", step.Builtin, err)
			}
		}
	}
	return &builtinTransform{label: step.Label, handler: handler, input: input}, nil
}
