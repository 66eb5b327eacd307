// Package gridfile loads declarative pipeline definitions from HCL files.
// A pipeline block names a dataset (synthetic generator or raw file) and the
// ordered operator blocks applied to it; operators are inline scripts,
// references to installed script operators, or built-in transforms with
// typed arguments.
package gridfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/psavery/tomviz/internal/ctxlog"
)

// Ext is the extension pipeline definition files carry.
const Ext = ".hcl"

// Loader parses pipeline definition files.
type Loader struct{}

// NewLoader creates a pipeline file loader.
func NewLoader() *Loader { return &Loader{} }

// Load parses every pipeline file reachable from the given paths and merges
// them into one model. HCL diagnostics abort the load; they carry file and
// range context a user needs to fix the file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Pipeline file loader started.", "path_count", len(paths))

	files, err := findFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered pipeline files.", "count", len(files))

	model := &Model{}
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse pipeline file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode pipeline file %s: %w", file, diags)
		}

		baseDir := filepath.Dir(file)
		for _, pb := range root.Pipelines {
			p, err := translatePipeline(pb, baseDir)
			if err != nil {
				return nil, fmt.Errorf("pipeline %q in %s: %w", pb.Name, file, err)
			}
			model.Pipelines = append(model.Pipelines, p)
		}
	}

	logger.Debug("Pipeline loading complete.", "pipelines", len(model.Pipelines))
	return model, nil
}

func translatePipeline(pb *pipelineBlock, baseDir string) (*Pipeline, error) {
	if pb.Dataset == nil {
		return nil, fmt.Errorf("missing dataset block")
	}
	ds, err := pb.Dataset.translate()
	if err != nil {
		return nil, err
	}
	if ds.File != "" && !filepath.IsAbs(ds.File) {
		ds.File = filepath.Join(baseDir, ds.File)
	}

	p := &Pipeline{Name: pb.Name, Dataset: ds}
	for _, ob := range pb.Operators {
		def, err := translateOperator(ob, baseDir)
		if err != nil {
			return nil, fmt.Errorf("operator %q: %w", ob.Label, err)
		}
		p.Operators = append(p.Operators, def)
	}
	return p, nil
}

func translateOperator(ob *operatorBlock, baseDir string) (*OperatorDef, error) {
	def := &OperatorDef{Label: ob.Label, Args: ob.Args}

	sources := 0
	if ob.Builtin != nil {
		def.Builtin = *ob.Builtin
		sources++
	}
	if ob.Operator != nil {
		def.Ref = *ob.Operator
		sources++
	}
	if ob.Script != nil {
		def.Script = *ob.Script
		sources++
	}
	if ob.ScriptFile != nil {
		path := *ob.ScriptFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read script file: %w", err)
		}
		def.Script = string(text)
		sources++
	}
	if sources != 1 {
		return nil, fmt.Errorf("exactly one of builtin, operator, script, or script_file is required")
	}

	if ob.Description != nil {
		if def.Builtin != "" || def.Ref != "" {
			return nil, fmt.Errorf("description is only valid with an inline script")
		}
		def.Description = *ob.Description
	}
	return def, nil
}

// findFiles walks the given paths and returns a deduplicated flat list of
// pipeline files.
func findFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, ok := seen[p]; !ok {
			all = append(all, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) == Ext {
				add(path)
			}
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == Ext {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return all, nil
}
