package gridfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("full pipeline file", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "recon.hcl", `
pipeline "reconstruction" {
  dataset {
    generator   = "ramp"
    dims        = [4, 4, 2]
    spacing     = [1.0, 1.0, 2.0]
    tilt_angles = [-60.0, 0.0, 60.0]
  }

  operator "Invert" {
    builtin = "invert"
  }

  operator "Crop" {
    builtin = "crop"
    origin  = [0, 0, 0]
    extent  = [2, 2, 1]
  }

  operator "Double" {
    script = "function transform(dataset) {}"
    description = "{\"label\": \"Double\"}"
  }

  operator "Binned" {
    operator = "bin_reduce"
  }
}
`)

		model, err := NewLoader().Load(ctx, path)
		require.NoError(t, err)
		require.Len(t, model.Pipelines, 1)

		p := model.Pipelines[0]
		assert.Equal(t, "reconstruction", p.Name)
		assert.Equal(t, "ramp", p.Dataset.Generator)
		assert.Equal(t, [3]int{4, 4, 2}, p.Dataset.Dims)
		assert.Equal(t, [3]float64{1, 1, 2}, p.Dataset.Spacing)
		assert.Equal(t, []float64{-60, 0, 60}, p.Dataset.TiltAngles)

		require.Len(t, p.Operators, 4)
		assert.Equal(t, "invert", p.Operators[0].Builtin)
		assert.Equal(t, "crop", p.Operators[1].Builtin)
		assert.NotNil(t, p.Operators[1].Args)
		assert.Equal(t, "function transform(dataset) {}", p.Operators[2].Script)
		assert.Equal(t, `{"label": "Double"}`, p.Operators[2].Description)
		assert.Equal(t, "bin_reduce", p.Operators[3].Ref)
	})

	t.Run("dataset defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "min.hcl", `
pipeline "minimal" {
  dataset {
    dims = [2, 2, 2]
  }
}
`)
		model, err := NewLoader().Load(ctx, path)
		require.NoError(t, err)

		ds := model.Pipelines[0].Dataset
		assert.Equal(t, "zeros", ds.Generator)
		assert.Equal(t, [3]float64{1, 1, 1}, ds.Spacing)
	})

	t.Run("script_file resolves relative to the pipeline file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "op.js", "function transform(dataset) { /* noop */ }")
		path := writeFile(t, dir, "ext.hcl", `
pipeline "external" {
  dataset {
    dims = [2, 2, 2]
  }

  operator "External" {
    script_file = "op.js"
  }
}
`)
		model, err := NewLoader().Load(ctx, path)
		require.NoError(t, err)
		assert.Contains(t, model.Pipelines[0].Operators[0].Script, "noop")
	})

	t.Run("dataset file paths are made absolute", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "raw.hcl", `
pipeline "from-file" {
  dataset {
    file = "volume.raw"
    dims = [2, 2, 2]
  }
}
`)
		model, err := NewLoader().Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "volume.raw"), model.Pipelines[0].Dataset.File)
	})

	t.Run("directory walk merges and deduplicates", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.hcl", `
pipeline "a" {
  dataset {
    dims = [2, 2, 2]
  }
}
`)
		writeFile(t, dir, "b.hcl", `
pipeline "b" {
  dataset {
    dims = [2, 2, 2]
  }
}
`)
		writeFile(t, dir, "ignored.txt", "not a pipeline")

		model, err := NewLoader().Load(ctx, dir, filepath.Join(dir, "a.hcl"))
		require.NoError(t, err)
		assert.Len(t, model.Pipelines, 2)
	})
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	load := func(t *testing.T, content string) error {
		t.Helper()
		path := writeFile(t, t.TempDir(), "bad.hcl", content)
		_, err := NewLoader().Load(ctx, path)
		return err
	}

	t.Run("missing dataset block", func(t *testing.T) {
		err := load(t, `
pipeline "broken" {
}
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing dataset block")
	})

	t.Run("wrong dims arity", func(t *testing.T) {
		err := load(t, `
pipeline "broken" {
  dataset {
    dims = [2, 2]
  }
}
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dims must have three components")
	})

	t.Run("generator and file conflict", func(t *testing.T) {
		err := load(t, `
pipeline "broken" {
  dataset {
    generator = "ramp"
    file      = "volume.raw"
    dims      = [2, 2, 2]
  }
}
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "both generator and file")
	})

	t.Run("operator needs exactly one source", func(t *testing.T) {
		err := load(t, `
pipeline "broken" {
  dataset {
    dims = [2, 2, 2]
  }

  operator "Ambiguous" {
    builtin = "invert"
    script  = "function transform(dataset) {}"
  }
}
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one of builtin, operator, script, or script_file")
	})

	t.Run("description requires an inline script", func(t *testing.T) {
		err := load(t, `
pipeline "broken" {
  dataset {
    dims = [2, 2, 2]
  }

  operator "Annotated" {
    builtin     = "invert"
    description = "{}"
  }
}
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "description is only valid with an inline script")
	})

	t.Run("missing script_file", func(t *testing.T) {
		err := load(t, `
pipeline "broken" {
  dataset {
    dims = [2, 2, 2]
  }

  operator "External" {
    script_file = "absent.js"
  }
}
`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read script file")
	})

	t.Run("HCL syntax error carries the file name", func(t *testing.T) {
		err := load(t, `pipeline "broken" {`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.hcl")
	})

	t.Run("nonexistent path", func(t *testing.T) {
		_, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "absent.hcl"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error accessing path")
	})
}
