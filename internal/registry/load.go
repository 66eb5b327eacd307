package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/psavery/tomviz/internal/ctxlog"
)

// scriptExt and descriptorExt pair a script operator with its descriptor:
// "bin_reduce.js" + "bin_reduce.json".
const (
	scriptExt     = ".js"
	descriptorExt = ".json"
)

// LoadScriptOperators walks a directory for user-installed script operators
// and registers each one. A script without a sibling descriptor is still
// registered; it just declares no result slots. A missing directory is not
// an error so a fresh install works without setup.
func (r *Registry) LoadScriptOperators(ctx context.Context, dir string) error {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		logger.Debug("Script operator directory does not exist, skipping.", "dir", dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error accessing script operator directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("script operator path %s is not a directory", dir)
	}

	count := 0
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != scriptExt {
			return nil
		}

		script, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read script operator %s: %w", path, err)
		}

		def := &ScriptDef{
			Name:   strings.TrimSuffix(filepath.Base(path), scriptExt),
			Script: string(script),
		}

		descPath := strings.TrimSuffix(path, scriptExt) + descriptorExt
		if desc, err := os.ReadFile(descPath); err == nil {
			def.Description = string(desc)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("read operator descriptor %s: %w", descPath, err)
		}

		r.RegisterScript(def)
		count++
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("Script operators loaded.", "dir", dir, "count", count)
	return nil
}
