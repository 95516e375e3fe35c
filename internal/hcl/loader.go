package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/fsutil"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL task file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges them into one model.
// Variables are evaluated first, across all files, so tasks in any file may
// refer to variables declared in any other.
func (l *Loader) Load(ctx context.Context, env *config.Environment, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))
	if env == nil {
		env = &config.Environment{}
	}

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no task files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "files", files)

	baseDir, err := baseDirOf(paths[0])
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}

	parser := hclparse.NewParser()
	var variableBlocks, taskBlocks hcl.Blocks
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse task file %s: %w", file, diags)
		}
		content, diags := hclFile.Body.Content(rootSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode task file %s: %w", file, diags)
		}
		for _, block := range content.Blocks {
			switch block.Type {
			case "variable":
				variableBlocks = append(variableBlocks, block)
			case "task":
				taskBlocks = append(taskBlocks, block)
			}
		}
	}

	variables, err := l.evaluateVariables(ctx, variableBlocks, env.Variables)
	if err != nil {
		return nil, err
	}

	model := &config.Model{
		BaseDir:     baseDir,
		Files:       files,
		Variables:   variables,
		EvalContext: newEvalContext(baseDir, variables, env.Namespaces),
	}

	seen := make(map[string]hcl.Range)
	for _, block := range taskBlocks {
		t, err := l.translateTask(ctx, block, model.EvalContext, env.ActionKinds)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("%s: task %q is already defined at %s", block.DefRange, t.Name, prev)
		}
		seen[t.Name] = block.DefRange
		model.Tasks = append(model.Tasks, t)
	}

	logger.Debug("HCL loading complete.", "tasks", len(model.Tasks), "variables", len(model.Variables), "base_dir", baseDir)
	return model, nil
}

// newEvalContext exposes variables as var.*, the base directory as
// path.root, and every namespace under its own name.
func newEvalContext(baseDir string, variables map[string]cty.Value, namespaces map[string]cty.Value) *hcl.EvalContext {
	vars := map[string]cty.Value{
		"var":  objectOrEmpty(variables),
		"path": cty.ObjectVal(map[string]cty.Value{"root": cty.StringVal(baseDir)}),
	}
	for name, val := range namespaces {
		vars[name] = val
	}
	return &hcl.EvalContext{
		Variables: vars,
		Functions: functions(),
	}
}

func objectOrEmpty(m map[string]cty.Value) cty.Value {
	if len(m) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(m)
}

// baseDirOf returns the absolute directory relative paths in task files
// resolve against: the path itself for a directory, else its parent.
func baseDirOf(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		path = filepath.Dir(path)
	}
	return filepath.Abs(path)
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl
// files found. Files inside a directory are sorted; explicitly named files
// keep the order they were given in.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, wasSeen := seen[p]; !wasSeen {
			allFiles = append(allFiles, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}

		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			add(p)
		}
	}
	return allFiles, nil
}
