package hcl

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/taskgrid/internal/config"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// evaluateVariables decodes every `variable` block and resolves its final
// value: an override when one was given, otherwise the default.
func (l *Loader) evaluateVariables(ctx context.Context, blocks hcl.Blocks, overrides map[string]string) (map[string]cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	// Defaults may call functions but cannot refer to other variables.
	evalCtx := &hcl.EvalContext{Functions: functions()}

	values := make(map[string]cty.Value, len(blocks))
	declared := make(map[string]hcl.Range, len(blocks))
	for _, block := range blocks {
		name := block.Labels[0]
		if !hclsyntax.ValidIdentifier(name) {
			return nil, fmt.Errorf("%s: invalid variable name %q", block.DefRange, name)
		}
		if prev, dup := declared[name]; dup {
			return nil, fmt.Errorf("%s: variable %q is already defined at %s", block.DefRange, name, prev)
		}
		declared[name] = block.DefRange

		var body variableBody
		if diags := gohcl.DecodeBody(block.Body, evalCtx, &body); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode variable %q: %w", name, diags)
		}

		typ, err := typeExprToCtyType(ctx, body.Type)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}

		if raw, ok := overrides[name]; ok {
			val, err := parseOverride(ctx, name, raw, typ)
			if err != nil {
				return nil, err
			}
			logger.Debug("Variable overridden.", "variable", name)
			values[name] = val
			continue
		}

		if body.Default == nil || isNullExpr(body.Default) {
			return nil, fmt.Errorf("%s: variable %q has no default and no value was given", block.DefRange, name)
		}
		val, diags := body.Default.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate default of variable %q: %w", name, diags)
		}
		val, err = convertValue(ctx, val, typ)
		if err != nil {
			return nil, fmt.Errorf("%s: variable %q: %w", block.DefRange, name, err)
		}
		values[name] = val
	}

	var unknown []string
	for name := range overrides {
		if _, ok := declared[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("value given for undeclared variable %q", unknown[0])
	}
	return values, nil
}

// parseOverride turns a command-line value into a cty.Value of typ. String
// and untyped variables take the raw text; everything else is parsed as an
// HCL expression, so lists are written as ["a", "b"].
func parseOverride(ctx context.Context, name, raw string, typ cty.Type) (cty.Value, error) {
	if typ == cty.String || typ == cty.DynamicPseudoType {
		return cty.StringVal(raw), nil
	}

	expr, diags := hclsyntax.ParseExpression([]byte(raw), "<var "+name+">", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("invalid value for variable %q: %w", name, diags)
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("invalid value for variable %q: %w", name, diags)
	}
	val, err := convertValue(ctx, val, typ)
	if err != nil {
		return cty.NilVal, fmt.Errorf("invalid value for variable %q: %w", name, err)
	}
	return val, nil
}

// translateTask decodes a `task` block into the format-agnostic model. Action
// blocks keep their undecoded bodies and their order of declaration.
func (l *Loader) translateTask(ctx context.Context, block *hcl.Block, evalCtx *hcl.EvalContext, kinds []string) (*config.Task, error) {
	logger := ctxlog.FromContext(ctx)
	name := block.Labels[0]
	if name == "" {
		return nil, fmt.Errorf("%s: task name must not be empty", block.DefRange)
	}

	var body taskBody
	if diags := gohcl.DecodeBody(block.Body, evalCtx, &body); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode task %q: %w", name, diags)
	}

	content, diags := body.Remain.Content(actionSchema(kinds))
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode actions of task %q: %w", name, diags)
	}

	t := &config.Task{
		Name:        name,
		Description: body.Description,
		DependsOn:   body.DependsOn,
		Sources:     body.Sources,
		Generates:   body.Generates,
		DeclRange:   block.DefRange,
	}
	for _, ab := range content.Blocks {
		t.Actions = append(t.Actions, &config.Action{
			Kind:      ab.Type,
			Body:      ab.Body,
			DeclRange: ab.DefRange,
		})
	}
	logger.Debug("Translated task.", "task", name, "depends_on", t.DependsOn, "actions", len(t.Actions))
	return t, nil
}
