// This file contains the logic for parsing HCL type expressions (e.g., `string`,
// `list(number)`) used by `variable` blocks into their cty.Type objects.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// typeExprToCtyType converts an HCL type expression into its cty.Type
// equivalent. A missing expression means `any`.
func typeExprToCtyType(ctx context.Context, expr hcl.Expression) (cty.Type, error) {
	logger := ctxlog.FromContext(ctx)

	if expr == nil || isNullExpr(expr) {
		return cty.DynamicPseudoType, nil
	}

	switch v := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if len(v.Args) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("%s: type constructor %q requires exactly one argument, got %d", v.Range(), v.Name, len(v.Args))
		}

		elementType, err := typeExprToCtyType(ctx, v.Args[0])
		if err != nil {
			return cty.DynamicPseudoType, err
		}
		if elementType == cty.DynamicPseudoType {
			return cty.DynamicPseudoType, fmt.Errorf("%s: collection types cannot contain type 'any'", v.Range())
		}
		logger.Debug("Parsed collection element type.", "constructor", v.Name, "type", elementType.FriendlyName())

		switch v.Name {
		case "list":
			return cty.List(elementType), nil
		case "map":
			return cty.Map(elementType), nil
		case "set":
			return cty.Set(elementType), nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("%s: unknown type constructor %q", v.Range(), v.Name)
		}

	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return cty.DynamicPseudoType, fmt.Errorf("%s: invalid type keyword", v.Range())
		}
		switch rootName := v.Traversal.RootName(); rootName {
		case "string":
			return cty.String, nil
		case "number":
			return cty.Number, nil
		case "bool":
			return cty.Bool, nil
		case "any":
			return cty.DynamicPseudoType, nil
		default:
			return cty.DynamicPseudoType, fmt.Errorf("%s: unknown primitive type %q", v.Range(), rootName)
		}

	default:
		return cty.DynamicPseudoType, fmt.Errorf("%s: unsupported expression for a type: %T", expr.Range(), v)
	}
}

// isNullExpr reports whether expr is absent from its body. gohcl hands out a
// synthetic null expression for optional attributes that were not set.
func isNullExpr(expr hcl.Expression) bool {
	if _, ok := expr.(*hclsyntax.ScopeTraversalExpr); ok {
		return false
	}
	val, diags := expr.Value(nil)
	return !diags.HasErrors() && val.IsNull()
}
