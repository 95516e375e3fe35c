package hcl

import (
	"context"
	"fmt"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// convertValue converts val to typ, logging when an implicit conversion took
// place. A DynamicPseudoType target accepts any value unchanged.
func convertValue(ctx context.Context, val cty.Value, typ cty.Type) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	if typ == cty.DynamicPseudoType {
		return val, nil
	}

	converted, err := convert.Convert(val, typ)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), typ.FriendlyName(), err)
	}

	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}
	return converted, nil
}

// ToCtyValue converts a native Go value into its corresponding cty.Value.
func ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return gocty.ToCtyValue(v, ty)
}
