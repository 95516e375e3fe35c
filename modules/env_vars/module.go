package env_vars

import (
	"fmt"
	"os"
	"strings"

	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/hcl"
	"github.com/zclconf/go-cty/cty"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) == 2 {
			envMap[pair[0]] = pair[1]
		}
	}
	return envMap
}

// Value converts an environment map into the cty value exposed as `env`.
func Value(envMap map[string]string) (cty.Value, error) {
	if envMap == nil {
		envMap = map[string]string{}
	}
	return hcl.ToCtyValue(envMap)
}

// Register exposes the process environment to expressions as env.<NAME>.
func (m *Module) Register(h *handlers.Handlers) {
	val, err := Value(Environ())
	if err != nil {
		panic(fmt.Sprintf("converting environment: %v", err))
	}
	h.RegisterNamespace("env", val)
}
