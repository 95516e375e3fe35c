package hcl

import "github.com/hashicorp/hcl/v2"

// rootSchema lists the top-level blocks of a task file.
var rootSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "variable", LabelNames: []string{"name"}},
		{Type: "task", LabelNames: []string{"name"}},
	},
}

// variableBody is the content of a `variable` block.
type variableBody struct {
	Type        hcl.Expression `hcl:"type,optional"`
	Description string         `hcl:"description,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
}

// taskBody is the content of a `task` block. Action blocks are left in Remain.
type taskBody struct {
	Description string   `hcl:"description,optional"`
	DependsOn   []string `hcl:"depends_on,optional"`
	Sources     []string `hcl:"sources,optional"`
	Generates   []string `hcl:"generates,optional"`
	Remain      hcl.Body `hcl:",remain"`
}

// actionSchema accepts one block type per action kind, without labels.
func actionSchema(kinds []string) *hcl.BodySchema {
	schema := &hcl.BodySchema{}
	for _, kind := range kinds {
		schema.Blocks = append(schema.Blocks, hcl.BlockHeaderSchema{Type: kind})
	}
	return schema
}
