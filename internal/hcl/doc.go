// Package hcl provides the concrete HCL implementation of config.Loader.
// It is responsible for finding and parsing task files, evaluating variables,
// and translating `task` blocks into the format-agnostic config.Model.
//
// A task file has two kinds of top-level blocks:
//
//	variable "out_dir" {
//	  type    = string
//	  default = "dist"
//	}
//
//	task "build:src" {
//	  description = "Compile sources"
//	  depends_on  = ["clean"]
//	  exec {
//	    command = ["go", "build", "-o", "${var.out_dir}/", "./..."]
//	  }
//	}
//
// Expressions may refer to var.<name>, path.root, and any namespace supplied
// by the application (for example env.<NAME>), and may call the functions in
// functions.go.
package hcl
