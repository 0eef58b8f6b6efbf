// Package config loads optional extsort configuration files.
//
//	+-------------+
//	| config file |
//	| .yaml .json |
//	|    .hcl     |
//	+------+------+
//	       |
//	+------+------+
//	|   Parser    |
//	| (by suffix) |
//	+------+------+
//	       |
//	+------+------+
//	|   Config    |
//	| (validated) |
//	+-------------+
//
// A config file only supplies defaults: every field has a command line flag,
// and a flag that was set explicitly wins over the file.
//
// 🔍 Example (YAML):
//
//	jobs: 8
//	fold_case: true
//	ignore:
//	  - "**/.git"
//	  - "**/*.tmp"
//
// 🔍 Example (HCL), where cpus is the number of logical CPUs:
//
//	jobs   = cpus * 2
//	ignore = ["**/node_modules"]
package config
