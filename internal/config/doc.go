// Package config defines the format-agnostic document model produced by
// loading workflow and dynamic block definitions, along with the Loader
// interface every document format implements.
//
// JSON and YAML documents are read by the DataLoader in this package. HCL is
// provided by the hcl_adapter package. A Dispatcher picks the loader for each
// file by its extension, so callers never need to know which format a path
// holds.
package config
