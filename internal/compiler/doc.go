// Package compiler turns a workflow definition into a validated execution
// graph.
//
// Compilation resolves every step type against a registry.BlocksDescription,
// binds step parameters (literals are converted to the declared parameter
// type, selectors are resolved against declared inputs and step outputs),
// checks kind compatibility by set intersection, and derives the dependency
// edges from the selectors alone. Declaration order never implies execution
// order unless WithDeclarationOrder is given.
//
// The result also records which steps are batched: a step is batched when
// any of its selectors reads batched data, directly from a batched input or
// through a batched step.
package compiler
