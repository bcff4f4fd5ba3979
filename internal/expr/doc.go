// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package expr is the small, pure expression language dynamic blocks are
// written in.
//
// Programs are trees of tagged-variant nodes (Literal, Parameter, Property,
// BinaryOperation, UnaryOperation, Conditional, Call, List, Object, Template).
// They can be decoded from their JSON/YAML object form with Decode, or built
// from HCL expressions by the hcl_adapter package. Eval interprets a tree
// against named parameter values; values are carried as go-cty values and the
// operators and functions are backed by the go-cty standard library.
//
// Evaluation has no side effects: the same tree and parameters always yield
// the same result.
package expr
