// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package expr

import (
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

type operator struct {
	description string
	fn          function.Function
}

// "and", "or" and "in" are evaluated directly by the interpreter.
var binaryOperators = map[string]operator{
	"+":   {"Sum of two numbers", stdlib.AddFunc},
	"-":   {"Difference of two numbers", stdlib.SubtractFunc},
	"*":   {"Product of two numbers", stdlib.MultiplyFunc},
	"/":   {"Quotient of two numbers", stdlib.DivideFunc},
	"%":   {"Remainder of integer division", stdlib.ModuloFunc},
	"==":  {"Values are equal", stdlib.EqualFunc},
	"!=":  {"Values are not equal", stdlib.NotEqualFunc},
	">":   {"Left number is greater than right", stdlib.GreaterThanFunc},
	">=":  {"Left number is greater than or equal to right", stdlib.GreaterThanOrEqualToFunc},
	"<":   {"Left number is lower than right", stdlib.LessThanFunc},
	"<=":  {"Left number is lower than or equal to right", stdlib.LessThanOrEqualToFunc},
	"and": {"Both booleans are true, right side evaluated only when needed", stdlib.AndFunc},
	"or":  {"Any boolean is true, right side evaluated only when needed", stdlib.OrFunc},
	"in":  {"Left value is an element of the right collection", stdlib.ContainsFunc},
}

var unaryOperators = map[string]operator{
	"not": {"Boolean negation", stdlib.NotFunc},
	"-":   {"Numeric negation", stdlib.NegateFunc},
}
