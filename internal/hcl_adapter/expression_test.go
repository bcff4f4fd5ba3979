package hcl_adapter

import (
	"testing"

	"github.com/specialistvlad/blockflow/internal/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpression_Evaluates(t *testing.T) {
	params := map[string]any{
		"a":     4,
		"b":     1.5,
		"label": "dog",
		"flag":  true,
		"preds": map[string]any{"classes": []any{"dog", "cat"}},
	}

	testCases := []struct {
		name string
		src  string
		want any
	}{
		{"arithmetic", "a * b + 1", 7.0},
		{"parentheses", "(a - 1) * 2", 6.0},
		{"modulo", "a % 3", 1.0},
		{"comparison", "a >= 4 && b < 2", true},
		{"logical or", "!flag || a == 4", true},
		{"negation", "-a", -4.0},
		{"conditional", `flag ? "yes" : "no"`, "yes"},
		{"attribute access", "preds.classes[1]", "cat"},
		{"index access", `preds["classes"][0]`, "dog"},
		{"function call", "upper(label)", "DOG"},
		{"membership via contains", `contains(preds.classes, "cat")`, true},
		{"tuple", `[a, "x"]`, []any{4.0, "x"}},
		{"object", `{ kind = label, "n" = a }`, map[string]any{"kind": "dog", "n": 4.0}},
		{"template", `"a ${label} of ${a}"`, "a dog of 4"},
		{"string literal", `"plain"`, "plain"},
		{"number literal", "42", 42.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			node, err := ParseExpression(tc.src)
			require.NoError(t, err)
			got, err := expr.Eval(node, params)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseExpression_Shape(t *testing.T) {
	node, err := ParseExpression("value * factor")
	require.NoError(t, err)

	bin, ok := node.(*expr.BinaryOperation)
	require.True(t, ok, "expected a binary operation, got %T", node)
	assert.Equal(t, "*", bin.Operator)
	assert.ElementsMatch(t, []string{"value", "factor"}, expr.Parameters(node))
}

func TestParseExpression_Unsupported(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"syntax error", "a +"},
		{"for expression", "[for x in xs : x]"},
		{"splat", "items[*].name"},
		{"argument expansion", "max(xs...)"},
		{"dynamic index", "xs[i]"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseExpression(tc.src)
			assert.Error(t, err)
		})
	}
}
