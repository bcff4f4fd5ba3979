package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func param(name string) Node { return &Parameter{Name: name} }

func lit(v any) Node { return &Literal{Value: v} }

func TestEval(t *testing.T) {
	params := map[string]any{
		"a":     2,
		"b":     3.5,
		"name":  "dog",
		"preds": map[string]any{"classes": []any{"dog", "cat"}, "count": 2},
		"flag":  false,
	}

	testCases := []struct {
		name string
		node Node
		want any
	}{
		{"literal", lit("x"), "x"},
		{"parameter", param("a"), 2.0},
		{"addition", &BinaryOperation{Operator: "+", Left: param("a"), Right: param("b")}, 5.5},
		{"comparison", &BinaryOperation{Operator: ">", Left: param("b"), Right: param("a")}, true},
		{"equality across types", &BinaryOperation{Operator: "==", Left: param("name"), Right: lit("dog")}, true},
		{"membership", &BinaryOperation{Operator: "in", Left: lit("cat"), Right: &Property{Of: param("preds"), Path: []any{"classes"}}}, true},
		{"property index", &Property{Of: param("preds"), Path: []any{"classes", 1}}, "cat"},
		{"negation", &UnaryOperation{Operator: "-", Operand: param("a")}, -2.0},
		{"not", &UnaryOperation{Operator: "not", Operand: param("flag")}, true},
		{"conditional", &Conditional{Condition: param("flag"), Then: lit(1), Else: lit(2)}, 2.0},
		{"call", &Call{Function: "upper", Args: []Node{param("name")}}, "DOG"},
		{"length", &Call{Function: "length", Args: []Node{&Property{Of: param("preds"), Path: []any{"classes"}}}}, 2.0},
		{"list", &List{Items: []Node{param("a"), lit("z")}}, []any{2.0, "z"}},
		{"empty list", &List{}, []any{}},
		{"object", &Object{Fields: map[string]Node{"n": param("name")}}, map[string]any{"n": "dog"}},
		{"template", &Template{Parts: []Node{lit("a "), param("name"), lit(" x"), param("a")}}, "a dog x2"},
		{"short circuit and", &BinaryOperation{Operator: "and", Left: param("flag"), Right: param("missing")}, false},
		{"short circuit or", &BinaryOperation{Operator: "or", Left: lit(true), Right: param("missing")}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Eval(tc.node, params)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEval_PassesOpaqueValues(t *testing.T) {
	type frame struct{ id int }
	img := &frame{id: 1}
	got, err := Eval(&Conditional{Condition: lit(true), Then: param("img"), Else: lit(nil)}, map[string]any{"img": img})
	require.NoError(t, err)
	assert.Same(t, img, got)
}

func TestEval_Errors(t *testing.T) {
	testCases := []struct {
		name string
		node Node
	}{
		{"unknown parameter", param("nope")},
		{"unknown operation", &Call{Function: "teleport"}},
		{"type mismatch", &BinaryOperation{Operator: "+", Left: lit("a"), Right: lit(true)}},
		{"bad index", &Property{Of: lit([]any{1}), Path: []any{4}}},
		{"non-boolean condition", &Conditional{Condition: lit("maybe"), Then: lit(1), Else: lit(2)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Eval(tc.node, map[string]any{})
			require.Error(t, err)
			var evalErr *EvalError
			assert.True(t, errors.As(err, &evalErr))
		})
	}
}

func TestEval_Deterministic(t *testing.T) {
	n := &Object{Fields: map[string]Node{
		"sum":   &BinaryOperation{Operator: "*", Left: param("a"), Right: lit(10)},
		"label": &Template{Parts: []Node{lit("n="), param("a")}},
	}}
	first, err := Eval(n, map[string]any{"a": 4})
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Eval(n, map[string]any{"a": 4})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestDecode(t *testing.T) {
	raw := map[string]any{
		"type":     "BinaryOperation",
		"operator": "+",
		"left":     map[string]any{"type": "Parameter", "name": "a"},
		"right": map[string]any{
			"type":     "Call",
			"function": "max",
			"args": []any{
				map[string]any{"type": "Literal", "value": 1.0},
				map[string]any{"type": "Property", "of": map[string]any{"type": "Parameter", "name": "d"}, "path": []any{"x", 0.0}},
			},
		},
	}
	n, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "d"}, Parameters(n))
	assert.Equal(t, []string{"max"}, Functions(n))

	got, err := Eval(n, map[string]any{"a": 1, "d": map[string]any{"x": []any{7}}})
	require.NoError(t, err)
	assert.Equal(t, 8.0, got)
}

func TestDecode_Errors(t *testing.T) {
	testCases := []struct {
		name string
		raw  any
		want string
	}{
		{"not an object", "a + b", "expected an object"},
		{"missing type", map[string]any{"value": 1}, "missing 'type'"},
		{"unknown type", map[string]any{"type": "Loop"}, "unknown node type"},
		{"unknown operator", map[string]any{"type": "BinaryOperation", "operator": "**",
			"left": map[string]any{"type": "Literal"}, "right": map[string]any{"type": "Literal"}}, "unknown binary operator"},
		{"missing operand", map[string]any{"type": "UnaryOperation", "operator": "not"}, "operand: is required"},
		{"bad path", map[string]any{"type": "Property", "of": map[string]any{"type": "Parameter", "name": "x"}, "path": []any{true}}, "path[0]"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.raw)
			require.Error(t, err)
			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDescribe(t *testing.T) {
	d := Describe()
	require.NotEmpty(t, d.Operations)
	require.NotEmpty(t, d.Operators)

	var upper *OperationDescription
	for i := range d.Operations {
		if d.Operations[i].Name == "upper" {
			upper = &d.Operations[i]
		}
	}
	require.NotNil(t, upper)
	assert.NotEmpty(t, upper.Description)
	require.Len(t, upper.Arguments, 1)
	assert.Equal(t, "string", upper.Arguments[0].Type)

	assert.Equal(t, 2, d.Operators[0].OperandsNumber, "binary operators come first")
	assert.Equal(t, 1, d.Operators[len(d.Operators)-1].OperandsNumber)
	assert.Equal(t, d, Describe(), "description is stable")
}
