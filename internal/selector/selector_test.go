package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		raw      string
		want     Selector
		wildcard bool
	}{
		{"$inputs.image", Selector{Scope: Inputs, Name: "image"}, false},
		{"$steps.model.predictions", Selector{Scope: Steps, Name: "model", Field: "predictions"}, false},
		{"$steps.model.*", Selector{Scope: Steps, Name: "model", Field: "*"}, true},
		{"$steps.my-step.out_1", Selector{Scope: Steps, Name: "my-step", Field: "out_1"}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := Parse(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
			assert.Equal(t, tc.raw, got.String(), "round trip")
			assert.Equal(t, tc.wildcard, got.IsWildcard())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"inputs.image",
		"$inputs.",
		"$inputs.a.b",
		"$steps.model",
		"$steps.model.",
		"$steps..field",
		"$steps.model.a.b",
		"$steps.model.**",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			assert.Error(t, err)
		})
	}
}

func TestIs(t *testing.T) {
	assert.True(t, Is("$inputs.x"))
	assert.True(t, Is("$steps.x.y"))
	assert.True(t, Is("$steps.broken"), "Is only checks the prefix")
	assert.False(t, Is("$other.x"))
	assert.False(t, Is("plain text"))
	assert.False(t, Is(42))
}

func TestNodeID(t *testing.T) {
	in, err := Parse("$inputs.image")
	require.NoError(t, err)
	st, err := Parse("$steps.model.*")
	require.NoError(t, err)
	assert.Equal(t, "$inputs.image", in.NodeID())
	assert.Equal(t, "$steps.model", st.NodeID())
}
