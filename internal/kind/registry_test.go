package kind

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Kind{Name: "image", Description: "an image"}))

	k, err := r.Resolve("image")
	require.NoError(t, err)
	assert.Equal(t, "an image", k.Description)

	t.Run("identical re-registration is a no-op", func(t *testing.T) {
		assert.NoError(t, r.Register(Kind{Name: "image", Description: "an image"}))
	})

	t.Run("conflicting definition", func(t *testing.T) {
		err := r.Register(Kind{Name: "image", Description: "something else"})
		var dup *DuplicateKindError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "image", dup.Name)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := r.Resolve("video")
		var unknown *UnknownKindError
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, "video", unknown.Name)
	})
}

func TestRegistry_ChildDoesNotLeak(t *testing.T) {
	parent := NewRegistry()
	require.NoError(t, parent.Register(Kind{Name: "image"}))

	child := parent.Child()
	require.NoError(t, child.Register(Kind{Name: "ephemeral"}))

	_, err := child.Resolve("image")
	assert.NoError(t, err, "child must see parent kinds")
	_, err = parent.Resolve("ephemeral")
	assert.Error(t, err, "parent must not see child kinds")

	err = child.Register(Kind{Name: "image", Description: "redefined"})
	var dup *DuplicateKindError
	assert.True(t, errors.As(err, &dup), "child cannot redefine a parent kind")

	names := make([]string, 0)
	for _, k := range child.All() {
		names = append(names, k.Name)
	}
	assert.Equal(t, []string{"ephemeral", "image"}, names)
}

func TestDefault_HasBuiltins(t *testing.T) {
	for _, name := range []string{Wildcard, ImageKind, FloatZeroToOneKind, ObjectDetectionPredictionKind} {
		_, err := Default().Resolve(name)
		assert.NoError(t, err, name)
	}
}

func TestIsCompatible(t *testing.T) {
	r := Default()
	testCases := []struct {
		name     string
		producer Set
		consumer Set
		want     bool
	}{
		{"same kind", NewSet("image"), NewSet("image"), true},
		{"overlap", NewSet("image", "float"), NewSet("float", "string"), true},
		{"disjoint", NewSet("image"), NewSet("float"), false},
		{"wildcard consumer", NewSet("image"), NewSet(Wildcard), true},
		{"wildcard producer", NewSet(Wildcard), NewSet("float"), true},
		{"empty producer", NewSet(), NewSet(Wildcard), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.IsCompatible(tc.producer, tc.consumer))
		})
	}
}

func TestValidators(t *testing.T) {
	k, err := Default().Resolve(FloatZeroToOneKind)
	require.NoError(t, err)
	assert.True(t, k.Accepts(0.5))
	assert.True(t, k.Accepts(1))
	assert.False(t, k.Accepts(1.5))
	assert.False(t, k.Accepts("0.5"))

	img, err := Default().Resolve(ImageKind)
	require.NoError(t, err)
	assert.True(t, img.Accepts(&Image{ParentID: "image.[0]"}))
	assert.True(t, img.Accepts(map[string]any{"type": "url", "value": "https://example.com/a.jpg"}))
	assert.False(t, img.Accepts(map[string]any{"type": "carrier-pigeon", "value": "?"}))
	assert.False(t, img.Accepts("not an image"))

	wild, err := Default().Resolve(Wildcard)
	require.NoError(t, err)
	assert.True(t, wild.Accepts(struct{}{}))
}

// Compatibility is exactly non-empty intersection, with the wildcard
// matching everything, and it does not depend on argument order.
func TestIsCompatible_Property(t *testing.T) {
	names := []string{"a", "b", "c", "d", Wildcard}
	rapid.Check(t, func(t *rapid.T) {
		p := NewSet(rapid.SliceOfDistinct(rapid.SampledFrom(names), rapid.ID[string]).Draw(t, "producer")...)
		c := NewSet(rapid.SliceOfDistinct(rapid.SampledFrom(names), rapid.ID[string]).Draw(t, "consumer")...)

		want := false
		if len(p) > 0 && len(c) > 0 {
			if p.IsWildcard() || c.IsWildcard() {
				want = true
			}
			for n := range p {
				if c.Has(n) {
					want = true
				}
			}
		}
		if got := p.Intersects(c); got != want {
			t.Fatalf("Intersects(%v, %v) = %v, want %v", p, c, got, want)
		}
		if p.Intersects(c) != c.Intersects(p) {
			t.Fatalf("compatibility is not symmetric for %v and %v", p, c)
		}
	})
}
