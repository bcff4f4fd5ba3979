// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package kind

import (
	"encoding/json"
	"sort"
	"strings"
)

// Wildcard is the kind name that is compatible with every other kind.
const Wildcard = "*"

// ValidateFunc reports whether a runtime value can carry a kind.
type ValidateFunc func(value any) bool

// Kind is a named semantic tag attached to block parameters and outputs.
type Kind struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Docs        string       `json:"docs,omitempty"`
	Validate    ValidateFunc `json:"-"`
}

// Accepts runs the kind's validator. Kinds without a validator accept any
// value.
func (k Kind) Accepts(value any) bool {
	if k.Validate == nil {
		return true
	}
	return k.Validate(value)
}

// Set is an immutable-by-convention set of kind names.
type Set map[string]struct{}

// NewSet builds a Set from the given names, dropping empty strings.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether the set contains name.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// IsWildcard reports whether the set contains the wildcard kind.
func (s Set) IsWildcard() bool {
	return s.Has(Wildcard)
}

// Names returns the members in sorted order.
func (s Set) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Intersects reports whether the two sets share a kind. The wildcard on
// either side matches any non-empty other side.
func (s Set) Intersects(other Set) bool {
	if len(s) == 0 || len(other) == 0 {
		return false
	}
	if s.IsWildcard() || other.IsWildcard() {
		return true
	}
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for n := range small {
		if large.Has(n) {
			return true
		}
	}
	return false
}

// String renders the set as a bracketed, sorted list.
func (s Set) String() string {
	return "[" + strings.Join(s.Names(), ", ") + "]"
}

// MarshalJSON renders the set as a sorted array.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}
