// internal/selector/selector.go
package selector

import (
	"fmt"
	"regexp"
	"strings"
)

// Scope says what a selector points into.
type Scope int

const (
	// Inputs selectors reference workflow inputs.
	Inputs Scope = iota
	// Steps selectors reference step outputs.
	Steps
)

func (s Scope) String() string {
	if s == Inputs {
		return "inputs"
	}
	return "steps"
}

// Wildcard is the field name selecting all outputs of a step.
const Wildcard = "*"

const (
	inputsPrefix = "$inputs."
	stepsPrefix  = "$steps."
)

var (
	nameRegex  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	fieldRegex = regexp.MustCompile(`^([a-zA-Z0-9_-]+|\*)$`)
)

// Selector is a parsed data reference.
type Selector struct {
	Scope Scope
	Name  string
	// Field is empty for input selectors.
	Field string
}

// Is reports whether v looks like a selector. It does not validate it.
func Is(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return strings.HasPrefix(s, inputsPrefix) || strings.HasPrefix(s, stepsPrefix)
}

// Parse parses the canonical string form of a selector.
func Parse(raw string) (*Selector, error) {
	switch {
	case strings.HasPrefix(raw, inputsPrefix):
		name := strings.TrimPrefix(raw, inputsPrefix)
		if !nameRegex.MatchString(name) {
			return nil, fmt.Errorf("invalid input selector %q: expected $inputs.<name>", raw)
		}
		return &Selector{Scope: Inputs, Name: name}, nil

	case strings.HasPrefix(raw, stepsPrefix):
		rest := strings.TrimPrefix(raw, stepsPrefix)
		name, field, found := strings.Cut(rest, ".")
		if !found || !nameRegex.MatchString(name) || !fieldRegex.MatchString(field) {
			return nil, fmt.Errorf("invalid step selector %q: expected $steps.<name>.<field> or $steps.<name>.*", raw)
		}
		return &Selector{Scope: Steps, Name: name, Field: field}, nil
	}
	return nil, fmt.Errorf("invalid selector %q: must start with %s or %s", raw, inputsPrefix, stepsPrefix)
}

// String returns the canonical form.
func (s Selector) String() string {
	if s.Scope == Inputs {
		return inputsPrefix + s.Name
	}
	return stepsPrefix + s.Name + "." + s.Field
}

// IsWildcard reports whether the selector takes every output of a step.
func (s Selector) IsWildcard() bool {
	return s.Scope == Steps && s.Field == Wildcard
}

// NodeID is the identifier of the graph node the selector depends on:
// "$inputs.<name>" or "$steps.<name>".
func (s Selector) NodeID() string {
	if s.Scope == Inputs {
		return InputNodeID(s.Name)
	}
	return StepNodeID(s.Name)
}

// InputNodeID returns the graph node identifier of a workflow input.
func InputNodeID(name string) string { return inputsPrefix + name }

// StepNodeID returns the graph node identifier of a step.
func StepNodeID(name string) string { return "$steps." + name }
