// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package kind

import (
	"sort"
	"sync"
)

// Registry holds kind definitions by name. A child registry resolves names
// through its parent but only ever writes to itself.
type Registry struct {
	mu     sync.RWMutex
	kinds  map[string]Kind
	parent *Registry
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry holding the builtin kinds.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, k := range Builtin() {
			if err := defaultRegistry.Register(k); err != nil {
				panic(err)
			}
		}
	})
	return defaultRegistry
}

// NewRegistry creates an empty registry without a parent.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

// Child returns a request-scoped registry layered over r.
func (r *Registry) Child() *Registry {
	return &Registry{kinds: make(map[string]Kind), parent: r}
}

// Register adds a kind. Re-registering an identical definition is a no-op;
// a conflicting one fails with DuplicateKindError.
func (r *Registry) Register(k Kind) error {
	if existing, err := r.Resolve(k.Name); err == nil {
		if sameDefinition(existing, k) {
			return nil
		}
		return &DuplicateKindError{Name: k.Name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.kinds[k.Name]; ok {
		if sameDefinition(existing, k) {
			return nil
		}
		return &DuplicateKindError{Name: k.Name}
	}
	r.kinds[k.Name] = k
	return nil
}

// Resolve looks a kind up by name, walking parents.
func (r *Registry) Resolve(name string) (Kind, error) {
	for cur := r; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		k, ok := cur.kinds[name]
		cur.mu.RUnlock()
		if ok {
			return k, nil
		}
	}
	return Kind{}, &UnknownKindError{Name: name}
}

// ResolveSet resolves every member of s, returning the first failure.
func (r *Registry) ResolveSet(s Set) ([]Kind, error) {
	out := make([]Kind, 0, len(s))
	for _, n := range s.Names() {
		k, err := r.Resolve(n)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// IsCompatible reports whether a producer offering one kind set can feed a
// consumer accepting another.
func (r *Registry) IsCompatible(producer, consumer Set) bool {
	return producer.Intersects(consumer)
}

// All returns every kind visible from r, sorted by name. Kinds registered on
// a child shadow parent kinds with the same name.
func (r *Registry) All() []Kind {
	seen := make(map[string]Kind)
	for cur := r; cur != nil; cur = cur.parent {
		cur.mu.RLock()
		for n, k := range cur.kinds {
			if _, ok := seen[n]; !ok {
				seen[n] = k
			}
		}
		cur.mu.RUnlock()
	}
	out := make([]Kind, 0, len(seen))
	for _, k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sameDefinition(a, b Kind) bool {
	return a.Name == b.Name &&
		a.Description == b.Description &&
		a.Docs == b.Docs &&
		(a.Validate == nil) == (b.Validate == nil)
}
