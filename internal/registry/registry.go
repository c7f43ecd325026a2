// Package registry maps manifest contributor kinds to constructors.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/Aman-CERP/indexify/internal/config"
	ierrors "github.com/Aman-CERP/indexify/internal/errors"
	"github.com/Aman-CERP/indexify/pkg/compose"
)

// Factory builds a contributor from decoded manifest parameters.
type Factory func(order int, params map[string]any) (compose.Contributor, error)

// Registry resolves contributor kinds. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default returns a registry with every stock contributor kind registered.
func Default() *Registry {
	r := New()
	for kind, f := range builtinFactories {
		_ = r.Register(kind, f)
	}
	return r
}

// Register adds a kind. Registering the same kind twice is an error.
func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" || f == nil {
		return fmt.Errorf("register: kind and factory are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("register: kind %q already registered", kind)
	}
	r.factories[kind] = f
	return nil
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Build constructs the contributor for one manifest entry.
func (r *Registry) Build(spec config.ContributorSpec) (compose.Contributor, error) {
	r.mu.RLock()
	f, ok := r.factories[spec.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, ierrors.New(ierrors.ErrCodeUnknownKind, fmt.Sprintf("unknown contributor kind %q", spec.Kind), nil).
			WithDetail("kind", spec.Kind).
			WithSuggestion(fmt.Sprintf("Use one of: %v", r.Kinds()))
	}

	c, err := f(spec.Order, spec.Params)
	if err != nil {
		return nil, ierrors.New(ierrors.ErrCodeInvalidParameter, fmt.Sprintf("%s: %v", spec.Kind, err), err).
			WithDetail("kind", spec.Kind)
	}
	return c, nil
}

// BuildAll constructs contributors for every entry, keeping manifest order.
func (r *Registry) BuildAll(specs []config.ContributorSpec) ([]compose.Contributor, error) {
	out := make([]compose.Contributor, 0, len(specs))
	for i, spec := range specs {
		c, err := r.Build(spec)
		if err != nil {
			if ie, ok := ierrors.As(err); ok {
				ie.WithDetail("entry", fmt.Sprintf("%d", i))
			}
			return nil, fmt.Errorf("contributors[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// decode copies params into a typed struct, rejecting unknown keys.
func decode(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
		TagName:     "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(params)
}
