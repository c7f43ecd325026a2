package contributors

import (
	"errors"
	"fmt"
	"iter"

	"github.com/Aman-CERP/indexify/pkg/compose"
	"github.com/Aman-CERP/indexify/pkg/document"
)

// ErrInvalidParameter is wrapped by every constructor validation failure.
var ErrInvalidParameter = errors.New("invalid contributor parameter")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// Ordered supplies Order for contributors that embed it.
type Ordered struct {
	order int
}

// Order implements compose.Contributor.
func (o Ordered) Order() int {
	return o.order
}

// Always is embedded by contributors without a precondition.
type Always struct{}

// CanContribute implements compose.Contributor.
func (Always) CanContribute(compose.Reader) bool {
	return true
}

// component contributes one typed component into a fixed namespace.
type component struct {
	Ordered
	Always
	ns   document.Namespace
	name string
	def  document.Component
}

func newComponent(ns document.Namespace, name string, def document.Component, order int) (*component, error) {
	if name == "" {
		return nil, invalid("%s name is empty", ns)
	}
	if def.Type == "" {
		return nil, invalid("%s %q has no type", ns, name)
	}
	return &component{
		Ordered: Ordered{order},
		ns:      ns,
		name:    name,
		def:     document.NewComponent(def.Type, def.Params),
	}, nil
}

// Build implements compose.Contributor.
func (c *component) Build() iter.Seq[compose.Fragment] {
	return compose.Fragments(compose.Fragment{
		Namespace:  c.ns,
		Key:        c.name,
		Definition: document.NewComponent(c.def.Type, c.def.Params),
	})
}

// NewTokenFilter contributes a token filter definition.
func NewTokenFilter(name string, def document.Component, order int) (compose.Contributor, error) {
	return newComponent(document.TokenFilters, name, def, order)
}

// NewTokenizer contributes a tokenizer definition.
func NewTokenizer(name string, def document.Component, order int) (compose.Contributor, error) {
	return newComponent(document.Tokenizers, name, def, order)
}

// NewCharFilter contributes a char filter definition.
func NewCharFilter(name string, def document.Component, order int) (compose.Contributor, error) {
	return newComponent(document.CharFilters, name, def, order)
}

// MustTokenFilter is like NewTokenFilter but panics on invalid parameters.
func MustTokenFilter(name string, def document.Component, order int) compose.Contributor {
	c, err := NewTokenFilter(name, def, order)
	if err != nil {
		panic(err)
	}
	return c
}
