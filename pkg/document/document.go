package document

import (
	"errors"
	"fmt"
	"slices"
)

// Namespace names an independently keyed section of the request.
type Namespace string

// Built-in namespaces.
const (
	// Analyzers lives under settings.analysis.analyzer.
	Analyzers Namespace = "analyzer"
	// Tokenizers lives under settings.analysis.tokenizer.
	Tokenizers Namespace = "tokenizer"
	// TokenFilters lives under settings.analysis.filter.
	TokenFilters Namespace = "filter"
	// CharFilters lives under settings.analysis.char_filter.
	CharFilters Namespace = "char_filter"
	// IndexSettings lives under settings.index.
	IndexSettings Namespace = "index"
	// Properties lives under mappings.properties.
	Properties Namespace = "properties"
)

// Namespaces lists the built-in namespaces in rendering order.
var Namespaces = []Namespace{IndexSettings, CharFilters, Tokenizers, TokenFilters, Analyzers, Properties}

// IsAnalysis reports whether the namespace belongs to settings.analysis.
func (ns Namespace) IsAnalysis() bool {
	switch ns {
	case Analyzers, Tokenizers, TokenFilters, CharFilters:
		return true
	}
	return false
}

// Known reports whether ns is one of the built-in namespaces.
func (ns Namespace) Known() bool {
	return slices.Contains(Namespaces, ns)
}

// Definition is an opaque configuration value stored under a key.
// Concrete values are CustomAnalyzer, Component, Property or a scalar setting.
type Definition any

// ErrKeyExists is returned by Insert when the key is already present.
var ErrKeyExists = errors.New("key already exists")

// ErrUnknownNamespace is returned by Insert for a namespace the request has no section for.
var ErrUnknownNamespace = errors.New("unknown namespace")

// ErrEmptyKey is returned by Insert for a blank key.
var ErrEmptyKey = errors.New("empty key")

// ErrNilDocument is returned by Insert on a nil *Document.
var ErrNilDocument = errors.New("nil document")

type table struct {
	keys []string
	defs map[string]Definition
}

// Document is the request under construction.
type Document struct {
	tables map[Namespace]*table
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// Contains reports whether namespace ns holds key.
func (d *Document) Contains(ns Namespace, key string) bool {
	_, ok := d.Get(ns, key)
	return ok
}

// Get returns the definition stored under ns/key.
func (d *Document) Get(ns Namespace, key string) (Definition, bool) {
	if d == nil || d.tables == nil {
		return nil, false
	}
	t, ok := d.tables[ns]
	if !ok {
		return nil, false
	}
	def, ok := t.defs[key]
	return def, ok
}

// Keys returns the keys of ns in insertion order.
func (d *Document) Keys(ns Namespace) []string {
	if d == nil || d.tables == nil {
		return nil
	}
	t, ok := d.tables[ns]
	if !ok {
		return nil
	}
	return slices.Clone(t.keys)
}

// Len returns the number of keys in ns.
func (d *Document) Len(ns Namespace) int {
	if d == nil || d.tables == nil {
		return 0
	}
	if t, ok := d.tables[ns]; ok {
		return len(t.keys)
	}
	return 0
}

// Empty reports whether no namespace holds any key.
func (d *Document) Empty() bool {
	for _, ns := range Namespaces {
		if d.Len(ns) > 0 {
			return false
		}
	}
	return true
}

// CheckSlot reports whether ns/key could be stored in any document: ns must be
// a request section and key must not be blank.
func CheckSlot(ns Namespace, key string) error {
	if !ns.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownNamespace, ns)
	}
	if key == "" {
		return fmt.Errorf("%w in namespace %q", ErrEmptyKey, ns)
	}
	return nil
}

// Insert stores def under ns/key. It never overwrites: an existing key
// yields an error wrapping ErrKeyExists.
func (d *Document) Insert(ns Namespace, key string, def Definition) error {
	if d == nil {
		return ErrNilDocument
	}
	if err := CheckSlot(ns, key); err != nil {
		return err
	}
	if d.tables == nil {
		d.tables = make(map[Namespace]*table)
	}
	t, ok := d.tables[ns]
	if !ok {
		t = &table{defs: make(map[string]Definition)}
		d.tables[ns] = t
	}
	if _, exists := t.defs[key]; exists {
		return fmt.Errorf("%s/%s: %w", ns, key, ErrKeyExists)
	}
	t.keys = append(t.keys, key)
	t.defs[key] = def
	return nil
}

// Clone returns a copy whose namespace tables can be mutated independently.
// Definitions are shared; they are treated as immutable values.
func (d *Document) Clone() *Document {
	c := New()
	if d == nil || d.tables == nil {
		return c
	}
	c.tables = make(map[Namespace]*table, len(d.tables))
	for ns, t := range d.tables {
		nt := &table{
			keys: slices.Clone(t.keys),
			defs: make(map[string]Definition, len(t.defs)),
		}
		for k, v := range t.defs {
			nt.defs[k] = v
		}
		c.tables[ns] = nt
	}
	return c
}
