package contributors

import (
	"iter"

	"github.com/Aman-CERP/indexify/pkg/compose"
	"github.com/Aman-CERP/indexify/pkg/document"
)

// Analyzer contributes a custom analyzer once its tokenizer, char filters
// and token filters are all resolvable.
type Analyzer struct {
	Ordered
	name string
	def  document.CustomAnalyzer
}

// NewAnalyzer creates an Analyzer contributor.
func NewAnalyzer(name string, def document.CustomAnalyzer, order int) (*Analyzer, error) {
	if name == "" {
		return nil, invalid("analyzer name is empty")
	}
	if def.Tokenizer == "" {
		return nil, invalid("analyzer %q has no tokenizer", name)
	}
	return &Analyzer{Ordered: Ordered{order}, name: name, def: def.Clone()}, nil
}

// CanContribute implements compose.Contributor.
func (a *Analyzer) CanContribute(doc compose.Reader) bool {
	if !document.Resolvable(doc, document.Tokenizers, a.def.Tokenizer) {
		return false
	}
	for _, cf := range a.def.CharFilter {
		if !document.Resolvable(doc, document.CharFilters, cf) {
			return false
		}
	}
	for _, f := range a.def.Filter {
		if !document.Resolvable(doc, document.TokenFilters, f) {
			return false
		}
	}
	return true
}

// Build implements compose.Contributor.
func (a *Analyzer) Build() iter.Seq[compose.Fragment] {
	return compose.Fragments(compose.Fragment{
		Namespace:  document.Analyzers,
		Key:        a.name,
		Definition: a.def.Clone(),
	})
}

// AutocompleteAnalyzer contributes a whitespace analyzer that lowercases,
// folds to ASCII and then applies a prefix-producing token filter. It
// applies only when that token filter is already defined in the document.
type AutocompleteAnalyzer struct {
	Ordered
	name        string
	tokenFilter string
}

// NewAutocompleteAnalyzer creates an AutocompleteAnalyzer.
func NewAutocompleteAnalyzer(name, tokenFilter string, order int) (*AutocompleteAnalyzer, error) {
	if name == "" {
		return nil, invalid("autocomplete analyzer name is empty")
	}
	if tokenFilter == "" {
		return nil, invalid("autocomplete analyzer %q has no token filter", name)
	}
	return &AutocompleteAnalyzer{Ordered: Ordered{order}, name: name, tokenFilter: tokenFilter}, nil
}

// MustAutocompleteAnalyzer is like NewAutocompleteAnalyzer but panics on invalid parameters.
func MustAutocompleteAnalyzer(name, tokenFilter string, order int) *AutocompleteAnalyzer {
	a, err := NewAutocompleteAnalyzer(name, tokenFilter, order)
	if err != nil {
		panic(err)
	}
	return a
}

// CanContribute implements compose.Contributor. Builtin filters do not
// count: the filter must be defined in the document itself.
func (a *AutocompleteAnalyzer) CanContribute(doc compose.Reader) bool {
	return doc.Contains(document.TokenFilters, a.tokenFilter)
}

// Build implements compose.Contributor.
func (a *AutocompleteAnalyzer) Build() iter.Seq[compose.Fragment] {
	return func(yield func(compose.Fragment) bool) {
		yield(compose.Fragment{
			Namespace: document.Analyzers,
			Key:       a.name,
			Definition: document.CustomAnalyzer{
				Tokenizer: document.TokenizerWhitespace,
				Filter:    []string{document.FilterLowercase, document.FilterASCIIFolding, a.tokenFilter},
			},
		})
	}
}
