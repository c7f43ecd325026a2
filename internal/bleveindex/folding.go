package bleveindex

import (
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/registry"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ASCIIFoldingFilterName is the bleve token filter that folds accented
// letters to their ASCII base form, in place within the filter chain.
const ASCIIFoldingFilterName = "indexify_asciifolding"

func init() {
	_ = registry.RegisterTokenFilter(ASCIIFoldingFilterName, asciiFoldingFilterConstructor)
}

func asciiFoldingFilterConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	return &asciiFoldingFilter{}, nil
}

// asciiFoldingFilter implements analysis.TokenFilter.
type asciiFoldingFilter struct{}

// Filter implements analysis.TokenFilter.
func (f *asciiFoldingFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	for _, token := range input {
		token.Term = foldASCII(token.Term)
	}
	return input
}

// foldASCII strips combining marks after canonical decomposition.
func foldASCII(term []byte) []byte {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.Bytes(t, term)
	if err != nil {
		return term
	}
	return folded
}
