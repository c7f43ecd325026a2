package bleveindex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/indexify/pkg/compose"
	"github.com/Aman-CERP/indexify/pkg/contributors"
	"github.com/Aman-CERP/indexify/pkg/document"
)

func autocompleteDocument(t *testing.T) *document.Document {
	t.Helper()
	field, err := contributors.NewFieldMapping("title", document.Property{Type: "text", Analyzer: "autocomplete"}, 20)
	require.NoError(t, err)
	doc := document.New()
	require.NoError(t, compose.Compose(doc, []compose.Contributor{
		contributors.MustTokenFilter("edge_ngram", document.NewComponent(document.FilterEdgeNGram, map[string]any{"min_gram": 1, "max_gram": 20}), 0),
		contributors.MustAutocompleteAnalyzer("autocomplete", "edge_ngram", 10),
		field,
	}))
	return doc
}

func terms(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Term)
	}
	return out
}

func TestTranslate_AutocompleteAnalyzer(t *testing.T) {
	// Given: a composed autocomplete request
	m, err := Translate(autocompleteDocument(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"autocomplete"}, m.Analyzers())

	// When: analyzing accented mixed-case text
	tokens, err := m.Analyze("autocomplete", "Wörld")

	// Then: lowercased, folded, then edge n-grams in order
	require.NoError(t, err)
	assert.Equal(t, []string{"w", "wo", "wor", "worl", "world"}, terms(tokens))
}

func TestTranslate_WhitespaceSplitsOnly(t *testing.T) {
	m, err := Translate(autocompleteDocument(t))
	require.NoError(t, err)

	tokens, err := m.Analyze("autocomplete", "ab-c d")

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab", "ab-", "ab-c", "d"}, terms(tokens))
}

func TestProbe_PrefixMatches(t *testing.T) {
	m, err := Translate(autocompleteDocument(t))
	require.NoError(t, err)

	results, err := m.Probe("Crème Brûlée", "cre")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "title", results[0].Field)
	assert.Equal(t, uint64(1), results[0].Hits)
}

func TestTranslate_BuiltinsAndImplicitFilters(t *testing.T) {
	doc := document.New()
	require.NoError(t, doc.Insert(document.CharFilters, "strip", document.NewComponent(document.CharFilterHTMLStrip, nil)))
	require.NoError(t, doc.Insert(document.Tokenizers, "words", document.NewComponent(document.TokenizerStandard, nil)))
	require.NoError(t, doc.Insert(document.Analyzers, "grams", document.CustomAnalyzer{
		Tokenizer:  "words",
		CharFilter: []string{"strip"},
		Filter:     []string{document.FilterLowercase, document.FilterEdgeNGram},
	}))
	require.NoError(t, doc.Insert(document.Analyzers, "plain", document.NewComponent(document.AnalyzerStandard, nil)))
	require.NoError(t, doc.Insert(document.Properties, "body", document.Property{Type: "text", Analyzer: document.AnalyzerWhitespace}))
	require.NoError(t, doc.Insert(document.Properties, "count", document.Property{Type: "integer"}))
	require.NoError(t, doc.Insert(document.IndexSettings, "number_of_shards", 1))

	m, err := Translate(doc)
	require.NoError(t, err)

	// Default edge_ngram settings give grams of length 1 and 2
	tokens, err := m.Analyze("grams", "<b>Go</b>")
	require.NoError(t, err)
	assert.Equal(t, []string{"g", "go"}, terms(tokens))

	tokens, err = m.Analyze("plain", "Hello World")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, terms(tokens))
}

func TestTranslate_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		ns   document.Namespace
		key  string
		def  document.Definition
	}{
		{"filter type", document.TokenFilters, "syn", document.NewComponent("synonym", nil)},
		{"tokenizer type", document.Tokenizers, "pat", document.NewComponent("pattern", nil)},
		{"char filter type", document.CharFilters, "map", document.NewComponent("mapping", nil)},
		{"analyzer reference", document.Analyzers, "a", document.CustomAnalyzer{Tokenizer: "missing"}},
		{"analyzer type", document.Analyzers, "fr", document.NewComponent("french", nil)},
		{"property type", document.Properties, "loc", document.Property{Type: "geo_point"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document.New()
			require.NoError(t, doc.Insert(tt.ns, tt.key, tt.def))

			_, err := Translate(doc)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupported))
		})
	}
}

func TestTranslate_BadGramRange(t *testing.T) {
	doc := document.New()
	require.NoError(t, doc.Insert(document.TokenFilters, "eg", document.NewComponent(document.FilterEdgeNGram, map[string]any{"min_gram": 5, "max_gram": 2})))

	_, err := Translate(doc)

	assert.ErrorContains(t, err, "invalid gram range")
}

func TestTranslate_UnknownAnalyzer(t *testing.T) {
	m, err := Translate(document.New())
	require.NoError(t, err)

	_, err = m.Analyze("nope", "text")
	assert.Error(t, err)
}

func TestFoldASCII(t *testing.T) {
	assert.Equal(t, "creme brulee", string(foldASCII([]byte("crème brûlée"))))
	assert.Equal(t, "plain", string(foldASCII([]byte("plain"))))
}
