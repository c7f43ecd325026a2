package contributors

import (
	"encoding/json"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/indexify/pkg/compose"
	"github.com/Aman-CERP/indexify/pkg/document"
)

func edgeNGram() document.Component {
	return document.NewComponent(document.FilterEdgeNGram, map[string]any{"min_gram": 1, "max_gram": 20})
}

func TestAutocompleteAnalyzer_FilterPresent(t *testing.T) {
	// Given: a document that already defines the edge_ngram token filter
	doc := document.New()
	require.NoError(t, doc.Insert(document.TokenFilters, "edge_ngram", edgeNGram()))
	a := MustAutocompleteAnalyzer("autocomplete", "edge_ngram", 0)

	// When: asking and building
	require.True(t, a.CanContribute(doc))
	fragments := slices.Collect(a.Build())

	// Then: exactly one analyzer with the filter chain in order
	require.Len(t, fragments, 1)
	assert.Equal(t, compose.Fragment{
		Namespace: document.Analyzers,
		Key:       "autocomplete",
		Definition: document.CustomAnalyzer{
			Tokenizer: "whitespace",
			Filter:    []string{"lowercase", "asciifolding", "edge_ngram"},
		},
	}, fragments[0])
}

func TestAutocompleteAnalyzer_FilterMissing(t *testing.T) {
	// Given: a document without the token filter
	doc := document.New()
	require.NoError(t, doc.Insert(document.TokenFilters, "other", edgeNGram()))
	a := MustAutocompleteAnalyzer("autocomplete", "edge_ngram", 0)

	// Then: the contributor does not apply
	assert.False(t, a.CanContribute(doc))

	// And: composing leaves the document unchanged
	require.NoError(t, compose.Compose(doc, []compose.Contributor{a}))
	assert.False(t, doc.Contains(document.Analyzers, "autocomplete"))
	assert.Equal(t, []string{"other"}, doc.Keys(document.TokenFilters))
}

func TestAutocompleteAnalyzer_BuiltinFilterDoesNotCount(t *testing.T) {
	a := MustAutocompleteAnalyzer("autocomplete", document.FilterEdgeNGram, 0)
	assert.False(t, a.CanContribute(document.New()))
}

func TestAutocompleteAnalyzer_BuildIsRestartable(t *testing.T) {
	a := MustAutocompleteAnalyzer("ac", "edge", 0)
	first := slices.Collect(a.Build())
	second := slices.Collect(a.Build())
	assert.Equal(t, first, second)
}

func TestAutocompleteAnalyzer_ComposedWithItsFilter(t *testing.T) {
	// Given: the analyzer listed first but ordered after its filter
	contributors := []compose.Contributor{
		MustAutocompleteAnalyzer("autocomplete", "edge_ngram", 10),
		MustTokenFilter("edge_ngram", edgeNGram(), 0),
	}

	// When: composing
	doc := document.New()
	require.NoError(t, compose.Compose(doc, contributors))

	// Then: the request carries both
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"settings":{"analysis":{
		"filter":{"edge_ngram":{"type":"edge_ngram","min_gram":1,"max_gram":20}},
		"analyzer":{"autocomplete":{"type":"custom","tokenizer":"whitespace","filter":["lowercase","asciifolding","edge_ngram"]}}
	}}}`, string(data))
}

func TestAutocompleteAnalyzer_TwoWithSameName(t *testing.T) {
	contributors := []compose.Contributor{
		MustTokenFilter("edge_ngram", edgeNGram(), 0),
		MustAutocompleteAnalyzer("autocomplete", "edge_ngram", 1),
		MustAutocompleteAnalyzer("autocomplete", "edge_ngram", 2),
	}

	doc := document.New()
	err := compose.Compose(doc, contributors)

	var dupErr *compose.DuplicateContributionError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "autocomplete", dupErr.Key)
	assert.Equal(t, document.Analyzers, dupErr.Namespace)
	assert.Equal(t, 1, doc.Len(document.Analyzers))
}

func TestConstructors_Validate(t *testing.T) {
	tests := []struct {
		name string
		err  func() error
	}{
		{"autocomplete without name", func() error { _, err := NewAutocompleteAnalyzer("", "f", 0); return err }},
		{"autocomplete without filter", func() error { _, err := NewAutocompleteAnalyzer("a", "", 0); return err }},
		{"analyzer without tokenizer", func() error { _, err := NewAnalyzer("a", document.CustomAnalyzer{}, 0); return err }},
		{"token filter without type", func() error { _, err := NewTokenFilter("f", document.Component{}, 0); return err }},
		{"tokenizer without name", func() error { _, err := NewTokenizer("", document.Component{Type: "ngram"}, 0); return err }},
		{"setting with map value", func() error { _, err := NewIndexSetting("x", map[string]any{}, 0); return err }},
		{"field without type", func() error { _, err := NewFieldMapping("title", document.Property{}, 0); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err(), ErrInvalidParameter)
		})
	}
}

func TestMustTokenFilter_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustTokenFilter("", edgeNGram(), 0) })
}

func TestTokenFilter_CopiesParams(t *testing.T) {
	params := map[string]any{"min_gram": 1}
	c := MustTokenFilter("f", document.NewComponent("edge_ngram", params), 0)
	params["min_gram"] = 99

	fragments := slices.Collect(c.Build())
	require.Len(t, fragments, 1)
	assert.Equal(t, 1, fragments[0].Definition.(document.Component).Params["min_gram"])
}

func TestAnalyzer_WaitsForReferences(t *testing.T) {
	a, err := NewAnalyzer("folded", document.CustomAnalyzer{
		Tokenizer:  "my_tok",
		CharFilter: []string{document.CharFilterHTMLStrip},
		Filter:     []string{document.FilterLowercase, "my_filter"},
	}, 0)
	require.NoError(t, err)

	doc := document.New()
	assert.False(t, a.CanContribute(doc))

	require.NoError(t, doc.Insert(document.Tokenizers, "my_tok", document.NewComponent("ngram", nil)))
	assert.False(t, a.CanContribute(doc))

	require.NoError(t, doc.Insert(document.TokenFilters, "my_filter", document.NewComponent("length", nil)))
	assert.True(t, a.CanContribute(doc))
}

func TestFieldMapping_WaitsForAnalyzer(t *testing.T) {
	m, err := NewFieldMapping("title", document.Property{Type: "text", Analyzer: "autocomplete", SearchAnalyzer: document.AnalyzerStandard}, 20)
	require.NoError(t, err)

	contributors := []compose.Contributor{
		m,
		MustTokenFilter("edge_ngram", edgeNGram(), 0),
		MustAutocompleteAnalyzer("autocomplete", "edge_ngram", 10),
	}
	doc := document.New()
	require.NoError(t, compose.Compose(doc, contributors))

	assert.True(t, doc.Contains(document.Properties, "title"))
}

func TestIndexSetting_Build(t *testing.T) {
	s, err := NewIndexSetting("number_of_shards", 3, 0)
	require.NoError(t, err)

	doc := document.New()
	require.NoError(t, compose.Compose(doc, []compose.Contributor{s}))

	v, ok := doc.Get(document.IndexSettings, "number_of_shards")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestContributors_ConcurrentRuns(t *testing.T) {
	// Given: one shared contributor set
	contributors := []compose.Contributor{
		MustAutocompleteAnalyzer("autocomplete", "edge_ngram", 10),
		MustTokenFilter("edge_ngram", edgeNGram(), 0),
	}

	// When: composing into separate documents in parallel
	var wg sync.WaitGroup
	docs := make([]*document.Document, 8)
	errs := make([]error, len(docs))
	for i := range docs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			docs[i] = document.New()
			errs[i] = compose.Compose(docs[i], contributors)
		}()
	}
	wg.Wait()

	// Then: every run produced the same request
	for i := range docs {
		require.NoError(t, errs[i])
		assert.True(t, docs[i].Contains(document.Analyzers, "autocomplete"))
	}
}
