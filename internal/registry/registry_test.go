package registry

import (
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/indexify/internal/config"
	ierrors "github.com/Aman-CERP/indexify/internal/errors"
	"github.com/Aman-CERP/indexify/pkg/compose"
	"github.com/Aman-CERP/indexify/pkg/contributors"
	"github.com/Aman-CERP/indexify/pkg/document"
)

func TestDefault_RegistersStockKinds(t *testing.T) {
	kinds := Default().Kinds()

	assert.Equal(t, []string{
		KindAnalyzer, KindAutocompleteAnalyzer, KindCharFilter, KindField,
		KindIndexSetting, KindTokenFilter, KindTokenizer,
	}, kinds)
}

func TestBuildAll_FromManifest(t *testing.T) {
	// Given: a manifest with the autocomplete pair
	m, err := config.ParseManifest([]byte(`version: 1
index: products
contributors:
  - kind: autocomplete_analyzer
    order: 10
    params: {name: autocomplete, token_filter: edge_ngram}
  - kind: token_filter
    params: {name: edge_ngram, type: edge_ngram, min_gram: 1, max_gram: 20}
  - kind: field
    order: 20
    params: {name: title, type: text, analyzer: autocomplete}
  - kind: index_setting
    params: {key: number_of_shards, value: 1}
`))
	require.NoError(t, err)

	// When: building and composing
	cs, err := Default().BuildAll(m.Contributors)
	require.NoError(t, err)
	require.Len(t, cs, 4)

	doc := document.New()
	require.NoError(t, compose.Compose(doc, cs))

	// Then: every contribution landed
	assert.True(t, doc.Contains(document.Analyzers, "autocomplete"))
	assert.True(t, doc.Contains(document.Properties, "title"))
	f, ok := doc.Get(document.TokenFilters, "edge_ngram")
	require.True(t, ok)
	assert.Equal(t, document.Component{Type: "edge_ngram", Params: map[string]any{"min_gram": 1, "max_gram": 20}}, f)
	v, _ := doc.Get(document.IndexSettings, "number_of_shards")
	assert.Equal(t, 1, v)
}

func TestBuild_Analyzer(t *testing.T) {
	c, err := Default().Build(config.ContributorSpec{
		Kind: KindAnalyzer,
		Params: map[string]any{
			"name":        "folded",
			"tokenizer":   "standard",
			"char_filter": []any{"html_strip"},
			"filter":      []any{"lowercase", "asciifolding"},
		},
	})
	require.NoError(t, err)

	fragments := slices.Collect(c.Build())
	require.Len(t, fragments, 1)
	assert.Equal(t, document.CustomAnalyzer{
		Tokenizer:  "standard",
		CharFilter: []string{"html_strip"},
		Filter:     []string{"lowercase", "asciifolding"},
	}, fragments[0].Definition)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name     string
		spec     config.ContributorSpec
		wantCode string
	}{
		{"unknown kind", config.ContributorSpec{Kind: "synonyms"}, ierrors.ErrCodeUnknownKind},
		{"unknown param", config.ContributorSpec{Kind: KindAutocompleteAnalyzer, Params: map[string]any{"name": "a", "token_filter": "f", "tokenizer": "x"}}, ierrors.ErrCodeInvalidParameter},
		{"missing param", config.ContributorSpec{Kind: KindAutocompleteAnalyzer, Params: map[string]any{"name": "a"}}, ierrors.ErrCodeInvalidParameter},
		{"no params", config.ContributorSpec{Kind: KindField}, ierrors.ErrCodeInvalidParameter},
		{"wrong param type", config.ContributorSpec{Kind: KindAnalyzer, Params: map[string]any{"name": "a", "tokenizer": "t", "filter": 3}}, ierrors.ErrCodeInvalidParameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Default().Build(tt.spec)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ierrors.GetCode(err))
		})
	}
}

func TestBuild_InvalidParameterWrapsCause(t *testing.T) {
	_, err := Default().Build(config.ContributorSpec{Kind: KindTokenFilter, Params: map[string]any{"name": "f"}})

	assert.True(t, errors.Is(err, contributors.ErrInvalidParameter))
}

func TestBuildAll_ReportsEntry(t *testing.T) {
	_, err := Default().BuildAll([]config.ContributorSpec{
		{Kind: KindTokenizer, Params: map[string]any{"name": "t", "type": "ngram"}},
		{Kind: "bogus"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "contributors[1]")
	ie, ok := ierrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "1", ie.Details["entry"])
}

type constContributor struct{}

func (constContributor) Order() int                        { return 0 }
func (constContributor) CanContribute(compose.Reader) bool { return true }
func (constContributor) Build() iter.Seq[compose.Fragment] { return compose.Fragments() }

func TestRegister(t *testing.T) {
	r := New()
	f := func(int, map[string]any) (compose.Contributor, error) { return constContributor{}, nil }

	require.NoError(t, r.Register("noop", f))
	assert.Error(t, r.Register("noop", f))
	assert.Error(t, r.Register("", f))
	assert.Error(t, r.Register("nil", nil))

	c, err := r.Build(config.ContributorSpec{Kind: "noop"})
	require.NoError(t, err)
	assert.Equal(t, constContributor{}, c)
}
