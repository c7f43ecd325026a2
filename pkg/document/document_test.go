package document

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Insert_RefusesOverwrite(t *testing.T) {
	// Given: a document with a token filter
	d := New()
	require.NoError(t, d.Insert(TokenFilters, "edge_ngram", NewComponent(FilterEdgeNGram, nil)))

	// When: the same key is inserted again
	err := d.Insert(TokenFilters, "edge_ngram", NewComponent(FilterNGram, nil))

	// Then: it fails and the original definition survives
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrKeyExists))
	def, ok := d.Get(TokenFilters, "edge_ngram")
	require.True(t, ok)
	assert.Equal(t, FilterEdgeNGram, def.(Component).Type)
}

func TestDocument_Insert_SameKeyInDifferentNamespaces(t *testing.T) {
	d := New()
	require.NoError(t, d.Insert(TokenFilters, "autocomplete", NewComponent(FilterEdgeNGram, nil)))
	require.NoError(t, d.Insert(Analyzers, "autocomplete", CustomAnalyzer{Tokenizer: TokenizerWhitespace}))

	assert.True(t, d.Contains(TokenFilters, "autocomplete"))
	assert.True(t, d.Contains(Analyzers, "autocomplete"))
}

func TestDocument_Insert_RejectsBadInput(t *testing.T) {
	d := New()

	err := d.Insert(Namespace("similarity"), "bm25", nil)
	assert.ErrorIs(t, err, ErrUnknownNamespace)

	err = d.Insert(Analyzers, "", CustomAnalyzer{})
	assert.ErrorIs(t, err, ErrEmptyKey)
	assert.True(t, d.Empty())
}

func TestDocument_Insert_NilReceiver(t *testing.T) {
	// Given: a nil document pointer
	var d *Document

	// When: a definition is inserted
	var err error
	assert.NotPanics(t, func() {
		err = d.Insert(Analyzers, "x", CustomAnalyzer{Tokenizer: TokenizerStandard})
	})

	// Then: a sentinel error is returned and reads stay safe
	assert.ErrorIs(t, err, ErrNilDocument)
	assert.False(t, d.Contains(Analyzers, "x"))
	assert.True(t, d.Empty())
}

func TestCheckSlot(t *testing.T) {
	assert.NoError(t, CheckSlot(TokenFilters, "edge_ngram"))
	assert.ErrorIs(t, CheckSlot(Namespace("similarity"), "bm25"), ErrUnknownNamespace)
	assert.ErrorIs(t, CheckSlot(Analyzers, ""), ErrEmptyKey)
}

func TestDocument_ZeroValue(t *testing.T) {
	var d Document

	assert.False(t, d.Contains(Analyzers, "x"))
	assert.Nil(t, d.Keys(Analyzers))
	assert.Equal(t, 0, d.Len(Analyzers))
	require.NoError(t, d.Insert(Analyzers, "x", CustomAnalyzer{Tokenizer: TokenizerStandard}))
	assert.Equal(t, 1, d.Len(Analyzers))
}

func TestDocument_Keys_InsertionOrder(t *testing.T) {
	d := New()
	for _, k := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, d.Insert(Properties, k, Property{Type: "text"}))
	}

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, d.Keys(Properties))
}

func TestDocument_Clone_IsIndependent(t *testing.T) {
	d := New()
	require.NoError(t, d.Insert(TokenFilters, "f", NewComponent(FilterLength, nil)))

	c := d.Clone()
	require.NoError(t, c.Insert(TokenFilters, "g", NewComponent(FilterUnique, nil)))

	assert.Equal(t, 1, d.Len(TokenFilters))
	assert.Equal(t, 2, c.Len(TokenFilters))
	assert.True(t, c.Contains(TokenFilters, "f"))
}

func TestIsBuiltin(t *testing.T) {
	tests := []struct {
		ns   Namespace
		name string
		want bool
	}{
		{Tokenizers, TokenizerWhitespace, true},
		{TokenFilters, FilterLowercase, true},
		{TokenFilters, "my_ngram", false},
		{Analyzers, AnalyzerStandard, true},
		{Properties, "title", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.ns)+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBuiltin(tt.ns, tt.name))
		})
	}
}

func TestDocument_MarshalJSON_RequestShape(t *testing.T) {
	d := New()
	require.NoError(t, d.Insert(IndexSettings, "number_of_shards", 1))
	require.NoError(t, d.Insert(TokenFilters, "edge_ngram", NewComponent(FilterEdgeNGram, map[string]any{"min_gram": 1, "max_gram": 20})))
	require.NoError(t, d.Insert(Analyzers, "autocomplete", CustomAnalyzer{
		Tokenizer: TokenizerWhitespace,
		Filter:    []string{FilterLowercase, FilterASCIIFolding, "edge_ngram"},
	}))
	require.NoError(t, d.Insert(Properties, "title", Property{Type: "text", Analyzer: "autocomplete"}))

	data, err := json.Marshal(d)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"settings": {
			"index": {"number_of_shards": 1},
			"analysis": {
				"filter": {"edge_ngram": {"type": "edge_ngram", "min_gram": 1, "max_gram": 20}},
				"analyzer": {"autocomplete": {"type": "custom", "tokenizer": "whitespace", "filter": ["lowercase", "asciifolding", "edge_ngram"]}}
			}
		},
		"mappings": {"properties": {"title": {"type": "text", "analyzer": "autocomplete"}}}
	}`, string(data))
}

func TestDocument_MarshalJSON_KeepsInsertionOrder(t *testing.T) {
	d := New()
	require.NoError(t, d.Insert(Properties, "b", Property{Type: "keyword"}))
	require.NoError(t, d.Insert(Properties, "a", Property{Type: "keyword"}))

	data, err := json.Marshal(d)
	require.NoError(t, err)

	assert.Equal(t, `{"mappings":{"properties":{"b":{"type":"keyword"},"a":{"type":"keyword"}}}}`, string(data))
}

func TestDocument_MarshalJSON_Empty(t *testing.T) {
	data, err := json.Marshal(New())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestDocument_UnmarshalJSON(t *testing.T) {
	body := `{
		"settings": {
			"index": {"number_of_replicas": 0},
			"analysis": {
				"char_filter": {"strip": {"type": "html_strip"}},
				"filter": {"edge_ngram": {"type": "edge_ngram", "min_gram": 2, "max_gram": 10}},
				"analyzer": {
					"autocomplete": {"type": "custom", "tokenizer": "whitespace", "filter": ["lowercase"]},
					"plain": {"type": "standard", "max_token_length": 5}
				}
			}
		},
		"mappings": {"properties": {"title": {"type": "text"}}}
	}`

	var d Document
	require.NoError(t, json.Unmarshal([]byte(body), &d))

	assert.True(t, d.Contains(CharFilters, "strip"))
	assert.True(t, d.Contains(Properties, "title"))

	v, ok := d.Get(IndexSettings, "number_of_replicas")
	require.True(t, ok)
	assert.Equal(t, float64(0), v)

	f, ok := d.Get(TokenFilters, "edge_ngram")
	require.True(t, ok)
	assert.Equal(t, Component{Type: FilterEdgeNGram, Params: map[string]any{"min_gram": float64(2), "max_gram": float64(10)}}, f)

	a, ok := d.Get(Analyzers, "autocomplete")
	require.True(t, ok)
	assert.Equal(t, CustomAnalyzer{Tokenizer: TokenizerWhitespace, Filter: []string{FilterLowercase}}, a)

	p, ok := d.Get(Analyzers, "plain")
	require.True(t, ok)
	assert.Equal(t, "standard", p.(Component).Type)
}

func TestDocument_UnmarshalJSON_ComponentWithoutType(t *testing.T) {
	var d Document
	err := json.Unmarshal([]byte(`{"settings":{"analysis":{"filter":{"x":{"min":1}}}}}`), &d)
	assert.Error(t, err)
}

func TestProperty_Analyzers(t *testing.T) {
	assert.Empty(t, Property{Type: "keyword"}.Analyzers())
	assert.Equal(t, []string{"a"}, Property{Type: "text", Analyzer: "a", SearchAnalyzer: "a"}.Analyzers())
	assert.Equal(t, []string{"a", "b"}, Property{Type: "text", Analyzer: "a", SearchAnalyzer: "b"}.Analyzers())
}
