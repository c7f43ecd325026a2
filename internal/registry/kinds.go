package registry

import (
	"github.com/Aman-CERP/indexify/pkg/compose"
	"github.com/Aman-CERP/indexify/pkg/contributors"
	"github.com/Aman-CERP/indexify/pkg/document"
)

// Stock contributor kinds.
const (
	KindAutocompleteAnalyzer = "autocomplete_analyzer"
	KindAnalyzer             = "analyzer"
	KindTokenFilter          = "token_filter"
	KindTokenizer            = "tokenizer"
	KindCharFilter           = "char_filter"
	KindIndexSetting         = "index_setting"
	KindField                = "field"
)

var builtinFactories = map[string]Factory{
	KindAutocompleteAnalyzer: autocompleteFactory,
	KindAnalyzer:             analyzerFactory,
	KindTokenFilter:          componentFactory(contributors.NewTokenFilter),
	KindTokenizer:            componentFactory(contributors.NewTokenizer),
	KindCharFilter:           componentFactory(contributors.NewCharFilter),
	KindIndexSetting:         indexSettingFactory,
	KindField:                fieldFactory,
}

type autocompleteParams struct {
	Name        string `mapstructure:"name"`
	TokenFilter string `mapstructure:"token_filter"`
}

func autocompleteFactory(order int, params map[string]any) (compose.Contributor, error) {
	var p autocompleteParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return contributors.NewAutocompleteAnalyzer(p.Name, p.TokenFilter, order)
}

type analyzerParams struct {
	Name       string   `mapstructure:"name"`
	Tokenizer  string   `mapstructure:"tokenizer"`
	CharFilter []string `mapstructure:"char_filter"`
	Filter     []string `mapstructure:"filter"`
}

func analyzerFactory(order int, params map[string]any) (compose.Contributor, error) {
	var p analyzerParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return contributors.NewAnalyzer(p.Name, document.CustomAnalyzer{
		Tokenizer:  p.Tokenizer,
		CharFilter: p.CharFilter,
		Filter:     p.Filter,
	}, order)
}

type componentParams struct {
	Name string `mapstructure:"name"`
	Type string `mapstructure:"type"`
	// Rest carries the component's own settings, e.g. min_gram.
	Rest map[string]any `mapstructure:",remain"`
}

func componentFactory(ctor func(string, document.Component, int) (compose.Contributor, error)) Factory {
	return func(order int, params map[string]any) (compose.Contributor, error) {
		var p componentParams
		if err := decode(params, &p); err != nil {
			return nil, err
		}
		return ctor(p.Name, document.NewComponent(p.Type, p.Rest), order)
	}
}

type indexSettingParams struct {
	Key   string `mapstructure:"key"`
	Value any    `mapstructure:"value"`
}

func indexSettingFactory(order int, params map[string]any) (compose.Contributor, error) {
	var p indexSettingParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return contributors.NewIndexSetting(p.Key, p.Value, order)
}

type fieldParams struct {
	Name           string `mapstructure:"name"`
	Type           string `mapstructure:"type"`
	Analyzer       string `mapstructure:"analyzer"`
	SearchAnalyzer string `mapstructure:"search_analyzer"`
}

func fieldFactory(order int, params map[string]any) (compose.Contributor, error) {
	var p fieldParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return contributors.NewFieldMapping(p.Name, document.Property{
		Type:           p.Type,
		Analyzer:       p.Analyzer,
		SearchAnalyzer: p.SearchAnalyzer,
	}, order)
}
