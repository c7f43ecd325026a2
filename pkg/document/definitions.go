package document

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Built-in analysis components understood by the search engine without a
// definition in the request.
const (
	TokenizerWhitespace = "whitespace"
	TokenizerStandard   = "standard"
	TokenizerKeyword    = "keyword"

	FilterLowercase    = "lowercase"
	FilterASCIIFolding = "asciifolding"
	FilterEdgeNGram    = "edge_ngram"
	FilterNGram        = "ngram"
	FilterLength       = "length"
	FilterUnique       = "unique"
	FilterPorterStem   = "porter_stem"

	CharFilterHTMLStrip = "html_strip"

	AnalyzerStandard   = "standard"
	AnalyzerSimple     = "simple"
	AnalyzerWhitespace = "whitespace"
	AnalyzerKeyword    = "keyword"

	// CustomType is the analyzer type for tokenizer + filter chains.
	CustomType = "custom"
)

var builtins = map[Namespace][]string{
	Tokenizers:   {TokenizerWhitespace, TokenizerStandard, TokenizerKeyword},
	TokenFilters: {FilterLowercase, FilterASCIIFolding, FilterEdgeNGram, FilterNGram, FilterLength, FilterUnique, FilterPorterStem},
	CharFilters:  {CharFilterHTMLStrip},
	Analyzers:    {AnalyzerStandard, AnalyzerSimple, AnalyzerWhitespace, AnalyzerKeyword},
}

// IsBuiltin reports whether name refers to a component the engine ships
// with, so it need not be defined in the request.
func IsBuiltin(ns Namespace, name string) bool {
	return slices.Contains(builtins[ns], name)
}

// Resolvable reports whether name is builtin or already defined in d.
func Resolvable(d interface {
	Contains(Namespace, string) bool
}, ns Namespace, name string) bool {
	return IsBuiltin(ns, name) || d.Contains(ns, name)
}

// CustomAnalyzer is a tokenizer plus ordered char filter and token filter chains.
type CustomAnalyzer struct {
	Tokenizer  string
	CharFilter []string
	Filter     []string
}

type customAnalyzerJSON struct {
	Type       string   `json:"type"`
	Tokenizer  string   `json:"tokenizer"`
	CharFilter []string `json:"char_filter,omitempty"`
	Filter     []string `json:"filter,omitempty"`
}

// MarshalJSON renders the analyzer with "type": "custom".
func (a CustomAnalyzer) MarshalJSON() ([]byte, error) {
	return json.Marshal(customAnalyzerJSON{
		Type:       CustomType,
		Tokenizer:  a.Tokenizer,
		CharFilter: a.CharFilter,
		Filter:     a.Filter,
	})
}

// UnmarshalJSON reads a custom analyzer definition.
func (a *CustomAnalyzer) UnmarshalJSON(data []byte) error {
	var raw customAnalyzerJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != "" && raw.Type != CustomType {
		return fmt.Errorf("analyzer type %q is not %q", raw.Type, CustomType)
	}
	*a = CustomAnalyzer{Tokenizer: raw.Tokenizer, CharFilter: raw.CharFilter, Filter: raw.Filter}
	return nil
}

// Clone returns a copy that shares no slices with a.
func (a CustomAnalyzer) Clone() CustomAnalyzer {
	return CustomAnalyzer{
		Tokenizer:  a.Tokenizer,
		CharFilter: slices.Clone(a.CharFilter),
		Filter:     slices.Clone(a.Filter),
	}
}

// Component is a typed analysis component (token filter, tokenizer, char
// filter, or a non-custom analyzer) with free-form parameters.
type Component struct {
	Type   string
	Params map[string]any
}

// NewComponent copies params so the returned value does not alias the caller's map.
func NewComponent(typ string, params map[string]any) Component {
	return Component{Type: typ, Params: maps.Clone(params)}
}

// Param returns a parameter value.
func (c Component) Param(name string) (any, bool) {
	v, ok := c.Params[name]
	return v, ok
}

// MarshalJSON flattens Params next to "type".
func (c Component) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Params)+1)
	for k, v := range c.Params {
		out[k] = v
	}
	out["type"] = c.Type
	return json.Marshal(out)
}

// UnmarshalJSON reads "type" and keeps every other member as a parameter.
func (c *Component) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	typ, _ := raw["type"].(string)
	if typ == "" {
		return fmt.Errorf("component has no type")
	}
	delete(raw, "type")
	if len(raw) == 0 {
		raw = nil
	}
	*c = Component{Type: typ, Params: raw}
	return nil
}

// Property is a field mapping.
type Property struct {
	Type           string `json:"type"`
	Analyzer       string `json:"analyzer,omitempty"`
	SearchAnalyzer string `json:"search_analyzer,omitempty"`
}

// Analyzers returns the analyzers the property refers to.
func (p Property) Analyzers() []string {
	var names []string
	if p.Analyzer != "" {
		names = append(names, p.Analyzer)
	}
	if p.SearchAnalyzer != "" && p.SearchAnalyzer != p.Analyzer {
		names = append(names, p.SearchAnalyzer)
	}
	return names
}
