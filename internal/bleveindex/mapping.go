package bleveindex

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/char/html"
	"github.com/blevesearch/bleve/v2/analysis/token/edgengram"
	"github.com/blevesearch/bleve/v2/analysis/token/length"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/ngram"
	"github.com/blevesearch/bleve/v2/analysis/token/porter"
	"github.com/blevesearch/bleve/v2/analysis/token/unique"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/single"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/whitespace"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/Aman-CERP/indexify/pkg/document"
)

// ErrUnsupported is wrapped when the request uses vocabulary bleve has no
// equivalent for.
var ErrUnsupported = errors.New("not supported by bleve")

// builtin names of the request vocabulary mapped to bleve registry names.
var (
	builtinTokenizers = map[string]string{
		document.TokenizerWhitespace: whitespace.Name,
		document.TokenizerStandard:   unicode.Name,
		document.TokenizerKeyword:    single.Name,
	}
	builtinFilters = map[string]string{
		document.FilterLowercase:    lowercase.Name,
		document.FilterASCIIFolding: ASCIIFoldingFilterName,
		document.FilterUnique:       unique.Name,
		document.FilterPorterStem:   porter.Name,
	}
	builtinCharFilters = map[string]string{
		document.CharFilterHTMLStrip: html.Name,
	}
	builtinAnalyzers = map[string]string{
		document.AnalyzerStandard: standard.Name,
		document.AnalyzerSimple:   simple.Name,
		document.AnalyzerKeyword:  keyword.Name,
	}
	// Builtin filters that bleve can only express with explicit settings.
	// Values follow the search engine's defaults.
	implicitFilters = map[string]document.Component{
		document.FilterEdgeNGram: document.NewComponent(document.FilterEdgeNGram, map[string]any{"min_gram": 1, "max_gram": 2}),
		document.FilterNGram:     document.NewComponent(document.FilterNGram, map[string]any{"min_gram": 1, "max_gram": 2}),
	}
)

// Mapping is a bleve index mapping built from a composed request.
type Mapping struct {
	impl       *mapping.IndexMappingImpl
	analyzers  []string
	textFields []string
}

// Impl returns the underlying bleve mapping.
func (m *Mapping) Impl() *mapping.IndexMappingImpl {
	return m.impl
}

// Analyzers lists the analyzers declared from the request, in request order.
func (m *Mapping) Analyzers() []string {
	return m.analyzers
}

type translator struct {
	doc     *document.Document
	im      *mapping.IndexMappingImpl
	defined map[string]bool
	logger  *slog.Logger
}

// Translate builds a bleve mapping from doc. Index-level settings have no
// bleve counterpart and are skipped.
func Translate(doc *document.Document) (*Mapping, error) {
	t := &translator{
		doc:     doc,
		im:      bleve.NewIndexMapping(),
		defined: make(map[string]bool),
		logger:  slog.Default(),
	}
	m := &Mapping{impl: t.im}

	for _, key := range doc.Keys(document.IndexSettings) {
		t.logger.Debug("bleve_setting_ignored", slog.String("setting", key))
	}
	for _, name := range doc.Keys(document.CharFilters) {
		if err := t.charFilter(name); err != nil {
			return nil, err
		}
	}
	for _, name := range doc.Keys(document.Tokenizers) {
		if err := t.tokenizer(name); err != nil {
			return nil, err
		}
	}
	for _, name := range doc.Keys(document.TokenFilters) {
		if err := t.tokenFilter(name); err != nil {
			return nil, err
		}
	}
	for _, name := range doc.Keys(document.Analyzers) {
		if err := t.analyzer(name); err != nil {
			return nil, err
		}
		m.analyzers = append(m.analyzers, name)
	}
	for _, field := range doc.Keys(document.Properties) {
		text, err := t.property(field)
		if err != nil {
			return nil, err
		}
		if text {
			m.textFields = append(m.textFields, field)
		}
	}

	if err := t.im.Validate(); err != nil {
		return nil, fmt.Errorf("bleve rejected mapping: %w", err)
	}
	return m, nil
}

func (t *translator) charFilter(name string) error {
	def, _ := t.doc.Get(document.CharFilters, name)
	c, ok := def.(document.Component)
	if !ok {
		return fmt.Errorf("char_filter %q: unexpected definition %T", name, def)
	}
	typ, ok := builtinCharFilters[c.Type]
	if !ok {
		return fmt.Errorf("char_filter %q of type %q: %w", name, c.Type, ErrUnsupported)
	}
	if err := t.im.AddCustomCharFilter(name, map[string]interface{}{"type": typ}); err != nil {
		return fmt.Errorf("char_filter %q: %w", name, err)
	}
	return nil
}

func (t *translator) tokenizer(name string) error {
	def, _ := t.doc.Get(document.Tokenizers, name)
	c, ok := def.(document.Component)
	if !ok {
		return fmt.Errorf("tokenizer %q: unexpected definition %T", name, def)
	}
	typ, ok := builtinTokenizers[c.Type]
	if !ok {
		return fmt.Errorf("tokenizer %q of type %q: %w", name, c.Type, ErrUnsupported)
	}
	// Tokenizers are declared by type; bleve's unicode, whitespace and
	// single tokenizers take no settings.
	if err := t.im.AddCustomTokenizer(name, map[string]interface{}{"type": typ}); err != nil {
		return fmt.Errorf("tokenizer %q: %w", name, err)
	}
	return nil
}

func (t *translator) tokenFilter(name string) error {
	def, _ := t.doc.Get(document.TokenFilters, name)
	c, ok := def.(document.Component)
	if !ok {
		return fmt.Errorf("filter %q: unexpected definition %T", name, def)
	}
	return t.defineFilter(name, c)
}

func (t *translator) defineFilter(name string, c document.Component) error {
	config, err := filterConfig(c)
	if err != nil {
		return fmt.Errorf("filter %q: %w", name, err)
	}
	if err := t.im.AddCustomTokenFilter(name, config); err != nil {
		return fmt.Errorf("filter %q: %w", name, err)
	}
	t.defined[name] = true
	return nil
}

// filterConfig converts request filter settings to bleve's names and types.
func filterConfig(c document.Component) (map[string]interface{}, error) {
	switch c.Type {
	case document.FilterEdgeNGram, "edgeNGram":
		lo, hi, err := gramRange(c)
		if err != nil {
			return nil, err
		}
		side, _ := c.Param("side")
		return map[string]interface{}{"type": edgengram.Name, "min": lo, "max": hi, "back": side == "back"}, nil
	case document.FilterNGram, "nGram":
		lo, hi, err := gramRange(c)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"type": ngram.Name, "min": lo, "max": hi}, nil
	case document.FilterLength:
		config := map[string]interface{}{"type": length.Name}
		for _, k := range []string{"min", "max"} {
			if v, ok := c.Param(k); ok {
				f, err := toFloat(v)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", k, err)
				}
				config[k] = f
			}
		}
		return config, nil
	}
	if typ, ok := builtinFilters[c.Type]; ok {
		return map[string]interface{}{"type": typ}, nil
	}
	return nil, fmt.Errorf("type %q: %w", c.Type, ErrUnsupported)
}

func gramRange(c document.Component) (float64, float64, error) {
	lo, hi := 1.0, 2.0
	if v, ok := c.Param("min_gram"); ok {
		f, err := toFloat(v)
		if err != nil {
			return 0, 0, fmt.Errorf("min_gram: %w", err)
		}
		lo = f
	}
	if v, ok := c.Param("max_gram"); ok {
		f, err := toFloat(v)
		if err != nil {
			return 0, 0, fmt.Errorf("max_gram: %w", err)
		}
		hi = f
	}
	if lo < 1 || hi < lo {
		return 0, 0, fmt.Errorf("invalid gram range [%v, %v]", lo, hi)
	}
	return lo, hi, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("%v (%T) is not a number", v, v)
}

func (t *translator) tokenizerRef(name string) (string, error) {
	if t.doc.Contains(document.Tokenizers, name) {
		return name, nil
	}
	if b, ok := builtinTokenizers[name]; ok {
		return b, nil
	}
	return "", fmt.Errorf("tokenizer %q: %w", name, ErrUnsupported)
}

func (t *translator) filterRef(name string) (string, error) {
	if t.doc.Contains(document.TokenFilters, name) {
		return name, nil
	}
	if b, ok := builtinFilters[name]; ok {
		return b, nil
	}
	if c, ok := implicitFilters[name]; ok {
		implicit := "indexify_" + name
		if !t.defined[implicit] {
			if err := t.defineFilter(implicit, c); err != nil {
				return "", err
			}
		}
		return implicit, nil
	}
	return "", fmt.Errorf("filter %q: %w", name, ErrUnsupported)
}

func (t *translator) charFilterRef(name string) (string, error) {
	if t.doc.Contains(document.CharFilters, name) {
		return name, nil
	}
	if b, ok := builtinCharFilters[name]; ok {
		return b, nil
	}
	return "", fmt.Errorf("char_filter %q: %w", name, ErrUnsupported)
}

func (t *translator) analyzer(name string) error {
	def, _ := t.doc.Get(document.Analyzers, name)
	var config map[string]interface{}
	switch a := def.(type) {
	case document.CustomAnalyzer:
		c, err := t.customConfig(a)
		if err != nil {
			return fmt.Errorf("analyzer %q: %w", name, err)
		}
		config = c
	case document.Component:
		if a.Type == document.AnalyzerWhitespace {
			c, err := t.customConfig(document.CustomAnalyzer{Tokenizer: document.TokenizerWhitespace})
			if err != nil {
				return err
			}
			config = c
			break
		}
		typ, ok := builtinAnalyzers[a.Type]
		if !ok {
			return fmt.Errorf("analyzer %q of type %q: %w", name, a.Type, ErrUnsupported)
		}
		config = map[string]interface{}{"type": typ}
	default:
		return fmt.Errorf("analyzer %q: unexpected definition %T", name, def)
	}
	if err := t.im.AddCustomAnalyzer(name, config); err != nil {
		return fmt.Errorf("analyzer %q: %w", name, err)
	}
	return nil
}

func (t *translator) customConfig(a document.CustomAnalyzer) (map[string]interface{}, error) {
	tokenizer, err := t.tokenizerRef(a.Tokenizer)
	if err != nil {
		return nil, err
	}
	charFilters := make([]string, 0, len(a.CharFilter))
	for _, cf := range a.CharFilter {
		ref, err := t.charFilterRef(cf)
		if err != nil {
			return nil, err
		}
		charFilters = append(charFilters, ref)
	}
	filters := make([]string, 0, len(a.Filter))
	for _, f := range a.Filter {
		ref, err := t.filterRef(f)
		if err != nil {
			return nil, err
		}
		filters = append(filters, ref)
	}
	config := map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     tokenizer,
		"token_filters": filters,
	}
	if len(charFilters) > 0 {
		config["char_filters"] = charFilters
	}
	return config, nil
}

func (t *translator) analyzerRef(name string) (string, error) {
	if t.doc.Contains(document.Analyzers, name) {
		return name, nil
	}
	if b, ok := builtinAnalyzers[name]; ok {
		return b, nil
	}
	if name == document.AnalyzerWhitespace {
		const implicit = "indexify_whitespace"
		if !t.defined[implicit] {
			config, err := t.customConfig(document.CustomAnalyzer{Tokenizer: document.TokenizerWhitespace})
			if err != nil {
				return "", err
			}
			if err := t.im.AddCustomAnalyzer(implicit, config); err != nil {
				return "", err
			}
			t.defined[implicit] = true
		}
		return implicit, nil
	}
	return "", fmt.Errorf("analyzer %q: %w", name, ErrUnsupported)
}

// property maps one field and reports whether it is a text field.
func (t *translator) property(field string) (bool, error) {
	def, _ := t.doc.Get(document.Properties, field)
	p, ok := def.(document.Property)
	if !ok {
		return false, fmt.Errorf("property %q: unexpected definition %T", field, def)
	}

	var fm *mapping.FieldMapping
	switch p.Type {
	case "text":
		fm = bleve.NewTextFieldMapping()
		if p.Analyzer != "" {
			ref, err := t.analyzerRef(p.Analyzer)
			if err != nil {
				return false, fmt.Errorf("property %q: %w", field, err)
			}
			fm.Analyzer = ref
		}
	case "keyword":
		fm = bleve.NewKeywordFieldMapping()
	case "long", "integer", "short", "byte", "double", "float":
		fm = bleve.NewNumericFieldMapping()
	case "boolean":
		fm = bleve.NewBooleanFieldMapping()
	case "date":
		fm = bleve.NewDateTimeFieldMapping()
	default:
		return false, fmt.Errorf("property %q of type %q: %w", field, p.Type, ErrUnsupported)
	}
	if p.SearchAnalyzer != "" && p.SearchAnalyzer != p.Analyzer {
		t.logger.Debug("bleve_search_analyzer_ignored",
			slog.String("field", field),
			slog.String("search_analyzer", p.SearchAnalyzer))
	}
	t.im.DefaultMapping.AddFieldMappingsAt(field, fm)
	return p.Type == "text", nil
}
