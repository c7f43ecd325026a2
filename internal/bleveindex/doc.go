// Package bleveindex checks a composed create-index request against a real
// search engine by translating it into a bleve index mapping.
//
// Translation maps the request's analysis vocabulary onto bleve's
// registered components (lowercase becomes to_lower, standard becomes the
// unicode tokenizer, and so on), re-declares every custom component through
// AddCustomCharFilter, AddCustomTokenizer, AddCustomTokenFilter and
// AddCustomAnalyzer, and maps field properties onto the default document
// mapping. Bleve then validates every name and reference on its own. The
// resulting Mapping can analyze sample text with any composed analyzer.
package bleveindex
