package bleveindex

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
)

// Token is one analyzer output token.
type Token struct {
	Term     string `json:"term"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Position int    `json:"position"`
}

// Analyze runs text through the named analyzer. Names are those of the
// request; bleve's own analyzer names work too.
func (m *Mapping) Analyze(analyzer, text string) ([]Token, error) {
	stream, err := m.impl.AnalyzeText(analyzer, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("analyze with %q: %w", analyzer, err)
	}
	tokens := make([]Token, 0, len(stream))
	for _, tok := range stream {
		tokens = append(tokens, Token{
			Term:     string(tok.Term),
			Start:    tok.Start,
			End:      tok.End,
			Position: tok.Position,
		})
	}
	return tokens, nil
}

// ProbeResult is the outcome of searching one text field.
type ProbeResult struct {
	Field string `json:"field"`
	Hits  uint64 `json:"hits"`
}

// Probe opens an in-memory bleve index with the mapping, indexes one
// document whose text fields all hold text, and runs query as a match
// query against each text field.
func (m *Mapping) Probe(text, query string) ([]ProbeResult, error) {
	idx, err := bleve.NewMemOnly(m.impl)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory index: %w", err)
	}
	defer func() { _ = idx.Close() }()

	doc := make(map[string]interface{}, len(m.textFields))
	for _, f := range m.textFields {
		doc[f] = text
	}
	if err := idx.Index("probe", doc); err != nil {
		return nil, fmt.Errorf("failed to index probe document: %w", err)
	}

	results := make([]ProbeResult, 0, len(m.textFields))
	for _, f := range m.textFields {
		q := bleve.NewMatchQuery(query)
		q.SetField(f)
		res, err := idx.Search(bleve.NewSearchRequest(q))
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", f, err)
		}
		results = append(results, ProbeResult{Field: f, Hits: res.Total})
	}
	return results, nil
}
