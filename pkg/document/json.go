package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// orderedObject is a JSON object that keeps member order.
type orderedObject struct {
	keys   []string
	values []any
}

func (o *orderedObject) set(key string, value any) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, value)
}

func (o *orderedObject) empty() bool {
	return len(o.keys) == 0
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Document) namespaceObject(ns Namespace) *orderedObject {
	obj := &orderedObject{}
	for _, key := range d.Keys(ns) {
		def, _ := d.Get(ns, key)
		obj.set(key, def)
	}
	return obj
}

// MarshalJSON renders the document as a create-index request body. Keys
// appear in insertion order; empty sections are omitted.
func (d *Document) MarshalJSON() ([]byte, error) {
	analysis := &orderedObject{}
	for _, ns := range []Namespace{CharFilters, Tokenizers, TokenFilters, Analyzers} {
		if obj := d.namespaceObject(ns); !obj.empty() {
			analysis.set(string(ns), obj)
		}
	}

	settings := &orderedObject{}
	if obj := d.namespaceObject(IndexSettings); !obj.empty() {
		settings.set(string(IndexSettings), obj)
	}
	if !analysis.empty() {
		settings.set("analysis", analysis)
	}

	root := &orderedObject{}
	if !settings.empty() {
		root.set("settings", settings)
	}
	if obj := d.namespaceObject(Properties); !obj.empty() {
		mappings := &orderedObject{}
		mappings.set(string(Properties), obj)
		root.set("mappings", mappings)
	}
	return json.Marshal(root)
}

type requestJSON struct {
	Settings struct {
		Index    map[string]json.RawMessage `json:"index"`
		Analysis struct {
			Analyzer   map[string]json.RawMessage `json:"analyzer"`
			Tokenizer  map[string]Component       `json:"tokenizer"`
			Filter     map[string]Component       `json:"filter"`
			CharFilter map[string]Component       `json:"char_filter"`
		} `json:"analysis"`
	} `json:"settings"`
	Mappings struct {
		Properties map[string]Property `json:"properties"`
	} `json:"mappings"`
}

// UnmarshalJSON replaces the document contents with a parsed request body.
// Members of each section are inserted in lexical key order, since JSON
// objects carry no order guarantee.
func (d *Document) UnmarshalJSON(data []byte) error {
	var req requestJSON
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}

	fresh := New()
	for _, key := range sortedKeys(req.Settings.Index) {
		var v any
		if err := json.Unmarshal(req.Settings.Index[key], &v); err != nil {
			return fmt.Errorf("settings.index.%s: %w", key, err)
		}
		if err := fresh.Insert(IndexSettings, key, v); err != nil {
			return err
		}
	}
	if err := insertAll(fresh, CharFilters, req.Settings.Analysis.CharFilter); err != nil {
		return err
	}
	if err := insertAll(fresh, Tokenizers, req.Settings.Analysis.Tokenizer); err != nil {
		return err
	}
	if err := insertAll(fresh, TokenFilters, req.Settings.Analysis.Filter); err != nil {
		return err
	}
	for _, key := range sortedKeys(req.Settings.Analysis.Analyzer) {
		def, err := decodeAnalyzer(req.Settings.Analysis.Analyzer[key])
		if err != nil {
			return fmt.Errorf("settings.analysis.analyzer.%s: %w", key, err)
		}
		if err := fresh.Insert(Analyzers, key, def); err != nil {
			return err
		}
	}
	if err := insertAll(fresh, Properties, req.Mappings.Properties); err != nil {
		return err
	}

	d.tables = fresh.tables
	return nil
}

func decodeAnalyzer(raw json.RawMessage) (Definition, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if probe.Type == "" || probe.Type == CustomType {
		var a CustomAnalyzer
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		return a, nil
	}
	var c Component
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return c, nil
}

func insertAll[V any](d *Document, ns Namespace, m map[string]V) error {
	for _, key := range sortedKeys(m) {
		if err := d.Insert(ns, key, m[key]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
