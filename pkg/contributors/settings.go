package contributors

import (
	"iter"

	"github.com/Aman-CERP/indexify/pkg/compose"
	"github.com/Aman-CERP/indexify/pkg/document"
)

// IndexSetting contributes one index-level setting such as number_of_shards.
type IndexSetting struct {
	Ordered
	Always
	key   string
	value any
}

// NewIndexSetting creates an IndexSetting. value should be a JSON scalar.
func NewIndexSetting(key string, value any, order int) (*IndexSetting, error) {
	if key == "" {
		return nil, invalid("index setting key is empty")
	}
	switch value.(type) {
	case string, bool, int, int64, float64:
	default:
		return nil, invalid("index setting %q has non-scalar value %T", key, value)
	}
	return &IndexSetting{Ordered: Ordered{order}, key: key, value: value}, nil
}

// Build implements compose.Contributor.
func (s *IndexSetting) Build() iter.Seq[compose.Fragment] {
	return compose.Fragments(compose.Fragment{Namespace: document.IndexSettings, Key: s.key, Definition: s.value})
}

// FieldMapping contributes a field property once every analyzer it names
// is resolvable.
type FieldMapping struct {
	Ordered
	field string
	prop  document.Property
}

// NewFieldMapping creates a FieldMapping.
func NewFieldMapping(field string, prop document.Property, order int) (*FieldMapping, error) {
	if field == "" {
		return nil, invalid("field name is empty")
	}
	if prop.Type == "" {
		return nil, invalid("field %q has no type", field)
	}
	return &FieldMapping{Ordered: Ordered{order}, field: field, prop: prop}, nil
}

// CanContribute implements compose.Contributor.
func (m *FieldMapping) CanContribute(doc compose.Reader) bool {
	for _, name := range m.prop.Analyzers() {
		if !document.Resolvable(doc, document.Analyzers, name) {
			return false
		}
	}
	return true
}

// Build implements compose.Contributor.
func (m *FieldMapping) Build() iter.Seq[compose.Fragment] {
	return compose.Fragments(compose.Fragment{Namespace: document.Properties, Key: m.field, Definition: m.prop})
}
