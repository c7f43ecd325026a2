// Package contributors provides the stock contributors: analysis components,
// custom analyzers (including the autocomplete analyzer), index settings and
// field mappings.
//
// Every contributor validates its parameters in its New constructor and is
// immutable afterwards. Contributors that reference other components apply
// only once those components are resolvable, either as engine builtins or
// as entries already merged into the document.
package contributors
