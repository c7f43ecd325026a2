// Package document models the create-index request that contributors are
// composed into.
//
// A Document is a set of namespaces (analyzers, token filters, tokenizers,
// char filters, index settings, field properties), each holding an
// insertion-ordered table of key → definition. Keys are unique within a
// namespace: Insert refuses to overwrite and returns ErrKeyExists instead.
//
// The zero value is an empty document ready for use. A Document is not safe
// for concurrent mutation; give each composition run its own instance.
package document
