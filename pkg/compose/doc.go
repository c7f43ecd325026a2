// Package compose assembles a create-index request out of independently
// authored contributors.
//
// Each Contributor carries an ordering key, a predicate evaluated against
// the request built so far, and a build step yielding named Fragments. The
// Engine sorts contributors by Order (stable, so ties keep input order),
// walks them once left to right, skips those whose predicate is false, and
// merges every Fragment into the caller's document. Because predicates see
// the document as it stands when their contributor is reached, a later
// contributor can depend on something an earlier one added.
//
// Keys are never overwritten. If a contributor yields a key that already
// exists in its namespace, Compose stops with a *DuplicateContributionError.
// Fragments are checked before any is written, so for collisions and for
// fragments no document could hold (unknown namespace, blank key) merging is
// atomic per contributor: the document then holds exactly what the
// contributors before the offending one merged, and nothing from it. A
// Target whose Insert fails for its own reasons may keep the fragments it
// accepted before failing.
//
// Usage:
//
//	doc := document.New()
//	err := compose.Compose(doc, []compose.Contributor{
//	    contributors.MustTokenFilter("edge_ngram", edgeNGram, 0),
//	    contributors.MustAutocompleteAnalyzer("autocomplete", "edge_ngram", 10),
//	})
package compose
