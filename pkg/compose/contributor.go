package compose

import (
	"iter"

	"github.com/Aman-CERP/indexify/pkg/document"
)

// Fragment is one named definition destined for a namespace of the document.
type Fragment struct {
	Namespace  document.Namespace
	Key        string
	Definition document.Definition
}

// Reader is the read side of a document, as seen by predicates.
type Reader interface {
	Contains(ns document.Namespace, key string) bool
}

// Target is a document the engine can merge into. Insert must refuse to
// overwrite an existing key.
type Target interface {
	Reader
	Insert(ns document.Namespace, key string, def document.Definition) error
}

// Contributor conditionally contributes fragments to a document.
//
// Implementations must be immutable after construction so one instance can
// serve any number of composition runs, including concurrent runs against
// distinct documents.
type Contributor interface {
	// Order is the sort key; lower runs earlier.
	Order() int

	// CanContribute reports whether the contributor applies to the document
	// in its current state. It must not mutate doc.
	CanContribute(doc Reader) bool

	// Build yields the contributor's fragments. The sequence must be
	// restartable and deterministic for fixed construction parameters.
	Build() iter.Seq[Fragment]
}

// Fragments is a convenience for building a restartable sequence from a
// fixed list.
func Fragments(fragments ...Fragment) iter.Seq[Fragment] {
	return func(yield func(Fragment) bool) {
		for _, f := range fragments {
			if !yield(f) {
				return
			}
		}
	}
}
