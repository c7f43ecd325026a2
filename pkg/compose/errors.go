package compose

import (
	"errors"
	"fmt"

	"github.com/Aman-CERP/indexify/pkg/document"
)

// ErrDuplicateContribution matches any *DuplicateContributionError via errors.Is.
var ErrDuplicateContribution = errors.New("duplicate contribution")

// ErrNilContributor is returned when the contributor set contains nil.
var ErrNilContributor = errors.New("nil contributor")

// DuplicateContributionError reports two contributions of the same key to
// the same namespace within one composition run.
type DuplicateContributionError struct {
	Namespace document.Namespace
	Key       string
	// Position is the index, in sorted order, of the contributor whose
	// fragment collided.
	Position int
	// Contributor is the contributor whose fragment collided.
	Contributor Contributor
}

// Error implements the error interface.
func (e *DuplicateContributionError) Error() string {
	return fmt.Sprintf("duplicate contribution: %s/%s (contributor #%d, %T)",
		e.Namespace, e.Key, e.Position, e.Contributor)
}

// Is lets errors.Is match ErrDuplicateContribution.
func (e *DuplicateContributionError) Is(target error) bool {
	return target == ErrDuplicateContribution
}
