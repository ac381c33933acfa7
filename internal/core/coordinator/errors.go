package coordinator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIndex reports an index outside the mirror's current shape.
	ErrInvalidIndex = errors.New("invalid index")

	// ErrEmptyDiff reports a diff with no deletions, insertions or modifications.
	ErrEmptyDiff = errors.New("empty diff")

	// ErrReentrantBatch reports a batch or mutation started while another batch
	// is being built or submitted on the same coordinator.
	ErrReentrantBatch = errors.New("reentrant batch")

	// ErrCrossSectionMove reports a row move between two sections. It wraps
	// ErrInvalidIndex.
	ErrCrossSectionMove = fmt.Errorf("%w: cross-section move unsupported", ErrInvalidIndex)
)

// IsProgrammingError reports whether err is one of the coordinator's
// programming-error classes.
func IsProgrammingError(err error) bool {
	return errors.Is(err, ErrInvalidIndex) ||
		errors.Is(err, ErrEmptyDiff) ||
		errors.Is(err, ErrReentrantBatch)
}
