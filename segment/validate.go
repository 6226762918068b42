package segment

import (
	"errors"
	"fmt"
)

// ErrNoQuestions is returned for a document in which no label was found.
var ErrNoQuestions = errors.New("no questions found")

// OrderError reports the first anchor that breaks the numbering.
type OrderError struct {
	Prior     Anchor
	Offending Anchor
	// Index is the position of Offending in the validated list.
	Index int
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("question %q (base %d) on page %d follows %q (base %d): numbering must repeat or advance by one",
		e.Offending.RawLabel, e.Offending.BaseNumber, e.Offending.PageIndex,
		e.Prior.RawLabel, e.Prior.BaseNumber)
}

// Validate checks that anchors are non-empty and that every base number
// repeats or advances by exactly one over its predecessor.
func Validate(anchors []Anchor) error {
	if len(anchors) == 0 {
		return ErrNoQuestions
	}
	prior := anchors[0]
	for i, a := range anchors[1:] {
		if a.BaseNumber != prior.BaseNumber && a.BaseNumber != prior.BaseNumber+1 {
			return &OrderError{Prior: prior, Offending: a, Index: i + 1}
		}
		prior = a
	}
	return nil
}

// Valid is Validate as a predicate.
func Valid(anchors []Anchor) bool {
	return Validate(anchors) == nil
}
