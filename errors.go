package flowdt

import (
	"errors"
	"fmt"
)

// Error kinds returned by Classifier mutations. Lookups and exact
// finds report absence through a (Rule, bool) result, not an error.
// These are sentinels: callers should compare with errors.Is, since
// returned errors are always wrapped with contextual detail.
var (
	// ErrCapacityExceeded is returned when a root-to-leaf path would
	// exceed the fixed maximum depth. The classifier is left untouched.
	ErrCapacityExceeded = errors.New("flowdt: path depth exceeds maximum")

	// ErrDuplicateRule is reported (not returned as a hard failure) when
	// insert finds an existing rule with an identical (match, priority).
	// The classifier recovers by removing the old rule and inserting the
	// new one.
	ErrDuplicateRule = errors.New("flowdt: rule with identical match and priority already present")

	// ErrRuleNotFound is returned when a remove operation could not
	// locate the requested rule. The classifier is untouched.
	ErrRuleNotFound = errors.New("flowdt: rule not found")

	// ErrMisuse is returned for caller protocol errors (publish without
	// a matching defer, AddRuleLazy after the tree has been built) that
	// do not change classifier state. A nested Defer is only logged as a
	// warning; Defer returns no error.
	ErrMisuse = errors.New("flowdt: misuse")

	// ErrInvariantViolation is returned when an internal consistency
	// check fails (e.g. traversal did not reach a leaf). The classifier
	// remains safe to use but the operation did not complete.
	ErrInvariantViolation = errors.New("flowdt: invariant violation")
)

func errCapacity(detail string) error {
	return fmt.Errorf("%w: %s", ErrCapacityExceeded, detail)
}

func errNotFound(detail string) error {
	return fmt.Errorf("%w: %s", ErrRuleNotFound, detail)
}

func errMisuse(detail string) error {
	return fmt.Errorf("%w: %s", ErrMisuse, detail)
}

func errInvariant(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, detail)
}
