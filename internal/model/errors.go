package model

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidUnit indicates an unrecognized length unit.
	ErrInvalidUnit = errors.New("invalid unit")

	// ErrDegenerateItem indicates an item weight of zero or less.
	ErrDegenerateItem = errors.New("degenerate item")

	// ErrNoFeasibleBox indicates no arrangement fits the container at any count.
	ErrNoFeasibleBox = errors.New("no feasible box")

	// ErrNoFeasibleFamily indicates a profile cannot use any shared footprint.
	ErrNoFeasibleFamily = errors.New("no feasible family")

	// ErrSearchBudget indicates the search stopped at its evaluation or time cap.
	ErrSearchBudget = errors.New("search budget exhausted")

	// ErrInvalidLimits indicates non-positive container or pallet limits.
	ErrInvalidLimits = errors.New("invalid limits")
)

// NoFeasibleBoxError reports an unpackable profile. Oversize, when set, is the
// best arrangement found when the length limit is ignored.
type NoFeasibleBoxError struct {
	Reason   error
	Oversize *BoxCandidate
}

func (e *NoFeasibleBoxError) Error() string {
	if e.Reason != nil && !errors.Is(e.Reason, ErrNoFeasibleBox) {
		return fmt.Sprintf("%v: %v", ErrNoFeasibleBox, e.Reason)
	}
	if e.Reason != nil {
		return e.Reason.Error()
	}
	return ErrNoFeasibleBox.Error()
}

func (e *NoFeasibleBoxError) Is(target error) bool {
	return target == ErrNoFeasibleBox
}

func (e *NoFeasibleBoxError) Unwrap() error {
	return e.Reason
}

// ProfileError wraps a failure with the profile and operation it belongs to.
type ProfileError struct {
	Profile string
	Op      string
	Err     error
}

func (e *ProfileError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Profile, e.Err)
}

func (e *ProfileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorKind returns a stable short code for a per-profile failure.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidUnit):
		return "invalid_unit"
	case errors.Is(err, ErrDegenerateItem):
		return "degenerate_item"
	case errors.Is(err, ErrSearchBudget):
		return "search_budget"
	case errors.Is(err, ErrNoFeasibleFamily):
		return "no_feasible_family"
	case errors.Is(err, ErrNoFeasibleBox):
		return "no_feasible_box"
	case errors.Is(err, ErrInvalidLimits):
		return "invalid_limits"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
