package orchestrator

import "fmt"

// State is the last step of an order run that completed.
type State int

const (
	Idle State = iota
	IdentityResolved
	ContentPublished
	PriceQuoted
	NodeSelected
	OrderSubmitted
)

var stateNames = [...]string{
	Idle:             "idle",
	IdentityResolved: "identity_resolved",
	ContentPublished: "content_published",
	PriceQuoted:      "price_quoted",
	NodeSelected:     "node_selected",
	OrderSubmitted:   "order_submitted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// StageError reports a failed run and stands in for a terminal failed
// state. State is the last state reached before the failing step; Err wraps
// the component error and its sentinel.
type StageError struct {
	State State
	Err   error

	// OrphanedCID is set when content was already published. Publishing
	// cannot be undone, so the caller should tell the user about it.
	OrphanedCID string
}

func (e *StageError) Error() string {
	return fmt.Sprintf("order failed after %s: %v", e.State, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
