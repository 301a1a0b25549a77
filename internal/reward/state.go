// Package reward gates a one-time reading reward behind completion.
package reward

import (
	"errors"
	"fmt"
)

// State is the claim state of a single subject.
type State int

const (
	// NotEligible means reading is not complete yet.
	NotEligible State = iota
	// Eligible means the reward can be claimed.
	Eligible
	// Claiming means a claim call is in flight.
	Claiming
	// Claimed is terminal.
	Claimed
)

func (s State) String() string {
	switch s {
	case NotEligible:
		return "not-eligible"
	case Eligible:
		return "eligible"
	case Claiming:
		return "claiming"
	case Claimed:
		return "claimed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrNotClaimable is returned when a claim is attempted outside Eligible.
	ErrNotClaimable = errors.New("reward is not claimable")
	// ErrNoClaimInFlight is returned by Finish outside Claiming.
	ErrNoClaimInFlight = errors.New("no claim in flight")
	// ErrClaimRejected is wrapped when the claimer reports Success=false.
	ErrClaimRejected = errors.New("claim was rejected")
)

// ClaimError reports a failed claim. The model is back in Eligible when
// it is returned.
type ClaimError struct {
	SubjectID string
	Err       error
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("failed to claim reward for %s: %v", e.SubjectID, e.Err)
}

func (e *ClaimError) Unwrap() error {
	return e.Err
}
