package domain

import (
	"encoding/json"
	"errors"
)

// Invocation states. Every metered call walks
// idle → validating → (insufficient-credits | invalid-payload | requesting)
// → (success | failure) → idle.
const (
	StateIdle                = "idle"
	StateValidating          = "validating"
	StateInsufficientCredits = "insufficient-credits"
	StateInvalidPayload      = "invalid-payload"
	StateRequesting          = "requesting"
	StateSuccess             = "success"
	StateFailure             = "failure"
)

var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrToolBusy            = errors.New("tool invocation already in flight")
	ErrUnknownTool         = errors.New("unknown tool")
	ErrNotAuthenticated    = errors.New("authenticated user required")
)

// Account is the caller's credit standing. Unlimited accounts skip the
// balance check entirely.
type Account struct {
	UID       string
	Unlimited bool
}

// Result is what one invocation hands back to the UI.
type Result struct {
	Tool       string          `json:"tool"`
	State      string          `json:"state"`
	Report     json.RawMessage `json:"report,omitempty"`
	CreatedIDs []string        `json:"created_ids,omitempty"`
	Balance    *int            `json:"balance,omitempty"`
}
