package workflow

import "context"

// StateMachine tracks a current state and validates transitions against the
// configuration it was built with.
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state
	PermittedTriggers() []Trigger
}

// NewDraftMachine builds the submission-form lifecycle. Re-selecting a file
// is permitted until the form is submitted; each re-selection supersedes the
// previous upload. SUBMITTED is terminal.
func NewDraftMachine() StateMachine {
	b := NewBuilder()
	b.Configure(StateEmpty).
		Permit(TriggerSelectFile, StateFileSelected)
	b.Configure(StateFileSelected).
		Permit(TriggerSelectFile, StateFileSelected).
		Permit(TriggerUploadComplete, StateFileUploaded)
	b.Configure(StateFileUploaded).
		Permit(TriggerSelectFile, StateFileSelected).
		Permit(TriggerSubmit, StateSubmitted)
	return b.Build(StateEmpty)
}

// NewAdjudicationMachine builds the persisted-bill lifecycle starting from the
// given state. Accept and refuse are each guarded; a terminal state permits
// nothing, so a bill is adjudicated exactly once.
func NewAdjudicationMachine(initial State, guard GuardFunc) StateMachine {
	b := NewBuilder()
	b.Configure(StatePending).
		PermitIf(TriggerAccept, StateAccepted, guard).
		PermitIf(TriggerRefuse, StateRefused, guard)
	return b.Build(initial)
}
