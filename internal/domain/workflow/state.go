package workflow

// State represents a position in one of the bill lifecycles
type State string

// Draft submission lifecycle, one machine per open submission form.
const (
	StateEmpty        State = "EMPTY"
	StateFileSelected State = "FILE_SELECTED"
	StateFileUploaded State = "FILE_UPLOADED"
	StateSubmitted    State = "SUBMITTED"
)

// Persisted bill adjudication lifecycle.
const (
	StatePending  State = "PENDING"
	StateAccepted State = "ACCEPTED"
	StateRefused  State = "REFUSED"
)

var validStates = map[State]bool{
	StateEmpty:        true,
	StateFileSelected: true,
	StateFileUploaded: true,
	StateSubmitted:    true,
	StatePending:      true,
	StateAccepted:     true,
	StateRefused:      true,
}

var terminalStates = map[State]bool{
	StateSubmitted: true,
	StateAccepted:  true,
	StateRefused:   true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state belongs to a known lifecycle
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
