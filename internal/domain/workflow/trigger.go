package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerSelectFile     Trigger = "SELECT_FILE"
	TriggerUploadComplete Trigger = "UPLOAD_COMPLETE"
	TriggerSubmit         Trigger = "SUBMIT"
	TriggerAccept         Trigger = "ACCEPT"
	TriggerRefuse         Trigger = "REFUSE"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
