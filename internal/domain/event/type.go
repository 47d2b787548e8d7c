package event

// Type identifies the type of domain event
type Type string

const (
	TypeReceiptUploaded Type = "bill.receipt_uploaded"
	TypeBillSubmitted   Type = "bill.submitted"
	TypeBillAccepted    Type = "bill.accepted"
	TypeBillRefused     Type = "bill.refused"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeReceiptUploaded,
		TypeBillSubmitted,
		TypeBillAccepted,
		TypeBillRefused:
		return true
	default:
		return false
	}
}
