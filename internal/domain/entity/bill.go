package entity

// Status is the adjudication status of a bill
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// IsTerminal returns true once an administrator has adjudicated the bill
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRefused
}

// IsValid returns true if the status is one of the known lifecycle values
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	}
	return false
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// ExpenseTypes is the closed list of expense categories offered to employees.
// Membership is not enforced beyond what the submission form presents.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// Bill represents one expense-reimbursement record submitted by an employee.
// ID is assigned by the store on creation and is empty for an unpersisted draft.
// FileURL and FileName stay empty until the receipt upload completes.
type Bill struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	VAT          float64 `json:"vat"`
	Pct          int     `json:"pct"`
	Date         string  `json:"date"`
	Commentary   string  `json:"commentary"`
	CommentAdmin string  `json:"commentAdmin,omitempty"`
	FileURL      string  `json:"fileUrl"`
	FileName     string  `json:"fileName"`
	Status       Status  `json:"status"`
}

// HasReceipt reports whether the receipt upload has completed for this bill
func (b *Bill) HasReceipt() bool {
	return b.FileURL != "" && b.FileName != ""
}
