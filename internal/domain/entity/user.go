package entity

// UserType distinguishes the two application roles
type UserType string

const (
	UserTypeEmployee UserType = "Employee"
	UserTypeAdmin    UserType = "Admin"
)

// User is the session identity injected into each workflow instance.
// Workflows never read ambient session state; the user is fixed at construction.
type User struct {
	Email string   `json:"email"`
	Type  UserType `json:"type"`
}

// IsAdmin returns true if the user may adjudicate bills
func (u User) IsAdmin() bool {
	return u.Type == UserTypeAdmin
}
