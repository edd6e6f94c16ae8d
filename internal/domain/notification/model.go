// Package notification hands tasks to staff and tracks them until resolved.
package notification

// Table is the notifications table name.
const Table = "notifications"

// Notification is one task assigned to one employee.
type Notification struct {
	ID         *int64 `db:"id" json:"id,omitempty"`
	Details    string `db:"details" json:"details"`
	AssignedTo string `db:"assigned_to" json:"assigned_to"`
	Resolved   string `db:"resolved" json:"resolved"`
}

// CreateInput raises one notification per assignee.
type CreateInput struct {
	Details    string   `json:"details" validate:"required,max=150"`
	AssignedTo []string `json:"assigned_to" validate:"required,min=1,dive,required,max=50"`
}
