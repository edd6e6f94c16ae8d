// Package employee keeps the staff register. Admins and users also get a login account.
package employee

import (
	"time"

	appctx "servicecenter/internal/core/context"
)

// Table is the employees table name.
const Table = "employees"

// RoleOrder is the listing order of roles.
var RoleOrder = []string{appctx.RoleAdmin, appctx.RoleUser, appctx.RoleTechnician}

// Employee is one staff member.
type Employee struct {
	ID          *int64     `db:"id" json:"id,omitempty"`
	Name        string     `db:"name" json:"name"`
	DOB         time.Time  `db:"dob" json:"dob"`
	PhoneNumber string     `db:"phone_number" json:"phone_number"`
	Address     string     `db:"address" json:"address"`
	Email       *string    `db:"email" json:"email,omitempty"`
	Aadhar      *string    `db:"aadhar" json:"aadhar,omitempty"`
	PAN         *string    `db:"pan" json:"pan,omitempty"`
	UAN         *string    `db:"uan" json:"uan,omitempty"`
	PFNumber    *string    `db:"pf_number" json:"pf_number,omitempty"`
	JoiningDate time.Time  `db:"joining_date" json:"joining_date"`
	LeavingDate *time.Time `db:"leaving_date" json:"leaving_date,omitempty"`
	Role        string     `db:"role" json:"role"`
	IsActive    string     `db:"is_active" json:"is_active"`
}

// HasLogin reports whether the role comes with a login account.
func HasLogin(role string) bool {
	return role == appctx.RoleAdmin || role == appctx.RoleUser
}

// CreateInput registers an employee. Password is required for roles with a login.
type CreateInput struct {
	Name        string    `json:"name" validate:"required,min=3,max=30"`
	DOB         time.Time `json:"dob" validate:"required"`
	PhoneNumber string    `json:"phone_number" validate:"required,len=10,number"`
	Address     string    `json:"address" validate:"required,min=5"`
	Email       *string   `json:"email" validate:"omitempty,max=35,email"`
	Aadhar      *string   `json:"aadhar" validate:"omitempty,len=12,number"`
	PAN         *string   `json:"pan" validate:"omitempty,pan"`
	UAN         *string   `json:"uan" validate:"omitempty,max=20"`
	PFNumber    *string   `json:"pf_number" validate:"omitempty,max=20"`
	JoiningDate time.Time `json:"joining_date" validate:"required"`
	Role        string    `json:"role" validate:"omitempty,oneof=ADMIN USER TECHNICIAN"`
	Password    string    `json:"password" validate:"omitempty,max=72"`
}

// LeaveInput records an employee leaving.
type LeaveInput struct {
	Name        string    `json:"name" validate:"required"`
	LeavingDate time.Time `json:"leaving_date" validate:"required"`
}

// Summary is the listing projection.
type Summary struct {
	Name        string `db:"name" json:"name"`
	Role        string `db:"role" json:"role"`
	PhoneNumber string `db:"phone_number" json:"phone_number"`
}
