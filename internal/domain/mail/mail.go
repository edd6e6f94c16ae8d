// Package mail defines outgoing messages and the sender collaborator.
package mail

import (
	"context"
	"net/mail"
	"strings"

	"servicecenter/internal/core/apperror"
)

// Recipient is a named address.
type Recipient struct {
	Name  string `json:"name" form:"name" binding:"required"`
	Email string `json:"email" form:"email" binding:"required,email"`
}

// Address renders the recipient as an RFC 5322 address.
func (r Recipient) Address() string {
	return (&mail.Address{Name: r.Name, Address: r.Email}).String()
}

// Message is an HTML e-mail.
type Message struct {
	Subject string      `json:"subject"`
	To      []Recipient `json:"to"`
	HTML    string      `json:"html"`
}

// Validate checks the message can be sent.
func (m Message) Validate() error {
	if strings.TrimSpace(m.Subject) == "" {
		return apperror.NewValidation("mail subject is required")
	}
	if len(m.To) == 0 {
		return apperror.NewValidation("mail has no recipients")
	}
	for _, r := range m.To {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return apperror.NewValidation("invalid recipient address").WithDetail("email", r.Email)
		}
	}
	return nil
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
