// Package contact defines the contact-form submission and how it becomes an email.
package contact

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Zachkp/contact-relay/internal/mailer"
)

// Subject is the fixed subject line of every relayed submission.
const Subject = "New Contact Form Submission"

// ErrMissingFields is returned when a submission has an empty field.
var ErrMissingFields = errors.New("contact: name, email and message are required")

// Submission is a single contact-form message. It is never persisted.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate reports whether every field is present. A field of only spaces
// counts as present; no format checks are applied.
func (s Submission) Validate() error {
	if s.Name == "" || s.Email == "" || s.Message == "" {
		return ErrMissingFields
	}
	return nil
}

// Body renders the plain-text email body. Fields are copied verbatim.
func (s Submission) Body() string {
	return fmt.Sprintf("Name: %s\nEmail: %s\nMessage: %s\n", s.Name, s.Email, s.Message)
}

// ToEmail builds the self-addressed email for account.
func (s Submission) ToEmail(account string) *mailer.Email {
	email := &mailer.Email{
		From:    account,
		To:      account,
		Subject: Subject,
		Text:    s.Body(),
	}
	if addr, ok := ReplyAddress(s.Email); ok {
		email.ReplyTo = addr
	}
	return email
}

// ReplyAddress returns the submitter's address in canonical form when it is
// safe to use as a Reply-To header.
func ReplyAddress(raw string) (string, bool) {
	if raw == "" || strings.ContainsAny(raw, "\r\n") {
		return "", false
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", false
	}
	return addr.Address, true
}
