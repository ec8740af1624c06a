package mailer

import (
	"context"
	"strings"
)

// Sender delivers a single, fully prepared email.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Email is a plain-text message with one sender and one recipient.
type Email struct {
	From    string
	To      string
	ReplyTo string // Optional; left out of the message when empty.
	Subject string
	Text    string
}

// Validate checks that the email can be handed to a transport.
// Header values must not contain line breaks.
func (e *Email) Validate() error {
	if e.To == "" {
		return ErrNoRecipient
	}
	if e.From == "" {
		return ErrNoSender
	}
	for _, v := range []string{e.From, e.To, e.ReplyTo, e.Subject} {
		if strings.ContainsAny(v, "\r\n") {
			return ErrInvalidHeader
		}
	}
	return nil
}
