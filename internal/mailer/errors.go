package mailer

import "errors"

var (
	// ErrNotConfigured is returned when no SMTP host is configured.
	ErrNotConfigured = errors.New("mailer: smtp host not configured")

	// ErrNoRecipient indicates the email has no recipient.
	ErrNoRecipient = errors.New("mailer: email must have a recipient")

	// ErrNoSender indicates the email has no From address.
	ErrNoSender = errors.New("mailer: email must have a sender")

	// ErrInvalidHeader indicates a header value contains a line break.
	ErrInvalidHeader = errors.New("mailer: header value contains a line break")
)
