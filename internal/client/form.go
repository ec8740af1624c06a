package client

import (
	"context"
	"errors"
	"sync"

	"github.com/Zachkp/contact-relay/internal/contact"
)

// ErrSubmitInProgress is returned when Submit is called while a previous
// submit of the same form has not finished.
var ErrSubmitInProgress = errors.New("client: submission already in progress")

// NoticeKind distinguishes success and failure notices.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota + 1
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	default:
		return "unknown"
	}
}

// Notice texts.
const (
	NoticeSentText   = "Message sent successfully!"
	NoticeFailedText = "Error sending message"
)

// Notice is the transient message shown after a submit.
type Notice struct {
	Kind NoticeKind
	Text string
}

// Form is one contact form instance with its bound field values.
type Form struct {
	Name    string
	Email   string
	Message string

	client *Client

	mu         sync.Mutex
	submitting bool
}

// NewForm creates an empty form that submits through c.
func NewForm(c *Client) *Form {
	return &Form{client: c}
}

// Submitting reports whether a request is in flight.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Reset clears all fields.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Form) reset() {
	f.Name, f.Email, f.Message = "", "", ""
}

// Submit sends the current field values.
//
// Missing fields return contact.ErrMissingFields and no request is made.
// On success the fields are cleared; on failure they are kept so the user can
// submit again. The returned Notice is zero only when no request was made.
func (f *Form) Submit(ctx context.Context) (Notice, error) {
	f.mu.Lock()
	sub := contact.Submission{Name: f.Name, Email: f.Email, Message: f.Message}
	if err := sub.Validate(); err != nil {
		f.mu.Unlock()
		return Notice{}, err
	}
	if f.submitting {
		f.mu.Unlock()
		return Notice{}, ErrSubmitInProgress
	}
	f.submitting = true
	f.mu.Unlock()

	err := f.client.Send(ctx, sub)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	if err != nil {
		return Notice{Kind: NoticeError, Text: NoticeFailedText}, err
	}
	f.reset()
	return Notice{Kind: NoticeSuccess, Text: NoticeSentText}, nil
}
