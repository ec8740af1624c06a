// Package relay implements the contact endpoint that forwards submissions by email.
package relay

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Zachkp/contact-relay/internal/audit"
	"github.com/Zachkp/contact-relay/internal/contact"
	"github.com/Zachkp/contact-relay/internal/logger"
	"github.com/Zachkp/contact-relay/internal/mailer"
	"github.com/Zachkp/contact-relay/internal/metrics"
)

// Path is the fixed route of the contact endpoint.
const Path = "/api/contact"

// DefaultMaxBodyBytes caps request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// Response messages.
const (
	MessageSent        = "Message sent successfully"
	MessageSendFailed  = "Error sending message"
	MessageInvalidBody = "Invalid request body"
)

// Response is the JSON body of every answer.
type Response struct {
	Message string `json:"message"`
}

// Recorder stores delivery attempts.
type Recorder interface {
	Record(ctx context.Context, a audit.Attempt) error
}

// Handler relays submissions to the configured account.
// It holds no per-request state and is safe for concurrent use.
type Handler struct {
	sender       mailer.Sender
	account      string
	recorder     Recorder
	maxBodyBytes int64
	logger       *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithRecorder records every delivery attempt to r.
func WithRecorder(r Recorder) Option {
	return func(h *Handler) {
		h.recorder = r
	}
}

// WithMaxBodyBytes caps the request body size. Non-positive values keep the default.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// New creates a Handler that sends through sender, from and to account.
func New(sender mailer.Sender, account string, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		sender:       sender,
		account:      account,
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the handler on r.
func (h *Handler) Register(r gin.IRoutes) {
	r.POST(Path, h.Submit)
}

// Submit handles POST /api/contact.
func (h *Handler) Submit(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithRequestID(ctx, h.logger)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	var sub contact.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		log.Warn("invalid contact request body", zap.Error(err))
		metrics.RecordSubmission(metrics.OutcomeInvalid)
		c.JSON(http.StatusBadRequest, Response{Message: MessageInvalidBody})
		return
	}

	start := time.Now()
	err := h.sender.Send(ctx, sub.ToEmail(h.account))
	elapsed := time.Since(start)

	outcome := metrics.OutcomeSent
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	metrics.RecordSubmission(outcome)
	metrics.RecordSMTPSend(outcome, elapsed)
	h.record(c, log, outcome, elapsed)

	if err != nil {
		log.Error("Error sending email", zap.Error(err), zap.Duration("elapsed", elapsed))
		c.JSON(http.StatusInternalServerError, Response{Message: MessageSendFailed})
		return
	}

	log.Info("contact message relayed", zap.Duration("elapsed", elapsed))
	c.JSON(http.StatusOK, Response{Message: MessageSent})
}

// record writes the attempt to the audit log. Clients sending DNT: 1 are not
// identified. Failures are logged and never change the response.
func (h *Handler) record(c *gin.Context, log *zap.Logger, outcome string, elapsed time.Duration) {
	if h.recorder == nil {
		return
	}

	a := audit.Attempt{
		UserAgent: c.GetHeader("User-Agent"),
		Outcome:   outcome,
		Duration:  elapsed,
	}
	if c.GetHeader("DNT") != "1" {
		a.ClientIP = c.ClientIP()
	}

	if err := h.recorder.Record(c.Request.Context(), a); err != nil {
		log.Warn("failed to record delivery attempt", zap.Error(err))
	}
}
