package mailer

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"gopkg.in/mail.v2"
)

// DefaultTimeout bounds a whole SMTP session when SMTPConfig.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// SMTPConfig holds the connection parameters of the outbound mail account.
type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Addr returns the host:port pair of the SMTP server.
func (c SMTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SMTPSender sends email over SMTP, one session per message.
type SMTPSender struct {
	cfg  SMTPConfig
	send func(d *mail.Dialer, m *mail.Message) error
}

// NewSMTPSender creates a sender for the given account.
// The configuration is not validated; a missing host or bad credentials
// surface as errors from Send.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:  cfg,
		send: dialAndSend,
	}
}

func dialAndSend(d *mail.Dialer, m *mail.Message) error {
	return d.DialAndSend(m)
}

// Send opens an SMTP session, delivers email and closes the session.
func (s *SMTPSender) Send(ctx context.Context, email *Email) error {
	if s.cfg.Host == "" {
		return ErrNotConfigured
	}
	if err := email.Validate(); err != nil {
		return err
	}
	// mail.v2 has no context support, so cancellation is only honoured before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.send(s.dialer(), NewMessage(email)); err != nil {
		return fmt.Errorf("mailer: send via %s: %w", s.cfg.Addr(), err)
	}
	return nil
}

// Ping checks that the SMTP server accepts TCP connections.
func (s *SMTPSender) Ping(ctx context.Context) error {
	if s.cfg.Host == "" {
		return ErrNotConfigured
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("mailer: dial %s: %w", s.cfg.Addr(), err)
	}
	return conn.Close()
}

// dialer builds a fresh dialer. STARTTLS is used when the server offers it
// but is not required; port 465 gets implicit TLS.
func (s *SMTPSender) dialer() *mail.Dialer {
	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Password)
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	d.Timeout = DefaultTimeout
	if s.cfg.Timeout > 0 {
		d.Timeout = s.cfg.Timeout
	}
	return d
}

// NewMessage converts email into a single-part text/plain message.
func NewMessage(email *Email) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", email.From)
	m.SetHeader("To", email.To)
	if email.ReplyTo != "" {
		m.SetHeader("Reply-To", email.ReplyTo)
	}
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Text)
	return m
}
