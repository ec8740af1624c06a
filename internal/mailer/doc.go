// Package mailer delivers prepared emails through a pluggable Sender.
//
// The only production Sender is SMTPSender, which opens a fresh SMTP session
// for every message. Sessions are never pooled or reused, so concurrent calls
// are independent of each other.
//
//	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
//		Host:     "smtp.gmail.com",
//		Port:     587,
//		User:     "me@example.com",
//		Password: os.Getenv("SMTP_PASSWORD"),
//	})
//	err := sender.Send(ctx, &mailer.Email{
//		From:    "me@example.com",
//		To:      "me@example.com",
//		Subject: "Hello",
//		Text:    "plain text body",
//	})
package mailer
