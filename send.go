package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zachkp/contact-relay/internal/client"
)

var (
	sendURL     string
	sendName    string
	sendEmail   string
	sendMessage string
	sendTimeout time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a contact form to a running relay",
	Args:  cobra.NoArgs,
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendURL, "url", "http://localhost:8080", "base URL of the relay")
	sendCmd.Flags().StringVar(&sendName, "name", "", "sender name")
	sendCmd.Flags().StringVar(&sendEmail, "email", "", "sender email")
	sendCmd.Flags().StringVar(&sendMessage, "message", "", "message text")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 30*time.Second, "request timeout")
}

func runSend(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
	defer cancel()

	form := client.NewForm(client.New(sendURL))
	form.Name = sendName
	form.Email = sendEmail
	form.Message = sendMessage

	notice, err := form.Submit(ctx)
	if notice.Kind != 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", notice.Kind, notice.Text)
	}
	return err
}
