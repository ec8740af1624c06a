package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "contact-relay",
	Short: "Portfolio contact form relay",
	Long: `contact-relay serves the portfolio site and relays contact form
submissions to the site owner's mailbox over SMTP.

Example:
  contact-relay serve                       # start the HTTP server
  contact-relay send --url http://localhost:8080 \
    --name Ada --email ada@example.com --message Hello
  contact-relay audit stats                 # delivery attempt summary`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file (environment variables override it)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(auditCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
