package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Zachkp/contact-relay/internal/audit"
	"github.com/Zachkp/contact-relay/internal/config"
)

var (
	auditRecent    int
	auditJSON      bool
	auditRetention time.Duration
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the delivery attempt log",
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print delivery attempt statistics",
	Args:  cobra.NoArgs,
	RunE:  runAuditStats,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete attempts older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  runAuditPrune,
}

func init() {
	auditStatsCmd.Flags().IntVar(&auditRecent, "recent", 20, "number of recent attempts to list")
	auditStatsCmd.Flags().BoolVar(&auditJSON, "json", false, "print JSON")
	auditPruneCmd.Flags().DurationVar(&auditRetention, "retention", 0, "override the configured retention")

	auditCmd.AddCommand(auditStatsCmd)
	auditCmd.AddCommand(auditPruneCmd)
}

func openAudit(cmd *cobra.Command) (*audit.Store, audit.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, audit.Config{}, err
	}
	store, err := audit.Open(cmd.Context(), cfg.Audit)
	if err != nil {
		return nil, audit.Config{}, err
	}
	return store, cfg.Audit, nil
}

func runAuditStats(cmd *cobra.Command, _ []string) error {
	store, _, err := openAudit(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context(), auditRecent)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if auditJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Fprintf(out, "attempts: %d (sent %d, failed %d)\n", stats.Total, stats.Sent, stats.Failed)
	fmt.Fprintf(out, "unique senders: %d\n", stats.UniqueSender)
	fmt.Fprintf(out, "today: %d, last 7 days: %d\n", stats.Today, stats.ThisWeek)
	for _, a := range stats.Recent {
		hashed := a.HashedIP
		if hashed == "" {
			hashed = "-"
		}
		fmt.Fprintf(out, "%s  %-6s  %-16s  %6dms  %s\n",
			a.CreatedAt.Format(time.RFC3339), a.Outcome, hashed, a.Duration.Milliseconds(), a.UserAgent)
	}
	return nil
}

func runAuditPrune(cmd *cobra.Command, _ []string) error {
	store, cfg, err := openAudit(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	retention := cfg.Retention
	if auditRetention > 0 {
		retention = auditRetention
	}

	n, err := store.Prune(cmd.Context(), retention)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d attempts\n", n)
	return nil
}
