package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Zachkp/contact-relay/internal/audit"
	"github.com/Zachkp/contact-relay/internal/config"
	"github.com/Zachkp/contact-relay/internal/health"
	"github.com/Zachkp/contact-relay/internal/logger"
	"github.com/Zachkp/contact-relay/internal/mailer"
	"github.com/Zachkp/contact-relay/internal/relay"
	"github.com/Zachkp/contact-relay/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender := mailer.NewSMTPSender(cfg.SMTP)
	checks := health.Checks{"smtp": sender.Ping}
	opts := []relay.Option{relay.WithMaxBodyBytes(cfg.Server.MaxBodyBytes)}

	if cfg.Audit.Enabled() {
		store, err := audit.Open(ctx, cfg.Audit)
		if err != nil {
			return err
		}
		defer store.Close()

		checks["audit"] = store.Ping
		opts = append(opts, relay.WithRecorder(store))
		go pruneAudit(ctx, store, cfg.Audit, log)
	}

	handler := relay.New(sender, cfg.SMTP.User, log, opts...)
	router := server.NewRouter(cfg.Server, server.Deps{
		Relay:  handler,
		Checks: checks,
		Logger: log,
	})

	if cfg.SMTP.Host == "" {
		log.Warn("SMTP_HOST is not set; contact submissions will fail")
	}

	if err := server.New(cfg.Server, router, log).Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func pruneAudit(ctx context.Context, store *audit.Store, cfg audit.Config, log *zap.Logger) {
	n, err := store.Prune(ctx, cfg.Retention)
	if err != nil {
		log.Warn("audit prune failed", zap.Error(err))
		return
	}
	if n > 0 {
		log.Info("audit prune removed old attempts", zap.Int64("removed", n), zap.Duration("retention", cfg.Retention))
	}
}
