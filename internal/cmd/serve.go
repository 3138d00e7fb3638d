package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/harrison/assessment/internal/builtin"
	"github.com/harrison/assessment/internal/config"
	"github.com/harrison/assessment/internal/logger"
	"github.com/harrison/assessment/internal/notify"
	"github.com/harrison/assessment/internal/registry"
	"github.com/harrison/assessment/internal/server"
	"github.com/harrison/assessment/internal/service"
	"github.com/harrison/assessment/internal/store"
	"github.com/harrison/assessment/internal/theme"
)

// NewServeCommand creates and returns the serve subcommand
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve assessments, submissions and results over HTTP",
		Long: `Serve loads every assessment, opens the response database and starts the
HTTP server. Responses are stored in SQLite; lead notifications go out by
webhook and e-mail when an assessment configures them.

With cache_enabled: false the assessment directories are watched and
reloaded on change. POST /v1/admin/reload reloads on demand either way.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("addr")
			dbPath, _ := cmd.Flags().GetString("db")
			var addrFlag, dbFlag *string
			if cmd.Flags().Changed("addr") {
				addrFlag = &addr
			}
			if cmd.Flags().Changed("db") {
				dbFlag = &dbPath
			}
			cfg.MergeWithFlags(nil, nil, nil, addrFlag, dbFlag)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().String("db", "", "Response database path")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, errOut io.Writer) error {
	var log logger.Logger = logger.NewConsoleLogger(errOut, cfg.LogLevel)
	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		defer fileLog.Close()
		log = logger.NewMultiLogger(log, fileLog)
	}

	reg := registry.New()
	loader := registry.NewLoader(reg, cfg.AssessmentsPaths, builtin.Sources(), log)
	if _, err := loader.Reload(); err != nil {
		return err
	}

	st, err := store.NewStore(cfg.Store.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open response store: %w", err)
	}
	defer st.Close()

	var mailer notify.Mailer
	if cfg.Notify.SMTP.Enabled() {
		smtp := cfg.Notify.SMTP
		mailer = notify.NewSMTPMailer(smtp.Host, smtp.Port, smtp.Username, smtp.Password, smtp.From)
	} else {
		log.LogDebug("SMTP not configured, lead e-mails disabled")
	}

	svc := service.New(service.Options{
		Definitions:  reg,
		Responses:    st,
		Notifier:     notify.NewDispatcher(notify.NewWebhook(cfg.Notify.WebhookTimeout), mailer, log),
		FallbackText: cfg.FallbackResultText,
		Logger:       log,
	})

	srv := server.New(server.Options{
		Registry:  reg,
		Loader:    loader,
		Service:   svc,
		Themes:    theme.NewResolver(cfg.ThemeConfig(modeCompute, log)),
		CSSPrefix: cfg.ThemeCSSPrefix,
		Logger:    log,
	})

	var watcher *registry.Watcher
	if !cfg.CacheEnabled {
		watcher, err = registry.NewWatcher(loader)
		if err != nil {
			return fmt.Errorf("failed to watch assessment paths: %w", err)
		}
		log.LogInfo("Watching assessment paths for changes")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, cfg.Server.Addr)
	})
	if watcher != nil {
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
