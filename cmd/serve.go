package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/coursegen/internal/server"
)

const shutdownGrace = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		docs, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer docs.Close()

		svc, err := buildServices(ctx, cfg, docs, log)
		if err != nil {
			return err
		}
		authSvc, err := newAuthService(cfg, docs)
		if err != nil {
			return err
		}
		limiter, closeLimiter, err := newLimiter(ctx, cfg.RateLimit, log)
		if err != nil {
			return err
		}
		defer closeLimiter()

		srv := server.New(cfg.Server, server.Deps{
			Auth:     authSvc,
			Courses:  svc.courses,
			Quizzes:  svc.quizzes,
			Progress: svc.tracker,
			Limiter:  limiter,
			LLM:      cfg.LLM.Summary(),
			Log:      log,
		})
		httpSrv := srv.HTTPServer(cfg.Server.Addr)

		summary := cfg.LLM.Summary()
		log.Info("starting server",
			"addr", cfg.Server.Addr, "data_dir", docs.Dir(),
			"provider", summary.Provider, "model", summary.Model)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			log.Info("shutting down")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			return httpSrv.Shutdown(sctx)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
