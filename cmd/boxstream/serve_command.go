package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"boxstream/api"
	"boxstream/handlers"
	"boxstream/services/scheduler"
	"boxstream/utils"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the addon HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureSettings()
			if err != nil {
				return err
			}
			closer, err := setupLogging(settings.Logging)
			if err != nil {
				return fmt.Errorf("set up logging: %w", err)
			}
			defer closer.Close()

			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if settings.Torbox.APIKey == "" {
				log.Println("[serve] warning: no Torbox API key configured; catalogs and streams will be empty")
			}

			limiter := api.NewIPRateLimiter(api.PerMinute(settings.Server.RateLimitPerMinute), settings.Server.RateLimitBurst)
			defer limiter.Close()

			router := utils.NewRouter()
			router.Use(api.RequestIDMiddleware(), api.AccessLogMiddleware(), api.RateLimitMiddleware(limiter))
			(&handlers.AddonHandler{
				Assembler: a.catalog,
				Streams:   a.streams,
				Account:   a.provider,
			}).Register(router)

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var warmup *scheduler.Service
			if settings.Warmup.Enabled {
				warmup = scheduler.NewService(a.catalog, time.Duration(settings.Warmup.IntervalMinutes)*time.Minute)
				if err := warmup.Start(runCtx); err != nil {
					return err
				}
			}

			srv := &http.Server{
				Addr:              settings.Server.Addr(),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Printf("[serve] listening on %s", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			case <-runCtx.Done():
			}

			log.Println("[serve] shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if warmup != nil {
				warmup.Stop(shutdownCtx)
			}
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
}
