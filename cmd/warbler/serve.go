package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"warbler/internal/logging"
	"warbler/internal/store"
	"warbler/internal/web"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			if addr != "" {
				cfg.Addr = addr
			}

			log, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			srv, err := web.New(store.New(db), log, web.Options{
				SecretKey:         cfg.SecretKey,
				SecureCookies:     cfg.SecureCookies,
				AuthRatePerMinute: cfg.AuthRatePerMinute,
				AuthRateBurst:     cfg.AuthRateBurst,
				TrustProxy:        cfg.TrustProxy,
			})
			if err != nil {
				return err
			}

			httpSrv := &http.Server{
				Addr:         cfg.Addr,
				Handler:      srv,
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.WithField("addr", cfg.Addr).WithField("env", cfg.Env).Info("server started")
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			log.Info("shutdown completed")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides WARBLER_ADDR")
	return cmd
}
