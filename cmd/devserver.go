package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bizpulse/bizdash/internal/devserver"
	"github.com/bizpulse/bizdash/pkg/logger"
)

var devserverDSN string

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run the local stub backend",
	Long:  `Serve a sqlite-backed stub of the dashboard backend for local development: auth, role-gated aggregates, entity listings and the query assistant.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDevserver()
	},
}

func init() {
	devserverCmd.Flags().StringVar(&devserverDSN, "db", ":memory:", "sqlite DSN for the stub store")
}

func runDevserver() error {
	cfg, err := loadConfig(".")
	if err != nil {
		return err
	}
	log := logger.L()

	store, err := devserver.OpenStore(devserverDSN)
	if err != nil {
		return err
	}
	if cfg.Devserver.Seed {
		if err := store.Seed(); err != nil {
			return fmt.Errorf("failed to seed store: %w", err)
		}
		log.Info("store seeded", "accounts", "admin/manager/staff@bizpulse.local", "password", "password")
	}

	tokens := devserver.NewTokenIssuer(cfg.Devserver.TokenSecret, cfg.Devserver.TokenTTL)
	srv := devserver.NewServer(store, tokens, log)

	addr := fmt.Sprintf(":%d", cfg.Devserver.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Devserver.ReadTimeout,
		WriteTimeout: cfg.Devserver.WriteTimeout,
		IdleTimeout:  cfg.Devserver.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	log.Info("devserver listening", "address", addr)

	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	log.Info("devserver stopped")
	return nil
}
