package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ryanm101/gameid/internal/logging"
	"github.com/ryanm101/gameid/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Routes:
  POST /api/hltb/game          completion times for {name, altNames, year}
  POST /api/igdb/match         IGDB match for {name, altNames, year, platforms}
  GET  /api/igdb/autocomplete  type-ahead suggestions (?query=)
  GET  /health
  GET  /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides http.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vocab, err := loadVocabulary()
	if err != nil {
		return err
	}

	store, err := openStore(ctx, true)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer closeStore(store)

	opts := []server.Option{server.WithDB(store)}
	if cfg.IGDBEnabled() {
		svc, err := newIGDBService(vocab, store)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithGameMatcher(svc))
	} else {
		logging.Info("IGDB credentials not set, IGDB routes disabled")
	}

	addr := cfg.HTTP.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      server.NewServer(newHLTBService(vocab, store), opts...),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server error")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logging.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
