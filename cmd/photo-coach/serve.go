package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/menta2k/photo-coach/internal/log"
	"github.com/menta2k/photo-coach/pkg/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scoring API and Prometheus metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), serveAddr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = cfg.Server.Addr
	}

	p, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	srv := server.New(p.coach, server.Config{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		JPEGQuality:  cfg.Output.JPEGQuality,
		History:      p.history,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
