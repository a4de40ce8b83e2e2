package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/lembar/internal/metrics"
	"github.com/abhisek/lembar/internal/tracing"
	"github.com/abhisek/lembar/internal/web"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web form and generated papers over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := loadEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()
	logger := e.logger.Named("serve")

	shutdownTracing, err := tracing.Init(ctx, e.cfg.TracingConfig(version), logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	var prom *metrics.Prometheus
	var rec metrics.Recorder
	if e.cfg.Metrics.Enabled {
		prom = metrics.NewPrometheus()
		rec = prom
	}

	blobs, err := e.blobs(ctx)
	if err != nil {
		return err
	}
	orch, err := e.orchestrator(ctx, blobs, rec)
	if err != nil {
		return err
	}

	sc := e.cfg.Server
	srv := web.New(web.Deps{
		Runner:  orch,
		Blobs:   blobs,
		Paper:   e.cfg.PaperOptions(),
		Metrics: prom,
		Logger:  e.logger,
	}, web.Config{
		AllowedOrigins: sc.AllowedOrigins,
		RatePerMinute:  sc.RatePerMinute,
		RateBurst:      sc.RateBurst,
		SessionTTL:     sc.SessionTTL,
		RequestTimeout: sc.RequestTimeout,
	})

	addr := sc.Addr
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	srv.Start(gctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(sctx)
		srv.Close()
		return err
	})

	return g.Wait()
}
