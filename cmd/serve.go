package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"domainintel/internal/api"
	"domainintel/internal/api/handler/v1handler"
	"domainintel/internal/config"
	"domainintel/internal/pricing"
	"domainintel/internal/trust"
	"domainintel/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(
	ctx context.Context,
	cfg *config.Config,
	engine *trust.Engine,
	collector *pricing.Collector,
) func(ctx context.Context) {
	server, err := api.NewServer(ctx, api.Deps{Deps: v1handler.Deps{
		Trust:       engine,
		Pricing:     collector,
		CacheMaxAge: cfg.Pricing.CacheMaxAge,
	}}, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			meter, closeMeter := getMeter(ctx)
			defer closeMeter()

			reg, closeRegistry := getRegistry(ctx, cfg, meter)
			defer closeRegistry()

			stopWebserver := setupServer(ctx, cfg,
				getTrustEngine(ctx, cfg, meter, reg),
				getPricingCollector(ctx, cfg, meter))

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
