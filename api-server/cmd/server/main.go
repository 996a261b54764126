package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cx-tal-miterani/travel-booking/api-server/internal/handlers"
	"github.com/cx-tal-miterani/travel-booking/api-server/internal/router"
	"github.com/cx-tal-miterani/travel-booking/api-server/internal/service"
	"github.com/cx-tal-miterani/travel-booking/api-server/internal/websocket"
	"github.com/cx-tal-miterani/travel-booking/shared/bookingapi"
	"github.com/cx-tal-miterani/travel-booking/shared/config"
	"github.com/cx-tal-miterani/travel-booking/shared/observability"
	"go.temporal.io/sdk/client"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		bootLogger := observability.InitLogger("api-server", "production", "info")
		bootLogger.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger := observability.InitLogger("api-server", cfg.Environment, cfg.LogLevel)

	api := bookingapi.NewClient(cfg.BookingAPIURL,
		bookingapi.WithTimeout(cfg.BookingTimeout),
		bookingapi.WithCredential(cfg.BookingAPIToken),
		bookingapi.WithLogger(logger),
	)

	hub := websocket.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	opts := service.Options{
		Notifier:   hub,
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	if cfg.SubmitMode == config.SubmitTemporal {
		temporalClient, err := client.Dial(observability.TemporalClientOptions(cfg.TemporalHost, logger))
		if err != nil {
			logger.Fatal().Err(err).Str("host", cfg.TemporalHost).Msg("Failed to create Temporal client")
		}
		defer temporalClient.Close()
		logger.Info().Str("host", cfg.TemporalHost).Str("taskQueue", cfg.TaskQueue).Msg("Submitting bookings through Temporal")
		opts.Submitters = service.TemporalSubmitters(service.NewTemporalSubmitter(temporalClient, cfg.TaskQueue, logger))
	}

	// Initialize services
	bookingService := service.NewBookingService(api, opts)

	ctx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go bookingService.RunSweeper(ctx, time.Minute)

	h := handlers.NewHandler(bookingService, logger)
	r := router.SetupRouter(h, hub, bookingService, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BookingTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("bookingApi", cfg.BookingAPIURL).Str("submitMode", string(cfg.SubmitMode)).Msg("API Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Graceful shutdown lets in-flight submissions finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server stopped")
}
