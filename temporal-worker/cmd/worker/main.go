package main

import (
	"github.com/cx-tal-miterani/travel-booking/shared/bookingapi"
	"github.com/cx-tal-miterani/travel-booking/shared/config"
	"github.com/cx-tal-miterani/travel-booking/shared/models"
	"github.com/cx-tal-miterani/travel-booking/shared/observability"
	"github.com/cx-tal-miterani/travel-booking/temporal-worker/internal/activities"
	"github.com/cx-tal-miterani/travel-booking/temporal-worker/internal/workflows"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		bootLogger := observability.InitLogger("temporal-worker", "production", "info")
		bootLogger.Fatal().Err(err).Msg("Invalid configuration")
	}
	logger := observability.InitLogger("temporal-worker", cfg.Environment, cfg.LogLevel)

	// Bookings made by the worker use the service credential
	api := bookingapi.NewClient(cfg.BookingAPIURL,
		bookingapi.WithTimeout(cfg.BookingTimeout),
		bookingapi.WithCredential(cfg.BookingAPIToken),
		bookingapi.WithLogger(logger),
	)

	// Connect to Temporal
	logger.Info().Str("host", cfg.TemporalHost).Msg("Connecting to Temporal")
	c, err := client.Dial(observability.TemporalClientOptions(cfg.TemporalHost, logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Temporal")
	}
	defer c.Close()
	logger.Info().Msg("Connected to Temporal")

	w := worker.New(c, cfg.TaskQueue, worker.Options{})

	w.RegisterWorkflowWithOptions(workflows.BookingAttemptWorkflow, workflow.RegisterOptions{Name: models.WorkflowBookingAttempt})
	activities.NewActivities(api).Register(w)

	logger.Info().Str("taskQueue", cfg.TaskQueue).Str("bookingApi", cfg.BookingAPIURL).Msg("Starting Temporal worker")
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal().Err(err).Msg("Worker failed")
	}
}
