package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"furnace/internal/bookings/repository"
	"furnace/internal/bookings/service"
	"furnace/internal/bookings/validator"
	"furnace/internal/schedule"
	"furnace/pkg/client"
	"furnace/pkg/config"
	"furnace/pkg/contracts"
	apperrors "furnace/pkg/errors"
	"furnace/pkg/kafka"
	"furnace/pkg/logger"

	"github.com/urfave/cli/v2"
)

const ToolName = "furnacectl"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(ToolName)
	cfg.Log = logger.New(logger.Config{
		Level:   logger.WARN,
		Format:  logger.TEXT,
		Output:  os.Stderr,
		Service: ToolName,
	})

	app := newApp(cfg, os.Stdout)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// storeFor builds the booking store the command runs against: the remote
// service by default, or the configured local backend with --local.
func storeFor(c *cli.Context, cfg *config.Config) (contracts.BookingStore, func(), error) {
	if !c.Bool(flagLocal) {
		cfg.FurnaceURL = c.String(flagURL)
		cfg.ClientTimeout = c.Duration(flagTimeout)
		if err := cfg.ValidateClient(); err != nil {
			return nil, nil, err
		}
		bc := client.NewBookingClient(cfg.FurnaceURL, cfg.ClientTimeout)
		if wait := c.Duration(flagWait); wait > 0 {
			if err := bc.WaitUntilHealthy(c.Context, wait); err != nil {
				return nil, nil, err
			}
		}
		return bc, func() {}, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	repo, err := repository.Open(c.Context, cfg)
	if err != nil {
		return nil, nil, err
	}
	store := service.NewBookingService(repo, validator.NewBookingValidator(cfg.Log), kafka.NopPublisher{}, cfg.Log)
	release := func() {
		if err := repo.Close(context.Background()); err != nil {
			cfg.Log.Warn("Failed to close booking storage", "error", err)
		}
	}
	return store, release, nil
}

func exitCode(err error) int {
	if appErr := apperrors.AsAppError(err); appErr != nil {
		switch appErr.Code {
		case apperrors.CodeValidation, apperrors.CodeInvalidInput:
			return 2
		case apperrors.CodeConflict:
			return 3
		case apperrors.CodeNotFound:
			return 4
		}
	}
	return 1
}

func newDayView(c *cli.Context, cfg *config.Config) (*schedule.DayView, func(), error) {
	store, release, err := storeFor(c, cfg)
	if err != nil {
		return nil, nil, err
	}
	return schedule.NewDayView(store, cfg.Log), release, nil
}
