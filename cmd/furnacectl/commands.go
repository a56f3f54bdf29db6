package main

import (
	"fmt"
	"io"
	"time"

	"furnace/internal/schedule"
	"furnace/pkg/config"
	"furnace/pkg/model"

	"github.com/urfave/cli/v2"
)

const (
	flagURL     = "url"
	flagTimeout = "timeout"
	flagLocal   = "local"
	flagWait    = "wait"
	flagDate    = "date"
	flagHour    = "hour"
	flagID      = "id"
	flagStart   = "start"
	flagEnd     = "end"
	flagName    = "name"
	flagSample  = "sample"
	flagGas     = "gas"
	flagNotes   = "notes"
)

func newApp(cfg *config.Config, out io.Writer) *cli.App {
	return &cli.App{
		Name:   ToolName,
		Usage:  "view and manage tube furnace bookings",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagURL,
				Usage: "furnace service base URL",
				Value: cfg.FurnaceURL,
			},
			&cli.DurationFlag{
				Name:  flagTimeout,
				Usage: "HTTP timeout for remote calls",
				Value: cfg.ClientTimeout,
			},
			&cli.DurationFlag{
				Name:  flagWait,
				Usage: "wait up to this long for the service to report healthy before running",
			},
			&cli.BoolFlag{
				Name:  flagLocal,
				Usage: "use the configured STORE_BACKEND directly instead of the service",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "day",
				Usage:  "show the hourly schedule for one day",
				Flags:  []cli.Flag{dateFlag()},
				Action: dayAction(cfg),
			},
			{
				Name:   "create",
				Usage:  "book the furnace for a time range",
				Flags:  append([]cli.Flag{rangeFlag(flagStart), rangeFlag(flagEnd)}, detailFlags()...),
				Action: createAction(cfg),
			},
			{
				Name:  "slot",
				Usage: "book one free hour on a day",
				Flags: append([]cli.Flag{
					dateFlag(),
					&cli.IntFlag{Name: flagHour, Usage: "hour of day, 0-23", Required: true},
				}, detailFlags()...),
				Action: slotAction(cfg),
			},
			{
				Name:  "update",
				Usage: "replace the range and details of a booking",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: flagID, Usage: "booking id", Required: true},
					rangeFlag(flagStart),
					rangeFlag(flagEnd),
				}, detailFlags()...),
				Action: updateAction(cfg),
			},
			{
				Name:  "delete",
				Usage: "remove a booking",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: flagID, Usage: "booking id", Required: true},
				},
				Action: deleteAction(cfg),
			},
		},
	}
}

func dateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  flagDate,
		Usage: "day as YYYY-MM-DD (default today)",
	}
}

func rangeFlag(name string) cli.Flag {
	return &cli.StringFlag{
		Name:     name,
		Usage:    "wall-clock date-time, YYYY-MM-DDTHH:mm:ss",
		Required: true,
	}
}

func detailFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: flagName, Usage: "person booking the furnace"},
		&cli.StringFlag{Name: flagSample, Usage: "sample being processed"},
		&cli.StringFlag{Name: flagGas, Usage: "process gas"},
		&cli.StringFlag{Name: flagNotes, Usage: "free-form notes"},
	}
}

func selectedDay(c *cli.Context) (time.Time, error) {
	if s := c.String(flagDate); s != "" {
		return model.ParseDate(s)
	}
	return time.Now(), nil
}

func newBooking(c *cli.Context) (*model.NewBooking, error) {
	start, err := model.ParseDateTime(c.String(flagStart))
	if err != nil {
		return nil, err
	}
	end, err := model.ParseDateTime(c.String(flagEnd))
	if err != nil {
		return nil, err
	}
	nb := &model.NewBooking{StartDateTime: start, EndDateTime: end}
	applyDetails(c, nb)
	return nb, nil
}

func applyDetails(c *cli.Context, nb *model.NewBooking) {
	nb.Name = c.String(flagName)
	nb.Sample = c.String(flagSample)
	nb.Gas = c.String(flagGas)
	nb.Notes = c.String(flagNotes)
}

func dayAction(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		day, err := selectedDay(c)
		if err != nil {
			return err
		}
		dv, release, err := newDayView(c, cfg)
		if err != nil {
			return err
		}
		defer release()

		view, err := dv.Select(c.Context, day)
		if err != nil {
			return err
		}
		return renderView(c.App.Writer, view)
	}
}

func createAction(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		nb, err := newBooking(c)
		if err != nil {
			return err
		}
		return write(c, cfg, nb.StartDateTime.Time, func(dv *schedule.DayView) (*model.Booking, *schedule.View, error) {
			return dv.Create(c.Context, nb)
		})
	}
}

func slotAction(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		day, err := selectedDay(c)
		if err != nil {
			return err
		}
		dv, release, err := newDayView(c, cfg)
		if err != nil {
			return err
		}
		defer release()

		if _, err := dv.Select(c.Context, day); err != nil {
			return err
		}
		nb, err := dv.SlotRequest(c.Int(flagHour))
		if err != nil {
			return err
		}
		applyDetails(c, nb)

		booking, view, err := dv.Create(c.Context, nb)
		if err != nil {
			return err
		}
		return renderWrite(c.App.Writer, "Booking created", booking, view)
	}
}

func updateAction(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		nb, err := newBooking(c)
		if err != nil {
			return err
		}
		update := &model.BookingUpdate{ID: c.String(flagID), NewBooking: *nb}
		return write(c, cfg, nb.StartDateTime.Time, func(dv *schedule.DayView) (*model.Booking, *schedule.View, error) {
			return dv.Update(c.Context, update)
		})
	}
}

func deleteAction(cfg *config.Config) cli.ActionFunc {
	return func(c *cli.Context) error {
		dv, release, err := newDayView(c, cfg)
		if err != nil {
			return err
		}
		defer release()

		if _, err := dv.Delete(c.Context, c.String(flagID)); err != nil {
			return err
		}
		_, err = fmt.Fprintln(c.App.Writer, "Booking deleted")
		return err
	}
}

// write selects the day the booking starts on, runs fn and prints the
// resulting day.
func write(c *cli.Context, cfg *config.Config, day time.Time, fn func(*schedule.DayView) (*model.Booking, *schedule.View, error)) error {
	dv, release, err := newDayView(c, cfg)
	if err != nil {
		return err
	}
	defer release()

	if _, err := dv.Select(c.Context, day); err != nil {
		return err
	}
	booking, view, err := fn(dv)
	if err != nil {
		return err
	}
	return renderWrite(c.App.Writer, "Booking saved", booking, view)
}
