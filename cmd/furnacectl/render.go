package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"furnace/internal/projector"
	"furnace/internal/schedule"
	"furnace/pkg/model"
)

func renderWrite(w io.Writer, title string, booking *model.Booking, view *schedule.View) error {
	if _, err := fmt.Fprintf(w, "%s: %s [%s, %s)\n\n", title, booking.ID, booking.StartDateTime, booking.EndDateTime); err != nil {
		return err
	}
	return renderView(w, view)
}

func renderView(w io.Writer, view *schedule.View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", view.Day.Format("Monday 2006-01-02"))
	fmt.Fprintln(tw, "HOUR\tSTATUS\tBOOKING")

	for _, slot := range view.Grid {
		fmt.Fprintf(tw, "%02d:00\t%s\t%s\n", slot.Hour, slotStatus(slot), describeSegments(slot.Segments))
	}
	return tw.Flush()
}

func slotStatus(slot projector.HourSlot) string {
	switch {
	case len(slot.Segments) > 0:
		return "booked"
	case slot.Occupied:
		return "in use"
	default:
		return "free"
	}
}

func describeSegments(segments []projector.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		var b strings.Builder
		if s.ContinuesFromPriorDay {
			b.WriteString("<< ")
		}
		fmt.Fprintf(&b, "%s-%s %s / %s / %s (%.1fh)",
			s.Start.Format("15:04"), s.End.Format("15:04"),
			s.Booking.Name, s.Booking.Sample, s.Booking.Gas, s.DurationHours)
		if s.ContinuesIntoNextDay {
			b.WriteString(" >>")
		}
		b.WriteString(" #" + s.Booking.ID)
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "; ")
}
