package interval

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRange = errors.New("end time must be strictly after start time")

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New returns the interval [start, end) or ErrInvalidRange when start >= end.
func New(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if !iv.Valid() {
		return Interval{}, fmt.Errorf("%w: %s - %s", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return iv, nil
}

func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}

// Overlaps reports whether a and b share any instant. Ranges that only touch
// at an endpoint do not overlap. Both ranges must be valid.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// Day returns the calendar day containing t as [midnight, next midnight) in t's location.
func Day(t time.Time) Interval {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return Interval{Start: start, End: start.AddDate(0, 0, 1)}
}

// Clip narrows iv to the part that falls inside window. The result is only
// meaningful when Overlaps(iv, window) holds.
func Clip(iv, window Interval) Interval {
	clipped := iv
	if window.Start.After(clipped.Start) {
		clipped.Start = window.Start
	}
	if window.End.Before(clipped.End) {
		clipped.End = window.End
	}
	return clipped
}
