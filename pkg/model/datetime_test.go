package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "wire layout", input: "2024-01-01T09:00:00", want: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		{name: "without seconds", input: "2024-01-01T22:30", want: time.Date(2024, 1, 1, 22, 30, 0, 0, time.UTC)},
		{name: "zoned input keeps wall clock", input: "2024-01-01T09:00:00+02:00", want: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)},
		{name: "date only", input: "2024-01-01", wantErr: true},
		{name: "garbage", input: "tomorrow", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateTime(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "expected %s, got %s", tt.want, got.Time)
		})
	}
}

func TestDateTimeJSON(t *testing.T) {
	b := Booking{
		ID:            "a",
		StartDateTime: MustParseDateTime("2024-01-01T22:00:00"),
		EndDateTime:   MustParseDateTime("2024-01-02T03:00:00"),
		Name:          "alice",
		Sample:        "NMC811",
		Gas:           "Ar",
	}

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"startDateTime":"2024-01-01T22:00:00"`)
	assert.Contains(t, string(data), `"endDateTime":"2024-01-02T03:00:00"`)
	assert.NotContains(t, string(data), "notes")

	var decoded NewBooking
	require.NoError(t, json.Unmarshal([]byte(`{"startDateTime":"","endDateTime":null,"name":"x"}`), &decoded))
	assert.True(t, decoded.StartDateTime.IsZero())
	assert.True(t, decoded.EndDateTime.IsZero())

	err = json.Unmarshal([]byte(`{"startDateTime":"01/02/2024"}`), &decoded)
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestBookingUpdateApplyPreservesIdentity(t *testing.T) {
	created := time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC)
	existing := &Booking{
		ID:            "keep-me",
		StartDateTime: MustParseDateTime("2024-01-01T09:00:00"),
		EndDateTime:   MustParseDateTime("2024-01-01T10:00:00"),
		Name:          "old",
		CreatedAt:     created,
	}
	update := &BookingUpdate{
		ID: "keep-me",
		NewBooking: NewBooking{
			StartDateTime: MustParseDateTime("2024-01-01T09:30:00"),
			EndDateTime:   MustParseDateTime("2024-01-01T10:30:00"),
			Name:          "new",
			Sample:        "s",
			Gas:           "N2",
		},
	}

	merged := update.Apply(existing)

	assert.Equal(t, "keep-me", merged.ID)
	assert.Equal(t, created, merged.CreatedAt)
	assert.Equal(t, "new", merged.Name)
	assert.Equal(t, "old", existing.Name, "existing booking must not be mutated")
}

func TestSortByStart(t *testing.T) {
	bookings := []*Booking{
		{ID: "b", StartDateTime: MustParseDateTime("2024-01-01T10:00:00")},
		{ID: "c", StartDateTime: MustParseDateTime("2024-01-01T08:00:00")},
		{ID: "a", StartDateTime: MustParseDateTime("2024-01-01T10:00:00")},
	}

	SortByStart(bookings)

	assert.Equal(t, []string{"c", "a", "b"}, []string{bookings[0].ID, bookings[1].ID, bookings[2].ID})
}
