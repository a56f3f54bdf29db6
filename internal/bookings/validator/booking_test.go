package validator

import (
	"errors"
	"strings"
	"testing"

	"furnace/pkg/logger"
	"furnace/pkg/model"
)

func newBooking(start, end string) *model.NewBooking {
	nb := &model.NewBooking{
		Name:   "Ada",
		Sample: "LiFePO4 pellet",
		Gas:    "Argon",
	}
	if start != "" {
		nb.StartDateTime = model.MustParseDateTime(start)
	}
	if end != "" {
		nb.EndDateTime = model.MustParseDateTime(end)
	}
	return nb
}

func TestValidate(t *testing.T) {
	validator := NewBookingValidator(logger.Nop())

	tests := []struct {
		name        string
		booking     *model.NewBooking
		wantError   bool
		wantSummary string
		wantField   string
	}{
		{
			name:    "valid booking",
			booking: newBooking("2024-01-01T09:00:00", "2024-01-01T10:00:00"),
		},
		{
			name:    "valid overnight booking",
			booking: newBooking("2024-01-01T22:00:00", "2024-01-02T03:00:00"),
		},
		{
			name: "blank name",
			booking: func() *model.NewBooking {
				b := newBooking("2024-01-01T09:00:00", "2024-01-01T10:00:00")
				b.Name = "   "
				return b
			}(),
			wantError:   true,
			wantSummary: "Please fill in all required fields.",
			wantField:   "name",
		},
		{
			name: "missing gas",
			booking: func() *model.NewBooking {
				b := newBooking("2024-01-01T09:00:00", "2024-01-01T10:00:00")
				b.Gas = ""
				return b
			}(),
			wantError:   true,
			wantSummary: "Please fill in all required fields.",
			wantField:   "gas",
		},
		{
			name:        "inverted range",
			booking:     newBooking("2024-01-01T10:00:00", "2024-01-01T09:00:00"),
			wantError:   true,
			wantSummary: "End time must be strictly after start time.",
			wantField:   "endDateTime",
		},
		{
			name:        "zero length range",
			booking:     newBooking("2024-01-01T10:00:00", "2024-01-01T10:00:00"),
			wantError:   true,
			wantSummary: "End time must be strictly after start time.",
			wantField:   "endDateTime",
		},
		{
			name:        "missing start",
			booking:     newBooking("", "2024-01-01T10:00:00"),
			wantError:   true,
			wantSummary: "Please fill in all required fields.",
			wantField:   "startDateTime",
		},
		{
			name: "notes too long",
			booking: func() *model.NewBooking {
				b := newBooking("2024-01-01T09:00:00", "2024-01-01T10:00:00")
				b.Notes = strings.Repeat("x", 2001)
				return b
			}(),
			wantError:   true,
			wantSummary: "notes must be at most 2000 characters",
			wantField:   "notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.booking)
			if !tt.wantError {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T: %v", err, err)
			}
			if got := verrs.Summary(); got != tt.wantSummary {
				t.Errorf("Summary() = %q, want %q", got, tt.wantSummary)
			}
			if _, ok := verrs.Fields()[tt.wantField]; !ok {
				t.Errorf("expected error on field %q, got %v", tt.wantField, verrs.Fields())
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	validator := NewBookingValidator(logger.Nop())

	update := &model.BookingUpdate{NewBooking: *newBooking("2024-01-01T09:30:00", "2024-01-01T10:30:00")}
	err := validator.ValidateUpdate(update)
	if err == nil {
		t.Fatal("expected error for missing id")
	}
	if !strings.Contains(err.Error(), "id is required") {
		t.Errorf("unexpected error: %v", err)
	}

	update.ID = "abc"
	if err := validator.ValidateUpdate(update); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateRequest(t *testing.T) {
	validator := NewBookingValidator(logger.Nop())

	tests := []struct {
		name      string
		req       *model.BookingRequest
		wantError bool
	}{
		{name: "create", req: &model.BookingRequest{Action: model.ActionCreate}},
		{name: "update", req: &model.BookingRequest{Action: model.ActionUpdate, ID: "x"}},
		{name: "delete with id", req: &model.BookingRequest{Action: model.ActionDelete, ID: "x"}},
		{name: "delete without id", req: &model.BookingRequest{Action: model.ActionDelete}, wantError: true},
		{name: "missing action", req: &model.BookingRequest{}, wantError: true},
		{name: "lowercase action", req: &model.BookingRequest{Action: "create"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateRequest(tt.req)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateRequest() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
