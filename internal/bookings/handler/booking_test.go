package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"furnace/internal/bookings/repository"
	"furnace/internal/bookings/service"
	"furnace/internal/bookings/validator"
	apperrors "furnace/pkg/errors"
	"furnace/pkg/kafka"
	"furnace/pkg/logger"
	"furnace/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *httprouter.Router {
	t.Helper()
	log := logger.Nop()
	v := validator.NewBookingValidator(log)
	svc := service.NewBookingService(repository.NewMemoryBookingRepository(), v, kafka.NopPublisher{}, log)

	router := httprouter.New()
	NewBookingHandler(svc, v, log).RegisterRoutes(router)
	NewHealthHandler(svc, "memory", log).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router http.Handler, method, target string, body any) (*httptest.ResponseRecorder, model.BookingResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, &buf))

	var resp model.BookingResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func createBody(start, end string) map[string]any {
	return map[string]any{
		"action":        "CREATE",
		"startDateTime": start,
		"endDateTime":   end,
		"name":          "Ada",
		"sample":        "LFP",
		"gas":           "Ar",
	}
}

func TestListEmptyDay(t *testing.T) {
	router := newRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings?date=2024-01-01", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, rec.Body.String())
}

func TestListRequiresDate(t *testing.T) {
	router := newRouter(t)

	rec, resp := do(t, router, http.MethodGet, "/api/v1/bookings", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, apperrors.CodeInvalidInput, resp.Code)
}

func TestWriteLifecycle(t *testing.T) {
	router := newRouter(t)

	rec, resp := do(t, router, http.MethodPost, BookingsPath, createBody("2024-01-01T22:00:00", "2024-01-02T03:00:00"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, resp.Success)
	assert.Equal(t, "Booking created", resp.Message)
	require.Len(t, resp.Data, 1)
	created := resp.Data[0]
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2024-01-01T22:00:00", created.StartDateTime.String())

	rec, resp = do(t, router, http.MethodGet, "/api/v1/bookings?date=2024-01-02", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, created.ID, resp.Data[0].ID)

	rec, resp = do(t, router, http.MethodPost, BookingsPath, createBody("2024-01-02T02:00:00", "2024-01-02T04:00:00"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Time slot conflict detected across dates.", resp.Message)

	rec, resp = do(t, router, http.MethodPost, BookingsPath, createBody("2024-01-02T03:00:00", "2024-01-02T04:00:00"))
	assert.Equal(t, http.StatusCreated, rec.Code, "adjacent booking must be accepted")

	update := createBody("2024-01-01T21:00:00", "2024-01-02T02:00:00")
	update["action"] = "UPDATE"
	update["id"] = created.ID
	rec, resp = do(t, router, http.MethodPost, BookingsPath, update)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Booking updated", resp.Message)
	assert.Equal(t, created.ID, resp.Data[0].ID)
	assert.True(t, created.CreatedAt.Equal(resp.Data[0].CreatedAt))

	update["endDateTime"] = "2024-01-02T03:30:00"
	rec, resp = do(t, router, http.MethodPost, BookingsPath, update)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Update failed: New range overlaps with another booking.", resp.Message)

	update["id"] = "missing"
	update["endDateTime"] = "2024-01-01T22:00:00"
	rec, resp = do(t, router, http.MethodPost, BookingsPath, update)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Booking not found", resp.Message)

	for range 2 {
		rec, resp = do(t, router, http.MethodPost, BookingsPath, map[string]any{"action": "DELETE", "id": created.ID})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, resp.Success)
		assert.Equal(t, "Booking deleted", resp.Message)
	}

	rec, resp = do(t, router, http.MethodGet, "/api/v1/bookings?date=2024-01-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Data)
}

func TestWriteRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed json",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
		{
			name:       "unknown action",
			body:       map[string]any{"action": "PATCH"},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
		{
			name:       "delete without id",
			body:       map[string]any{"action": "DELETE"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperrors.CodeValidation,
		},
		{
			name:       "inverted range",
			body:       createBody("2024-01-01T10:00:00", "2024-01-01T09:00:00"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperrors.CodeValidation,
		},
		{
			name:       "bad date-time",
			body:       createBody("yesterday", "2024-01-01T09:00:00"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.CodeInvalidInput,
		},
		{
			name: "missing fields",
			body: map[string]any{
				"action":        "CREATE",
				"startDateTime": "2024-01-01T09:00:00",
				"endDateTime":   "2024-01-01T10:00:00",
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(t)
			rec, resp := do(t, router, http.MethodPost, BookingsPath, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestDayProjection(t *testing.T) {
	router := newRouter(t)
	rec, _ := do(t, router, http.MethodPost, BookingsPath, createBody("2024-01-01T22:00:00", "2024-01-02T03:00:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/day/2024-01-02", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool    `json:"success"`
		Data    DayView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "2024-01-02", resp.Data.Date)
	require.Len(t, resp.Data.Segments, 1)
	seg := resp.Data.Segments[0]
	assert.Equal(t, 0, seg.StartHour)
	assert.InDelta(t, 3.0, seg.DurationHours, 1e-9)
	assert.True(t, seg.ContinuesFromPriorDay)
	assert.False(t, seg.ContinuesIntoNextDay)
	require.Len(t, resp.Data.Grid, 24)
	assert.False(t, resp.Data.Grid[1].Bookable)
	assert.True(t, resp.Data.Grid[3].Bookable)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/day/not-a-date", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type downStore struct {
	service.BookingService
}

func (downStore) List(context.Context, time.Time) ([]*model.Booking, error) {
	return []*model.Booking{}, apperrors.Transport("Failed to load bookings", errors.New("dial tcp: refused"))
}

func (downStore) Ping(context.Context) error {
	return errors.New("dial tcp: refused")
}

func TestStoreUnavailable(t *testing.T) {
	log := logger.Nop()
	router := httprouter.New()
	NewBookingHandler(downStore{}, validator.NewBookingValidator(log), log).RegisterRoutes(router)
	NewHealthHandler(downStore{}, "redis", log).RegisterRoutes(router)

	rec, resp := do(t, router, http.MethodGet, "/api/v1/bookings?date=2024-01-01", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, apperrors.CodeTransport, resp.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
