package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "furnace/pkg/errors"
	"furnace/pkg/logger"
	"furnace/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.BookingResponse {
	t.Helper()
	var resp model.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, apperrors.CodeInternal, resp.Code)
}

func TestRequestLoggingPropagatesRequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestRequestTimeout(t *testing.T) {
	h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, apperrors.CodeTimeout, decodeEnvelope(t, rec).Code)
}

func TestRequestTimeoutFastHandler(t *testing.T) {
	h := RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRequestTimeoutIgnoresLateHeaders(t *testing.T) {
	finished := make(chan struct{})
	h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(finished)
		<-r.Context().Done()
		w.Header().Set("X-Late", "1")
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("too late"))
		assert.ErrorIs(t, err, http.ErrHandlerTimeout)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	<-finished

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Late"))
	assert.NotContains(t, rec.Body.String(), "too late")
	assert.Equal(t, apperrors.CodeTimeout, decodeEnvelope(t, rec).Code)
}

func TestRequestTimeoutForwardsHandlerHeaders(t *testing.T) {
	h := RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "outer", w.Header().Get("X-Request-Id"))
		w.Header().Set("Location", "/api/v1/bookings/abc")
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	rec.Header().Set("X-Request-Id", "outer")
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/v1/bookings/abc", rec.Header().Get("Location"))
	assert.Equal(t, "outer", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "ok", rec.Body.String())
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{name: "json post", method: http.MethodPost, contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "form post", method: http.MethodPost, contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
		{name: "missing on post", method: http.MethodPost, wantStatus: http.StatusUnsupportedMediaType},
		{name: "get needs none", method: http.MethodGet, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewClientRateLimiter(0.001, 2, nil, logger.Nop())
	defer limiter.Stop()

	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000"), "other clients have their own bucket")
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	limiter := NewClientRateLimiter(1, 1, nil, logger.Nop())
	defer limiter.Stop()

	limiter.Allow("a")
	limiter.evictIdle(time.Now().Add(time.Hour))

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Empty(t, limiter.clients)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", ClientIP(req), "forwarding headers are ignored without trusted proxies")
}

func TestTrustedClientIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.10"})
	require.NoError(t, err)
	extract := TrustedClientIP(trusted)

	tests := []struct {
		name   string
		remote string
		fwd    string
		want   string
	}{
		{name: "direct client", remote: "198.51.100.4:1234", want: "198.51.100.4"},
		{name: "spoofed header from untrusted peer", remote: "198.51.100.4:1234", fwd: "203.0.113.7", want: "198.51.100.4"},
		{name: "trusted proxy", remote: "10.1.2.3:80", fwd: "203.0.113.7", want: "203.0.113.7"},
		{name: "single trusted address", remote: "192.0.2.10:80", fwd: "203.0.113.7", want: "203.0.113.7"},
		{name: "client prepends fake hop", remote: "10.1.2.3:80", fwd: "1.1.1.1, 203.0.113.7, 10.0.0.5", want: "203.0.113.7"},
		{name: "trusted proxy without header", remote: "10.1.2.3:80", want: "10.1.2.3"},
		{name: "garbage hop stops the walk", remote: "10.1.2.3:80", fwd: "203.0.113.7, not-an-ip", want: "10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.fwd != "" {
				req.Header.Set("X-Forwarded-For", tt.fwd)
			}
			assert.Equal(t, tt.want, extract(req))
		})
	}
}

func TestParseTrustedProxiesRejectsGarbage(t *testing.T) {
	_, err := ParseTrustedProxies([]string{"10.0.0.0/8", "proxy.local"})
	assert.Error(t, err)

	none, err := ParseTrustedProxies(nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := NewClientRateLimiter(0.001, 1, TrustedClientIP(nil), logger.Nop())
	defer limiter.Stop()

	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(fwd string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.4:1234"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.2"), "rotating the header must not mint a new bucket")
}

func TestMetricsMiddlewareRecordsStatus(t *testing.T) {
	var labelled string
	h := Metrics(func(r *http.Request) string {
		labelled = r.URL.Path
		return "test"
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "/x", labelled)
}

func TestPatternLabeler(t *testing.T) {
	label := PatternLabeler("/api/v1/bookings", "/api/v1/bookings/day/:date", "/health")

	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/bookings", "/api/v1/bookings"},
		{"/api/v1/bookings/", "/api/v1/bookings"},
		{"/api/v1/bookings/day/2025-03-10", "/api/v1/bookings/day/:date"},
		{"/api/v1/bookings/day/", UnmatchedRoute},
		{"/health", "/health"},
		{"/nope", UnmatchedRoute},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, label(httptest.NewRequest(http.MethodGet, tt.path, nil)))
		})
	}
}

func TestRecoveryEnvelopeCarriesRequestID(t *testing.T) {
	h := RequestLogging(logger.Nop())(Recovery(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-7", decodeEnvelope(t, rec).Details["requestId"])
}

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, rec.Status())

	_, err := rec.Write([]byte("hello"))
	require.NoError(t, err)
	rec.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, rec.Status())
	assert.Equal(t, 5, rec.bytes)
}
