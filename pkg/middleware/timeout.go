package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	apperrors "furnace/pkg/errors"
	httputil "furnace/pkg/http"
)

// deadlineWriter buffers handler headers in its own map and discards handler
// output once the deadline response is sent. The underlying writer's headers
// are only touched under mu while the deadline has not passed.
type deadlineWriter struct {
	w       http.ResponseWriter
	header  http.Header
	mu      sync.Mutex
	expired bool
	started bool
}

func newDeadlineWriter(w http.ResponseWriter) *deadlineWriter {
	return &deadlineWriter{w: w, header: w.Header().Clone()}
}

func (dw *deadlineWriter) Header() http.Header {
	return dw.header
}

// start copies buffered headers and sends the status. Callers hold mu.
func (dw *deadlineWriter) start(code int) {
	dst := dw.w.Header()
	for k, v := range dw.header {
		dst[k] = append([]string(nil), v...)
	}
	dw.started = true
	dw.w.WriteHeader(code)
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired || dw.started {
		return
	}
	dw.start(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.expired {
		return 0, http.ErrHandlerTimeout
	}
	if !dw.started {
		dw.start(http.StatusOK)
	}
	return dw.w.Write(b)
}

// expire blocks further handler writes and reports whether the handler had
// not yet started its response.
func (dw *deadlineWriter) expire() bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	dw.expired = true
	return !dw.started
}

// RequestTimeout bounds handler time. A handler still running at the deadline
// gets its context cancelled and the client receives a 504 envelope. Panics in
// the handler are re-raised on the calling goroutine.
func RequestTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			r = r.WithContext(ctx)

			dw := newDeadlineWriter(w)
			panicked := make(chan any, 1)
			done := make(chan struct{})

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
						return
					}
					close(done)
				}()
				next.ServeHTTP(dw, r)
			}()

			select {
			case <-done:
			case p := <-panicked:
				panic(p)
			case <-ctx.Done():
				if dw.expire() {
					msg := fmt.Sprintf("Request did not complete within %s", timeout)
					_ = httputil.WriteError(w, apperrors.Timeout(msg).WithDetails(requestDetails(r)))
				}
			}
		})
	}
}
