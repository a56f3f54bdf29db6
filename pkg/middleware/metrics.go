package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"furnace/pkg/metrics"
)

// RouteLabeler maps a request to a low-cardinality route name.
type RouteLabeler func(r *http.Request) string

func Metrics(label RouteLabeler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			metrics.ObserveHTTPRequest(
				r.Method,
				label(r),
				strconv.Itoa(rec.Status()),
				time.Since(start).Seconds(),
			)
		})
	}
}

// UnmatchedRoute labels requests that match no registered pattern.
const UnmatchedRoute = "unmatched"

// PatternLabeler labels a request with the first pattern its path matches.
// Patterns use httprouter syntax; ":name" matches one path segment.
func PatternLabeler(patterns ...string) RouteLabeler {
	split := make([][]string, len(patterns))
	for i, p := range patterns {
		split[i] = strings.Split(strings.Trim(p, "/"), "/")
	}

	return func(r *http.Request) string {
		segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		for i, pattern := range split {
			if matchSegments(pattern, segments) {
				return patterns[i]
			}
		}
		return UnmatchedRoute
	}
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) != len(segments) {
		return false
	}
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if p != segments[i] {
			return false
		}
	}
	return true
}
