package middleware

import (
	"log"
	"net/http"
	"time"

	"prodsheet/server/internal/observability"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// Logging wraps a handler with request logging.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sr, r)

		durationMs := time.Since(start).Milliseconds()
		log.Printf("[http] %s %s -> %d (%dms)", r.Method, r.URL.Path, sr.status, durationMs)
		observability.LogRequest(r.Method, r.URL.Path, sr.status, durationMs)
	})
}
